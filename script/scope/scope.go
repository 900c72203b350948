// Package scope implements the engine's variable store: a chain of fixed
// width hash-bucket scopes, DJB2-hashed, with assignment that overwrites an
// existing binding anywhere in the parent chain rather than shadowing it.
package scope

import (
	"github.com/aledsdavies/escript/internal/invariant"
	"github.com/aledsdavies/escript/script/value"
)

// MaxIdentifierLen bounds a variable name, per the spec's bounded identifier.
const MaxIdentifierLen = 63

// bucketCount is the fixed bucket width for every scope.
const bucketCount = 32

// Variable is a named cell living in exactly one Scope.
type Variable struct {
	Name  string
	Value value.Value
	Alive bool
}

// Scope is a hash bucket array plus a parent link. The global scope has a
// nil parent and Level 0; every other scope has a valid parent.
type Scope struct {
	buckets [bucketCount][]*Variable
	parent  *Scope
	level   int
}

// NewGlobal creates the root scope.
func NewGlobal() *Scope {
	return &Scope{level: 0}
}

// NewChild creates a scope whose parent is s. The evaluator never pushes a
// child scope - neither blocks nor for loops do - so this constructor
// exists for embedders that want nested execution contexts.
func (s *Scope) NewChild() *Scope {
	return &Scope{parent: s, level: s.level + 1}
}

// Parent returns the enclosing scope, or nil for the global scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Level returns the scope's depth from the global scope.
func (s *Scope) Level() int { return s.level }

// djb2 hashes name the way the spec mandates: h=5381; h = h*33 + b.
func djb2(name string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(name); i++ {
		h = h*33 + uint32(name[i])
	}
	return h
}

func bucketFor(name string) int {
	return int(djb2(name) % bucketCount)
}

// find looks up name in s's bucket, walking up the parent chain when
// searchParents is true.
func (s *Scope) find(name string, searchParents bool) *Variable {
	bucket := s.buckets[bucketFor(name)]
	for _, v := range bucket {
		if v.Name == name {
			return v
		}
	}
	if searchParents && s.parent != nil {
		return s.parent.find(name, true)
	}
	return nil
}

// Find looks up name starting at s and walking up the parent chain.
func (s *Scope) Find(name string) (*Variable, bool) {
	v := s.find(name, true)
	return v, v != nil
}

// FindLocal looks up name in s only, without consulting the parent chain.
func (s *Scope) FindLocal(name string) (*Variable, bool) {
	v := s.find(name, false)
	return v, v != nil
}

// Set assigns value to name: if a binding for name already exists anywhere
// in the parent chain, its payload is released and overwritten in place
// (the write lands in whichever scope already owns the name - there is no
// block-level shadowing). Otherwise a new variable is inserted into s.
func (s *Scope) Set(name string, v value.Value) *Variable {
	invariant.MaxLen(name, MaxIdentifierLen, "variable name")

	if existing := s.find(name, true); existing != nil {
		existing.Value.Release()
		existing.Value = v.Clone()
		return existing
	}

	newVar := &Variable{Name: name, Value: v.Clone(), Alive: true}
	idx := bucketFor(name)
	s.buckets[idx] = append(s.buckets[idx], newVar)
	return newVar
}

// Delete removes name from s's own bucket only; parent scopes are untouched.
func (s *Scope) Delete(name string) {
	idx := bucketFor(name)
	bucket := s.buckets[idx]
	for i, v := range bucket {
		if v.Name == name {
			v.Value.Release()
			s.buckets[idx] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}

// Names returns every variable name visible from s, walking the full parent
// chain. Used to rank "did you mean" suggestions for UndefinedVar errors.
func (s *Scope) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for cur := s; cur != nil; cur = cur.parent {
		for _, bucket := range cur.buckets {
			for _, v := range bucket {
				if !seen[v.Name] {
					seen[v.Name] = true
					names = append(names, v.Name)
				}
			}
		}
	}
	return names
}
