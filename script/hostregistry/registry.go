// Package hostregistry implements the name→host-symbol registry that lets
// native Go code expose properties, arrays, and object graphs to scripts.
package hostregistry

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/aledsdavies/escript/script/value"
)

// Kind categorizes a host symbol: a scalar property, an indexable array, or
// an object exposing named properties.
type Kind int

const (
	Property Kind = iota
	ArrayKind
	Object
)

// Descriptor is the four-callback contract a host uses to expose a piece
// of native data to scripts. It is the same shape as value.Descriptor,
// aliased here so callers of this package never need to import script/value
// directly just to build one.
type Descriptor = value.Descriptor

// Symbol is a named binding to native data, resolved through a Descriptor.
type Symbol struct {
	Name       string
	Kind       Kind
	Handle     any
	Descriptor *Descriptor
	Context    any
}

const bucketCount = 32

// Registry is a fixed bucket array of host symbols, matching the engine's
// other fixed-width tables.
type Registry struct {
	buckets [bucketCount][]*Symbol
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

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

// Register binds name to a host symbol. A nil descriptor is rejected. A
// prior registration under the same name is released first, then replaced.
func (r *Registry) Register(name string, kind Kind, handle any, descriptor *Descriptor, ctx any) error {
	if descriptor == nil {
		return pkgerrors.Errorf("host symbol %q: descriptor must not be nil", name)
	}

	idx := bucketFor(name)
	bucket := r.buckets[idx]
	for i, sym := range bucket {
		if sym.Name == name {
			releaseSymbol(sym)
			r.buckets[idx] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}

	r.buckets[idx] = append(r.buckets[idx], &Symbol{
		Name:       name,
		Kind:       kind,
		Handle:     handle,
		Descriptor: descriptor,
		Context:    ctx,
	})
	return nil
}

// Lookup returns the symbol registered under name, if any.
func (r *Registry) Lookup(name string) (*Symbol, bool) {
	for _, sym := range r.buckets[bucketFor(name)] {
		if sym.Name == name {
			return sym, true
		}
	}
	return nil, false
}

// Unregister removes and releases the symbol under name, if present.
func (r *Registry) Unregister(name string) {
	idx := bucketFor(name)
	bucket := r.buckets[idx]
	for i, sym := range bucket {
		if sym.Name == name {
			releaseSymbol(sym)
			r.buckets[idx] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}

// Clear releases every registered symbol and resets the table.
func (r *Registry) Clear() {
	for i := range r.buckets {
		for _, sym := range r.buckets[i] {
			releaseSymbol(sym)
		}
		r.buckets[i] = nil
	}
}

// Names returns every registered host symbol name, for "did you mean"
// suggestions on unknown-symbol errors.
func (r *Registry) Names() []string {
	var names []string
	for _, bucket := range r.buckets {
		for _, sym := range bucket {
			names = append(names, sym.Name)
		}
	}
	return names
}

func releaseSymbol(sym *Symbol) {
	if sym.Descriptor != nil && sym.Descriptor.ReleaseHandle != nil && sym.Handle != nil {
		ctx := sym.Context
		if ctx == nil {
			ctx = sym.Descriptor.Context
		}
		sym.Descriptor.ReleaseHandle(ctx, sym.Handle)
	}
}

// GetProperty invokes sym's GetProperty callback with sym's own name,
// preparing the returned value against sym's descriptor/context.
func GetProperty(sym *Symbol) (value.Value, error) {
	if sym.Descriptor.GetProperty == nil {
		return value.Value{}, fmt.Errorf("host symbol %q has no get_property operation", sym.Name)
	}
	v, err := sym.Descriptor.GetProperty(effectiveContext(sym), sym.Name)
	if err != nil {
		return value.Value{}, pkgerrors.Wrapf(err, "host symbol %q get_property", sym.Name)
	}
	return value.PrepareHostValue(v, sym.Descriptor, effectiveContext(sym)), nil
}

// GetElement invokes sym's GetElement callback with the given index,
// preparing the returned value against sym's descriptor/context.
func GetElement(sym *Symbol, index int) (value.Value, error) {
	if sym.Descriptor.GetElement == nil {
		return value.Value{}, fmt.Errorf("host symbol %q has no get_element operation", sym.Name)
	}
	v, err := sym.Descriptor.GetElement(effectiveContext(sym), index)
	if err != nil {
		return value.Value{}, pkgerrors.Wrapf(err, "host symbol %q get_element", sym.Name)
	}
	return value.PrepareHostValue(v, sym.Descriptor, effectiveContext(sym)), nil
}

func effectiveContext(sym *Symbol) any {
	if sym.Context != nil {
		return sym.Context
	}
	return sym.Descriptor.Context
}
