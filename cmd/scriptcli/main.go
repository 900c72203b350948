// Command scriptcli is a minimal embedder demo: it loads a script file (or
// reads one from stdin) and executes it against a fresh eval.Context,
// wiring ResolveVariable to the --var bindings. It also wires an Output
// handler, but the engine never invokes Output, so that handler prints
// nothing.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/escript/script/eval"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "scriptcli",
		Short:   "Demo embedder for the escript scripting engine",
		Version: "0.1.0",
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var env []string

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Execute a script file, or stdin if no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, name, err := readSource(args)
			if err != nil {
				return err
			}
			if name != "" && !eval.IsScriptFile(name) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s does not have a .e0 extension\n", name)
			}

			resolver := newEnvResolver(env)
			c := eval.NewContext(eval.WithCallbacks(eval.Callbacks{
				Output: func(message string, userData any) {
					fmt.Fprintln(cmd.OutOrStdout(), message)
				},
				ResolveVariable: resolver.resolve,
				ExecuteCommand:  shellExecuteCommand,
			}))

			if err := c.Execute(source); err != nil {
				return fmt.Errorf("%s: %w", c.LastError(), err)
			}
			if c.HasReturnValue() {
				v, _ := c.ReturnValue()
				fmt.Fprintf(cmd.OutOrStdout(), "=> %v\n", v)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&env, "var", nil, "fallback variable binding name=value, consulted on UndefinedVar")
	return cmd
}

func readSource(args []string) (source, name string, err error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), args[0], nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	var buf []byte
	for scanner.Scan() {
		buf = append(buf, scanner.Bytes()...)
		buf = append(buf, '\n')
	}
	return string(buf), "", scanner.Err()
}

// envResolver backs the ResolveVariable callback: a fallback resolver tried
// immediately before an identifier read fails with UndefinedVar.
type envResolver struct {
	bindings map[string]string
}

func newEnvResolver(pairs []string) *envResolver {
	r := &envResolver{bindings: make(map[string]string, len(pairs))}
	for _, pair := range pairs {
		for i := 0; i < len(pair); i++ {
			if pair[i] == '=' {
				r.bindings[pair[:i]] = pair[i+1:]
				break
			}
		}
	}
	return r
}

func (r *envResolver) resolve(name string, userData any) (string, bool) {
	v, ok := r.bindings[name]
	return v, ok
}

// shellExecuteCommand is a thin os/exec-free stand-in: the demo embedder
// does not actually spawn processes, it just reports success so shell
// statements in example scripts exercise the call path without touching
// the host machine.
func shellExecuteCommand(line string, userData any) (uint32, error) {
	return 0, nil
}
