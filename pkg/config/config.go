// Package config describes the runtime library the generated assembly links
// against: its entry point, data layout, operator routines and externs.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed runtime.yaml
var defaultRuntime []byte

// Types holds the object type discriminants.
type Types struct {
	Int    int `yaml:"int"`
	Node   int `yaml:"node"`
	Symbol int `yaml:"symbol"`
	String int `yaml:"string"`
}

// ExternLine is the symbol list of one extern directive.
type ExternLine []string

// UnmarshalYAML rejects names YAML resolves to something other than a
// string, such as a bare null, which would otherwise be dropped silently.
func (l *ExternLine) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: extern line must be a list of names", n.Line)
	}
	names := make([]string, 0, len(n.Content))
	for _, c := range n.Content {
		if c.Kind != yaml.ScalarNode || c.ShortTag() == "!!null" {
			return fmt.Errorf("line %d: extern name %q is not a string, quote it", c.Line, c.Value)
		}
		names = append(names, c.Value)
	}
	*l = names
	return nil
}

// Runtime is the contract between the compiler and the runtime library.
type Runtime struct {
	// Entry is the symbol of the synthetic function evaluating top-level
	// forms.
	Entry string `yaml:"entry"`

	// DwordSize is the width in bytes of one stack slot.
	DwordSize int `yaml:"dword_size"`

	// VarargDelimiter is pushed before the arguments of a variadic call.
	VarargDelimiter uint32 `yaml:"vararg_delimiter"`

	Types Types `yaml:"types"`

	// Operators maps source operator names to runtime routine labels.
	Operators map[string]string `yaml:"operators"`

	// Externs lists the runtime symbols, one extern line per entry.
	Externs []ExternLine `yaml:"externs"`

	// Variadic names the routines that take a delimited argument list.
	Variadic []string `yaml:"variadic"`

	// Arity is the expected argument count of checked routines.
	Arity map[string]int `yaml:"arity"`
}

// Default returns the runtime description the compiler ships with.
func Default() *Runtime {
	rt := &Runtime{}
	if err := yaml.Unmarshal(defaultRuntime, rt); err != nil {
		panic(fmt.Sprintf("config: embedded runtime.yaml: %v", err))
	}
	if err := rt.Validate(); err != nil {
		panic(fmt.Sprintf("config: embedded runtime.yaml: %v", err))
	}
	return rt
}

// Parse decodes a runtime description. Fields the document omits keep their
// default values; maps are merged key by key.
func Parse(data []byte) (*Runtime, error) {
	rt := Default()
	if err := yaml.Unmarshal(data, rt); err != nil {
		return nil, fmt.Errorf("parse runtime description: %w", err)
	}
	if err := rt.Validate(); err != nil {
		return nil, err
	}
	return rt, nil
}

// Load reads a runtime description from a YAML file.
func Load(path string) (*Runtime, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rt, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rt, nil
}

// Validate rejects descriptions the emitter cannot produce code for.
func (r *Runtime) Validate() error {
	if r.Entry == "" {
		return fmt.Errorf("runtime: entry symbol is empty")
	}
	if r.DwordSize <= 0 {
		return fmt.Errorf("runtime: dword_size must be positive, got %d", r.DwordSize)
	}
	for name, label := range r.Operators {
		if label == "" {
			return fmt.Errorf("runtime: operator %q has no label", name)
		}
	}
	for i, line := range r.Externs {
		if len(line) == 0 {
			return fmt.Errorf("runtime: extern line %d is empty", i+1)
		}
		for j, sym := range line {
			if sym == "" {
				return fmt.Errorf("runtime: extern line %d has an empty name at position %d", i+1, j+1)
			}
		}
	}
	for name, n := range r.Arity {
		if n < 0 {
			return fmt.Errorf("runtime: negative arity %d for %q", n, name)
		}
	}
	return nil
}

// IsVariadic reports whether calls to name get a delimiter pushed first.
func (r *Runtime) IsVariadic(name string) bool {
	return slices.Contains(r.Variadic, name)
}

// ExpectedArity returns the checked argument count for name.
func (r *Runtime) ExpectedArity(name string) (int, bool) {
	n, ok := r.Arity[name]
	return n, ok
}
