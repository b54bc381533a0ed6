package compiler

import (
	"fmt"
	"strings"

	"github.com/google/btree"
)

// btreeDegree is the branching factor of the binding tree.
const btreeDegree = 8

type binding struct {
	name string
	node Node
}

func lessBinding(a, b binding) bool { return a.name < b.name }

// SymbolTable maps names to the nodes that define them: Builtins for the
// runtime operators, Lambdas for defuns, Args inside a function body.
//
// A table is never modified once built. Every Bind* method returns a new
// table sharing structure with its parent through a copy-on-write B-tree,
// so a lambda body's bindings cannot leak into the enclosing scope.
type SymbolTable struct {
	tree *btree.BTreeG[binding]
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{tree: btree.NewG[binding](btreeDegree, lessBinding)}
}

// Lookup returns the node bound to name.
func (s *SymbolTable) Lookup(name string) (Node, bool) {
	b, ok := s.tree.Get(binding{name: name})
	return b.node, ok
}

// Len returns the number of bindings.
func (s *SymbolTable) Len() int { return s.tree.Len() }

// overlay clones the table and lets add insert into the copy.
func (s *SymbolTable) overlay(add func(t *btree.BTreeG[binding])) *SymbolTable {
	t := s.tree.Clone()
	add(t)
	return &SymbolTable{tree: t}
}

// Bind returns a table where name is bound to n.
func (s *SymbolTable) Bind(name string, n Node) *SymbolTable {
	return s.overlay(func(t *btree.BTreeG[binding]) {
		t.ReplaceOrInsert(binding{name: name, node: n})
	})
}

// BindBuiltins binds each operator name to a Builtin with the given
// external label.
func (s *SymbolTable) BindBuiltins(ops map[string]string) *SymbolTable {
	return s.overlay(func(t *btree.BTreeG[binding]) {
		for name, label := range ops {
			t.ReplaceOrInsert(binding{name: name, node: &Builtin{Name: name, Label: label}})
		}
	})
}

// BindFunctions binds user-defined functions by source name.
func (s *SymbolTable) BindFunctions(fns map[string]*Lambda) *SymbolTable {
	return s.overlay(func(t *btree.BTreeG[binding]) {
		for name, fn := range fns {
			t.ReplaceOrInsert(binding{name: name, node: fn})
		}
	})
}

// BindArgs binds a lambda's parameters. A later parameter shadows an
// earlier one with the same name.
func (s *SymbolTable) BindArgs(args []*Arg) *SymbolTable {
	return s.overlay(func(t *btree.BTreeG[binding]) {
		for _, a := range args {
			t.ReplaceOrInsert(binding{name: a.Name, node: a})
		}
	})
}

// Names returns the bound names in ascending order.
func (s *SymbolTable) Names() []string {
	names := make([]string, 0, s.tree.Len())
	s.tree.Ascend(func(b binding) bool {
		names = append(names, b.name)
		return true
	})
	return names
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	if s.tree.Len() == 0 {
		return "Symbols: (empty)\n"
	}
	var sb strings.Builder
	sb.WriteString("Symbols:\n")
	s.tree.Ascend(func(b binding) bool {
		switch n := b.node.(type) {
		case *Builtin:
			fmt.Fprintf(&sb, "  %-20s  builtin  %s\n", b.name, n.Label)
		case *Lambda:
			fmt.Fprintf(&sb, "  %-20s  function %s/%d\n", b.name, n.Label, len(n.Args))
		case *Arg:
			fmt.Fprintf(&sb, "  %-20s  argument [ebp+%d]\n", b.name, n.Offset)
		default:
			fmt.Fprintf(&sb, "  %-20s  %s\n", b.name, n)
		}
		return true
	})
	return sb.String()
}
