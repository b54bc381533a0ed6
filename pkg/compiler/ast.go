package compiler

import (
	"fmt"
	"strings"
)

// Node is implemented by every AST variant. The set is closed: the passes
// and the emitter switch over the concrete types below.
type Node interface {
	node()
	String() string
}

// Sexp is an application form before desugaring.
//
//	(+ x 1)
//	 ^ ^ ^
//	 | Args
//	 function position
type Sexp struct {
	Elements []Node
}

// Symbol is a name resolved against the symbol table during emission.
type Symbol struct {
	Name string
}

// QuotedSymbol is a literal symbol value; it is never resolved.
type QuotedSymbol struct {
	Name  string
	Label string
}

// Constant is a literal integer.
type Constant struct {
	Value int32
	Label string
}

// StringLiteral is a literal string.
type StringLiteral struct {
	Value string
	Label string
}

// EmptyList is the literal (). Its label is always "0".
type EmptyList struct{}

// ListNode is a cons cell materialized by quoting. A nil Next terminates
// the chain.
type ListNode struct {
	Data  Node
	Next  *ListNode
	Label string
}

// CondOption is one (test value) clause.
type CondOption struct {
	Cond  Node
	Value Node
}

// Cond evaluates its options in order and yields the value of the first
// option whose test is non-zero, or zero.
type Cond struct {
	Options []CondOption
}

// Lambda is a function. Named functions get their label from defun,
// anonymous ones when they are first emitted.
type Lambda struct {
	Args  []*Arg
	Body  Node
	Label string
}

// Arg is a formal parameter. Offset is its distance from the frame pointer,
// assigned when the owning lambda is lowered.
type Arg struct {
	Name   string
	Offset int
}

// Builtin is a symbol table entry for a runtime routine with a fixed
// external label.
type Builtin struct {
	Name  string
	Label string
}

func (*Sexp) node()          {}
func (*Symbol) node()        {}
func (*QuotedSymbol) node()  {}
func (*Constant) node()      {}
func (*StringLiteral) node() {}
func (*EmptyList) node()     {}
func (*ListNode) node()      {}
func (*Cond) node()          {}
func (*Lambda) node()        {}
func (*Arg) node()           {}
func (*Builtin) node()       {}

// Function returns the name in function position when it is a plain symbol.
func (s *Sexp) Function() (string, bool) {
	if len(s.Elements) == 0 {
		return "", false
	}
	sym, ok := s.Elements[0].(*Symbol)
	if !ok {
		return "", false
	}
	return sym.Name, true
}

// Args returns all elements but the first.
func (s *Sexp) Args() []Node {
	if len(s.Elements) == 0 {
		return nil
	}
	return s.Elements[1:]
}

// isCallTo reports whether s is a call whose function position is the
// symbol name.
func (s *Sexp) isCallTo(name string) bool {
	fn, ok := s.Function()
	return ok && fn == name
}

func (s *Sexp) String() string {
	return "(" + joinNodes(s.Elements) + ")"
}

func (s *Symbol) String() string        { return s.Name }
func (q *QuotedSymbol) String() string  { return "'" + q.Name }
func (c *Constant) String() string      { return fmt.Sprintf("%d", c.Value) }
func (s *StringLiteral) String() string { return fmt.Sprintf("%q", s.Value) }
func (*EmptyList) String() string       { return "()" }

func (l *ListNode) String() string {
	var parts []string
	for n := l; n != nil; n = n.Next {
		parts = append(parts, n.Data.String())
	}
	return "'(" + strings.Join(parts, " ") + ")"
}

func (c *Cond) String() string {
	var sb strings.Builder
	sb.WriteString("(cond")
	for _, opt := range c.Options {
		fmt.Fprintf(&sb, " (%s %s)", opt.Cond, opt.Value)
	}
	sb.WriteString(")")
	return sb.String()
}

func (l *Lambda) String() string {
	names := make([]string, len(l.Args))
	for i, a := range l.Args {
		names[i] = a.Name
	}
	label := ""
	if l.Label != "" {
		label = " " + l.Label
	}
	return fmt.Sprintf("(lambda%s (%s) %s)", label, strings.Join(names, " "), l.Body)
}

func (a *Arg) String() string     { return fmt.Sprintf("%s@%d", a.Name, a.Offset) }
func (b *Builtin) String() string { return fmt.Sprintf("#<builtin %s %s>", b.Name, b.Label) }

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, " ")
}

// LabelOf returns the label a node is addressed by once it has been
// emitted. Nodes that are lowered by computation rather than by address
// have none.
func LabelOf(n Node) (string, bool) {
	var label string
	switch n := n.(type) {
	case *Constant:
		label = n.Label
	case *StringLiteral:
		label = n.Label
	case *QuotedSymbol:
		label = n.Label
	case *ListNode:
		label = n.Label
	case *Lambda:
		label = n.Label
	case *Builtin:
		label = n.Label
	case *EmptyList:
		label = "0"
	}
	return label, label != ""
}

// sanitizeLabel turns a source name into a valid assembler symbol.
func sanitizeLabel(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
