package compiler

import "github.com/jstepien/mlisp/pkg/config"

// ArityCheck verifies the argument count of calls to runtime routines with
// a known fixed arity. Calls to anything else are not checked.
type ArityCheck struct {
	rt   *config.Runtime
	syms *SymbolTable
}

// NewArityCheck checks against the arities rt declares. A name that syms
// binds to a user-defined function is exempt.
func NewArityCheck(rt *config.Runtime, syms *SymbolTable) *ArityCheck {
	return &ArityCheck{rt: rt, syms: syms}
}

// Apply walks every form and returns the first mismatch.
func (c *ArityCheck) Apply(forms []Node) error {
	for _, f := range forms {
		if err := walk(f, c.check, nil); err != nil {
			return err
		}
	}
	return nil
}

func (c *ArityCheck) check(n Node) error {
	s, ok := n.(*Sexp)
	if !ok {
		return nil
	}
	name, ok := s.Function()
	if !ok {
		return nil
	}
	want, ok := c.rt.ExpectedArity(name)
	if !ok {
		return nil
	}
	if c.syms != nil {
		if bound, ok := c.syms.Lookup(name); ok {
			if _, user := bound.(*Lambda); user {
				return nil
			}
		}
	}
	if got := len(s.Args()); got != want {
		return newError(ArityError, 0, "%d argument(s) for %s given, %d expected", got, name, want)
	}
	return nil
}
