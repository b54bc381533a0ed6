package compiler

// CondHandler turns (cond (test value)...) into Cond nodes.
type CondHandler struct{}

func NewCondHandler() *CondHandler {
	return &CondHandler{}
}

// Apply rewrites all top-level forms.
func (h *CondHandler) Apply(forms []Node) ([]Node, error) {
	return rewriteAll(forms, h.handle)
}

func (h *CondHandler) handle(n Node) (Node, bool, error) {
	s, ok := n.(*Sexp)
	if !ok || !s.isCallTo("cond") {
		return nil, false, nil
	}

	cond := &Cond{}
	for _, arg := range s.Args() {
		clause, ok := arg.(*Sexp)
		if !ok || len(clause.Elements) != 2 {
			return nil, true, newError(SyntaxError, 0, "invalid cond clause %s", arg)
		}
		test, err := rewrite(clause.Elements[0], h.handle)
		if err != nil {
			return nil, true, err
		}
		value, err := rewrite(clause.Elements[1], h.handle)
		if err != nil {
			return nil, true, err
		}
		cond.Options = append(cond.Options, CondOption{Cond: test, Value: value})
	}
	return cond, true, nil
}
