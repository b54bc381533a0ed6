package compiler

// Quoter replaces every (quote X) form with literal data: quoted symbols,
// unchanged atoms, or a chain of ListNodes for quoted lists.
type Quoter struct {
	symbols map[string]*QuotedSymbol
}

func NewQuoter() *Quoter {
	return &Quoter{symbols: make(map[string]*QuotedSymbol)}
}

// Apply rewrites all top-level forms.
func (q *Quoter) Apply(forms []Node) ([]Node, error) {
	return rewriteAll(forms, q.handle)
}

func (q *Quoter) handle(n Node) (Node, bool, error) {
	s, ok := n.(*Sexp)
	if !ok || !s.isCallTo("quote") {
		return nil, false, nil
	}
	args := s.Args()
	if len(args) != 1 {
		return nil, true, newError(SyntaxError, 0, "quote expects 1 argument, got %d in %s", len(args), s)
	}
	quoted, err := q.quote(args[0])
	return quoted, true, err
}

func (q *Quoter) quote(n Node) (Node, error) {
	switch n := n.(type) {
	case *Symbol:
		qs, ok := q.symbols[n.Name]
		if !ok {
			qs = &QuotedSymbol{Name: n.Name}
			q.symbols[n.Name] = qs
		}
		return qs, nil

	case *Constant, *StringLiteral, *QuotedSymbol, *EmptyList:
		return n, nil

	case *Sexp:
		elems := make([]Node, len(n.Elements))
		for i, e := range n.Elements {
			qe, err := q.quote(e)
			if err != nil {
				return nil, err
			}
			elems[i] = qe
		}
		return buildList(elems), nil
	}
	return nil, newError(InternalError, 0, "cannot quote %s (%T)", n, n)
}

// buildList chains elems into ListNodes from right to left. No elements
// make the empty list.
func buildList(elems []Node) Node {
	var head *ListNode
	for i := len(elems) - 1; i >= 0; i-- {
		head = &ListNode{Data: elems[i], Next: head}
	}
	if head == nil {
		return &EmptyList{}
	}
	return head
}
