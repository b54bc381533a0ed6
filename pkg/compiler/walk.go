package compiler

// rewriteFunc inspects one node. When it takes care of the node it returns
// the replacement and true; otherwise rewrite descends into the children.
type rewriteFunc func(n Node) (Node, bool, error)

// rewrite replaces n with the result of applying fn to it, depth-first,
// left to right. Sexps and Conds are rebuilt; a Lambda keeps its identity
// (the symbol table may already point at it) and has its body replaced.
// Literal data (ListNode and atoms) is never descended into.
func rewrite(n Node, fn rewriteFunc) (Node, error) {
	out, done, err := fn(n)
	if err != nil || done {
		return out, err
	}

	switch n := n.(type) {
	case *Sexp:
		elems, err := rewriteAll(n.Elements, fn)
		if err != nil {
			return nil, err
		}
		return &Sexp{Elements: elems}, nil

	case *Cond:
		opts := make([]CondOption, len(n.Options))
		for i, opt := range n.Options {
			c, err := rewrite(opt.Cond, fn)
			if err != nil {
				return nil, err
			}
			v, err := rewrite(opt.Value, fn)
			if err != nil {
				return nil, err
			}
			opts[i] = CondOption{Cond: c, Value: v}
		}
		return &Cond{Options: opts}, nil

	case *Lambda:
		body, err := rewrite(n.Body, fn)
		if err != nil {
			return nil, err
		}
		n.Body = body
		return n, nil

	case *Symbol, *QuotedSymbol, *Constant, *StringLiteral, *EmptyList,
		*ListNode, *Arg, *Builtin:
		return n, nil
	}
	return nil, newError(InternalError, 0, "cannot rewrite %T", n)
}

// rewriteAll rewrites every node of a sequence into a fresh slice.
func rewriteAll(nodes []Node, fn rewriteFunc) ([]Node, error) {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		r, err := rewrite(n, fn)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// walk visits every node reachable through Sexp elements, Cond options and
// Lambda bodies. pre runs before a node's children, post after; either may
// be nil.
func walk(n Node, pre, post func(Node) error) error {
	if pre != nil {
		if err := pre(n); err != nil {
			return err
		}
	}

	switch n := n.(type) {
	case *Sexp:
		for _, e := range n.Elements {
			if err := walk(e, pre, post); err != nil {
				return err
			}
		}
	case *Cond:
		for _, opt := range n.Options {
			if err := walk(opt.Cond, pre, post); err != nil {
				return err
			}
			if err := walk(opt.Value, pre, post); err != nil {
				return err
			}
		}
	case *Lambda:
		if err := walk(n.Body, pre, post); err != nil {
			return err
		}
	}

	if post != nil {
		return post(n)
	}
	return nil
}
