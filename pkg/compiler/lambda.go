package compiler

// LambdaHandler turns (lambda (args...) body) into anonymous Lambdas.
type LambdaHandler struct{}

func NewLambdaHandler() *LambdaHandler {
	return &LambdaHandler{}
}

// Apply rewrites all top-level forms.
func (h *LambdaHandler) Apply(forms []Node) ([]Node, error) {
	return rewriteAll(forms, h.handle)
}

func (h *LambdaHandler) handle(n Node) (Node, bool, error) {
	s, ok := n.(*Sexp)
	if !ok || !s.isCallTo("lambda") {
		return nil, false, nil
	}

	args := s.Args()
	if len(args) != 2 {
		return nil, true, newError(SyntaxError, 0, "invalid lambda syntax: %s", s)
	}
	params, ok := parseParams(args[0])
	if !ok {
		return nil, true, newError(SyntaxError, 0, "invalid lambda syntax: %s", s)
	}

	body, err := rewrite(args[1], h.handle)
	if err != nil {
		return nil, true, err
	}
	return &Lambda{Args: params, Body: body}, true, nil
}
