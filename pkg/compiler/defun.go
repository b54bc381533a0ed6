package compiler

// DefunHandler turns (defun name (args...) body) into named Lambdas and
// records them for the global symbol table.
type DefunHandler struct {
	functions map[string]*Lambda
	labels    map[string]string // emitted label -> source name
	reserved  map[string]bool
}

// NewDefunHandler returns a handler that rejects functions whose label
// would be one of reserved, such as the entry symbol.
func NewDefunHandler(reserved ...string) *DefunHandler {
	d := &DefunHandler{
		functions: make(map[string]*Lambda),
		labels:    make(map[string]string),
		reserved:  make(map[string]bool),
	}
	for _, r := range reserved {
		d.reserved[r] = true
	}
	return d
}

// Apply rewrites all top-level forms.
func (d *DefunHandler) Apply(forms []Node) ([]Node, error) {
	return rewriteAll(forms, d.handle)
}

// Functions returns the functions defined so far, keyed by source name.
func (d *DefunHandler) Functions() map[string]*Lambda {
	return d.functions
}

func (d *DefunHandler) handle(n Node) (Node, bool, error) {
	s, ok := n.(*Sexp)
	if !ok || !s.isCallTo("defun") {
		return nil, false, nil
	}

	args := s.Args()
	if len(args) != 3 {
		return nil, true, newError(SyntaxError, 0, "invalid defun syntax: %s", s)
	}
	name, ok := args[0].(*Symbol)
	if !ok {
		return nil, true, newError(SyntaxError, 0, "invalid defun syntax: %s", s)
	}
	params, ok := parseParams(args[1])
	if !ok {
		return nil, true, newError(SyntaxError, 0, "invalid defun syntax: %s", s)
	}
	label := sanitizeLabel(name.Name)
	if prev, dup := d.labels[label]; dup {
		if prev == name.Name {
			return nil, true, newError(SyntaxError, 0, "function %s defined twice", name.Name)
		}
		return nil, true, newError(SyntaxError, 0, "functions %s and %s share the label %s", prev, name.Name, label)
	}
	if d.reserved[label] {
		return nil, true, newError(SyntaxError, 0, "function name %s is reserved", name.Name)
	}

	fn := &Lambda{Args: params, Body: args[2], Label: label}
	d.functions[name.Name] = fn
	d.labels[label] = name.Name

	body, err := rewrite(fn.Body, d.handle)
	if err != nil {
		return nil, true, err
	}
	fn.Body = body
	return fn, true, nil
}

// parseParams reads a parameter list: () or a list of plain symbols.
func parseParams(n Node) ([]*Arg, bool) {
	switch n := n.(type) {
	case *EmptyList:
		return nil, true
	case *Sexp:
		params := make([]*Arg, len(n.Elements))
		for i, e := range n.Elements {
			sym, ok := e.(*Symbol)
			if !ok {
				return nil, false
			}
			params[i] = &Arg{Name: sym.Name}
		}
		return params, true
	}
	return nil, false
}
