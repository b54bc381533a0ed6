package compiler

import (
	"fmt"
	"strings"

	"github.com/jstepien/mlisp/pkg/config"
)

// Emitter lowers the rewritten AST into NASM x86 assembly text. Emission
// runs in two passes over the same forms: the data pass declares every
// literal, the code pass emits one function per lambda plus an entry
// function for the remaining top-level forms.
type Emitter struct {
	rt      *config.Runtime
	syms    *SymbolTable
	labels  *LabelGen
	lexemes map[string]string // raw text -> lexeme label
	emitted map[*Lambda]bool
	out     strings.Builder
}

// NewEmitter returns an emitter resolving names against syms. Labels of
// named functions in syms are never generated for anything else.
func NewEmitter(syms *SymbolTable, rt *config.Runtime) *Emitter {
	e := &Emitter{
		rt:      rt,
		syms:    syms,
		labels:  NewLabelGen(),
		lexemes: make(map[string]string),
		emitted: make(map[*Lambda]bool),
	}
	for _, name := range syms.Names() {
		n, _ := syms.Lookup(name)
		if l, ok := n.(*Lambda); ok && l.Label != "" {
			e.labels.Reserve(l.Label)
		}
	}
	return e
}

func (e *Emitter) line(format string, args ...any) {
	fmt.Fprintf(&e.out, format+"\n", args...)
}

// String returns everything emitted so far.
func (e *Emitter) String() string { return e.out.String() }

// Emit runs both passes and returns the assembly.
func (e *Emitter) Emit(forms []Node) (string, error) {
	if err := e.EmitData(forms); err != nil {
		return "", err
	}
	if err := e.EmitCode(forms); err != nil {
		return "", err
	}
	return e.out.String(), nil
}

//  Data pass

// EmitData opens the data section and declares every literal reachable from
// forms that has no label yet.
func (e *Emitter) EmitData(forms []Node) error {
	e.line("section .data")
	for _, f := range forms {
		if err := e.emitConstants(f); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitConstants(n Node) error {
	switch n := n.(type) {
	case *ListNode:
		if n.Label != "" {
			return nil
		}
		if n.Next != nil {
			if err := e.emitConstants(n.Next); err != nil {
				return err
			}
		}
		if err := e.emitConstants(n.Data); err != nil {
			return err
		}
		return e.emitListNode(n)

	case *Constant:
		if n.Label != "" {
			return nil
		}
		n.Label = e.labels.Add(LabelConstant)
		e.line("%s dd %d, %d", n.Label, e.rt.Types.Int, n.Value)

	case *StringLiteral:
		if n.Label != "" {
			return nil
		}
		lexeme := e.lexeme(n.Value)
		n.Label = e.labels.Add(LabelString)
		e.line("%s dd %d, %s", n.Label, e.rt.Types.String, lexeme)

	case *QuotedSymbol:
		if n.Label != "" {
			return nil
		}
		lexeme := e.lexeme(n.Name)
		n.Label = e.labels.Add(LabelQuotedSymbol)
		e.line("%s dd %d, %s", n.Label, e.rt.Types.Symbol, lexeme)

	case *Sexp:
		for _, el := range n.Elements {
			if err := e.emitConstants(el); err != nil {
				return err
			}
		}

	case *Cond:
		for _, opt := range n.Options {
			if err := e.emitConstants(opt.Cond); err != nil {
				return err
			}
			if err := e.emitConstants(opt.Value); err != nil {
				return err
			}
		}

	case *Lambda:
		return e.emitConstants(n.Body)
	}
	return nil
}

func (e *Emitter) emitListNode(n *ListNode) error {
	data, ok := LabelOf(n.Data)
	if !ok {
		return newError(InternalError, 0, "no data label for list cell %s", n)
	}
	next := "0"
	if n.Next != nil {
		if n.Next.Label == "" {
			return newError(InternalError, 0, "no label for successor of list cell %s", n)
		}
		next = n.Next.Label
	}
	n.Label = e.labels.Add(LabelListNode)
	e.line("%s dd %d, %s, %s", n.Label, e.rt.Types.Node, data, next)
	return nil
}

// lexeme declares text as a zero-terminated byte array once per emitter
// and returns its label.
func (e *Emitter) lexeme(text string) string {
	if label, ok := e.lexemes[text]; ok {
		return label
	}
	label := e.labels.Add(LabelLexeme)
	e.line("%s db %s", label, nasmBytes(text))
	e.lexemes[text] = label
	return label
}

// nasmBytes renders text as db operands followed by a zero terminator.
// Printable ASCII runs are quoted; every other byte, and the quote itself,
// is written as a byte value.
func nasmBytes(text string) string {
	var parts []string
	start := 0
	flush := func(end int) {
		if end > start {
			parts = append(parts, `"`+text[start:end]+`"`)
		}
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < 0x20 || c >= 0x7f || c == '"' {
			flush(i)
			parts = append(parts, fmt.Sprintf("%d", c))
			start = i + 1
		}
	}
	flush(len(text))
	if len(parts) == 0 {
		parts = append(parts, `""`)
	}
	return strings.Join(append(parts, "0"), ", ")
}

//  Code pass

// EmitCode declares the externs, emits every lambda once and, if any
// top-level form is not a lambda, the entry function. The entry symbol is
// only declared global when the entry function exists.
func (e *Emitter) EmitCode(forms []Node) error {
	var body []Node
	for _, f := range forms {
		if _, ok := f.(*Lambda); !ok {
			body = append(body, f)
		}
	}

	if len(body) > 0 {
		e.line("global %s", e.rt.Entry)
	}
	for _, ext := range e.rt.Externs {
		e.line("extern %s", strings.Join(ext, ", "))
	}
	e.line("section .text")

	for _, f := range forms {
		if err := walk(f, nil, e.emitLambdas); err != nil {
			return err
		}
	}
	if len(body) == 0 {
		return nil
	}

	e.startFunction(e.rt.Entry)
	for _, f := range body {
		if err := e.lower(f, e.syms); err != nil {
			return err
		}
	}
	e.endFunction()
	return nil
}

// emitLambdas runs after a node's children have been visited, so a nested
// lambda is emitted (and labeled) before the one containing it.
func (e *Emitter) emitLambdas(n Node) error {
	l, ok := n.(*Lambda)
	if !ok || e.emitted[l] {
		return nil
	}
	e.emitted[l] = true

	e.startFunction(e.lambdaLabel(l))
	if err := e.lowerBody(l, e.syms); err != nil {
		return err
	}
	e.endFunction()
	return nil
}

func (e *Emitter) lambdaLabel(l *Lambda) string {
	if l.Label == "" {
		l.Label = e.labels.Add(LabelLambda)
	}
	return l.Label
}

func (e *Emitter) startFunction(name string) {
	e.line("%s:", name)
	e.line("push ebp")
	e.line("mov ebp, esp")
}

func (e *Emitter) endFunction() {
	e.line("pop ebp")
	e.line("ret")
}

// assignOffsets lays out a lambda's arguments above the saved frame pointer
// and return address: the first at two double words, each next one double
// word further.
func (e *Emitter) assignOffsets(l *Lambda) {
	for i, a := range l.Args {
		a.Offset = (2 + i) * e.rt.DwordSize
	}
}

// lowerBody lowers a lambda's body with its arguments bound over syms.
func (e *Emitter) lowerBody(l *Lambda, syms *SymbolTable) error {
	e.assignOffsets(l)
	return e.lower(l.Body, syms.BindArgs(l.Args))
}

//  Lowering

// lower emits code leaving the value of n in eax.
func (e *Emitter) lower(n Node, syms *SymbolTable) error {
	switch n := n.(type) {
	case *Constant, *QuotedSymbol, *StringLiteral, *ListNode:
		label, ok := LabelOf(n)
		if !ok {
			return newError(InternalError, 0, "literal %s has no data label", n)
		}
		e.line("mov eax, %s", label)

	case *EmptyList:
		e.line("xor eax, eax")

	case *Lambda:
		e.line("mov eax, %s", e.lambdaLabel(n))

	case *Builtin:
		e.line("mov eax, %s", n.Label)

	case *Arg:
		e.line("mov eax, [ebp+%d]", n.Offset)

	case *Symbol:
		bound, ok := syms.Lookup(n.Name)
		if !ok {
			return newError(UnboundNameError, 0, "'%s' has no value", n.Name)
		}
		return e.lower(bound, syms)

	case *Sexp:
		return e.lowerCall(n, syms)

	case *Cond:
		return e.lowerCond(n, syms)

	default:
		return newError(InternalError, 0, "cannot lower %T", n)
	}
	return nil
}

// callTarget resolves a call's function position. It returns the label to
// call, or, when the callee has no static label, the node to evaluate into
// eax for an indirect call.
func (e *Emitter) callTarget(s *Sexp, syms *SymbolTable) (string, Node) {
	callee := s.Elements[0]
	if name, ok := s.Function(); ok {
		bound, ok := syms.Lookup(name)
		if !ok {
			// Not in the table: a runtime routine called by name.
			return sanitizeLabel(name), nil
		}
		callee = bound
	}
	switch c := callee.(type) {
	case *Lambda:
		return e.lambdaLabel(c), nil
	case *Builtin:
		return c.Label, nil
	}
	return "", callee
}

// lowerCall pushes the arguments right to left, calls the callee and pops
// the arguments. Variadic callees get the delimiter pushed first.
func (e *Emitter) lowerCall(s *Sexp, syms *SymbolTable) error {
	if len(s.Elements) == 0 {
		return newError(InternalError, 0, "empty application")
	}

	pushed := 0
	if name, ok := s.Function(); ok && e.rt.IsVariadic(name) {
		e.line("push 0x%x", e.rt.VarargDelimiter)
		pushed++
	}

	args := s.Args()
	for i := len(args) - 1; i >= 0; i-- {
		if err := e.lower(args[i], syms); err != nil {
			return err
		}
		e.line("push eax")
		pushed++
	}

	label, indirect := e.callTarget(s, syms)
	if indirect != nil {
		if err := e.lower(indirect, syms); err != nil {
			return err
		}
		e.line("call eax")
	} else {
		e.line("call %s", label)
	}
	e.line("add esp, %d", pushed*e.rt.DwordSize)
	return nil
}

// lowerCond tests each option in order; the first non-zero test selects its
// value. With no match the result is zero.
func (e *Emitter) lowerCond(c *Cond, syms *SymbolTable) error {
	end := e.labels.Add(LabelEndCond)
	for _, opt := range c.Options {
		next := e.labels.Add(LabelCondOption)
		if err := e.lower(opt.Cond, syms); err != nil {
			return err
		}
		e.line("cmp eax, 0")
		e.line("jz %s", next)
		if err := e.lower(opt.Value, syms); err != nil {
			return err
		}
		e.line("jmp %s", end)
		e.line("%s:", next)
	}
	e.line("mov eax, 0")
	e.line("%s:", end)
	return nil
}
