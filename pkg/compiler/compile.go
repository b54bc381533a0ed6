package compiler

import (
	"io"
	"log"
	"strings"

	"github.com/jstepien/mlisp/pkg/asm"
	"github.com/jstepien/mlisp/pkg/config"
)

// Options tunes a compilation. The zero value compiles against the default
// runtime without tracing.
type Options struct {
	// Runtime describes the library the output links against. Nil means
	// config.Default().
	Runtime *config.Runtime

	// Logger receives one line per pipeline stage. Nil discards them.
	Logger *log.Logger

	// Check runs the generated listing through asm.Check.
	Check bool

	// AfterPass, if set, is called with the forms after each stage.
	AfterPass func(stage string, forms []Node)
}

// Program is the result of a compilation.
type Program struct {
	Forms    []Node       // top-level forms as handed to the emitter
	Symbols  *SymbolTable // global symbol table
	Assembly string
}

// Compile runs the whole pipeline over the source read from r:
// parse, quote, defun, lambda, cond, arity check, emit.
func Compile(r io.Reader, opts Options) (*Program, error) {
	rt := opts.Runtime
	if rt == nil {
		rt = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	after := func(stage string, forms []Node) {
		if opts.AfterPass != nil {
			opts.AfterPass(stage, forms)
		}
	}

	forms, err := Parse(r)
	if err != nil {
		return nil, err
	}
	logger.Printf("parse: %d top-level forms", len(forms))
	after("parse", forms)

	if forms, err = NewQuoter().Apply(forms); err != nil {
		return nil, err
	}
	after("quote", forms)

	syms := NewSymbolTable().BindBuiltins(rt.Operators)
	defuns := NewDefunHandler(rt.Entry)
	if forms, err = defuns.Apply(forms); err != nil {
		return nil, err
	}
	syms = syms.BindFunctions(defuns.Functions())
	logger.Printf("defun: %d functions, %d symbols", len(defuns.Functions()), syms.Len())
	after("defun", forms)

	if forms, err = NewLambdaHandler().Apply(forms); err != nil {
		return nil, err
	}
	after("lambda", forms)

	if forms, err = NewCondHandler().Apply(forms); err != nil {
		return nil, err
	}
	after("cond", forms)

	if err := NewArityCheck(rt, syms).Apply(forms); err != nil {
		return nil, err
	}

	assembly, err := NewEmitter(syms, rt).Emit(forms)
	if err != nil {
		return nil, err
	}
	logger.Printf("emit: %d lines", strings.Count(assembly, "\n"))
	after("emit", forms)

	if opts.Check {
		listing, err := asm.Check(assembly)
		if err != nil {
			return nil, newError(InternalError, 0, "generated listing does not check: %v", err)
		}
		logger.Printf("check: %d labels, %d externs", len(listing.Labels), len(listing.Externs))
	}

	return &Program{Forms: forms, Symbols: syms, Assembly: assembly}, nil
}

// CompileString compiles src and returns the assembly. Errors carry the
// offending source line when known.
func CompileString(src string, opts Options) (string, error) {
	prog, err := Compile(strings.NewReader(src), opts)
	if err != nil {
		return "", WithSource(err, src)
	}
	return prog.Assembly, nil
}

// CompileTo compiles the source read from r and writes the assembly to w.
// Nothing is written when compilation fails.
func CompileTo(w io.Writer, r io.Reader, opts Options) error {
	prog, err := Compile(r, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, prog.Assembly)
	return err
}
