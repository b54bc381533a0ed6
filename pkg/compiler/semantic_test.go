package compiler

import (
	"strings"
	"testing"

	"github.com/jstepien/mlisp/pkg/config"
)

func TestArityCheck(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  string // empty when the program is accepted
	}{
		{"cons with two", "(cons 1 2)", ""},
		{"cons with one", "(cons 1)", "1 argument(s) for cons given, 2 expected"},
		{"car with two", "(print (car '(1) '(2)))", "2 argument(s) for car given, 1 expected"},
		{"unchecked routine", "(list 1 2 3 4)", ""},
		{"unknown function", "(frobnicate 1 2 3)", ""},
		{"user function", "(defun f (a) a) (f 1 2)", ""},
		{"inside defun body", "(defun f (x) (print x x))", "2 argument(s) for print given, 1 expected"},
		{"inside lambda", "((lambda () (eq 1)))", "1 argument(s) for eq given, 2 expected"},
		{"inside cond test", "(cond ((atom) 1))", "0 argument(s) for atom given, 1 expected"},
		{"inside cond value", "(cond (1 (cdr)))", "0 argument(s) for cdr given, 1 expected"},
		{"rebound by defun", "(defun car (a b) a) (car 1 2)", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forms, syms := frontEnd(t, tt.src)
			err := NewArityCheck(config.Default(), syms).Apply(forms)
			if tt.err == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if kind, ok := KindOf(err); !ok || kind != ArityError {
				t.Fatalf("err = %v, want arity error", err)
			}
			if !strings.Contains(err.Error(), tt.err) {
				t.Errorf("error %q does not contain %q", err, tt.err)
			}
		})
	}
}

func TestArityCheckWithoutSymbols(t *testing.T) {
	forms, _ := frontEnd(t, "(defun car (a b) a) (car 1 2)")
	err := NewArityCheck(&config.Runtime{Arity: map[string]int{"car": 1}}, nil).Apply(forms)
	if kind, ok := KindOf(err); !ok || kind != ArityError {
		t.Errorf("err = %v, want arity error without a symbol table", err)
	}
}
