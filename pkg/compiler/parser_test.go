package compiler

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) []Node {
	t.Helper()
	forms, err := ParseString(src)
	if err != nil {
		t.Fatalf("ParseString(%q) error: %v", src, err)
	}
	return forms
}

func TestParseForms(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{`(a 1 "s")`, []string{`(a 1 "s")`}},
		{"()", []string{"()"}},
		{"(print 'x)", []string{"(print (quote x))"}},
		{"(f '(a b) '())", []string{"(f (quote (a b)) (quote ()))"}},
		{"(a (b (c)))\n(d)", []string{"(a (b (c)))", "(d)"}},
		{"(f ''x)", []string{"(f (quote (quote x)))"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			forms := mustParse(t, tt.src)
			if len(forms) != len(tt.want) {
				t.Fatalf("got %d forms, want %d", len(forms), len(tt.want))
			}
			for i, f := range forms {
				if got := f.String(); got != tt.want[i] {
					t.Errorf("form %d = %s, want %s", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestParseNodeTypes(t *testing.T) {
	forms := mustParse(t, `(f x 7 "s" ())`)
	s, ok := forms[0].(*Sexp)
	if !ok {
		t.Fatalf("form is %T, want *Sexp", forms[0])
	}
	if _, ok := s.Elements[1].(*Symbol); !ok {
		t.Errorf("element 1 is %T, want *Symbol", s.Elements[1])
	}
	if c, ok := s.Elements[2].(*Constant); !ok || c.Value != 7 {
		t.Errorf("element 2 = %v, want constant 7", s.Elements[2])
	}
	if str, ok := s.Elements[3].(*StringLiteral); !ok || str.Value != "s" {
		t.Errorf("element 3 = %v, want string s", s.Elements[3])
	}
	if _, ok := s.Elements[4].(*EmptyList); !ok {
		t.Errorf("element 4 is %T, want *EmptyList", s.Elements[4])
	}
	if name, ok := s.Function(); !ok || name != "f" {
		t.Errorf("Function() = %q, %v", name, ok)
	}
	if len(s.Args()) != 4 {
		t.Errorf("Args() has %d elements, want 4", len(s.Args()))
	}
}

func TestParseInternsLiterals(t *testing.T) {
	forms := mustParse(t, `(f x 1 "s") (g x 1 "s")`)
	a := forms[0].(*Sexp).Elements
	b := forms[1].(*Sexp).Elements
	for i := 1; i < 4; i++ {
		if a[i] != b[i] {
			t.Errorf("element %d: %s parsed twice into distinct nodes", i, a[i])
		}
	}
	if a[0] == b[0] {
		t.Errorf("distinct symbols share a node")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		kind       ErrorKind
		line       int
		msg        string
		incomplete bool
	}{
		{"unclosed list", "(a (b)", SyntaxError, 1, "unexpected 'end of input'", true},
		{"stray close", ")", SyntaxError, 1, "unexpected ')'", false},
		{"trailing close", "(a))", SyntaxError, 1, "unexpected ')'", false},
		{"atom at top level", "(a)\nx", SyntaxError, 2, "unexpected 'x'", false},
		{"quote at top level", "'x", SyntaxError, 1, "unexpected '''", false},
		{"constant out of range", "(f 99999999999)", SyntaxError, 1, "out of range", false},
		{"close on later line", "(a\n)\n)", SyntaxError, 3, "unexpected ')'", false},
		{"lexical error surfaces", "(a #)", LexicalError, 1, "illegal character", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.src)
			if err == nil {
				t.Fatalf("ParseString(%q) succeeded, want error", tt.src)
			}
			ce, ok := err.(*Error)
			if !ok {
				t.Fatalf("error is %T, want *Error", err)
			}
			if ce.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", ce.Kind, tt.kind)
			}
			if ce.Line != tt.line {
				t.Errorf("line = %d, want %d", ce.Line, tt.line)
			}
			if !strings.Contains(ce.Msg, tt.msg) {
				t.Errorf("message %q does not contain %q", ce.Msg, tt.msg)
			}
			if IsIncomplete(err) != tt.incomplete {
				t.Errorf("IsIncomplete = %v, want %v", !tt.incomplete, tt.incomplete)
			}
		})
	}
}
