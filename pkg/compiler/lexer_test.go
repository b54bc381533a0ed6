package compiler

import (
	"reflect"
	"testing"
)

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestLexTokens(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		types   []TokenType
		lexemes []string
	}{
		{
			name:    "defun form",
			src:     `(defun f (x) 'x "s" 42)`,
			types:   []TokenType{LPAREN, SYMBOL, SYMBOL, LPAREN, SYMBOL, RPAREN, QUOTE, SYMBOL, STRING, CONSTANT, RPAREN, EOF},
			lexemes: []string{"(", "defun", "f", "(", "x", ")", "'", "x", "s", "42", ")", ""},
		},
		{
			name:    "operators are symbols",
			src:     "(<= + - * / > >= <)",
			types:   []TokenType{LPAREN, SYMBOL, SYMBOL, SYMBOL, SYMBOL, SYMBOL, SYMBOL, SYMBOL, SYMBOL, RPAREN, EOF},
			lexemes: []string{"(", "<=", "+", "-", "*", "/", ">", ">=", "<", ")", ""},
		},
		{
			name:    "symbol characters",
			src:     "is-zero? a_b c2",
			types:   []TokenType{SYMBOL, SYMBOL, SYMBOL, EOF},
			lexemes: []string{"is-zero?", "a_b", "c2", ""},
		},
		{
			name:    "symbol stops at paren",
			src:     "foo)",
			types:   []TokenType{SYMBOL, RPAREN, EOF},
			lexemes: []string{"foo", ")", ""},
		},
		{
			name:    "leading zero does not absorb digits",
			src:     "007",
			types:   []TokenType{CONSTANT, CONSTANT, CONSTANT, EOF},
			lexemes: []string{"0", "0", "7", ""},
		},
		{
			name:    "numeral followed by symbol",
			src:     "12abc",
			types:   []TokenType{CONSTANT, SYMBOL, EOF},
			lexemes: []string{"12", "abc", ""},
		},
		{
			name:    "string keeps whitespace and parens",
			src:     "\"a (b)\tc\"",
			types:   []TokenType{STRING, EOF},
			lexemes: []string{"a (b)\tc", ""},
		},
		{
			name:    "empty input",
			src:     " \r\n\t",
			types:   []TokenType{EOF},
			lexemes: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.src)
			if err != nil {
				t.Fatalf("Lex(%q) error: %v", tt.src, err)
			}
			if got := tokenTypes(tokens); !reflect.DeepEqual(got, tt.types) {
				t.Errorf("types = %v, want %v", got, tt.types)
			}
			var lexemes []string
			for _, tok := range tokens {
				lexemes = append(lexemes, tok.Lexeme)
			}
			if !reflect.DeepEqual(lexemes, tt.lexemes) {
				t.Errorf("lexemes = %q, want %q", lexemes, tt.lexemes)
			}
		})
	}
}

func TestLexStringKeepsRawBytes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"invalid utf-8", "(f \"a\xffb\")", "a\xffb"},
		{"truncated sequence", "(f \"\xc3\")", "\xc3"},
		{"multi-byte rune", "(f \"\u00e9\")", "\xc3\xa9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if tokens[2].Type != STRING {
				t.Fatalf("token 2 = %v, want STRING", tokens[2])
			}
			if got := tokens[2].Lexeme; got != tt.want {
				t.Errorf("lexeme = % x, want % x", got, tt.want)
			}
			if tokens[3].Type != RPAREN {
				t.Errorf("token after string = %v, want RPAREN", tokens[3])
			}
		})
	}
}

func TestLexLineNumbers(t *testing.T) {
	tokens, err := Lex("(a\n  b\n\"x\ny\" c)")
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 1, 2, 3, 4, 4, 4}
	var got []int
	for _, tok := range tokens {
		got = append(got, tok.Line)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %v, want %v", got, want)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		line       int
		incomplete bool
	}{
		{"illegal character", "(a #)", 1, false},
		{"illegal character later", "(a\n b [)", 2, false},
		{"unterminated string", "(print \"abc", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.src)
			if err == nil {
				t.Fatalf("Lex(%q) succeeded, want error", tt.src)
			}
			kind, ok := KindOf(err)
			if !ok || kind != LexicalError {
				t.Fatalf("error kind = %v, want %v (%v)", kind, LexicalError, err)
			}
			ce := err.(*Error)
			if ce.Line != tt.line {
				t.Errorf("line = %d, want %d", ce.Line, tt.line)
			}
			if got := IsIncomplete(err); got != tt.incomplete {
				t.Errorf("IsIncomplete = %v, want %v", got, tt.incomplete)
			}
		})
	}
}
