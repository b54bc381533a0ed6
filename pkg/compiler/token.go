package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	SYMBOL   // identifier or operator name
	CONSTANT // decimal integer literal
	STRING   // string literal "..."

	// Punctuation
	LPAREN // (
	RPAREN // )
	QUOTE  // '
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:      "EOF",
	SYMBOL:   "SYMBOL",
	CONSTANT: "CONSTANT",
	STRING:   "STRING",
	LPAREN:   "LPAREN",
	RPAREN:   "RPAREN",
	QUOTE:    "QUOTE",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // symbol name, integer text or string contents
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}

// describe renders the token the way it appeared in the source, for
// diagnostics.
func (t Token) describe() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case STRING:
		return fmt.Sprintf("%q", t.Lexeme)
	default:
		return t.Lexeme
	}
}
