package compiler

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// bufferSize is the chunk size the lexer refills its input buffer with.
const bufferSize = 1024

// Lexer streams tokens out of a reader one rune at a time.
type Lexer struct {
	in   *bufio.Reader
	line int // current 1-based source line
	err  error
}

// NewLexer returns a lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{in: bufio.NewReaderSize(r, bufferSize), line: 1}
}

// Line returns the line the lexer is currently on.
func (l *Lexer) Line() int { return l.line }

// next consumes one rune. ok is false at end of input or on a read error.
func (l *Lexer) next() (rune, bool) {
	r, _, err := l.in.ReadRune()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			l.err = err
		}
		return 0, false
	}
	return r, true
}

// unread pushes back the rune returned by the last successful next, which
// UnreadRune cannot refuse.
func (l *Lexer) unread() {
	_ = l.in.UnreadRune()
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isSymbolStart and isSymbolPart define the identifier grammar
// [a-zA-Z<=>\-*/+][a-zA-Z0-9_\-?=]*.
func isSymbolStart(r rune) bool {
	return isLetter(r) || strings.ContainsRune("<=>-*/+", r)
}

func isSymbolPart(r rune) bool {
	return isLetter(r) || isDigit(r) || strings.ContainsRune("_-?=", r)
}

// skipWhitespace returns the first non-whitespace rune.
func (l *Lexer) skipWhitespace() (rune, bool) {
	for {
		r, ok := l.next()
		if !ok {
			return 0, false
		}
		if r == '\n' {
			l.line++
		}
		if !isWhitespace(r) {
			return r, true
		}
	}
}

// scanSymbol collects a maximal identifier starting with first.
func (l *Lexer) scanSymbol(first rune) Token {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		r, ok := l.next()
		if !ok {
			break
		}
		if !isSymbolPart(r) {
			l.unread()
			break
		}
		sb.WriteRune(r)
	}
	return Token{Type: SYMBOL, Lexeme: sb.String(), Line: l.line}
}

// scanConstant collects a maximal numeral that reads back as the same
// integer text: a lone 0 never absorbs following digits.
func (l *Lexer) scanConstant(first rune) Token {
	var sb strings.Builder
	sb.WriteRune(first)
	for first != '0' {
		r, ok := l.next()
		if !ok {
			break
		}
		if !isDigit(r) {
			l.unread()
			break
		}
		sb.WriteRune(r)
	}
	return Token{Type: CONSTANT, Lexeme: sb.String(), Line: l.line}
}

// scanString collects the raw bytes up to the closing quote. The opening
// quote must already have been consumed.
func (l *Lexer) scanString() (Token, error) {
	line := l.line
	var sb strings.Builder
	for {
		c, err := l.in.ReadByte()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return Token{}, err
			}
			return Token{}, newError(LexicalError, line, msgUnterminatedString)
		}
		if c == '"' {
			return Token{Type: STRING, Lexeme: sb.String(), Line: line}, nil
		}
		if c == '\n' {
			l.line++
		}
		sb.WriteByte(c)
	}
}

// NextToken returns the next token, or an EOF token once the input is
// exhausted.
func (l *Lexer) NextToken() (Token, error) {
	ch, ok := l.skipWhitespace()
	if !ok {
		if l.err != nil {
			return Token{}, l.err
		}
		return Token{Type: EOF, Line: l.line}, nil
	}

	if isSymbolStart(ch) {
		return l.scanSymbol(ch), nil
	}
	if isDigit(ch) {
		return l.scanConstant(ch), nil
	}

	switch ch {
	case '(':
		return Token{LPAREN, "(", l.line}, nil
	case ')':
		return Token{RPAREN, ")", l.line}, nil
	case '\'':
		return Token{QUOTE, "'", l.line}, nil
	case '"':
		return l.scanString()
	default:
		return Token{}, newError(LexicalError, l.line, "illegal character %q", ch)
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
func Lex(src string) ([]Token, error) {
	l := NewLexer(strings.NewReader(src))
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
