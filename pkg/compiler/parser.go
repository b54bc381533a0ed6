package compiler

import (
	"io"
	"strconv"
	"strings"
)

// Parser pulls tokens from a Lexer one at a time and builds the AST.
//
// Grammar:
//
//	program = sexp* EOF
//	sexp    = "(" ")" | "(" element+ ")"
//	element = sexp | SYMBOL | CONSTANT | STRING | "'" element
//
// Symbols, constants and strings are interned: every occurrence of the same
// literal within one parse yields the same node.
type Parser struct {
	lex *Lexer
	tok Token // one token of lookahead

	symbols   map[string]*Symbol
	constants map[int32]*Constant
	strings   map[string]*StringLiteral
}

func NewParser(lex *Lexer) *Parser {
	return &Parser{
		lex:       lex,
		symbols:   make(map[string]*Symbol),
		constants: make(map[int32]*Constant),
		strings:   make(map[string]*StringLiteral),
	}
}

// advance moves the lookahead to the next token.
func (p *Parser) advance() error {
	tok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// expect consumes the current token if it matches tt.
func (p *Parser) expect(tt TokenType) error {
	if p.tok.Type != tt {
		return p.unexpected()
	}
	return p.advance()
}

func (p *Parser) unexpected() error {
	return newError(SyntaxError, p.lex.Line(), "unexpected '%s'", p.tok.describe())
}

// parseProgram parses top-level sexps until end of input.
func (p *Parser) parseProgram() ([]Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var forms []Node
	for p.tok.Type == LPAREN {
		form, err := p.parseSexp()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	if p.tok.Type != EOF {
		return nil, p.unexpected()
	}
	return forms, nil
}

// parseSexp parses a parenthesized form. () is the empty list.
func (p *Parser) parseSexp() (Node, error) {
	if err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	if p.tok.Type == RPAREN {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &EmptyList{}, nil
	}
	var elems []Node
	for p.tok.Type != RPAREN {
		elem, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
	if err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &Sexp{Elements: elems}, nil
}

func (p *Parser) parseElement() (Node, error) {
	tok := p.tok
	switch tok.Type {
	case LPAREN:
		return p.parseSexp()

	case SYMBOL:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.symbol(tok.Lexeme), nil

	case CONSTANT:
		v, err := strconv.ParseInt(tok.Lexeme, 10, 32)
		if err != nil {
			return nil, newError(SyntaxError, tok.Line, "integer constant %s out of range", tok.Lexeme)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		c, ok := p.constants[int32(v)]
		if !ok {
			c = &Constant{Value: int32(v)}
			p.constants[c.Value] = c
		}
		return c, nil

	case STRING:
		if err := p.advance(); err != nil {
			return nil, err
		}
		s, ok := p.strings[tok.Lexeme]
		if !ok {
			s = &StringLiteral{Value: tok.Lexeme}
			p.strings[tok.Lexeme] = s
		}
		return s, nil

	case QUOTE:
		// 'x is (quote x)
		if err := p.advance(); err != nil {
			return nil, err
		}
		elem, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		return &Sexp{Elements: []Node{p.symbol("quote"), elem}}, nil

	default:
		return nil, p.unexpected()
	}
}

func (p *Parser) symbol(name string) *Symbol {
	s, ok := p.symbols[name]
	if !ok {
		s = &Symbol{Name: name}
		p.symbols[name] = s
	}
	return s
}

// Parse reads a whole program from r.
func Parse(r io.Reader) ([]Node, error) {
	return NewParser(NewLexer(r)).parseProgram()
}

// ParseString is Parse over an in-memory source.
func ParseString(src string) ([]Node, error) {
	return Parse(strings.NewReader(src))
}
