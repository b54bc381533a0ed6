// Package asm checks NASM x86 listings produced by the compiler without
// assembling them: every label is defined once, every referenced symbol is
// defined or declared extern, and every line is a known directive or
// instruction in the right section.
package asm

import (
	"fmt"
	"strconv"
	"strings"
)

var zeroOperandOps = map[string]bool{
	"RET":   true,
	"NOP":   true,
	"LEAVE": true,
	"CDQ":   true,
}

var oneOperandOps = map[string]bool{
	"PUSH": true,
	"POP":  true,
	"CALL": true,
	"JMP":  true,
	"JZ":   true,
	"JNZ":  true,
	"JE":   true,
	"JNE":  true,
	"INC":  true,
	"DEC":  true,
	"NEG":  true,
	"NOT":  true,
	"IDIV": true,
}

var twoOperandOps = map[string]bool{
	"MOV":  true,
	"ADD":  true,
	"SUB":  true,
	"CMP":  true,
	"XOR":  true,
	"AND":  true,
	"OR":   true,
	"TEST": true,
	"LEA":  true,
	"IMUL": true,
}

var dataDirectives = map[string]bool{
	"DB": true,
	"DW": true,
	"DD": true,
}

var registers = map[string]bool{
	"EAX": true, "EBX": true, "ECX": true, "EDX": true,
	"ESI": true, "EDI": true, "EBP": true, "ESP": true,
	"AX": true, "BX": true, "CX": true, "DX": true,
	"AL": true, "BL": true, "CL": true, "DL": true,
	"AH": true, "BH": true, "CH": true, "DH": true,
}

var sizeKeywords = map[string]bool{
	"BYTE":  true,
	"WORD":  true,
	"DWORD": true,
}

type section int

const (
	noSection section = iota
	dataSection
	textSection
)

// Listing summarizes a checked listing.
type Listing struct {
	Labels       map[string]int // label -> defining line
	Externs      map[string]int // extern symbol -> declaring line
	Globals      []string
	Data         int // data declarations
	Instructions int
}

// Checker holds the symbols collected by the first pass.
type Checker struct {
	labels  map[string]int
	externs map[string]int
	globals []string
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewChecker() *Checker {
	return &Checker{
		labels:  make(map[string]int),
		externs: make(map[string]int),
	}
}

// Check verifies code with a fresh Checker.
func Check(code string) (*Listing, error) {
	return NewChecker().Check(code)
}

func (c *Checker) Check(code string) (*Listing, error) {
	lines := strings.Split(code, "\n")

	if err := c.pass1(lines); err != nil {
		return nil, err
	}
	return c.pass2(lines)
}

// pass1 records labels, externs and globals and validates line shapes.
func (c *Checker) pass1(lines []string) error {
	sec := noSection

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if prev, exists := c.labels[lbl]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d (first defined on line %d)", lbl, lineNo, prev)
			}
			if _, exists := c.externs[lbl]; exists {
				return fmt.Errorf("label '%s' on line %d is declared extern", lbl, lineNo)
			}
			c.labels[lbl] = lineNo
		}

		switch {
		case p.mnemonic == "":
		case p.mnemonic == "SECTION":
			if len(p.operands) != 1 {
				return fmt.Errorf("section expects exactly one operand on line %d", lineNo)
			}
			switch strings.ToLower(p.operands[0]) {
			case ".data":
				sec = dataSection
			case ".text":
				sec = textSection
			default:
				return fmt.Errorf("unknown section '%s' on line %d", p.operands[0], lineNo)
			}
		case p.mnemonic == "EXTERN":
			if len(p.operands) == 0 {
				return fmt.Errorf("extern expects at least one symbol on line %d", lineNo)
			}
			for _, sym := range p.operands {
				if !isIdentifier(sym) {
					return fmt.Errorf("invalid extern symbol '%s' on line %d", sym, lineNo)
				}
				if _, defined := c.labels[sym]; defined {
					return fmt.Errorf("extern '%s' on line %d is also defined", sym, lineNo)
				}
				c.externs[sym] = lineNo
			}
		case p.mnemonic == "GLOBAL":
			if len(p.operands) != 1 || !isIdentifier(p.operands[0]) {
				return fmt.Errorf("global expects exactly one symbol on line %d", lineNo)
			}
			c.globals = append(c.globals, p.operands[0])
		case dataDirectives[p.mnemonic]:
			if sec != dataSection {
				return fmt.Errorf("%s outside the data section on line %d", strings.ToLower(p.mnemonic), lineNo)
			}
			if len(p.operands) == 0 {
				return fmt.Errorf("%s expects at least one operand on line %d", strings.ToLower(p.mnemonic), lineNo)
			}
		default:
			want, ok := operandCount(p.mnemonic)
			if !ok {
				return fmt.Errorf("unknown instruction on line %d: %s", lineNo, strings.ToLower(p.mnemonic))
			}
			if sec != textSection {
				return fmt.Errorf("instruction outside the text section on line %d: %s", lineNo, strings.ToLower(p.mnemonic))
			}
			if len(p.operands) != want {
				return fmt.Errorf("%s expects %d operand(s) on line %d", strings.ToLower(p.mnemonic), want, lineNo)
			}
		}
	}
	return nil
}

// pass2 resolves every symbol referenced by an operand.
func (c *Checker) pass2(lines []string) (*Listing, error) {
	listing := &Listing{
		Labels:  c.labels,
		Externs: c.externs,
		Globals: c.globals,
	}

	for _, g := range c.globals {
		if _, ok := c.labels[g]; !ok {
			return nil, fmt.Errorf("global '%s' is never defined", g)
		}
	}

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, err
		}

		switch {
		case p.mnemonic == "", p.mnemonic == "SECTION", p.mnemonic == "EXTERN", p.mnemonic == "GLOBAL":
			continue
		case dataDirectives[p.mnemonic]:
			listing.Data++
		default:
			listing.Instructions++
		}

		for _, op := range p.operands {
			for _, ref := range references(op) {
				if err := c.resolve(ref, lineNo); err != nil {
					return nil, err
				}
			}
		}
	}
	return listing, nil
}

func (c *Checker) resolve(ref string, lineNo int) error {
	upper := strings.ToUpper(ref)
	if registers[upper] || sizeKeywords[upper] {
		return nil
	}
	if _, ok := c.labels[ref]; ok {
		return nil
	}
	if _, ok := c.externs[ref]; ok {
		return nil
	}
	return fmt.Errorf("undefined symbol '%s' on line %d", ref, lineNo)
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	// label: [instruction]
	if colon := strings.IndexByte(line, ':'); colon > 0 && !strings.ContainsAny(line[:colon], " \t\"[") {
		label := line[:colon]
		if !isIdentifier(label) {
			return p, fmt.Errorf("invalid label '%s' on line %d", label, lineNo)
		}
		p.labels = append(p.labels, label)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	head, rest := splitHead(line)
	upper := strings.ToUpper(head)

	// name dd ...: a labelled data declaration
	if next, tail := splitHead(rest); dataDirectives[strings.ToUpper(next)] && !dataDirectives[upper] {
		if !isIdentifier(head) {
			return p, fmt.Errorf("invalid label '%s' on line %d", head, lineNo)
		}
		p.labels = append(p.labels, head)
		upper, rest = strings.ToUpper(next), tail
	}

	p.mnemonic = upper
	if rest == "" {
		return p, nil
	}
	ops, err := splitOperands(rest)
	if err != nil {
		return p, fmt.Errorf("%v on line %d", err, lineNo)
	}
	p.operands = ops
	return p, nil
}

// splitHead splits off the first whitespace-separated field.
func splitHead(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

// splitOperands splits on commas outside quotes and brackets.
func splitOperands(s string) ([]string, error) {
	var ops []string
	var cur strings.Builder
	depth := 0
	inQuote := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			depth++
		case r == ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced ']'")
			}
		case r == ',' && depth == 0:
			ops = append(ops, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated string")
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced '['")
	}
	ops = append(ops, strings.TrimSpace(cur.String()))
	for _, op := range ops {
		if op == "" {
			return nil, fmt.Errorf("empty operand")
		}
	}
	return ops, nil
}

// stripComments cuts a trailing ; comment outside string literals.
func stripComments(line string) string {
	inQuote := false
	for i, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ';' && !inQuote:
			return line[:i]
		}
	}
	return line
}

// references returns the identifiers an operand mentions, ignoring string
// literals and numbers.
func references(op string) []string {
	if strings.HasPrefix(op, `"`) {
		return nil
	}
	var refs []string
	fields := strings.FieldsFunc(op, func(r rune) bool {
		return !isIdentPart(r)
	})
	for _, f := range fields {
		if isNumber(f) {
			continue
		}
		if isIdentifier(f) {
			refs = append(refs, f)
		}
	}
	return refs
}

func isNumber(s string) bool {
	_, err := strconv.ParseInt(s, 0, 64)
	return err == nil
}

// operandCount returns the operand count of an instruction mnemonic.
func operandCount(mnemonic string) (int, bool) {
	switch {
	case zeroOperandOps[mnemonic]:
		return 0, true
	case oneOperandOps[mnemonic]:
		return 1, true
	case twoOperandOps[mnemonic]:
		return 2, true
	}
	return 0, false
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '.' || r == '?'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9') || r == '$' || r == '@'
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !isIdentStart(r) {
				return false
			}
			continue
		}
		if !isIdentPart(r) {
			return false
		}
	}
	return true
}
