package compiler

import "fmt"

// Label categories.
const (
	LabelLambda       = "lambda"
	LabelConstant     = "constant"
	LabelString       = "string"
	LabelQuotedSymbol = "quoted_symbol"
	LabelListNode     = "list_node"
	LabelLexeme       = "lexeme"
	LabelEndCond      = "end_cond"
	LabelCondOption   = "cond_option"
)

// LabelGen issues labels unique within a category: category_0,
// category_1, ... Reserved labels are skipped.
type LabelGen struct {
	counts map[string]int
	taken  map[string]bool
}

func NewLabelGen() *LabelGen {
	return &LabelGen{counts: make(map[string]int), taken: make(map[string]bool)}
}

// Reserve keeps label from ever being issued.
func (g *LabelGen) Reserve(label string) {
	g.taken[label] = true
}

// Add returns the next free label of category.
func (g *LabelGen) Add(category string) string {
	for {
		n := g.counts[category]
		g.counts[category] = n + 1
		label := fmt.Sprintf("%s_%d", category, n)
		if !g.taken[label] {
			return label
		}
	}
}
