package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jstepien/mlisp/pkg/compiler"
)

const testSource = `(defun square (x) (* x x))
(print (square 7))
(print '(a b c))
`

func main() {
	src := testSource
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	fmt.Printf("Source:\n%s\n", src)

	// Lex
	tokens, err := compiler.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:", compiler.WithSource(err, src))
		os.Exit(1)
	}

	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Every pass after the parser
	opts := compiler.Options{
		Check: true,
		AfterPass: func(stage string, forms []compiler.Node) {
			if stage == "emit" {
				return
			}
			fmt.Printf("AST after %s\n", stage)
			for _, f := range forms {
				fmt.Println(" ", f)
			}
			fmt.Println()
		},
	}
	prog, err := compiler.Compile(strings.NewReader(src), opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", compiler.WithSource(err, src))
		os.Exit(1)
	}

	fmt.Println("Generated Assembly")
	fmt.Print(prog.Assembly)
	fmt.Println()
	fmt.Print(prog.Symbols)
}
