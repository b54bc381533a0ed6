package compiler

import (
	"fmt"
	"strings"
	"testing"
)

// benchSource builds a program of n small functions and a call to each.
func benchSource(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "(defun f%d (a b) (cond ((> a b) (cons a '(x y %d))) (1 (list a b \"s%d\"))))\n", i, i, i)
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "(print (f%d %d %d))\n", i, i, i+1)
	}
	return sb.String()
}

func BenchmarkLex(b *testing.B) {
	src := benchSource(200)
	b.SetBytes(int64(len(src)))
	for i := 0; i < b.N; i++ {
		if _, err := Lex(src); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	src := benchSource(200)
	b.SetBytes(int64(len(src)))
	for i := 0; i < b.N; i++ {
		if _, err := ParseString(src); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompile(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		src := benchSource(n)
		b.Run(fmt.Sprintf("functions=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(src)))
			for i := 0; i < b.N; i++ {
				if _, err := CompileString(src, Options{}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCompileChecked(b *testing.B) {
	src := benchSource(100)
	for i := 0; i < b.N; i++ {
		if _, err := CompileString(src, Options{Check: true}); err != nil {
			b.Fatal(err)
		}
	}
}
