package utils

import (
	"path/filepath"
	"testing"
)

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		in   string
		ext  string
		want string
	}{
		{"ReplacesExtension", filepath.Join(dir, "prog.lisp"), ".asm", filepath.Join(dir, "prog.asm")},
		{"AddsExtension", filepath.Join(dir, "prog"), ".asm", filepath.Join(dir, "prog.asm")},
		{"KeepsInnerDots", filepath.Join(dir, "a.b.lisp"), ".asm", filepath.Join(dir, "a.b.asm")},
		{"Stdin", "-", ".asm", "-"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := OutputPath(tc.in, tc.ext)
			if err != nil {
				t.Fatalf("OutputPath(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("OutputPath(%q, %q) = %q; want %q", tc.in, tc.ext, got, tc.want)
			}
		})
	}
}

func TestGetPathInfo(t *testing.T) {
	full, parent, err := GetPathInfo("a/../b/c.lisp")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(full) {
		t.Errorf("expected absolute path, got %q", full)
	}
	if filepath.Base(full) != "c.lisp" || filepath.Base(parent) != "b" {
		t.Errorf("unexpected split: %q, %q", full, parent)
	}
}
