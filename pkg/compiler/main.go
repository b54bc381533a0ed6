// Package compiler provides a lexer, parser, desugaring passes and an x86
// code emitter for a small Lisp.
//
// Pipeline: source → Lex → Parse → Quoter → DefunHandler → LambdaHandler →
// CondHandler → ArityCheck → Emitter → NASM assembly text
package compiler
