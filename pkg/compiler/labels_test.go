package compiler

import (
	"reflect"
	"testing"
)

func TestLabelGen(t *testing.T) {
	g := NewLabelGen()
	var got []string
	for _, cat := range []string{LabelLambda, LabelLambda, LabelConstant, LabelLambda, LabelConstant, LabelEndCond} {
		got = append(got, g.Add(cat))
	}
	want := []string{"lambda_0", "lambda_1", "constant_0", "lambda_2", "constant_1", "end_cond_0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
}

func TestLabelGensAreIndependent(t *testing.T) {
	a, b := NewLabelGen(), NewLabelGen()
	a.Add(LabelString)
	if got := b.Add(LabelString); got != "string_0" {
		t.Errorf("fresh generator returned %s", got)
	}
}

func TestLabelGenSkipsReserved(t *testing.T) {
	g := NewLabelGen()
	g.Reserve("lambda_0")
	g.Reserve("lambda_2")
	var got []string
	for i := 0; i < 3; i++ {
		got = append(got, g.Add(LabelLambda))
	}
	want := []string{"lambda_1", "lambda_3", "lambda_4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
}
