package statedef

import (
	"reflect"
	"testing"
)

func TestDescribeReportsTopMostDefinition(t *testing.T) {
	s := MustNew(Definitions{
		"port":  8080,
		"label": Derivation(func(*Store) any { return "x" }),
		"host":  "localhost",
	})
	mustDefine(t, s, Definitions{"port": CEL("1 + 1"), "debug": nil})

	got := s.Describe()
	want := []FieldDescriptor{
		{Name: "debug", Kind: KindLiteral, Type: "nil", Generation: 2},
		{Name: "host", Kind: KindLiteral, Type: "string", Generation: 1},
		{Name: "label", Kind: KindDerived, Type: "derivation", Generation: 1},
		{Name: "port", Kind: KindDerived, Type: "cel expression", Generation: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("describe mismatch:\nwant: %+v\n got: %+v", want, got)
	}

	s.Revert()
	got = s.Describe()
	if len(got) != 3 || got[2].Name != "port" || got[2].Type != "int" || got[2].Kind != KindLiteral {
		t.Fatalf("expected literal port after revert, got %+v", got)
	}
}

func TestDescribeUnnamedEngine(t *testing.T) {
	s := MustNew(Definitions{"v": &Expression{Source: "1"}})
	if got := s.Describe()[0].Type; got != "expression" {
		t.Fatalf("expected plain expression type, got %q", got)
	}
}
