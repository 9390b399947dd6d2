package main

import "testing"

func TestCompilerErrorFormatsWithLocation(t *testing.T) {
	err := errUnresolvedName("x", SourceLocation{File: "t.flo", Line: 3, Column: 5})
	want := "t.flo:3:5: unresolved name: undeclared name \"x\""
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestCompilerErrorFormatsWithoutLocation(t *testing.T) {
	err := errUnresolvedLabel("l7")
	want := "unresolved label: label \"l7\" not found"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestTypeSizeAndString(t *testing.T) {
	if Integer.Size() != 4 || Boolean.Size() != 4 {
		t.Error("entier and booleen should each occupy 4 bytes")
	}
	if Integer.String() != "entier" || Boolean.String() != "booleen" {
		t.Errorf("got %q/%q", Integer.String(), Boolean.String())
	}
}

func TestTypeSizePanicsOnVoid(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic asking for void's size")
		}
	}()
	_ = Void.Size()
}

func TestTypeSetContains(t *testing.T) {
	s := typeSet(Integer, Boolean)
	if !s.Contains(Integer) || !s.Contains(Boolean) {
		t.Error("expected the set to contain both types")
	}
	if s.Contains(Void) {
		t.Error("did not expect the set to contain Void")
	}
}
