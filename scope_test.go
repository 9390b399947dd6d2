package main

import "testing"

func TestGlobalScopeHasBuiltins(t *testing.T) {
	g := NewGlobalScope()
	fn, ok := g.GetFunction("ecrire")
	if !ok || fn.ReturnType != Void {
		t.Fatalf("ecrire: got %+v, ok=%v", fn, ok)
	}
	if !fn.Args[0].Types.Contains(Integer) || !fn.Args[0].Types.Contains(Boolean) {
		t.Errorf("ecrire's parameter should accept entier or booleen, got %s", fn.Args[0].Types)
	}
	lire, ok := g.GetFunction("lire")
	if !ok || lire.ReturnType != Integer {
		t.Fatalf("lire: got %+v, ok=%v", lire, ok)
	}
}

func TestScopeDeclareAndOffsets(t *testing.T) {
	fn := &Function{Name: "f"}
	s := (&Scope{Variables: map[string]*VarInfo{}, Functions: map[string]*Function{}}).Child()
	s.ParentFunction = fn
	s.Declare("a", Integer)
	s.Declare("b", Integer)

	offA, ok := s.GetOffset("a")
	if !ok || offA != 4 {
		t.Errorf("offset of a: got %d, ok=%v, want 4", offA, ok)
	}
	offB, ok := s.GetOffset("b")
	if !ok || offB != 8 {
		t.Errorf("offset of b: got %d, ok=%v, want 8", offB, ok)
	}
	if fn.StackSize != 8 {
		t.Errorf("function stack size: got %d, want 8", fn.StackSize)
	}
}

func TestScopeChildInheritsParentFunctionAndOffset(t *testing.T) {
	fn := &Function{Name: "f"}
	parent := (&Scope{Variables: map[string]*VarInfo{}, Functions: map[string]*Function{}}).Child()
	parent.ParentFunction = fn
	parent.Declare("a", Integer)

	child := parent.Child()
	if child.ParentFunction != fn {
		t.Error("child should inherit ParentFunction")
	}
	if child.Offset != 4 {
		t.Errorf("child offset: got %d, want 4 (parent's next address)", child.Offset)
	}
	child.Declare("b", Integer)
	off, ok := child.GetOffset("b")
	if !ok || off != 8 {
		t.Errorf("nested var offset: got %d, ok=%v, want 8", off, ok)
	}
}

func TestScopeGetOffsetWalksToParent(t *testing.T) {
	fn := &Function{Name: "f"}
	parent := (&Scope{Variables: map[string]*VarInfo{}, Functions: map[string]*Function{}}).Child()
	parent.ParentFunction = fn
	parent.Declare("outer", Integer)
	child := parent.Child()

	off, ok := child.GetOffset("outer")
	if !ok || off != 4 {
		t.Errorf("got %d, ok=%v, want 4", off, ok)
	}
}

func TestScopeGetOffsetUnresolvedName(t *testing.T) {
	s := NewGlobalScope().Child()
	if _, ok := s.GetOffset("nope"); ok {
		t.Error("expected an unresolved name to report ok=false")
	}
}
