package main

import "testing"

func TestStackValidatorAcceptsBalancedFunction(t *testing.T) {
	instrs := mustGenerate(t, "entier f(entier n) { retourner n + 1; } ecrire(f(10));")
	if err := NewStackValidator().Validate(instrs); err != nil {
		t.Fatalf("expected balanced stack, got %v", err)
	}
}

func TestStackValidatorCatchesUnderflow(t *testing.T) {
	prog := NewProgram()
	prog.Emit(Pop{Dst: EAX})
	if err := NewStackValidator().Validate(prog); err == nil {
		t.Fatal("expected an underflow error")
	}
}
