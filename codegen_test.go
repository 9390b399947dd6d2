package main

import (
	"strings"
	"testing"
)

func mustGenerate(t *testing.T, src string) *Program {
	t.Helper()
	prog := mustParse(t, src)
	if err := AnalyzeProgramme(prog); err != nil {
		t.Fatalf("AnalyzeProgramme: %v", err)
	}
	instrs, err := Generate(prog)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return instrs
}

func TestGenerateEmitsEntryPointAndExitSyscall(t *testing.T) {
	instrs := mustGenerate(t, "entier x = 1;")
	if _, ok := instrs.Instrs[0].(Label); !ok || instrs.Instrs[0].(Label).Name != "_start" {
		t.Fatalf("first instruction: got %v, want _start label", instrs.Instrs[0])
	}
	last := instrs.Instrs[len(instrs.Instrs)-1]
	if i, ok := last.(Int); !ok || i.Value != 0x80 {
		t.Fatalf("last instruction: got %v, want int 0x80", last)
	}
}

func TestGenerateFunctionHasMatchingEndLabel(t *testing.T) {
	instrs := mustGenerate(t, "entier carre(entier n) { retourner n * n; } entier y = carre(3);")
	if _, err := instrs.GetLabel("carre_end"); err != nil {
		t.Fatalf("expected carre_end to be reserved: %v", err)
	}
	foundCall := false
	for _, instr := range instrs.Instrs {
		if c, ok := instr.(Call); ok && c.Dst == "_carre" {
			foundCall = true
		}
	}
	if !foundCall {
		t.Error("expected a call to _carre")
	}
}

func TestGenerateEcrireCallsIprintLF(t *testing.T) {
	instrs := mustGenerate(t, "ecrire(42);")
	found := false
	for _, instr := range instrs.Instrs {
		if c, ok := instr.(Call); ok && c.Dst == "iprintLF" {
			found = true
		}
	}
	if !found {
		t.Error("expected a call to iprintLF")
	}
}

func TestGenerateLireCallsReadlineAndAtoi(t *testing.T) {
	instrs := mustGenerate(t, "entier x = lire();")
	var calls []string
	for _, instr := range instrs.Instrs {
		if c, ok := instr.(Call); ok {
			calls = append(calls, c.Dst)
		}
	}
	if !contains(calls, "readline") || !contains(calls, "atoi") {
		t.Errorf("expected calls to readline and atoi, got %v", calls)
	}
}

func contains(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}

func TestGenerateSiEmitsConditionalJump(t *testing.T) {
	instrs := mustGenerate(t, "si (1 < 2) { ecrire(1); }")
	foundJe := false
	for _, instr := range instrs.Instrs {
		if _, ok := instr.(Je); ok {
			foundJe = true
		}
	}
	if !foundJe {
		t.Error("expected a je instruction for the si condition")
	}
}

func TestGenerateTantqueLoopsBackToStart(t *testing.T) {
	instrs := mustGenerate(t, "entier i = 0; tantque (i < 3) { i = i + 1; }")
	foundJmpBack := false
	for idx, instr := range instrs.Instrs {
		if j, ok := instr.(Jmp); ok {
			for k := 0; k < idx; k++ {
				if l, ok := instrs.Instrs[k].(Label); ok && l == j.Dst {
					foundJmpBack = true
				}
			}
		}
	}
	if !foundJmpBack {
		t.Error("expected a backward jmp closing the tantque loop")
	}
}

func TestAssemblyHasFixedSixLineHeader(t *testing.T) {
	instrs := mustGenerate(t, "entier x = 1;")
	asm := instrs.Assembly()
	lines := strings.Split(asm, "\n")
	if len(lines) <= headerLines {
		t.Fatalf("assembly has only %d lines", len(lines))
	}
	if lines[0] != `%include "io.asm"` {
		t.Errorf("line 0: got %q", lines[0])
	}
	if lines[headerLines-2] != "section .text" || lines[headerLines-1] != "global _start" {
		t.Errorf("unexpected header tail: %q / %q", lines[headerLines-2], lines[headerLines-1])
	}
}
