package main

import "testing"

func TestPassPushThenPopFusesIntoMov(t *testing.T) {
	prog := NewProgram()
	prog.Emit(Push{Src: Imm(5)})
	prog.Emit(Pop{Dst: EAX})
	if !passPushThenPop(prog, false) {
		t.Fatal("expected a rewrite")
	}
	mov, ok := prog.Instrs[0].(Mov)
	if !ok || mov.Dst != Operand(EAX) || mov.Src != Operand(Imm(5)) {
		t.Fatalf("got %v, want mov eax, 5", prog.Instrs[0])
	}
	if _, ok := prog.Instrs[1].(Nop); !ok {
		t.Fatalf("got %v, want nop", prog.Instrs[1])
	}
}

func TestPassRedundantMovBecomesNop(t *testing.T) {
	prog := NewProgram()
	prog.Emit(Mov{Dst: EAX, Src: EAX})
	if !passRedundantMov(prog, false) {
		t.Fatal("expected a rewrite")
	}
	if _, ok := prog.Instrs[0].(Nop); !ok {
		t.Fatalf("got %v, want nop", prog.Instrs[0])
	}
}

func TestPassRemoveNopsDropsThem(t *testing.T) {
	prog := NewProgram()
	prog.Emit(Nop{})
	prog.Emit(Ret{})
	prog.Emit(Nop{})
	if !passRemoveNops(prog, false) {
		t.Fatal("expected a rewrite")
	}
	if len(prog.Instrs) != 1 {
		t.Fatalf("got %d instructions, want 1", len(prog.Instrs))
	}
}

func TestPassJumpRightAfterNopsOutRedundantJump(t *testing.T) {
	prog := NewProgram()
	l := prog.NewLabel()
	prog.Emit(Jmp{Dst: l})
	prog.Emit(l)
	if !passJumpRightAfter(prog, false) {
		t.Fatal("expected a rewrite")
	}
	if _, ok := prog.Instrs[0].(Nop); !ok {
		t.Fatalf("got %v, want nop", prog.Instrs[0])
	}
}

func TestPassUnusedLabelKeepsStart(t *testing.T) {
	prog := NewProgram()
	prog.Emit(Label{Name: "_start"})
	prog.Emit(Ret{})
	if passUnusedLabel(prog, false) {
		t.Fatal("did not expect a rewrite: _start must never be removed")
	}
	if _, err := prog.GetLabel("_start"); err != nil {
		t.Fatalf("_start should still resolve: %v", err)
	}
}

func TestPassUnusedLabelRemovesUnreferencedLabel(t *testing.T) {
	prog := NewProgram()
	prog.Emit(Label{Name: "_start"})
	dead := prog.NewLabel()
	prog.Emit(dead)
	prog.Emit(Ret{})
	if !passUnusedLabel(prog, false) {
		t.Fatal("expected dead label to be removed")
	}
	for _, instr := range prog.Instrs {
		if l, ok := instr.(Label); ok && l == dead {
			t.Fatalf("dead label %v should have been removed", dead)
		}
	}
}

func TestPassLabelRightAfterMergesAndRenamesRefs(t *testing.T) {
	prog := NewProgram()
	a := prog.NewLabel()
	b := prog.NewLabel()
	prog.Emit(Jmp{Dst: b})
	prog.Emit(a)
	prog.Emit(b)
	if !passLabelRightAfter(prog, false) {
		t.Fatal("expected adjacent labels to merge")
	}
	jmp := prog.Instrs[0].(Jmp)
	if jmp.Dst != a {
		t.Fatalf("jmp target: got %v, want %v (merged to the first label)", jmp.Dst, a)
	}
}

func TestPassMovPopToLeaveFusesEpilogue(t *testing.T) {
	prog := NewProgram()
	prog.Emit(Mov{Dst: ESP, Src: EBP})
	prog.Emit(Pop{Dst: EBP})
	if !passMovPopToLeave(prog, false) {
		t.Fatal("expected a rewrite")
	}
	if _, ok := prog.Instrs[0].(Leave); !ok {
		t.Fatalf("got %v, want leave", prog.Instrs[0])
	}
}

func TestPassZeroAddSubRemovesNoOps(t *testing.T) {
	prog := NewProgram()
	prog.Emit(Add{Dst: EAX, Src: Imm(0)})
	prog.Emit(Sub{Dst: EBX, Src: Imm(0)})
	if !passZeroAddSub(prog, false) {
		t.Fatal("expected a rewrite")
	}
	for _, instr := range prog.Instrs {
		if _, ok := instr.(Nop); !ok {
			t.Fatalf("got %v, want all nops", instr)
		}
	}
}

func TestPassMoveAbBaForwardsIntoSrcPosition(t *testing.T) {
	prog := NewProgram()
	prog.Emit(Mov{Dst: EAX, Src: Imm(7)})
	prog.Emit(Add{Dst: EBX, Src: EAX})
	if !passMoveAbBa(prog, false) {
		t.Fatal("expected a rewrite")
	}
	add := prog.Instrs[1].(Add)
	if add.Src != Operand(Imm(7)) {
		t.Fatalf("got %v, want add ebx, 7", add)
	}
}

func TestPassMoveAbBaRejectsImmIntoIdiv(t *testing.T) {
	prog := NewProgram()
	prog.Emit(Mov{Dst: EBX, Src: Imm(2)})
	prog.Emit(Idiv{Src: EBX})
	if passMoveAbBa(prog, false) {
		t.Fatal("idiv's src may never become an immediate")
	}
}

func TestPassMoveDeadWritesDeletesOverwrittenMov(t *testing.T) {
	prog := NewProgram()
	prog.Emit(Mov{Dst: EAX, Src: Imm(1)})
	prog.Emit(Mov{Dst: EAX, Src: Imm(2)})
	if !passMoveDeadWrites(prog, false) {
		t.Fatal("expected the first write to be marked dead")
	}
	if _, ok := prog.Instrs[0].(Nop); !ok {
		t.Fatalf("got %v, want nop", prog.Instrs[0])
	}
	mov := prog.Instrs[1].(Mov)
	if mov.Src != Operand(Imm(2)) {
		t.Fatalf("second write should survive: got %v", mov)
	}
}

func TestPassMoveDeadWritesResetsAtAltersFlowBarrier(t *testing.T) {
	prog := NewProgram()
	prog.Emit(Mov{Dst: EAX, Src: Imm(1)})
	prog.Emit(Call{Dst: "_f"})
	prog.Emit(Mov{Dst: EAX, Src: Imm(2)})
	if passMoveDeadWrites(prog, false) {
		t.Fatal("a call barrier should prevent the first write from being seen as dead")
	}
}

func TestOptimizeReachesFixedPoint(t *testing.T) {
	prog := NewProgram()
	prog.Emit(Label{Name: "_start"})
	prog.Emit(Push{Src: Imm(1)})
	prog.Emit(Pop{Dst: EAX})
	prog.Emit(Mov{Dst: EBX, Src: EAX})
	prog.Emit(Mov{Dst: ESP, Src: EBP})
	prog.Emit(Pop{Dst: EBP})
	prog.Emit(Ret{})
	passCount := Optimize(prog, false, 0)
	if passCount == 0 {
		t.Fatal("expected at least one optimization pass to fire")
	}
	// Idempotence: optimizing an already-fixed-point program changes nothing.
	before := len(prog.Instrs)
	again := Optimize(prog, false, 0)
	if again != 0 {
		t.Errorf("re-optimizing a fixed point ran %d more passes", again)
	}
	if len(prog.Instrs) != before {
		t.Errorf("re-optimizing a fixed point changed instruction count from %d to %d", before, len(prog.Instrs))
	}
}

func TestOptimizeRespectsMaxPasses(t *testing.T) {
	prog := NewProgram()
	prog.Emit(Push{Src: Imm(1)})
	prog.Emit(Pop{Dst: EAX})
	passCount := Optimize(prog, false, 1)
	if passCount > 1 {
		t.Errorf("got %d passes, want at most 1 (max-passes ceiling)", passCount)
	}
}
