// Completion: 100% - Peephole Optimizer complete, ported from
// original_source/src/optimizer.py's registered-pass list
package main

import (
	"fmt"
	"os"
)

// optPass runs once over prog and reports whether it changed anything.
// Passes are re-run to a fixed point by Optimize.
type optPass struct {
	name string
	run  func(prog *Program, verbose bool) bool
}

// passes is the fixed, ordered list of peephole passes, corresponding
// 1:1 to optimizer.py's `passes` registry (spec.md §4.3).
var passes = []optPass{
	{"push_then_pop", passPushThenPop},
	{"redundant_mov", passRedundantMov},
	{"remove_nops", passRemoveNops},
	{"jump_right_after", passJumpRightAfter},
	{"unused_label", passUnusedLabel},
	{"label_right_after", passLabelRightAfter},
	{"mov_pop_to_leave", passMovPopToLeave},
	{"zero_add_sub", passZeroAddSub},
	{"move_ab_ba", passMoveAbBa},
	{"move_dead_writes", passMoveDeadWrites},
}

// Optimize runs every pass to a fixed point: as long as any pass
// reports a change, the whole list runs again. A pass count that
// crosses a multiple of 1000 is logged as a possible infinite loop
// (spec.md §4.3) but is never itself a hard limit — maxPasses, if
// positive, is the caller's own ceiling (expansion — see SPEC_FULL.md
// §4.5's -max-passes flag).
func Optimize(prog *Program, verbose bool, maxPasses int) int {
	passCount := 0
	for {
		changed := false
		for _, p := range passes {
			if p.run(prog, verbose) {
				changed = true
			}
		}
		if !changed {
			break
		}
		passCount++
		if passCount%1000 == 0 {
			fmt.Fprintf(os.Stderr, "Warning: %d passes have been run, this may be an infinite loop\n", passCount)
		}
		if maxPasses > 0 && passCount >= maxPasses {
			fmt.Fprintf(os.Stderr, "Warning: stopping after %d passes (-max-passes reached)\n", passCount)
			break
		}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Optimization finished after %d passes\n", passCount)
	}
	return passCount
}

func logRewrite(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// passPushThenPop fuses `push X; pop Y` into `mov Y, X`.
func passPushThenPop(prog *Program, verbose bool) bool {
	found := false
	for i := 0; i+1 < len(prog.Instrs); i++ {
		a, aok := prog.Instrs[i].(Push)
		b, bok := prog.Instrs[i+1].(Pop)
		if aok && bok {
			logRewrite(verbose, "%s; %s => %s", a, b, Mov{Dst: b.Dst, Src: a.Src})
			prog.Instrs[i] = Mov{Dst: b.Dst, Src: a.Src}
			prog.Instrs[i+1] = Nop{}
			found = true
		}
	}
	return found
}

// passRedundantMov turns `mov X, X` into a nop.
func passRedundantMov(prog *Program, verbose bool) bool {
	found := false
	for i, instr := range prog.Instrs {
		if m, ok := instr.(Mov); ok && m.Src == m.Dst {
			logRewrite(verbose, "%s => nop", m)
			prog.Instrs[i] = Nop{}
			found = true
		}
	}
	return found
}

// passRemoveNops drops every Nop from the stream.
func passRemoveNops(prog *Program, verbose bool) bool {
	before := len(prog.Instrs)
	kept := prog.Instrs[:0:0]
	for _, instr := range prog.Instrs {
		if _, ok := instr.(Nop); !ok {
			kept = append(kept, instr)
		}
	}
	prog.Instrs = kept
	return len(prog.Instrs) != before
}

// passJumpRightAfter turns `jmp L; L:` into `nop; L:`.
func passJumpRightAfter(prog *Program, verbose bool) bool {
	found := false
	for i := 0; i+1 < len(prog.Instrs); i++ {
		a, aok := prog.Instrs[i].(Jmp)
		b, bok := prog.Instrs[i+1].(Label)
		if aok && bok && a.Dst == b {
			logRewrite(verbose, "%s; %s => nop; %s", a, b, b)
			prog.Instrs[i] = Nop{}
			found = true
		}
	}
	return found
}

// passUnusedLabel deletes any label definition nothing refers to
// (`_start` is always kept — it is the process entry point, not a
// jump/call target this compiler ever emits).
func passUnusedLabel(prog *Program, verbose bool) bool {
	candidates := make(map[string]bool, len(prog.Labels))
	for name := range prog.Labels {
		if name != "_start" {
			candidates[name] = true
		}
	}
	for _, instr := range prog.Instrs {
		if _, isLabel := instr.(Label); isLabel {
			continue
		}
		for _, ref := range labelRefs(instr) {
			delete(candidates, ref)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	kept := prog.Instrs[:0:0]
	for _, instr := range prog.Instrs {
		if l, ok := instr.(Label); ok && candidates[l.Name] {
			logRewrite(verbose, "Unused label: %s", l.Name)
			delete(prog.Labels, l.Name)
			continue
		}
		kept = append(kept, instr)
	}
	prog.Instrs = kept
	return true
}

// passLabelRightAfter merges two adjacent label definitions, renaming
// every reference to the second into the first.
func passLabelRightAfter(prog *Program, verbose bool) bool {
	found := false
	for i := 0; i+1 < len(prog.Instrs); i++ {
		a, aok := prog.Instrs[i].(Label)
		b, bok := prog.Instrs[i+1].(Label)
		if !aok || !bok {
			continue
		}
		logRewrite(verbose, "%s; %s => merge", a, b)
		prog.Instrs[i+1] = Nop{}
		for j, instr := range prog.Instrs {
			if _, isLabel := instr.(Label); isLabel {
				continue
			}
			prog.Instrs[j] = renameLabelRefs(instr, b, a)
		}
		delete(prog.Labels, b.Name)
		found = true
	}
	return found
}

// passMovPopToLeave turns the epilogue pair `mov esp, ebp; pop ebp`
// into a single `leave`.
func passMovPopToLeave(prog *Program, verbose bool) bool {
	found := false
	want := Mov{Dst: ESP, Src: EBP}
	for i := 0; i+1 < len(prog.Instrs); i++ {
		a, aok := prog.Instrs[i].(Mov)
		b, bok := prog.Instrs[i+1].(Pop)
		if aok && bok && a == want && b == (Pop{Dst: EBP}) {
			logRewrite(verbose, "%s; %s => leave", a, b)
			prog.Instrs[i] = Leave{}
			prog.Instrs[i+1] = Nop{}
			found = true
		}
	}
	return found
}

// passZeroAddSub removes a no-op `add X, 0` or `sub X, 0`.
func passZeroAddSub(prog *Program, verbose bool) bool {
	found := false
	for i, instr := range prog.Instrs {
		switch v := instr.(type) {
		case Add:
			if v.Src == Imm(0) {
				logRewrite(verbose, "%s => nop", v)
				prog.Instrs[i] = Nop{}
				found = true
			}
		case Sub:
			if v.Src == Imm(0) {
				logRewrite(verbose, "%s => nop", v)
				prog.Instrs[i] = Nop{}
				found = true
			}
		}
	}
	return found
}

// passMoveAbBa forwards a value moved into a register straight into
// the next instruction's matching src operand, when that instruction
// accepts the operand kind being forwarded:
//
//	mov X, v
//	I(..., src=X)   =>   mov X, v
//	                     I(..., src=v)
func passMoveAbBa(prog *Program, verbose bool) bool {
	found := false
	for i := 0; i+1 < len(prog.Instrs); i++ {
		a, aok := prog.Instrs[i].(Mov)
		if !aok {
			continue
		}
		switch a.Src.(type) {
		case Register, Imm:
		default:
			continue
		}
		b := prog.Instrs[i+1]
		bsrc, hasSrc := srcOperand(b)
		if !hasSrc || bsrc != a.Dst {
			continue
		}
		newInstr, ok := withSrc(b, a.Src)
		if !ok {
			continue
		}
		logRewrite(verbose, "%s; %s => %s; %s", a, b, a, newInstr)
		prog.Instrs[i+1] = newInstr
		found = true
	}
	return found
}

// passMoveDeadWrites deletes a `mov` whose destination is overwritten
// by a later `mov` before any instruction in between names it as its
// src operand, within one straight-line
// run (an AltersFlow instruction resets tracking, since control may
// jump in from elsewhere between the two writes).
func passMoveDeadWrites(prog *Program, verbose bool) bool {
	found := false
	writeTargets := map[Operand]int{}
	for i, instr := range prog.Instrs {
		if isAltersFlow(instr) {
			writeTargets = map[Operand]int{}
			continue
		}
		if m, ok := instr.(Mov); ok {
			if writeIdx, dead := writeTargets[m.Dst]; dead {
				logRewrite(verbose, "deleting dead %s (replaced by %s)", prog.Instrs[writeIdx], m)
				prog.Instrs[writeIdx] = Nop{}
				found = true
			}
			writeTargets[m.Dst] = i
		}
		if src, ok := srcOperand(instr); ok {
			delete(writeTargets, src)
		}
	}
	return found
}
