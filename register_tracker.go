// Completion: 100% - Scratch register clobber detector
package main

import "fmt"

// trackedRegisters are the handful of scratch registers this
// compiler's fixed calling convention and expression lowering ever
// touch. ebp/esp are frame-management registers with their own
// discipline (see StackValidator) and are intentionally excluded.
var trackedRegisters = map[Register]bool{
	EAX: true, EBX: true, ECX: true, EDX: true, AL: true, CL: true,
}

// ScratchRegisterTracker walks a freshly generated (pre-optimization)
// Program and flags a scratch register being read before anything in
// the current straight-line run has written to it — the signature of a
// codegen bug that drops a value meant to flow through eax/ebx/ecx/edx.
// Tracking resets at every AltersFlow instruction, the same barrier the
// peephole optimizer's move_dead_writes pass uses (spec.md §4.3), since
// control may have arrived at the next instruction from anywhere. This
// runs only under -v (spec.md §4.7): a debug aid, never a gate.
type ScratchRegisterTracker struct {
	enabled bool
}

// NewScratchRegisterTracker returns an enabled tracker.
func NewScratchRegisterTracker() *ScratchRegisterTracker {
	return &ScratchRegisterTracker{enabled: true}
}

// Validate scans prog.Instrs for reads of an unwritten scratch register.
func (rt *ScratchRegisterTracker) Validate(prog *Program) error {
	if !rt.enabled {
		return nil
	}
	written := map[Register]bool{}
	for i, instr := range prog.Instrs {
		if isAltersFlow(instr) {
			written = map[Register]bool{}
			continue
		}
		if src, ok := srcOperand(instr); ok {
			if reg, isReg := src.(Register); isReg && trackedRegisters[reg] && !written[reg] {
				return errInternalInvariant(fmt.Sprintf(
					"register %s read before written at instruction %d (%s)", reg, i, instr))
			}
		}
		if dst, ok := dstRegister(instr); ok && trackedRegisters[dst] {
			written[dst] = true
		}
	}
	return nil
}

// dstRegister returns the register an instruction writes to, if any.
func dstRegister(instr Instr) (Register, bool) {
	switch v := instr.(type) {
	case Mov:
		return asRegister(v.Dst)
	case Movzx:
		return asRegister(v.Dst)
	case Pop:
		return asRegister(v.Dst)
	case Add:
		return asRegister(v.Dst)
	case Sub:
		return asRegister(v.Dst)
	case Imul:
		return asRegister(v.Dst)
	case Neg:
		return asRegister(v.Dst)
	case Or:
		return asRegister(v.Dst)
	case And:
		return asRegister(v.Dst)
	case Sete:
		return asRegister(v.Dst)
	case Setne:
		return asRegister(v.Dst)
	case Setl:
		return asRegister(v.Dst)
	case Setle:
		return asRegister(v.Dst)
	case Setg:
		return asRegister(v.Dst)
	case Setge:
		return asRegister(v.Dst)
	default:
		return "", false
	}
}

func asRegister(op Operand) (Register, bool) {
	r, ok := op.(Register)
	return r, ok
}
