// stack_validator.go - Track push/pop balance to catch codegen bugs
package main

import (
	"fmt"
	"strings"
)

// StackValidator walks a freshly generated (pre-optimization) Program
// and checks that every expression's pushes are eventually consumed:
// depth must never go negative, and at each function's `_end` label the
// only value still on the stack is the saved ebp from the prologue
// (spec.md §4.2's stack-machine discipline). Depth counts push/pop and
// the `add esp, N` that drops caller-pushed arguments (N/4 slots). It runs only when the
// compiler is invoked with -v (spec.md §4.7): it is a debug aid, never
// a gate on whether compilation succeeds.
type StackValidator struct {
	enabled bool
}

// NewStackValidator returns an enabled validator.
func NewStackValidator() *StackValidator {
	return &StackValidator{enabled: true}
}

// Validate scans prog.Instrs for stack-depth violations.
func (sv *StackValidator) Validate(prog *Program) error {
	if !sv.enabled {
		return nil
	}
	depth := 0
	for i, instr := range prog.Instrs {
		switch v := instr.(type) {
		case Push:
			depth++
		case Pop:
			depth--
			if depth < 0 {
				return errInternalInvariant(fmt.Sprintf("stack underflow at instruction %d (%s)", i, v))
			}
		case Add:
			if n, ok := v.Src.(Imm); ok && v.Dst == ESP {
				depth -= int(n) / 4
			}
		case Label:
			if strings.HasSuffix(v.Name, "_end") && depth != 1 {
				return errInternalInvariant(fmt.Sprintf(
					"unbalanced stack entering %s: depth=%d, want 1 (saved ebp)", v.Name, depth))
			}
		}
	}
	return nil
}
