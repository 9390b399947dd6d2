// Completion: 100% - Instruction/operand model and Program container,
// ported from original_source/src/x86.py and src/compiler.py's Program.
// Instructions are a closed set of concrete Go types rather than a
// single reflected struct (see Design Note "Tagged instruction
// variants"): every peephole pass below dispatches on these types
// explicitly instead of walking struct fields by reflection.
package main

import (
	"fmt"
	"strconv"
	"strings"
)

// Operand is anything an instruction can read from or write to: a
// register, a stack slot, an immediate, or a bare global/label name.
type Operand interface {
	fmt.Stringer
	isOperand()
}

// Register names one of the 32-bit x86 registers (or 8-bit alias) this
// compiler's fixed calling convention and expression lowering use.
type Register string

const (
	AL  Register = "al"
	CL  Register = "cl"
	EAX Register = "eax"
	EBX Register = "ebx"
	ECX Register = "ecx"
	EDX Register = "edx"
	EBP Register = "ebp"
	ESP Register = "esp"
)

func (r Register) String() string { return string(r) }
func (Register) isOperand()       {}

// Memory is a `dword [base+offset]` stack or data reference.
type Memory struct {
	Base   Register
	Offset int
}

func (m Memory) String() string {
	if m.Offset == 0 {
		return fmt.Sprintf("dword [%s]", m.Base)
	}
	if m.Offset > 0 {
		return fmt.Sprintf("dword [%s+%d]", m.Base, m.Offset)
	}
	return fmt.Sprintf("dword [%s%d]", m.Base, m.Offset)
}
func (Memory) isOperand() {}

// Imm is an integer literal operand.
type Imm int

func (i Imm) String() string { return strconv.Itoa(int(i)) }
func (Imm) isOperand()       {}

// GlobalRef names a data or code symbol by text, e.g. the reserved
// input buffer `sinput`.
type GlobalRef string

func (g GlobalRef) String() string { return string(g) }
func (GlobalRef) isOperand()       {}

// Instr is one assembly instruction. Every concrete type below renders
// itself exactly as NASM/Intel-syntax text.
type Instr interface {
	fmt.Stringer
	isInstr()
}

// altersFlow marks instructions that can transfer control elsewhere:
// the peephole optimizer's move_dead_writes pass must not propagate a
// tracked write across one of these (spec.md §4.3's AltersFlow barrier).
type altersFlow interface{ altersFlow() }

func isAltersFlow(instr Instr) bool {
	_, ok := instr.(altersFlow)
	return ok
}

// Label is both the instruction that defines a code position and the
// value a jump/call target refers to.
type Label struct{ Name string }

func (l Label) String() string { return l.Name + ":" }
func (Label) isInstr()         {}

type Mov struct{ Dst, Src Operand }

func (m Mov) String() string { return fmt.Sprintf("mov %s, %s", m.Dst, m.Src) }
func (Mov) isInstr()         {}

type Add struct{ Dst, Src Operand }

func (a Add) String() string { return fmt.Sprintf("add %s, %s", a.Dst, a.Src) }
func (Add) isInstr()         {}

type Sub struct{ Dst, Src Operand }

func (s Sub) String() string { return fmt.Sprintf("sub %s, %s", s.Dst, s.Src) }
func (Sub) isInstr()         {}

type Cmp struct{ Dst, Src Operand }

func (c Cmp) String() string { return fmt.Sprintf("cmp %s, %s", c.Dst, c.Src) }
func (Cmp) isInstr()         {}

type Push struct{ Src Operand }

func (p Push) String() string { return fmt.Sprintf("push %s", p.Src) }
func (Push) isInstr()         {}

type Pop struct{ Dst Operand }

func (p Pop) String() string { return fmt.Sprintf("pop %s", p.Dst) }
func (Pop) isInstr()         {}

type Ret struct{}

func (Ret) String() string { return "ret" }
func (Ret) isInstr()       {}

// Call targets a bare symbol name rather than a Label: it may name a
// user function (`_nomdefonction`) or a runtime helper this compiler
// never defines itself (`readline`, `atoi`, `iprintLF`), so it is not
// tracked in Program.Labels.
type Call struct{ Dst string }

func (c Call) String() string { return fmt.Sprintf("call %s", c.Dst) }
func (Call) isInstr()         {}
func (Call) altersFlow()      {}

type Jmp struct{ Dst Label }

func (j Jmp) String() string { return fmt.Sprintf("jmp %s", j.Dst.Name) }
func (Jmp) isInstr()         {}
func (Jmp) altersFlow()      {}

type Je struct{ Dst Label }

func (j Je) String() string { return fmt.Sprintf("je %s", j.Dst.Name) }
func (Je) isInstr()         {}
func (Je) altersFlow()      {}

type Sete struct{ Dst Operand }

func (s Sete) String() string { return fmt.Sprintf("sete %s", s.Dst) }
func (Sete) isInstr()         {}

type Setne struct{ Dst Operand }

func (s Setne) String() string { return fmt.Sprintf("setne %s", s.Dst) }
func (Setne) isInstr()         {}

type Setl struct{ Dst Operand }

func (s Setl) String() string { return fmt.Sprintf("setl %s", s.Dst) }
func (Setl) isInstr()         {}

type Setle struct{ Dst Operand }

func (s Setle) String() string { return fmt.Sprintf("setle %s", s.Dst) }
func (Setle) isInstr()         {}

type Setg struct{ Dst Operand }

func (s Setg) String() string { return fmt.Sprintf("setg %s", s.Dst) }
func (Setg) isInstr()         {}

type Setge struct{ Dst Operand }

func (s Setge) String() string { return fmt.Sprintf("setge %s", s.Dst) }
func (Setge) isInstr()         {}

type Movzx struct{ Dst, Src Operand }

func (m Movzx) String() string { return fmt.Sprintf("movzx %s, %s", m.Dst, m.Src) }
func (Movzx) isInstr()         {}

type Neg struct{ Dst Operand }

func (n Neg) String() string { return fmt.Sprintf("neg %s", n.Dst) }
func (Neg) isInstr()         {}

type Imul struct{ Dst, Src Operand }

func (m Imul) String() string { return fmt.Sprintf("imul %s, %s", m.Dst, m.Src) }
func (Imul) isInstr()         {}

type Idiv struct{ Src Operand }

func (d Idiv) String() string { return fmt.Sprintf("idiv %s", d.Src) }
func (Idiv) isInstr()         {}

type Or struct{ Dst, Src Operand }

func (o Or) String() string { return fmt.Sprintf("or %s, %s", o.Dst, o.Src) }
func (Or) isInstr()         {}

type And struct{ Dst, Src Operand }

func (a And) String() string { return fmt.Sprintf("and %s, %s", a.Dst, a.Src) }
func (And) isInstr()         {}

type Nop struct{}

func (Nop) String() string { return "nop" }
func (Nop) isInstr()       {}

type Leave struct{}

func (Leave) String() string { return "leave" }
func (Leave) isInstr()       {}
func (Leave) altersFlow()    {}

type Int struct{ Value int }

func (i Int) String() string { return fmt.Sprintf("int 0x%02x", i.Value) }
func (Int) isInstr()         {}

// Program is the instruction list and label table under construction.
type Program struct {
	Instrs     []Instr
	LabelCount int
	Labels     map[string]Label
}

// NewProgram returns an empty program ready to receive instructions.
func NewProgram() *Program {
	return &Program{Labels: make(map[string]Label)}
}

// Emit appends instr, registering it in the label table if it is a
// Label definition.
func (p *Program) Emit(instr Instr) {
	p.Instrs = append(p.Instrs, instr)
	if l, ok := instr.(Label); ok {
		if _, exists := p.Labels[l.Name]; !exists {
			p.Labels[l.Name] = l
		}
	}
}

// ReserveLabel allocates a named label before the point it will be
// emitted at (e.g. a function's `_end` label, reserved before its body
// is generated so `retourner` can jump to it).
func (p *Program) ReserveLabel(name string) (Label, error) {
	if _, exists := p.Labels[name]; exists {
		return Label{}, errDuplicateLabel(name)
	}
	l := Label{Name: name}
	p.Labels[name] = l
	return l, nil
}

// NewLabel reserves a fresh, compiler-generated control-flow label.
func (p *Program) NewLabel() Label {
	p.LabelCount++
	l, err := p.ReserveLabel(fmt.Sprintf("l%d", p.LabelCount))
	if err != nil {
		panic(errInternalInvariant("label counter produced a name already in use"))
	}
	return l
}

// GetLabel resolves a previously reserved label by name.
func (p *Program) GetLabel(name string) (Label, error) {
	if l, ok := p.Labels[name]; ok {
		return l, nil
	}
	return Label{}, errUnresolvedLabel(name)
}

// Assembly renders the complete NASM source text: the fixed 6-line
// header followed by every instruction in order.
func (p *Program) Assembly() string {
	lines := []string{
		`%include "io.asm"`,
		"section .bss",
		"sinput: resb    255     ;reserve a 255 byte space in memory for the users input string",
		"v$a:    resd    1",
		"section .text",
		"global _start",
	}
	for _, instr := range p.Instrs {
		lines = append(lines, instr.String())
	}
	return strings.Join(lines, "\n")
}

// --- per-variant operand access, used by the peephole optimizer ---

// srcOperand returns the operand read by instr's "src" position, for
// the variants that have one.
func srcOperand(instr Instr) (Operand, bool) {
	switch v := instr.(type) {
	case Mov:
		return v.Src, true
	case Add:
		return v.Src, true
	case Sub:
		return v.Src, true
	case Cmp:
		return v.Src, true
	case Or:
		return v.Src, true
	case And:
		return v.Src, true
	case Push:
		return v.Src, true
	case Imul:
		return v.Src, true
	case Idiv:
		return v.Src, true
	case Movzx:
		return v.Src, true
	default:
		return nil, false
	}
}

// withSrc returns a copy of instr with its src position replaced,
// rejecting operand kinds that position cannot legally hold (idiv and
// imul never take an immediate divisor/multiplicand).
func withSrc(instr Instr, src Operand) (Instr, bool) {
	if _, isImm := src.(Imm); isImm {
		switch instr.(type) {
		case Imul, Idiv:
			return nil, false
		}
	}
	switch v := instr.(type) {
	case Mov:
		v.Src = src
		return v, true
	case Add:
		v.Src = src
		return v, true
	case Sub:
		v.Src = src
		return v, true
	case Cmp:
		v.Src = src
		return v, true
	case Or:
		v.Src = src
		return v, true
	case And:
		v.Src = src
		return v, true
	case Push:
		v.Src = src
		return v, true
	case Imul:
		v.Src = src
		return v, true
	case Idiv:
		v.Src = src
		return v, true
	case Movzx:
		v.Src = src
		return v, true
	default:
		return nil, false
	}
}

// labelRefs returns the label names instr refers to (jump/call
// targets), for the unused-label pass.
func labelRefs(instr Instr) []string {
	switch v := instr.(type) {
	case Jmp:
		return []string{v.Dst.Name}
	case Je:
		return []string{v.Dst.Name}
	case Call:
		return []string{v.Dst}
	default:
		return nil
	}
}

// renameLabelRefs returns a copy of instr with every reference to `from`
// rewritten to `to`, used when two adjacent label definitions coalesce.
func renameLabelRefs(instr Instr, from, to Label) Instr {
	switch v := instr.(type) {
	case Jmp:
		if v.Dst == from {
			v.Dst = to
		}
		return v
	case Je:
		if v.Dst == from {
			v.Dst = to
		}
		return v
	case Call:
		if v.Dst == from.Name {
			v.Dst = to.Name
		}
		return v
	default:
		return instr
	}
}
