// Completion: 100% - Code Generator complete, ported from
// original_source/src/compiler.py's Compiler class
package main

import "fmt"

// CodeGen lowers an analyzed AST into a flat instruction Program. Every
// compileExpr call on a non-void expression leaves exactly one value
// pushed on the stack (a void call such as ecrire pushes nothing); every
// compileStatement call leaves the stack exactly as it found it
// (spec.md §4.2's stack-machine discipline).
type CodeGen struct {
	Program *Program
	Scope   *Scope
}

// Generate compiles an analyzed programme into a Program ready for the
// peephole optimizer and the assembly emitter.
func Generate(programme *Programme) (*Program, error) {
	prog := NewProgram()
	top := &CodeGen{Program: prog, Scope: programme.Body.Scope}
	for _, fn := range programme.Body.Funcs {
		if err := top.compileFunction(fn); err != nil {
			return nil, err
		}
	}
	if err := top.compileMain(programme.Body.Stmts); err != nil {
		return nil, err
	}
	return prog, nil
}

func (g *CodeGen) emit(instr Instr) { g.Program.Emit(instr) }

func (g *CodeGen) compileFunction(fn *Fonction) error {
	obj := fn.FuncObj
	g.emit(Label{Name: "_" + obj.Name})
	end, err := g.Program.ReserveLabel(obj.Name + "_end")
	if err != nil {
		return err
	}
	g.emit(Push{Src: EBP})
	g.emit(Mov{Dst: EBP, Src: ESP})
	g.emit(Sub{Dst: ESP, Src: Imm(obj.StackSize - fn.BodyScope.Offset)})

	body := &CodeGen{Program: g.Program, Scope: fn.BodyScope}
	if err := body.compileBloc(fn.Body); err != nil {
		return err
	}

	g.emit(end)
	g.emit(Mov{Dst: ESP, Src: EBP})
	g.emit(Pop{Dst: EBP})
	g.emit(Ret{})
	return nil
}

func (g *CodeGen) compileMain(stmts []Node) error {
	g.emit(Label{Name: "_start"})
	g.emit(Push{Src: EBP})
	g.emit(Mov{Dst: EBP, Src: ESP})
	g.emit(Sub{Dst: ESP, Src: Imm(g.Scope.ParentFunction.StackSize)})
	for _, stmt := range stmts {
		if err := g.compileStatement(stmt); err != nil {
			return err
		}
	}
	g.emit(Mov{Dst: EAX, Src: Imm(1)})
	g.emit(Mov{Dst: EBX, Src: Imm(0)})
	g.emit(Int{Value: 0x80})
	return nil
}

func (g *CodeGen) compileBloc(b *Bloc) error {
	sub := &CodeGen{Program: g.Program, Scope: b.Scope}
	for _, stmt := range b.Stmts {
		if err := sub.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// operand resolves a variable name to its frame-relative memory slot.
// The analyzer has already confirmed every such name resolves; a miss
// here means the pipeline's earlier stage failed to reject something it
// should have, which is an internal invariant violation, not a
// user-facing error.
func (g *CodeGen) operand(name string) (Memory, error) {
	off, ok := g.Scope.GetOffset(name)
	if !ok {
		return Memory{}, errInternalInvariant(fmt.Sprintf("codegen: name %q escaped analysis unresolved", name))
	}
	return Memory{Base: EBP, Offset: -off}, nil
}

func exprType(n Node) Type {
	switch v := n.(type) {
	case *Token:
		return v.Type
	case *Variable:
		return v.Type
	case *Appel:
		return v.Type
	case *BinExpr:
		return v.Type
	case *UnaireExpr:
		return v.Type
	case *OuExpr:
		return v.Type
	case *EtExpr:
		return v.Type
	case *NonExpr:
		return v.Type
	default:
		return TypeUnknown
	}
}

func (g *CodeGen) compileStatement(n Node) error {
	switch node := n.(type) {
	case *Decl:
		if node.Value != nil {
			if err := g.compileExpr(node.Value); err != nil {
				return err
			}
			g.emit(Pop{Dst: EAX})
		} else {
			g.emit(Mov{Dst: EAX, Src: Imm(0)})
		}
		mem, err := g.operand(node.Name.Value)
		if err != nil {
			return err
		}
		g.emit(Mov{Dst: mem, Src: EAX})
		return nil

	case *Affectation:
		if err := g.compileExpr(node.Value); err != nil {
			return err
		}
		g.emit(Pop{Dst: EAX})
		mem, err := g.operand(node.Var.Value)
		if err != nil {
			return err
		}
		g.emit(Mov{Dst: mem, Src: EAX})
		return nil

	case *Si:
		return g.compileSi(node)

	case *Tantque:
		return g.compileTantque(node)

	case *Retourner:
		if err := g.compileExpr(node.Value); err != nil {
			return err
		}
		g.emit(Pop{Dst: EAX})
		lbl, err := g.Program.GetLabel(g.Scope.ParentFunction.Name + "_end")
		if err != nil {
			return err
		}
		g.emit(Jmp{Dst: lbl})
		return nil

	case *ExprInstr:
		if err := g.compileExpr(node.Expr); err != nil {
			return err
		}
		if exprType(node.Expr) != Void {
			g.emit(Pop{Dst: EAX})
		}
		return nil

	default:
		return errInternalInvariant(fmt.Sprintf("codegen: unhandled statement type %T", n))
	}
}

func (g *CodeGen) compileSi(si *Si) error {
	if err := g.compileExpr(si.Cond); err != nil {
		return err
	}
	g.emit(Pop{Dst: EAX})
	g.emit(Cmp{Dst: EAX, Src: Imm(0)})
	orelse := g.Program.NewLabel()
	g.emit(Je{Dst: orelse})
	if err := g.compileBloc(si.Body); err != nil {
		return err
	}
	endif := g.Program.NewLabel()
	g.emit(Jmp{Dst: endif})
	g.emit(orelse)
	if si.OrElse != nil {
		switch orelseNode := si.OrElse.(type) {
		case *Si:
			if err := g.compileSi(orelseNode); err != nil {
				return err
			}
		case *Bloc:
			if err := g.compileBloc(orelseNode); err != nil {
				return err
			}
		}
	}
	g.emit(endif)
	return nil
}

func (g *CodeGen) compileTantque(tq *Tantque) error {
	start := g.Program.NewLabel()
	end := g.Program.NewLabel()
	g.emit(start)
	if err := g.compileExpr(tq.Cond); err != nil {
		return err
	}
	g.emit(Pop{Dst: EAX})
	g.emit(Cmp{Dst: EAX, Src: Imm(0)})
	g.emit(Je{Dst: end})
	if err := g.compileBloc(tq.Body); err != nil {
		return err
	}
	g.emit(Jmp{Dst: start})
	g.emit(end)
	return nil
}

func (g *CodeGen) compileExpr(n Node) error {
	switch node := n.(type) {
	case *Token:
		switch node.Kind {
		case "ENTIER":
			g.emit(Push{Src: Imm(node.Int)})
			return nil
		case "BOOLEEN":
			v := 0
			if node.Value == "Vrai" {
				v = 1
			}
			g.emit(Push{Src: Imm(v)})
			return nil
		case "NOM":
			mem, err := g.operand(node.Value)
			if err != nil {
				return err
			}
			g.emit(Mov{Dst: EAX, Src: mem})
			g.emit(Push{Src: EAX})
			return nil
		default:
			return errInternalInvariant(fmt.Sprintf("codegen: unexpected leaf kind %q", node.Kind))
		}

	case *Variable:
		mem, err := g.operand(node.Name.Value)
		if err != nil {
			return err
		}
		g.emit(Mov{Dst: EAX, Src: mem})
		g.emit(Push{Src: EAX})
		return nil

	case *Appel:
		return g.compileAppel(node)

	case *BinExpr:
		return g.compileBinExpr(node)

	case *UnaireExpr:
		if err := g.compileExpr(node.Val); err != nil {
			return err
		}
		g.emit(Pop{Dst: EAX})
		if node.Op != "-" {
			return errInternalInvariant(fmt.Sprintf("codegen: unsupported unary operator %q", node.Op))
		}
		g.emit(Neg{Dst: EAX})
		g.emit(Push{Src: EAX})
		return nil

	case *NonExpr:
		if err := g.compileExpr(node.Val); err != nil {
			return err
		}
		g.emit(Pop{Dst: EAX})
		g.emit(Cmp{Dst: EAX, Src: Imm(0)})
		g.emit(Sete{Dst: AL})
		g.emit(Movzx{Dst: EAX, Src: AL})
		g.emit(Push{Src: EAX})
		return nil

	case *OuExpr:
		if err := g.compileExpr(node.Left); err != nil {
			return err
		}
		if err := g.compileExpr(node.Right); err != nil {
			return err
		}
		g.emit(Pop{Dst: EBX})
		g.emit(Pop{Dst: EAX})
		g.emit(Or{Dst: EAX, Src: EBX})
		g.emit(Setne{Dst: AL})
		g.emit(Movzx{Dst: EAX, Src: AL})
		g.emit(Push{Src: EAX})
		return nil

	case *EtExpr:
		if err := g.compileExpr(node.Left); err != nil {
			return err
		}
		if err := g.compileExpr(node.Right); err != nil {
			return err
		}
		g.emit(Pop{Dst: EAX})
		g.emit(Cmp{Dst: EAX, Src: Imm(0)})
		g.emit(Setne{Dst: AL})
		g.emit(Pop{Dst: ECX})
		g.emit(Cmp{Dst: ECX, Src: Imm(0)})
		g.emit(Setne{Dst: CL})
		g.emit(And{Dst: CL, Src: AL})
		g.emit(Movzx{Dst: EAX, Src: CL})
		g.emit(Push{Src: EAX})
		return nil

	default:
		return errInternalInvariant(fmt.Sprintf("codegen: unhandled expression type %T", n))
	}
}

func (g *CodeGen) compileBinExpr(b *BinExpr) error {
	if err := g.compileExpr(b.Left); err != nil {
		return err
	}
	if err := g.compileExpr(b.Right); err != nil {
		return err
	}
	switch b.TagName {
	case "expr_add":
		g.emit(Pop{Dst: EBX})
		g.emit(Pop{Dst: EAX})
		switch b.Op {
		case "+":
			g.emit(Add{Dst: EAX, Src: EBX})
		case "-":
			g.emit(Sub{Dst: EAX, Src: EBX})
		default:
			return errInternalInvariant(fmt.Sprintf("codegen: unsupported additive operator %q", b.Op))
		}
		g.emit(Push{Src: EAX})
		return nil

	case "expr_mul":
		g.emit(Pop{Dst: EBX})
		g.emit(Pop{Dst: EAX})
		switch b.Op {
		case "*":
			g.emit(Imul{Dst: EAX, Src: EBX})
		case "/":
			g.emit(Mov{Dst: EDX, Src: Imm(0)})
			g.emit(Idiv{Src: EBX})
		case "%":
			g.emit(Mov{Dst: EDX, Src: Imm(0)})
			g.emit(Idiv{Src: EBX})
			g.emit(Mov{Dst: EAX, Src: EDX})
		default:
			return errInternalInvariant(fmt.Sprintf("codegen: unsupported multiplicative operator %q", b.Op))
		}
		g.emit(Push{Src: EAX})
		return nil

	case "expr_rel":
		g.emit(Pop{Dst: EBX})
		g.emit(Pop{Dst: ECX})
		g.emit(Cmp{Dst: ECX, Src: EBX})
		switch b.Op {
		case "==":
			g.emit(Sete{Dst: AL})
		case "!=":
			g.emit(Setne{Dst: AL})
		case "<":
			g.emit(Setl{Dst: AL})
		case "<=":
			g.emit(Setle{Dst: AL})
		case ">":
			g.emit(Setg{Dst: AL})
		case ">=":
			g.emit(Setge{Dst: AL})
		default:
			return errInternalInvariant(fmt.Sprintf("codegen: unsupported relational operator %q", b.Op))
		}
		g.emit(Movzx{Dst: EAX, Src: AL})
		g.emit(Push{Src: EAX})
		return nil

	default:
		return errInternalInvariant(fmt.Sprintf("codegen: unhandled binary tag %q", b.TagName))
	}
}

func (g *CodeGen) compileAppel(appel *Appel) error {
	switch appel.Name.Value {
	case "lire":
		g.emit(Mov{Dst: EAX, Src: GlobalRef("sinput")})
		g.emit(Call{Dst: "readline"})
		g.emit(Call{Dst: "atoi"})
		g.emit(Push{Src: EAX})
		return nil

	case "ecrire":
		if err := g.compileExpr(appel.Args[0]); err != nil {
			return err
		}
		g.emit(Pop{Dst: EAX})
		g.emit(Call{Dst: "iprintLF"})
		return nil
	}

	fn, ok := g.Scope.GetFunction(appel.Name.Value)
	if !ok {
		return errInternalInvariant(fmt.Sprintf("codegen: call to %q escaped analysis unresolved", appel.Name.Value))
	}
	for i := len(appel.Args) - 1; i >= 0; i-- {
		if err := g.compileExpr(appel.Args[i]); err != nil {
			return err
		}
	}
	g.emit(Call{Dst: "_" + appel.Name.Value})
	argsSize := 0
	for _, arg := range fn.Args {
		argsSize += argType(arg.Types).Size()
	}
	g.emit(Add{Dst: ESP, Src: Imm(argsSize)})
	if fn.ReturnType != Void {
		g.emit(Push{Src: EAX})
	}
	return nil
}
