// Completion: 100% - Scope & Type Analyzer, ported from
// original_source/src/analyzer.py's Analyzer class
package main

import "fmt"

// Analyzer walks an AST built by the parser, resolving names, computing
// frame offsets, and checking every construct's static type. It mutates
// nodes in place (annotating Type/Scope/FuncObj fields) the same way
// analyzer.py does, rather than building a parallel typed tree.
type Analyzer struct {
	scope *Scope
}

// AnalyzeProgramme type-checks an entire programme and, on success,
// leaves every node in tree annotated for the code generator.
func AnalyzeProgramme(prog *Programme) error {
	main := &Function{Name: "_main", ReturnType: Void}
	scope := NewGlobalScope().Child()
	scope.ParentFunction = main
	return (&Analyzer{scope: scope}).analyzeBloc(prog.Body)
}

// analyze dispatches on a node's concrete type, mirroring analyze()'s
// getattr(self, "analyze_" + tree.data) dispatch.
func (a *Analyzer) analyze(n Node) (Type, error) {
	switch node := n.(type) {
	case *Token:
		switch node.Kind {
		case "ENTIER":
			node.Type = Integer
		case "BOOLEEN":
			node.Type = Boolean
		case "NOM":
			t, ok := a.scope.GetVariableType(node.Value)
			if !ok {
				return TypeUnknown, errUnresolvedName(node.Value, node.Loc())
			}
			node.Type = t
		default:
			return TypeUnknown, errInternalInvariant(fmt.Sprintf("unexpected token kind %q", node.Kind))
		}
		return node.Type, nil
	case *Variable:
		t, ok := a.scope.GetVariableType(node.Name.Value)
		if !ok {
			return TypeUnknown, errUnresolvedName(node.Name.Value, node.Loc())
		}
		node.Type = t
		return t, nil
	case *Appel:
		t, err := a.analyzeAppel(node)
		if err != nil {
			return TypeUnknown, err
		}
		node.Type = t
		return t, nil
	case *BinExpr:
		t, err := a.analyzeBinExpr(node)
		if err != nil {
			return TypeUnknown, err
		}
		node.Type = t
		return t, nil
	case *UnaireExpr:
		t, err := a.analyzeUnaire(node)
		if err != nil {
			return TypeUnknown, err
		}
		node.Type = t
		return t, nil
	case *OuExpr:
		t, err := a.analyzeOuEt(node.Left, node.Right)
		if err != nil {
			return TypeUnknown, err
		}
		node.Type = t
		return t, nil
	case *EtExpr:
		t, err := a.analyzeOuEt(node.Left, node.Right)
		if err != nil {
			return TypeUnknown, err
		}
		node.Type = t
		return t, nil
	case *NonExpr:
		t, err := a.analyze(node.Val)
		if err != nil {
			return TypeUnknown, err
		}
		if t != Boolean {
			return TypeUnknown, errTypeMismatch("non", Boolean, t, node.Loc())
		}
		node.Type = t
		return t, nil
	default:
		return TypeUnknown, errInternalInvariant(fmt.Sprintf("analyzer: unhandled node type %T", n))
	}
}

func (a *Analyzer) analyzeOuEt(left, right Node) (Type, error) {
	lt, err := a.analyze(left)
	if err != nil {
		return TypeUnknown, err
	}
	if lt != Boolean {
		return TypeUnknown, errTypeMismatch("boolean operator", Boolean, lt, left.Loc())
	}
	rt, err := a.analyze(right)
	if err != nil {
		return TypeUnknown, err
	}
	if rt != lt {
		return TypeUnknown, errTypeMismatch("boolean operator", lt, rt, right.Loc())
	}
	return lt, nil
}

func (a *Analyzer) analyzeBinExpr(b *BinExpr) (Type, error) {
	lt, err := a.analyze(b.Left)
	if err != nil {
		return TypeUnknown, err
	}
	if lt != Integer {
		return TypeUnknown, errTypeMismatch(b.TagName, Integer, lt, b.Left.Loc())
	}
	rt, err := a.analyze(b.Right)
	if err != nil {
		return TypeUnknown, err
	}
	if rt != lt {
		return TypeUnknown, errTypeMismatch(b.TagName, lt, rt, b.Right.Loc())
	}
	if b.TagName == "expr_rel" {
		return Boolean, nil
	}
	return lt, nil
}

func (a *Analyzer) analyzeUnaire(u *UnaireExpr) (Type, error) {
	t, err := a.analyze(u.Val)
	if err != nil {
		return TypeUnknown, err
	}
	if t != Integer {
		return TypeUnknown, errTypeMismatch("expr_unaire", Integer, t, u.Loc())
	}
	return t, nil
}

func (a *Analyzer) analyzeAppel(appel *Appel) (Type, error) {
	fn, ok := a.scope.GetFunction(appel.Name.Value)
	if !ok {
		return TypeUnknown, errUnresolvedName(appel.Name.Value, appel.Loc())
	}
	if len(appel.Args) != len(fn.Args) {
		return TypeUnknown, errArityMismatch(fn.Name, len(appel.Args), len(fn.Args), appel.Loc())
	}
	for i, arg := range appel.Args {
		t, err := a.analyze(arg)
		if err != nil {
			return TypeUnknown, err
		}
		want := fn.Args[i].Types
		if !want.Contains(t) {
			return TypeUnknown, errArgumentTypeMismatch(fn.Name, i, t, want, arg.Loc())
		}
	}
	return fn.ReturnType, nil
}

// analyzeBloc hoists every function declared directly in block (so
// mutually- and forward-referencing calls resolve), analyzes each
// function's body in its own fresh frame scope, then analyzes the
// block's own statements in order. It mirrors analyzer.py's
// analyze_bloc exactly, including the parameter/$ra/$old_ebp
// declaration order and the scope-offset reset that follows it.
func (a *Analyzer) analyzeBloc(block *Bloc) error {
	var stmts []Node
	var funcs []*Fonction
	for _, item := range block.Items {
		if fn, ok := item.(*Fonction); ok {
			funcs = append(funcs, fn)
		} else {
			stmts = append(stmts, item)
		}
	}

	for _, fn := range funcs {
		retType, ok := typeFromKeyword(fn.ReturnType)
		if !ok {
			return errInternalInvariant(fmt.Sprintf("unknown return type keyword %q", fn.ReturnType))
		}
		var args []FuncArg
		for _, arg := range fn.Args {
			t, ok := typeFromKeyword(arg.TypeName)
			if !ok {
				return errInternalInvariant(fmt.Sprintf("unknown parameter type keyword %q", arg.TypeName))
			}
			args = append(args, FuncArg{Name: arg.Name.Value, Types: typeSet(t)})
		}
		funcObj := &Function{Name: fn.Name.Value, ReturnType: retType, Args: args}
		a.scope.Functions[fn.Name.Value] = funcObj
		fn.FuncObj = funcObj
	}

	for _, fn := range funcs {
		fnScope := a.scope.Child()
		fnScope.ParentFunction = fn.FuncObj
		for i := len(fn.FuncObj.Args) - 1; i >= 0; i-- {
			fnScope.Declare(fn.FuncObj.Args[i].Name, argType(fn.FuncObj.Args[i].Types))
		}
		fnScope.Declare("$ra", Integer)
		fnScope.Declare("$old_ebp", Integer)
		fnScope.Offset = -fn.FuncObj.StackSize
		fn.FuncObj.StackSize = 0
		fn.Scope = fnScope

		bodyScope := fnScope.Child()
		bodyScope.Offset = fnScope.NextAddress() + fnScope.Offset
		fn.BodyScope = bodyScope

		if err := (&Analyzer{scope: bodyScope}).analyzeBloc(fn.Body); err != nil {
			return err
		}
	}

	for _, stmt := range stmts {
		if err := a.analyzeStatement(stmt); err != nil {
			return err
		}
	}

	block.Scope = a.scope
	block.Stmts = stmts
	block.Funcs = funcs
	return nil
}

// argType extracts the sole type of a user-declared parameter's type
// set (always a singleton — only the built-in ecrire has a union type,
// and built-ins never go through this declaration path).
func argType(ts TypeSet) Type {
	for t := range ts {
		return t
	}
	return TypeUnknown
}

func (a *Analyzer) analyzeStatement(n Node) error {
	switch node := n.(type) {
	case *Decl:
		t, ok := typeFromKeyword(node.TypeName)
		if !ok {
			return errInternalInvariant(fmt.Sprintf("unknown declared type keyword %q", node.TypeName))
		}
		if node.Value != nil {
			vt, err := a.analyze(node.Value)
			if err != nil {
				return err
			}
			if vt != t {
				return errTypeMismatch("decl", t, vt, node.Loc())
			}
		}
		a.scope.Declare(node.Name.Value, t)
		return nil

	case *Affectation:
		vt, ok := a.scope.GetVariableType(node.Var.Value)
		if !ok {
			return errUnresolvedName(node.Var.Value, node.Loc())
		}
		rt, err := a.analyze(node.Value)
		if err != nil {
			return err
		}
		if rt != vt {
			return errTypeMismatch("affectation", vt, rt, node.Loc())
		}
		return nil

	case *Si:
		ct, err := a.analyze(node.Cond)
		if err != nil {
			return err
		}
		if ct != Boolean {
			return errTypeMismatch("si", Boolean, ct, node.Cond.Loc())
		}
		if err := (&Analyzer{scope: a.scope.Child()}).analyzeBloc(node.Body); err != nil {
			return err
		}
		if node.OrElse != nil {
			switch orelse := node.OrElse.(type) {
			case *Si:
				if err := (&Analyzer{scope: a.scope.Child()}).analyzeStatement(orelse); err != nil {
					return err
				}
			case *Bloc:
				if err := (&Analyzer{scope: a.scope.Child()}).analyzeBloc(orelse); err != nil {
					return err
				}
			}
		}
		return nil

	case *Tantque:
		ct, err := a.analyze(node.Cond)
		if err != nil {
			return err
		}
		if ct != Boolean {
			return errTypeMismatch("tantque", Boolean, ct, node.Cond.Loc())
		}
		return (&Analyzer{scope: a.scope.Child()}).analyzeBloc(node.Body)

	case *Retourner:
		rt, err := a.analyze(node.Value)
		if err != nil {
			return err
		}
		if a.scope.ParentFunction.ReturnType != rt {
			return errTypeMismatch("retourner", a.scope.ParentFunction.ReturnType, rt, node.Loc())
		}
		return nil

	case *ExprInstr:
		_, err := a.analyze(node.Expr)
		return err

	default:
		return errInternalInvariant(fmt.Sprintf("analyzer: unhandled statement type %T", n))
	}
}
