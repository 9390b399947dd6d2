// Completion: 100% - AST complete, mirrors the external node-tag contract
package main

// Node is the common interface for every tree node produced by the
// parser and consumed by the analyzer, generator, and optimizer.
// Interior nodes carry a Tag from the `data` vocabulary of spec.md §6;
// leaf tokens carry a Tag from {ENTIER, BOOLEEN, NOM}. Annotation
// fields (Type, Scope) are attached in place, mirroring the original's
// practice of mutating parse-tree nodes rather than keeping a side
// table — see Design Note "AST annotation".
type Node interface {
	Tag() string
	Loc() SourceLocation
}

type base struct {
	loc SourceLocation
}

func (b base) Loc() SourceLocation { return b.loc }

// Token is a leaf node: an integer literal, boolean literal, or name.
type Token struct {
	base
	Kind  string // "ENTIER", "BOOLEEN", "NOM"
	Value string // textual value; for ENTIER also parseable as int
	Int   int    // parsed value when Kind == "ENTIER"

	Type Type // annotated by the analyzer
}

func (t *Token) Tag() string { return t.Kind }

// Programme is the root node: a Bloc.
type Programme struct {
	base
	Body *Bloc
}

func (p *Programme) Tag() string { return "programme" }

// Bloc is a sequence of statements and function definitions.
type Bloc struct {
	base
	Items []Node // Statement or *Fonction, in source order

	// annotated by the analyzer:
	Scope *Scope
	Stmts []Node // the non-function items, in source order
	Funcs []*Fonction
}

func (b *Bloc) Tag() string { return "bloc" }

// Fonction is a function definition.
type Fonction struct {
	base
	ReturnType string // keyword text, e.g. "entier"
	Name       *Token
	Args       []*Arg
	Body       *Bloc

	// annotated by the analyzer:
	FuncObj   *Function
	Scope     *Scope // parameter/linkage scope
	BodyScope *Scope // nested scope the body is analyzed in
}

func (f *Fonction) Tag() string { return "fonction" }

// Arg is a single (type, name) parameter in a function signature.
type Arg struct {
	base
	TypeName string
	Name     *Token
}

func (a *Arg) Tag() string { return "arg" }

// Decl is `type name (= expr)?;`.
type Decl struct {
	base
	TypeName string
	Name     *Token
	Value    Node // nil if no initializer
}

func (d *Decl) Tag() string { return "decl" }

// Affectation is `name = expr;`.
type Affectation struct {
	base
	Var   *Token
	Value Node
}

func (a *Affectation) Tag() string { return "affectation" }

// Si is `si (cond) { bloc } (sinon (si | bloc))?`.
type Si struct {
	base
	Cond   Node
	Body   *Bloc
	OrElse Node // nil, *Si, or *Bloc
}

func (s *Si) Tag() string { return "si" }

// Tantque is `tantque (cond) { bloc }`.
type Tantque struct {
	base
	Cond Node
	Body *Bloc
}

func (t *Tantque) Tag() string { return "tantque" }

// Retourner is `retourner expr;`.
type Retourner struct {
	base
	Value Node
}

func (r *Retourner) Tag() string { return "retourner" }

// ExprInstr is an expression used as a statement: `expr;`.
type ExprInstr struct {
	base
	Expr Node
}

func (e *ExprInstr) Tag() string { return "expr_instr" }

// Appel is a function call `nom(args...)`.
type Appel struct {
	base
	Name *Token
	Args []Node

	// annotated by the analyzer:
	Type Type
}

func (a *Appel) Tag() string { return "appel" }

// Variable is a bare name used as a value.
type Variable struct {
	base
	Name *Token

	Type Type
}

func (v *Variable) Tag() string { return "variable" }

// BinExpr covers expr_add, expr_mul, and expr_rel — a binary
// operator over two subexpressions, distinguished by Tag.
type BinExpr struct {
	base
	TagName string // "expr_add", "expr_mul", "expr_rel"
	Op      string
	Left    Node
	Right   Node

	Type Type
}

func (b *BinExpr) Tag() string { return b.TagName }

// UnaireExpr is `- expr` (spec.md's expr_unaire).
type UnaireExpr struct {
	base
	Op  string
	Val Node

	Type Type
}

func (u *UnaireExpr) Tag() string { return "expr_unaire" }

// OuExpr is `lhs ou rhs`.
type OuExpr struct {
	base
	Left, Right Node
	Type        Type
}

func (o *OuExpr) Tag() string { return "expr_ou" }

// EtExpr is `lhs et rhs`.
type EtExpr struct {
	base
	Left, Right Node
	Type        Type
}

func (e *EtExpr) Tag() string { return "expr_et" }

// NonExpr is `non expr`. Per Design Note (d) the tree shape is a
// two-child node whose first child is the operator token; Op is kept
// as a field here but Val is the only operand that matters semantically.
type NonExpr struct {
	base
	Op   string
	Val  Node
	Type Type
}

func (n *NonExpr) Tag() string { return "expr_non" }
