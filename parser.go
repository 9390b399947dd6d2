// Completion: 100% - Recursive-descent parser, produces the §6 node shape
package main

import (
	"fmt"
)

// Parser builds the AST described in ast.go from a flat token stream.
type Parser struct {
	toks []Tok
	pos  int
	file string
}

// NewParser creates a parser over an already-tokenized source.
func NewParser(toks []Tok, file string) *Parser {
	return &Parser{toks: toks, file: file}
}

// Parse lexes and parses source text into a *Programme.
func Parse(source, file string) (*Programme, error) {
	toks, err := NewLexer(source, file).Tokenize()
	if err != nil {
		return nil, err
	}
	p := NewParser(toks, file)
	return p.ParseProgramme()
}

func (p *Parser) cur() Tok            { return p.toks[p.pos] }
func (p *Parser) loc() SourceLocation { return p.cur().loc(p.file) }

// peekAt returns the token `n` positions ahead, or the trailing EOF
// token if that would run past the end of the stream.
func (p *Parser) peekAt(n int) Tok {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) at(tt TokType) bool { return p.cur().Type == tt }

func (p *Parser) atKeyword(kw string) bool {
	return p.cur().Type == TokKeyword && p.cur().Text == kw
}

func (p *Parser) advance() Tok {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(tt TokType, what string) (Tok, error) {
	if !p.at(tt) {
		return Tok{}, errSyntax(fmt.Sprintf("expected %s, got %q", what, p.cur().Text), p.loc())
	}
	return p.advance(), nil
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.atKeyword(kw) {
		return errSyntax(fmt.Sprintf("expected %q, got %q", kw, p.cur().Text), p.loc())
	}
	p.advance()
	return nil
}

// ParseProgramme parses the whole token stream as a programme node.
func (p *Parser) ParseProgramme() (*Programme, error) {
	start := p.loc()
	body, err := p.parseBlocItems(true)
	if err != nil {
		return nil, err
	}
	if !p.at(TokEOF) {
		return nil, errSyntax(fmt.Sprintf("unexpected trailing token %q", p.cur().Text), p.loc())
	}
	return &Programme{base: base{loc: start}, Body: body}, nil
}

// parseBlocItems parses statements and function definitions until a
// closing brace or EOF (top == true means "until EOF").
func (p *Parser) parseBlocItems(top bool) (*Bloc, error) {
	start := p.loc()
	var items []Node
	for {
		if top {
			if p.at(TokEOF) {
				break
			}
		} else if p.at(TokRBrace) || p.at(TokEOF) {
			break
		}
		if p.isFunctionStart() {
			fn, err := p.parseFonction()
			if err != nil {
				return nil, err
			}
			items = append(items, fn)
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		items = append(items, stmt)
	}
	return &Bloc{base: base{loc: start}, Items: items}, nil
}

// parseBraceBloc parses `{ items }`.
func (p *Parser) parseBraceBloc() (*Bloc, error) {
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	b, err := p.parseBlocItems(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRBrace, "'}'"); err != nil {
		return nil, err
	}
	return b, nil
}

// isFunctionStart reports whether the parser is positioned at
// `type NOM (` — the only construct that disambiguates a function
// definition from a declaration statement (which has the same type/name
// prefix but no argument list).
func (p *Parser) isFunctionStart() bool {
	if p.cur().Type != TokKeyword || !isTypeKeyword(p.cur().Text) {
		return false
	}
	if p.peekAt(1).Type != TokIdent {
		return false
	}
	return p.peekAt(2).Type == TokLParen
}

func isTypeKeyword(s string) bool {
	return s == "entier" || s == "booleen"
}

func (p *Parser) parseFonction() (*Fonction, error) {
	start := p.loc()
	retTypeTok := p.advance() // entier|booleen
	nameTok := p.advance()
	name := &Token{base: base{loc: nameTok.loc(p.file)}, Kind: "NOM", Value: nameTok.Text}
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	var args []*Arg
	for !p.at(TokRParen) {
		if len(args) > 0 {
			if _, err := p.expect(TokComma, "','"); err != nil {
				return nil, err
			}
		}
		argTypeTok := p.cur()
		if !isTypeKeyword(argTypeTok.Text) || argTypeTok.Type != TokKeyword {
			return nil, errSyntax("expected a parameter type", p.loc())
		}
		p.advance()
		argNameTok, err := p.expect(TokIdent, "parameter name")
		if err != nil {
			return nil, err
		}
		args = append(args, &Arg{
			base:     base{loc: argTypeTok.loc(p.file)},
			TypeName: argTypeTok.Text,
			Name:     &Token{base: base{loc: argNameTok.loc(p.file)}, Kind: "NOM", Value: argNameTok.Text},
		})
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBraceBloc()
	if err != nil {
		return nil, err
	}
	return &Fonction{
		base:       base{loc: start},
		ReturnType: retTypeTok.Text,
		Name:       name,
		Args:       args,
		Body:       body,
	}, nil
}

func (p *Parser) parseStatement() (Node, error) {
	switch {
	case p.cur().Type == TokKeyword && isTypeKeyword(p.cur().Text):
		return p.parseDecl()
	case p.atKeyword("si"):
		return p.parseSi()
	case p.atKeyword("tantque"):
		return p.parseTantque()
	case p.atKeyword("retourner"):
		return p.parseRetourner()
	case p.cur().Type == TokIdent && p.peekAt(1).Type == TokAssign:
		return p.parseAffectation()
	default:
		return p.parseExprInstr()
	}
}

func (p *Parser) parseDecl() (*Decl, error) {
	start := p.loc()
	typeTok := p.advance()
	nameTok, err := p.expect(TokIdent, "variable name")
	if err != nil {
		return nil, err
	}
	var value Node
	if p.at(TokAssign) {
		p.advance()
		value, err = p.parseExprOu()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	return &Decl{
		base:     base{loc: start},
		TypeName: typeTok.Text,
		Name:     &Token{base: base{loc: nameTok.loc(p.file)}, Kind: "NOM", Value: nameTok.Text},
		Value:    value,
	}, nil
}

func (p *Parser) parseAffectation() (*Affectation, error) {
	start := p.loc()
	nameTok := p.advance()
	if _, err := p.expect(TokAssign, "'='"); err != nil {
		return nil, err
	}
	value, err := p.parseExprOu()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	return &Affectation{
		base:  base{loc: start},
		Var:   &Token{base: base{loc: nameTok.loc(p.file)}, Kind: "NOM", Value: nameTok.Text},
		Value: value,
	}, nil
}

func (p *Parser) parseSi() (*Si, error) {
	start := p.loc()
	p.advance() // si
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExprOu()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBraceBloc()
	if err != nil {
		return nil, err
	}
	si := &Si{base: base{loc: start}, Cond: cond, Body: body}
	if p.atKeyword("sinon") {
		p.advance()
		if p.atKeyword("si") {
			nested, err := p.parseSi()
			if err != nil {
				return nil, err
			}
			si.OrElse = nested
		} else {
			elseBody, err := p.parseBraceBloc()
			if err != nil {
				return nil, err
			}
			si.OrElse = elseBody
		}
	}
	return si, nil
}

func (p *Parser) parseTantque() (*Tantque, error) {
	start := p.loc()
	p.advance() // tantque
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExprOu()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBraceBloc()
	if err != nil {
		return nil, err
	}
	return &Tantque{base: base{loc: start}, Cond: cond, Body: body}, nil
}

func (p *Parser) parseRetourner() (*Retourner, error) {
	start := p.loc()
	p.advance() // retourner
	val, err := p.parseExprOu()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	return &Retourner{base: base{loc: start}, Value: val}, nil
}

func (p *Parser) parseExprInstr() (*ExprInstr, error) {
	start := p.loc()
	expr, err := p.parseExprOu()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokSemi, "';'"); err != nil {
		return nil, err
	}
	return &ExprInstr{base: base{loc: start}, Expr: expr}, nil
}

// --- expression grammar, lowest to highest precedence ---

func (p *Parser) parseExprOu() (Node, error) {
	start := p.loc()
	left, err := p.parseExprEt()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("ou") {
		p.advance()
		right, err := p.parseExprEt()
		if err != nil {
			return nil, err
		}
		left = &OuExpr{base: base{loc: start}, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseExprEt() (Node, error) {
	start := p.loc()
	left, err := p.parseExprNon()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("et") {
		p.advance()
		right, err := p.parseExprNon()
		if err != nil {
			return nil, err
		}
		left = &EtExpr{base: base{loc: start}, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseExprNon() (Node, error) {
	if p.atKeyword("non") {
		start := p.loc()
		p.advance()
		val, err := p.parseExprNon()
		if err != nil {
			return nil, err
		}
		return &NonExpr{base: base{loc: start}, Op: "non", Val: val}, nil
	}
	return p.parseExprRel()
}

var relOps = map[string]bool{"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}

func (p *Parser) parseExprRel() (Node, error) {
	start := p.loc()
	left, err := p.parseExprAdd()
	if err != nil {
		return nil, err
	}
	if op, ok := p.relOpText(); ok {
		p.advance()
		right, err := p.parseExprAdd()
		if err != nil {
			return nil, err
		}
		return &BinExpr{base: base{loc: start}, TagName: "expr_rel", Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) relOpText() (string, bool) {
	switch p.cur().Type {
	case TokEq:
		return "==", true
	case TokNe:
		return "!=", true
	case TokLt:
		return "<", true
	case TokLe:
		return "<=", true
	case TokGt:
		return ">", true
	case TokGe:
		return ">=", true
	default:
		return "", false
	}
}

func (p *Parser) parseExprAdd() (Node, error) {
	start := p.loc()
	left, err := p.parseExprMul()
	if err != nil {
		return nil, err
	}
	for p.at(TokPlus) || p.at(TokMinus) {
		op := p.advance().Text
		right, err := p.parseExprMul()
		if err != nil {
			return nil, err
		}
		left = &BinExpr{base: base{loc: start}, TagName: "expr_add", Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseExprMul() (Node, error) {
	start := p.loc()
	left, err := p.parseExprUnaire()
	if err != nil {
		return nil, err
	}
	for p.at(TokStar) || p.at(TokSlash) || p.at(TokPercent) {
		op := p.advance().Text
		right, err := p.parseExprUnaire()
		if err != nil {
			return nil, err
		}
		left = &BinExpr{base: base{loc: start}, TagName: "expr_mul", Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseExprUnaire() (Node, error) {
	if p.at(TokMinus) {
		start := p.loc()
		p.advance()
		val, err := p.parseExprUnaire()
		if err != nil {
			return nil, err
		}
		return &UnaireExpr{base: base{loc: start}, Op: "-", Val: val}, nil
	}
	return p.parseAppelOrPrimaire()
}

func (p *Parser) parseAppelOrPrimaire() (Node, error) {
	start := p.loc()
	isName := p.cur().Type == TokIdent || p.atKeyword("lire") || p.atKeyword("ecrire")
	if isName && p.peekAt(1).Type == TokLParen {
		nameTok := p.advance()
		p.advance() // (
		var args []Node
		for !p.at(TokRParen) {
			if len(args) > 0 {
				if _, err := p.expect(TokComma, "','"); err != nil {
					return nil, err
				}
			}
			arg, err := p.parseExprOu()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if _, err := p.expect(TokRParen, "')'"); err != nil {
			return nil, err
		}
		return &Appel{
			base: base{loc: start},
			Name: &Token{base: base{loc: nameTok.loc(p.file)}, Kind: "NOM", Value: nameTok.Text},
			Args: args,
		}, nil
	}
	return p.parsePrimaire()
}

func (p *Parser) parsePrimaire() (Node, error) {
	start := p.loc()
	switch p.cur().Type {
	case TokNumber:
		tok := p.advance()
		n, err := parseDecimal(tok.Text)
		if err != nil {
			return nil, errSyntax(err.Error(), tok.loc(p.file))
		}
		return &Token{base: base{loc: start}, Kind: "ENTIER", Value: tok.Text, Int: n}, nil
	case TokKeyword:
		if p.cur().Text == "Vrai" || p.cur().Text == "Faux" {
			tok := p.advance()
			return &Token{base: base{loc: start}, Kind: "BOOLEEN", Value: tok.Text}, nil
		}
		return nil, errSyntax(fmt.Sprintf("unexpected keyword %q in expression", p.cur().Text), p.loc())
	case TokIdent:
		tok := p.advance()
		return &Variable{base: base{loc: start}, Name: &Token{base: base{loc: tok.loc(p.file)}, Kind: "NOM", Value: tok.Text}}, nil
	case TokLParen:
		p.advance()
		expr, err := p.parseExprOu()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen, "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, errSyntax(fmt.Sprintf("unexpected token %q in expression", p.cur().Text), p.loc())
	}
}

func parseDecimal(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid integer literal %q", s)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
