package main

import "testing"

func TestTokenizeKeywordsAndIdents(t *testing.T) {
	toks, err := NewLexer("entier x = 3;", "t.flo").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []TokType{TokKeyword, TokIdent, TokAssign, TokNumber, TokSemi, TokEOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got type %v, want %v (%q)", i, toks[i].Type, tt, toks[i].Text)
		}
	}
}

func TestTokenizeTwoCharOperators(t *testing.T) {
	toks, err := NewLexer("== != <= >= < >", "t.flo").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []TokType{TokEq, TokNe, TokLe, TokGe, TokLt, TokGt, TokEOF}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Type, tt)
		}
	}
}

func TestTokenizeSkipsLineComments(t *testing.T) {
	toks, err := NewLexer("entier x; // this is a comment\nx;", "t.flo").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	for _, tok := range toks {
		if tok.Text == "this" || tok.Text == "comment" {
			t.Fatalf("comment text leaked into tokens: %+v", toks)
		}
	}
}

func TestTokenizeRejectsBangWithoutEquals(t *testing.T) {
	_, err := NewLexer("!x", "t.flo").Tokenize()
	if err == nil {
		t.Fatal("expected a syntax error for bare '!'")
	}
}

func TestTokenizeBuiltinKeywords(t *testing.T) {
	toks, err := NewLexer("Vrai Faux lire ecrire et ou non", "t.flo").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	for i := 0; i < len(toks)-1; i++ {
		if toks[i].Type != TokKeyword {
			t.Errorf("token %d (%q) should lex as a keyword", i, toks[i].Text)
		}
	}
}
