package main

import "testing"

func TestCompilerStateCompileProducesAssembly(t *testing.T) {
	cs := NewCompilerState(CompileOptions{sourcePath: "t.flo"})
	asm, err := cs.Compile("entier x = 5; ecrire(x);")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if asm == "" {
		t.Fatal("expected non-empty assembly output")
	}
	if cs.CurrentPhase() != StageComplete {
		t.Errorf("got phase %v, want StageComplete", cs.CurrentPhase())
	}
	if cs.Summary() == "" {
		t.Error("expected a non-empty summary")
	}
}

func TestCompilerStatePropagatesSyntaxErrors(t *testing.T) {
	cs := NewCompilerState(CompileOptions{sourcePath: "t.flo"})
	_, err := cs.Compile("entier x = ;")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
}

func TestCompilerStatePropagatesAnalysisErrors(t *testing.T) {
	cs := NewCompilerState(CompileOptions{sourcePath: "t.flo"})
	_, err := cs.Compile("entier x = Vrai;")
	cerr, ok := err.(*CompilerError)
	if !ok || cerr.Kind != KindTypeMismatch {
		t.Fatalf("got %v, want KindTypeMismatch", err)
	}
}

func TestCompilationPipelineRejectsOutOfOrderTransition(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic on an invalid stage transition")
		}
	}()
	cp := NewCompilationPipeline()
	cp.AdvanceTo(StageAnalyze) // skips StageLex/StageParse
}
