// compiler_state.go - Central state management for compilation
package main

import (
	"fmt"
	"os"
)

// CompileOptions configures a single compilation run (expansion — see
// SPEC_FULL.md §4.5's CLI driver).
type CompileOptions struct {
	sourcePath string
	verbose    bool
	maxPasses  int
	report     bool
}

// CompilerState coordinates the six pipeline stages (lex, parse,
// analyze, codegen, optimize, emit) for one source
// file and carries the debug-only trackers that assert invariants when
// running verbose (spec.md §4.6/§4.7, expansion).
type CompilerState struct {
	options CompileOptions

	programme *Programme
	instrs    *Program

	regTracker   *ScratchRegisterTracker
	stackTracker *StackValidator

	pipeline *CompilationPipeline

	phase     CompilationStage
	passCount int
}

// NewCompilerState creates a new compiler state with all components
// initialized for a single compilation run.
func NewCompilerState(options CompileOptions) *CompilerState {
	return &CompilerState{
		options:      options,
		regTracker:   NewScratchRegisterTracker(),
		stackTracker: NewStackValidator(),
		pipeline:     NewCompilationPipeline(),
		phase:        StageInit,
	}
}

// TransitionPhase advances to a new compilation stage, validating the
// transition and logging it when verbose.
func (cs *CompilerState) TransitionPhase(newPhase CompilationStage) {
	cs.pipeline.AdvanceTo(newPhase)
	cs.phase = newPhase

	if cs.options.verbose {
		fmt.Fprintf(os.Stderr, "=== Phase Transition: %v ===\n", newPhase)
	}
}

// CurrentPhase returns the current compilation phase.
func (cs *CompilerState) CurrentPhase() CompilationStage {
	return cs.phase
}

// Compile runs the whole pipeline over source text and returns the
// final NASM assembly text.
func (cs *CompilerState) Compile(source string) (string, error) {
	cs.TransitionPhase(StageLex)
	toks, err := NewLexer(source, cs.options.sourcePath).Tokenize()
	if err != nil {
		return "", err
	}

	cs.TransitionPhase(StageParse)
	prog, err := NewParser(toks, cs.options.sourcePath).ParseProgramme()
	if err != nil {
		return "", err
	}
	cs.programme = prog

	cs.TransitionPhase(StageAnalyze)
	if err := AnalyzeProgramme(prog); err != nil {
		return "", err
	}

	cs.TransitionPhase(StageCodegen)
	instrs, err := Generate(prog)
	if err != nil {
		return "", err
	}
	cs.instrs = instrs
	if cs.options.verbose {
		if err := cs.stackTracker.Validate(instrs); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		if err := cs.regTracker.Validate(instrs); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	cs.TransitionPhase(StageOptimize)
	cs.passCount = Optimize(instrs, cs.options.verbose, cs.options.maxPasses)

	cs.TransitionPhase(StageEmit)
	asm := instrs.Assembly()

	cs.TransitionPhase(StageComplete)
	return asm, nil
}

// Summary returns a human-readable report of the run, used by the
// CLI's -report flag.
func (cs *CompilerState) Summary() string {
	return fmt.Sprintf(
		"CompilerState:\n"+
			"  Source: %s\n"+
			"  Phase: %v\n"+
			"  Instructions: %d\n"+
			"  Optimizer passes: %d\n",
		cs.options.sourcePath,
		cs.phase,
		len(cs.instrs.Instrs),
		cs.passCount,
	)
}
