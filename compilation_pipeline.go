// compilation_pipeline.go - Explicit compilation stages with validation
package main

import (
	"fmt"
	"os"
)

// CompilationStage represents a stage in the whole-program compilation
// pipeline (spec.md §4: Lex -> Parse -> Analyze -> Codegen -> Optimize
// -> Emit).
type CompilationStage int

const (
	StageInit CompilationStage = iota
	StageLex
	StageParse
	StageAnalyze
	StageCodegen
	StageOptimize
	StageEmit
	StageComplete
)

func (s CompilationStage) String() string {
	switch s {
	case StageInit:
		return "Initialization"
	case StageLex:
		return "Lexing"
	case StageParse:
		return "Parsing"
	case StageAnalyze:
		return "Scope & Type Analysis"
	case StageCodegen:
		return "Code Generation"
	case StageOptimize:
		return "Peephole Optimization"
	case StageEmit:
		return "Assembly Emission"
	case StageComplete:
		return "Compilation Complete"
	default:
		return fmt.Sprintf("Unknown Stage %d", s)
	}
}

// CompilationPipeline tracks the current stage and validates state transitions
type CompilationPipeline struct {
	currentStage CompilationStage
	stages       []CompilationStage // History of stages
	enabled      bool               // Can be disabled for performance
}

func NewCompilationPipeline() *CompilationPipeline {
	return &CompilationPipeline{
		currentStage: StageInit,
		stages:       []CompilationStage{StageInit},
		enabled:      true,
	}
}

func (cp *CompilationPipeline) AdvanceTo(stage CompilationStage) {
	if !cp.enabled {
		cp.currentStage = stage
		return
	}

	// Validate stage transitions
	validTransition := false
	switch cp.currentStage {
	case StageInit:
		validTransition = (stage == StageLex)
	case StageLex:
		validTransition = (stage == StageParse)
	case StageParse:
		validTransition = (stage == StageAnalyze)
	case StageAnalyze:
		validTransition = (stage == StageCodegen)
	case StageCodegen:
		validTransition = (stage == StageOptimize)
	case StageOptimize:
		validTransition = (stage == StageEmit)
	case StageEmit:
		validTransition = (stage == StageComplete)
	case StageComplete:
		validTransition = false // Can't advance from complete
	}

	if !validTransition {
		fmt.Fprintf(os.Stderr, "ERROR: Invalid stage transition: %s -> %s\n", cp.currentStage, stage)
		fmt.Fprintf(os.Stderr, "Stage history:\n")
		for i, s := range cp.stages {
			fmt.Fprintf(os.Stderr, "  %d. %s\n", i+1, s)
		}
		panic(fmt.Sprintf("Invalid compilation stage transition: %s -> %s", cp.currentStage, stage))
	}

	cp.currentStage = stage
	cp.stages = append(cp.stages, stage)

	if VerboseMode {
		fmt.Fprintf(os.Stderr, "PIPELINE: Advanced to stage: %s\n", stage)
	}
}

func (cp *CompilationPipeline) CurrentStage() CompilationStage {
	return cp.currentStage
}

func (cp *CompilationPipeline) ValidateStage(expected CompilationStage, operation string) {
	if !cp.enabled {
		return
	}

	if cp.currentStage != expected {
		fmt.Fprintf(os.Stderr, "ERROR: Attempted '%s' at wrong stage\n", operation)
		fmt.Fprintf(os.Stderr, "  Expected: %s\n", expected)
		fmt.Fprintf(os.Stderr, "  Actual: %s\n", cp.currentStage)
		panic(fmt.Sprintf("Invalid operation '%s' at stage %s", operation, cp.currentStage))
	}
}

// Checkpoint creates a named checkpoint for debugging
func (cp *CompilationPipeline) Checkpoint(name string) {
	if VerboseMode {
		fmt.Fprintf(os.Stderr, "PIPELINE CHECKPOINT: %s at stage %s\n", name, cp.currentStage)
	}
}
