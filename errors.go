// Completion: 100% - Error handling complete, one CompilerError per §7 kind
package main

import "fmt"

// ErrorKind is the closed set of error kinds from spec.md §7, plus
// KindSyntaxError for the lexer/parser front end this repo owns
// (expansion — spec.md treats the grammar as an external collaborator
// and does not name a syntax-error kind of its own).
type ErrorKind int

const (
	KindUnresolvedName ErrorKind = iota
	KindTypeMismatch
	KindArityMismatch
	KindArgumentTypeMismatch
	KindUnresolvedLabel
	KindDuplicateLabel
	KindInternalInvariant
	KindSyntaxError
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnresolvedName:
		return "unresolved name"
	case KindTypeMismatch:
		return "type mismatch"
	case KindArityMismatch:
		return "arity mismatch"
	case KindArgumentTypeMismatch:
		return "argument type mismatch"
	case KindUnresolvedLabel:
		return "unresolved label"
	case KindDuplicateLabel:
		return "duplicate label"
	case KindInternalInvariant:
		return "internal invariant violated"
	case KindSyntaxError:
		return "syntax error"
	default:
		return "unknown error"
	}
}

// SourceLocation pinpoints a position in source code. spec.md requires
// only a descriptive message; a location is carried anyway because the
// hand-written lexer/parser in this repo tracks positions for free, and
// a located message is strictly more useful to a caller than a bare one.
type SourceLocation struct {
	File   string
	Line   int
	Column int
	Length int
}

func (loc SourceLocation) String() string {
	if loc.File == "" && loc.Line == 0 {
		return "?"
	}
	if loc.File == "" {
		return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
	}
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Column)
}

// CompilerError is the single fatal-error type produced anywhere in the
// pipeline. There is no structured recovery: the first CompilerError
// aborts the stage that raised it (spec.md §7).
type CompilerError struct {
	Kind     ErrorKind
	Message  string
	Location SourceLocation
}

func (e *CompilerError) Error() string {
	if e.Location.String() == "?" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Location, e.Kind, e.Message)
}

func errUnresolvedName(name string, loc SourceLocation) *CompilerError {
	return &CompilerError{Kind: KindUnresolvedName, Message: fmt.Sprintf("undeclared name %q", name), Location: loc}
}

func errTypeMismatch(context string, expected, actual fmt.Stringer, loc SourceLocation) *CompilerError {
	return &CompilerError{
		Kind:     KindTypeMismatch,
		Message:  fmt.Sprintf("%s: expected %s, got %s", context, expected, actual),
		Location: loc,
	}
}

func errArityMismatch(funcName string, got, want int, loc SourceLocation) *CompilerError {
	return &CompilerError{
		Kind:     KindArityMismatch,
		Message:  fmt.Sprintf("call to %q with %d arguments instead of %d", funcName, got, want),
		Location: loc,
	}
}

func errArgumentTypeMismatch(funcName string, argIdx int, got Type, want TypeSet, loc SourceLocation) *CompilerError {
	return &CompilerError{
		Kind:     KindArgumentTypeMismatch,
		Message:  fmt.Sprintf("argument %d of call to %q has type %s instead of %s", argIdx, funcName, got, want),
		Location: loc,
	}
}

func errUnresolvedLabel(name string) *CompilerError {
	return &CompilerError{Kind: KindUnresolvedLabel, Message: fmt.Sprintf("label %q not found", name)}
}

func errDuplicateLabel(name string) *CompilerError {
	return &CompilerError{Kind: KindDuplicateLabel, Message: fmt.Sprintf("label %q already reserved", name)}
}

func errInternalInvariant(message string) *CompilerError {
	return &CompilerError{Kind: KindInternalInvariant, Message: message}
}

func errSyntax(message string, loc SourceLocation) *CompilerError {
	return &CompilerError{Kind: KindSyntaxError, Message: message, Location: loc}
}
