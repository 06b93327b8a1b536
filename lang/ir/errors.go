package ir

import (
	"fmt"

	"github.com/mna/sif/lang/token"
)

// CompileErrKind discriminates compile (lowering) errors. Per spec.md §7,
// all compile errors are fatal: an invalid AST shape short-circuits the
// pipeline.
type CompileErrKind int

const (
	InvalidASTShape CompileErrKind = iota
	ForOverTable
)

// CompileError is a fatal error raised while lowering the AST to bytecode.
type CompileError struct {
	Kind CompileErrKind
	Pos  token.Pos
	Msg  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("sif: compile error - %s %s", e.Pos, e.Msg)
}
