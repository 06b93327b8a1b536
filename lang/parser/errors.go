package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mna/sif/lang/token"
)

// ErrKind discriminates the parse error taxonomy of spec.md §7. TknMismatch
// and FnParmCntExceeded are fatal (parsing stops); every other kind is
// continuable (recorded, parsing resumes at the next statement boundary).
type ErrKind int

const (
	InvalidToken ErrKind = iota
	InvalidIdent
	InvalidAssignTarget
	InvalidForStructure
	InvalidIfStructure
	TknMismatch
	FnParmCntExceeded
	FnParmCntWrong
	UndeclSym
	UnassignedVarRef
	ExpectedIdent
)

// Fatal reports whether an error of this kind must stop parsing immediately.
func (k ErrKind) Fatal() bool {
	return k == TknMismatch || k == FnParmCntExceeded
}

// Error is a single parse error, positioned in the source.
type Error struct {
	Kind ErrKind
	Pos  token.Pos
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("sif: parse error - %s %s", e.Pos, e.Msg)
}

// ErrorList accumulates parse errors produced during a single parse.
type ErrorList []*Error

func (l ErrorList) Error() string {
	var sb strings.Builder
	for i, e := range l {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}

func (l ErrorList) Sort() {
	sort.Slice(l, func(i, j int) bool { return l[i].Pos < l[j].Pos })
}
