package lexer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mna/sif/lang/token"
)

// Error is a single lex error: an unrecognized character or an unterminated
// string literal. Both are continuable — the lexer records the error and
// advances (spec.md §7).
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s lex error - %s %s", "sif:", e.Pos, e.Msg)
}

// ErrorList accumulates lex errors across a scan, modeled on the
// accumulate-then-sort idiom of the teacher's lang/scanner.ErrorList (itself
// aliased from go/scanner.ErrorList there); sif's version is self-contained
// since lang/token.Pos is not go/token.Position.
type ErrorList []*Error

// Add appends a new error to the list.
func (l *ErrorList) Add(pos token.Pos, msg string) {
	*l = append(*l, &Error{Pos: pos, Msg: msg})
}

// Sort orders the list by source position.
func (l ErrorList) Sort() {
	sort.Slice(l, func(i, j int) bool { return l[i].Pos < l[j].Pos })
}

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

// Err returns l as an error if it is non-empty, else nil.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
