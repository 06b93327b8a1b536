package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpString(t *testing.T) {
	for op := Op(0); op < maxOp; op++ {
		s := op.String()
		require.NotEmpty(t, s)
		require.False(t, strings.Contains(s, "illegal"), "op %d missing name", op)
	}
}

func TestInstructionStringDoesNotPanic(t *testing.T) {
	ins := []Instruction{
		{Op: OpBinary, BinOp: BinAdd, S1: 1, S2: 2, D: 3},
		{Op: OpLoadC, D: 0, Val: Number(1)},
		{Op: OpJumpCnd, JumpKind: Jmpf, S: 1, Lbl: 4},
		{Op: OpFn, Name: "f", Params: []string{"a", "b"}},
		{Op: OpNop},
		{Op: OpStop},
	}
	for _, in := range ins {
		require.NotEmpty(t, in.String())
	}
}
