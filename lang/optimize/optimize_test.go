package optimize

import (
	"testing"

	"github.com/mna/sif/lang/ir"
	"github.com/mna/sif/lang/lower"
	"github.com/mna/sif/lang/parser"
	"github.com/stretchr/testify/require"
)

func mustLowerProgram(t *testing.T, src string) *ir.Program {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	out, err := lower.Lower(prog)
	require.NoError(t, err)
	return out
}

func TestOptimizeRemovesNoOps(t *testing.T) {
	out := mustLowerProgram(t, `
var x = 1;
if x < 10 {
	x = 2;
}
@print(x);
`)
	Run(out)
	for _, in := range out.Combined() {
		require.NotEqual(t, ir.OpNop, in.Op, "no Nop should survive the pipeline")
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	out := mustLowerProgram(t, `
fn fact(n) {
	if n <= 1 {
		return 1;
	}
	return n * fact(n - 1);
}
var r = fact(5);
@print(r);
`)
	Run(out)
	first := append([]ir.Instruction(nil), out.Combined()...)
	Run(out)
	require.Equal(t, first, out.Combined(), "a second optimization pass should be a no-op")
}

func TestOptimizeKeepsAllJumpTargetsResolvable(t *testing.T) {
	out := mustLowerProgram(t, `
var x = 1;
if x < 10 {
	x = 2;
} elif x < 20 {
	x = 3;
} else {
	x = 4;
}
@print(x);
`)
	Run(out)
	combined := out.Combined()
	for _, in := range combined {
		if !in.IsJump() {
			continue
		}
		idx, ok := out.JumpTab[in.Lbl]
		require.True(t, ok, "jump target label %d must resolve after optimization", in.Lbl)
		require.Less(t, idx, len(combined))
	}
}

func TestOptimizeCollapsesPushPopIntoMove(t *testing.T) {
	code := []ir.Instruction{
		{Op: ir.OpLoadC, D: 0, Val: ir.Number(1), Label: 0},
		{Op: ir.OpFnStackPush, S: 0, Label: 0},
		{Op: ir.OpFnStackPop, D: 1, Label: 0},
		{Op: ir.OpStop, Label: 0},
	}
	prog := &ir.Program{Code: code, CodeStart: 0}
	prog.RecomputeTables()
	Run(prog)

	require.True(t, containsMv(prog.Combined(), 0, 1))
	for _, in := range prog.Combined() {
		require.NotEqual(t, ir.OpFnStackPush, in.Op)
		require.NotEqual(t, ir.OpFnStackPop, in.Op)
	}
}

func containsMv(code []ir.Instruction, s, d int) bool {
	for _, in := range code {
		if in.Op == ir.OpMv && in.S == s && in.D == d {
			return true
		}
	}
	return false
}
