package vm

import (
	"bytes"
	"testing"

	"github.com/mna/sif/lang/ir"
	"github.com/mna/sif/lang/lower"
	"github.com/mna/sif/lang/optimize"
	"github.com/mna/sif/lang/parser"
	"github.com/stretchr/testify/require"
)

func mustRun(t *testing.T, src string) (*Thread, *bytes.Buffer) {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	out, err := lower.Lower(prog)
	require.NoError(t, err)
	optimize.Run(out)

	var buf bytes.Buffer
	th := &Thread{Stdout: &buf}
	require.NoError(t, th.Run(out))
	return th, &buf
}

func TestScenarioVarDecl(t *testing.T) {
	th, _ := mustRun(t, `var y = 0;`)
	v, ok := th.HeapValue("y")
	require.True(t, ok)
	require.Equal(t, ir.Number(0), v)
}

func TestScenarioIfElseJoin(t *testing.T) {
	th, _ := mustRun(t, `
var x = 5;
var y = 0;
x = x - 3;
if x < 3 {
	y = x * 2;
} else {
	y = x - 3;
}
var z = x + y;
`)
	x, ok := th.HeapValue("x")
	require.True(t, ok)
	require.Equal(t, ir.Number(2), x)
	y, ok := th.HeapValue("y")
	require.True(t, ok)
	require.Equal(t, ir.Number(4), y)
	z, ok := th.HeapValue("z")
	require.True(t, ok)
	require.Equal(t, ir.Number(6), z)
}

func TestScenarioForOverArray(t *testing.T) {
	th, buf := mustRun(t, `
var xs = [10, 20, 30];
for i, v in xs {
	@print(v);
}
`)
	require.Equal(t, "10\n20\n30\n", buf.String())
	i, ok := th.HeapValue("i")
	require.True(t, ok)
	require.Equal(t, ir.Number(3), i)
}

func TestScenarioRecursiveFactorial(t *testing.T) {
	th, buf := mustRun(t, `
fn f(n) {
	if n < 2 {
		return 1;
	}
	return n * f(n - 1);
}
@print(f(5));
`)
	require.Equal(t, "120\n", buf.String())
	require.Equal(t, 6, th.PeakCallDepth)
}

func TestUndefinedNameIsHeapMissError(t *testing.T) {
	code := []ir.Instruction{
		{Op: ir.OpLoadN, Name: "missing", D: 0, Line: 1},
		{Op: ir.OpStop},
	}
	prog := &ir.Program{Code: code, CodeStart: 0, CodeRegCount: 1}
	prog.RecomputeTables()

	th := &Thread{}
	err := th.Run(prog)
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	require.Equal(t, ErrHeapMiss, rerr.Kind)
	require.Contains(t, rerr.Error(), "sif: runtime error - [Line 1]")
}

func TestIncrNonNumberIsInvalidIncrDecrError(t *testing.T) {
	code := []ir.Instruction{
		{Op: ir.OpLoadC, Val: ir.String("nope"), D: 0},
		{Op: ir.OpIncrr, S: 0, Line: 2},
		{Op: ir.OpStop},
	}
	prog := &ir.Program{Code: code, CodeStart: 0, CodeRegCount: 1}
	prog.RecomputeTables()

	th := &Thread{}
	err := th.Run(prog)
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	require.Equal(t, ErrInvalidIncrDecr, rerr.Kind)
}

func TestBinaryTypeMismatchError(t *testing.T) {
	code := []ir.Instruction{
		{Op: ir.OpLoadC, Val: ir.Number(1), D: 0},
		{Op: ir.OpLoadC, Val: ir.String("x"), D: 1},
		{Op: ir.OpBinary, BinOp: ir.BinAdd, S1: 0, S2: 1, D: 2, Line: 3},
		{Op: ir.OpStop},
	}
	prog := &ir.Program{Code: code, CodeStart: 0, CodeRegCount: 3}
	prog.RecomputeTables()

	th := &Thread{}
	err := th.Run(prog)
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	require.Equal(t, ErrTypeMismatch, rerr.Kind)
}

func TestRecursiveLocalsDoNotAliasAcrossFrames(t *testing.T) {
	// Each call declares its own array literal; if StoreC shared the baked
	// *Array pointer across recursive invocations, mutating it at depth 2
	// would corrupt depth 1's array before the outer frame reads it back.
	_, buf := mustRun(t, `
fn f(n) {
	var xs = [n, n];
	if n > 0 {
		f(n - 1);
	}
	@print(xs[0]);
	return 0;
}
f(2);
`)
	require.Equal(t, "0\n1\n2\n", buf.String())
}

func TestFunctionReadsGlobal(t *testing.T) {
	th, buf := mustRun(t, `
var g = 1;
fn f() {
	return g;
}
@print(f());
`)
	_ = th
	require.Equal(t, "1\n", buf.String())
}

func TestFunctionAssignsGlobalWithoutRedeclaring(t *testing.T) {
	th, buf := mustRun(t, `
var g = 1;
fn f() {
	g = 2;
	return 0;
}
f();
@print(g);
`)
	_ = th
	require.Equal(t, "2\n", buf.String())
}

func TestLocalShadowsGlobalOfSameName(t *testing.T) {
	th, buf := mustRun(t, `
var g = 1;
fn f() {
	var g = 2;
	return g;
}
@print(f());
@print(g);
`)
	_ = th
	require.Equal(t, "2\n1\n", buf.String())
}

func TestTableLiteralReadAndWrite(t *testing.T) {
	th, buf := mustRun(t, `
var t = [[ a => 1, b => 2 ]];
@print(t.a);
@print(t.b);
`)
	_ = th
	require.Equal(t, "1\n2\n", buf.String())
}
