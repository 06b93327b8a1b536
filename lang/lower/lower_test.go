package lower

import (
	"testing"

	"github.com/mna/sif/lang/ir"
	"github.com/mna/sif/lang/parser"
	"github.com/stretchr/testify/require"
)

func mustLower(t *testing.T, src string) *ir.Program {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	out, err := Lower(prog)
	require.NoError(t, err)
	return out
}

func hasOp(code []ir.Instruction, op ir.Op) bool {
	for _, in := range code {
		if in.Op == op {
			return true
		}
	}
	return false
}

func countOp(code []ir.Instruction, op ir.Op) int {
	n := 0
	for _, in := range code {
		if in.Op == op {
			n++
		}
	}
	return n
}

func TestLowerVarDeclAndStdCall(t *testing.T) {
	out := mustLower(t, `var x = 1 + 2; @print(x);`)
	require.True(t, hasOp(out.Code, ir.OpBinary))
	require.True(t, hasOp(out.Code, ir.OpStoreR))
	require.True(t, hasOp(out.Code, ir.OpStdCall))
	for _, in := range out.Code {
		if in.Op == ir.OpStdCall {
			require.Equal(t, "print", in.Name)
			require.Equal(t, 1, in.NArgs)
		}
	}
}

func TestLowerNoPlaceholderLabelsSurvive(t *testing.T) {
	out := mustLower(t, `
var x = 1;
if x < 10 {
	x = x + 1;
} elif x < 20 {
	x = x + 2;
} else {
	x = x + 3;
}
@print(x);
`)
	for _, in := range out.Combined() {
		if in.IsJump() {
			require.NotEqual(t, ir.MaxLabel, in.Lbl, "unpatched forward jump: %s", in)
		}
	}
	require.True(t, countOp(out.Code, ir.OpJumpCnd) >= 2)
	require.True(t, hasOp(out.Code, ir.OpJumpA))
}

func TestLowerForLoopOverArray(t *testing.T) {
	out := mustLower(t, `
var a = [1, 2, 3];
for i, v in a {
	@print(v);
}
`)
	require.True(t, hasOp(out.Code, ir.OpLoadArrs))
	require.True(t, hasOp(out.Code, ir.OpLoadArrv))
	require.True(t, hasOp(out.Code, ir.OpIncrr))
	jumpBack := false
	for idx, in := range out.Code {
		if in.Op == ir.OpJumpCnd && in.JumpKind == ir.Jmpt {
			target, ok := out.JumpTab[in.Lbl]
			require.True(t, ok)
			if target < idx {
				jumpBack = true
			}
		}
	}
	require.True(t, jumpBack, "expected a backward conditional jump closing the loop")
}

func TestLowerForOverTableRejected(t *testing.T) {
	prog, err := parser.Parse([]byte(`
var t = [[ a => 1 ]];
for i, v in t {
	@print(v);
}
`))
	require.NoError(t, err)
	_, err = Lower(prog)
	require.Error(t, err)
	cerr, ok := err.(*ir.CompileError)
	require.True(t, ok)
	require.Equal(t, ir.ForOverTable, cerr.Kind)
}

func TestLowerRecursiveFunction(t *testing.T) {
	out := mustLower(t, `
fn fact(n) {
	if n <= 1 {
		return 1;
	}
	return n * fact(n - 1);
}
var r = fact(5);
@print(r);
`)
	var fnHdr *ir.Instruction
	for i := range out.Decls {
		if out.Decls[i].Op == ir.OpFn && out.Decls[i].Name == "fact" {
			fnHdr = &out.Decls[i]
		}
	}
	require.NotNil(t, fnHdr)
	require.Equal(t, []string{"n"}, fnHdr.Params)
	require.Greater(t, fnHdr.RegCount, 0)

	idx, ok := out.FnTab["fact"]
	require.True(t, ok)
	require.Equal(t, *fnHdr, out.Combined()[idx])

	require.True(t, hasOp(out.Decls, ir.OpCall))
	require.True(t, hasOp(out.Decls, ir.OpFnStackPush))
	require.True(t, hasOp(out.Decls, ir.OpFnRet))
	require.True(t, hasOp(out.Code, ir.OpCall))
}

func TestLowerTableLiteralAndAccess(t *testing.T) {
	out := mustLower(t, `
var t = [[ a => 1, b => 2 ]];
@print(t.a);
`)
	require.True(t, hasOp(out.Code, ir.OpTblI))
	require.True(t, hasOp(out.Code, ir.OpTblG))
}

func TestLowerCodeEndsWithStop(t *testing.T) {
	out := mustLower(t, `var x = 1;`)
	require.NotEmpty(t, out.Code)
	require.Equal(t, ir.OpStop, out.Code[len(out.Code)-1].Op)
}
