package parser

import (
	"testing"

	"github.com/mna/sif/lang/ast"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleVarDecl(t *testing.T) {
	prog, err := Parse([]byte(`var y = 0;`))
	require.NoError(t, err)
	require.Len(t, prog.Decls, 1)
	vd, ok := prog.Decls[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "y", vd.Name)
	require.True(t, vd.IsGlobal)
}

func TestParseIfElse(t *testing.T) {
	src := `var x = 5; var y = 0; x = x-3; if x < 3 { y = x*2; } else { y = x-3; } var z = x + y;`
	prog, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Decls, 5)
	ifs, ok := prog.Decls[3].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifs.Else)
	require.Empty(t, ifs.Elifs)
}

func TestParseForLoop(t *testing.T) {
	src := `var xs = [10, 20, 30]; for i, v in xs { @print(v); }`
	prog, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Decls, 2)
	fs, ok := prog.Decls[1].(*ast.ForStmt)
	require.True(t, ok)
	require.Equal(t, "i", fs.Vars.Index)
	require.Equal(t, "v", fs.Vars.Val)
}

func TestParseRecursiveFunction(t *testing.T) {
	src := `fn f(n){ if n<2 { return 1; } return n*f(n-1); } @print(f(5));`
	prog, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Decls, 2)
	fd, ok := prog.Decls[0].(*ast.FnDecl)
	require.True(t, ok)
	require.Equal(t, "f", fd.Name)
	last := fd.Body.Decls[len(fd.Body.Decls)-1]
	_, ok = last.(*ast.ReturnStmt)
	require.True(t, ok)
}

func TestParseMissingTrailingReturnInserted(t *testing.T) {
	src := `fn f(n){ var x = n; }`
	prog, err := Parse([]byte(src))
	require.NoError(t, err)
	fd := prog.Decls[0].(*ast.FnDecl)
	require.Len(t, fd.Body.Decls, 2)
	_, ok := fd.Body.Decls[1].(*ast.ReturnStmt)
	require.True(t, ok)
}

func TestParseUndeclaredSymbol(t *testing.T) {
	_, err := Parse([]byte(`x = 1;`))
	require.Error(t, err)
	el, ok := err.(ErrorList)
	require.True(t, ok)
	require.Len(t, el, 1)
	require.Equal(t, UndeclSym, el[0].Kind)
}

func TestParseInvalidAssignTarget(t *testing.T) {
	_, err := Parse([]byte(`var x = 1; (x+1) = 2;`))
	require.Error(t, err)
	el := err.(ErrorList)
	require.Equal(t, InvalidAssignTarget, el[0].Kind)
}

func TestParseTableAndArrayLiterals(t *testing.T) {
	src := `var t = [[ a => 1, b => 2 ]]; var arr = [1, 2, 3];`
	prog, err := Parse([]byte(src))
	require.NoError(t, err)
	td := prog.Decls[0].(*ast.VarDecl)
	tbl, ok := td.Rhs.(*ast.Table)
	require.True(t, ok)
	require.Len(t, tbl.Items.Items, 2)

	ad := prog.Decls[1].(*ast.VarDecl)
	arr, ok := ad.Rhs.(*ast.Array)
	require.True(t, ok)
	require.Equal(t, 3, arr.Len)
}
