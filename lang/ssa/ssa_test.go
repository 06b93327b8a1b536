package ssa

import (
	"testing"

	"github.com/mna/sif/lang/cfg"
	"github.com/mna/sif/lang/dom"
	"github.com/mna/sif/lang/ir"
	"github.com/mna/sif/lang/lower"
	"github.com/mna/sif/lang/parser"
	"github.com/stretchr/testify/require"
)

func mustAnalyze(t *testing.T, src string) ([]ir.Instruction, *cfg.Graph, *dom.Tree) {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	out, err := lower.Lower(prog)
	require.NoError(t, err)
	g := cfg.Build(out.Code)
	return out.Code, g, dom.Build(g)
}

func TestPhiInsertedAtIfJoin(t *testing.T) {
	code, g, tr := mustAnalyze(t, `
var x = 1;
if x < 10 {
	x = 2;
} else {
	x = 3;
}
@print(x);
`)
	f := Build(code, g, tr)

	var xPhis int
	for _, p := range f.Phis {
		if p.Name == "x" {
			xPhis++
			require.Len(t, p.Args, 2, "join phi must have one arg per predecessor edge")
		}
	}
	require.Equal(t, 1, xPhis)
}

func TestPhiInsertedAtLoopHeader(t *testing.T) {
	code, g, tr := mustAnalyze(t, `
var a = [1, 2, 3];
for i, v in a {
	@print(v);
}
`)
	f := Build(code, g, tr)

	var iPhis int
	for _, p := range f.Phis {
		if p.Name == "i" {
			iPhis++
		}
	}
	require.Equal(t, 1, iPhis, "the loop index is reassigned both by the header init and the increment, so it needs a phi")
}

func TestEveryDefAndUseGetsAVersion(t *testing.T) {
	code, g, tr := mustAnalyze(t, `var x = 1; var y = x + 1; @print(y);`)
	f := Build(code, g, tr)
	for i, in := range code {
		if in.Op == ir.OpStoreC || in.Op == ir.OpStoreR {
			_, ok := f.Defs[i]
			require.True(t, ok, "instruction %d (%s) should have a def version", i, in)
		}
		if in.Op == ir.OpLoadN {
			_, ok := f.Uses[i]
			require.True(t, ok, "instruction %d (%s) should have a use version", i, in)
		}
	}
}
