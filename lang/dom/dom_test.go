package dom

import (
	"testing"

	"github.com/mna/sif/lang/cfg"
	"github.com/mna/sif/lang/lower"
	"github.com/mna/sif/lang/parser"
	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, src string) *cfg.Graph {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	out, err := lower.Lower(prog)
	require.NoError(t, err)
	return cfg.Build(out.Code)
}

func TestEntryDominatesEverything(t *testing.T) {
	g := mustBuild(t, `
var x = 1;
if x < 10 {
	x = 2;
} else {
	x = 3;
}
@print(x);
`)
	tr := Build(g)
	for i := range g.Blocks {
		require.True(t, tr.Dominates(0, i), "entry must dominate block %d", i)
	}
	require.Equal(t, 0, tr.IDom[0])
}

func TestJoinPointDominanceFrontier(t *testing.T) {
	g := mustBuild(t, `
var x = 1;
if x < 10 {
	x = 2;
} else {
	x = 3;
}
@print(x);
`)
	tr := Build(g)

	entry := g.Blocks[0]
	require.Len(t, entry.Succs, 2)
	elseID, thenID := entry.Succs[0], entry.Succs[1]

	// Both branch blocks must have a dominance frontier containing the join
	// block where control merges back.
	require.NotEmpty(t, tr.DF[thenID])
	require.NotEmpty(t, tr.DF[elseID])
}

func TestLoopHeaderIsOwnDominanceFrontier(t *testing.T) {
	g := mustBuild(t, `
var a = [1, 2, 3];
for i, v in a {
	@print(v);
}
`)
	tr := Build(g)

	var header int = -1
	for _, b := range g.Blocks {
		if len(b.Preds) >= 2 {
			header = b.ID
			break
		}
	}
	require.NotEqual(t, -1, header, "expected a loop header with multiple predecessors")

	found := false
	for _, n := range tr.DF[header] {
		if n == header {
			found = true
		}
	}
	require.True(t, found, "a natural loop's header is its own dominance frontier")
}
