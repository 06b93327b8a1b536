package cfg

import (
	"testing"

	"github.com/mna/sif/lang/ir"
	"github.com/mna/sif/lang/lower"
	"github.com/mna/sif/lang/parser"
	"github.com/stretchr/testify/require"
)

func mustLowerCode(t *testing.T, src string) []ir.Instruction {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	out, err := lower.Lower(prog)
	require.NoError(t, err)
	return out.Code
}

func TestBuildStraightLine(t *testing.T) {
	code := mustLowerCode(t, `var x = 1; var y = 2;`)
	g := Build(code)
	require.Len(t, g.Blocks, 1)
	require.Empty(t, g.Blocks[0].Succs)
}

func TestBuildIfElseHasExactlyFourBlocks(t *testing.T) {
	code := mustLowerCode(t, `
var x = 1;
if x < 10 {
	x = 2;
} else {
	x = 3;
}
`)
	g := Build(code)
	require.Len(t, g.Blocks, 4, "spec.md §8 scenario 2: if/else lowers to 4 basic blocks")

	for i, b := range g.Blocks {
		require.Equal(t, i, b.ID)
		require.EqualValues(t, i, b.Label, "block id must equal the label index of every instruction it contains")
	}

	entry := g.Blocks[0]
	require.Len(t, entry.Succs, 2, "entry block must end in a conditional jump with two successors")

	for _, b := range g.Blocks {
		for _, s := range b.Succs {
			require.Contains(t, g.Blocks[s].Preds, b.ID)
		}
	}
}

func TestBuildForLoopHasBackEdge(t *testing.T) {
	code := mustLowerCode(t, `
var a = [1, 2, 3];
for i, v in a {
	@print(v);
}
`)
	g := Build(code)
	found := false
	for _, b := range g.Blocks {
		for _, s := range b.Succs {
			if s <= b.ID {
				found = true
			}
		}
	}
	require.True(t, found, "expected a back edge closing the loop")
}
