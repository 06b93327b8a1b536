package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakePosLineCol(t *testing.T) {
	cases := []struct {
		line, col int
	}{
		{1, 1},
		{42, 7},
		{MaxLines, MaxCols},
	}
	for _, c := range cases {
		p := MakePos(c.line, c.col)
		l, col := p.LineCol()
		require.Equal(t, c.line, l)
		require.Equal(t, c.col, col)
		require.False(t, p.Unknown())
	}
}

func TestPosUnknown(t *testing.T) {
	require.True(t, Pos(0).Unknown())
	require.True(t, MakePos(1, 0).Unknown())
	require.True(t, MakePos(0, 1).Unknown())
}

func TestPosString(t *testing.T) {
	require.Equal(t, "[Line 3:5]", MakePos(3, 5).String())
}
