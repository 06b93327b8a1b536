package symtab

import (
	"testing"

	"github.com/mna/sif/lang/ast"
	"github.com/stretchr/testify/require"
)

func TestScopesLookup(t *testing.T) {
	var s Scopes
	s.Init()

	gNode := &ast.VarDecl{Name: "g"}
	s.Define("g", gNode)

	s.OpenScope()
	lNode := &ast.VarDecl{Name: "l"}
	s.Define("l", lNode)

	n, ok := s.Lookup("l")
	require.True(t, ok)
	require.Same(t, lNode, n)

	n, ok = s.Lookup("g")
	require.True(t, ok)
	require.Same(t, gNode, n)

	s.CloseScope()
	_, ok = s.Lookup("l")
	require.False(t, ok, "lookup must not see a popped scope")

	_, ok = s.LookupGlobal("g")
	require.True(t, ok)
}

func TestCloseGlobalScopePanics(t *testing.T) {
	var s Scopes
	s.Init()
	require.Panics(t, func() { s.CloseScope() })
}
