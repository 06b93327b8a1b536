package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueTruthy(t *testing.T) {
	require.False(t, Null.Truthy())
	require.False(t, Bool(false).Truthy())
	require.True(t, Bool(true).Truthy())
	require.False(t, Number(0).Truthy())
	require.True(t, Number(1).Truthy())
	require.False(t, String("").Truthy())
	require.True(t, String("x").Truthy())
}

func TestValueEqualStructural(t *testing.T) {
	a1 := ArrayVal(NewArray([]Value{Number(1), String("x")}))
	a2 := ArrayVal(NewArray([]Value{Number(1), String("x")}))
	require.True(t, a1.Equal(a2))

	a3 := ArrayVal(NewArray([]Value{Number(1), String("y")}))
	require.False(t, a1.Equal(a3))

	require.True(t, Number(1).Equal(Number(1)))
	require.False(t, Number(1).Equal(Number(2)))
	require.False(t, Number(1).Equal(String("1")))
}

func TestTableGetSetEqual(t *testing.T) {
	t1 := NewTable(4)
	t1.Set("a", Number(1))
	t1.Set("b", String("hi"))

	v, ok := t1.Get("a")
	require.True(t, ok)
	require.Equal(t, Number(1), v)

	_, ok = t1.Get("missing")
	require.False(t, ok)

	t2 := NewTable(4)
	t2.Set("b", String("hi"))
	t2.Set("a", Number(1))
	require.True(t, t1.Equal(t2))

	t2.Set("a", Number(2))
	require.False(t, t1.Equal(t2))
}

func TestArrayGetSet(t *testing.T) {
	a := NewArray([]Value{Number(1), Number(2), Number(3)})
	require.Equal(t, 3, a.Len())
	a.Set(1, Number(99))
	require.Equal(t, Number(99), a.Get(1))
}
