package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("SIF_HEAP_SIZE")
	os.Unsetenv("SIF_REG_COUNT")
	e, err := Load()
	require.NoError(t, err)
	require.Equal(t, 0, e.HeapSize)
	require.Equal(t, 0, e.RegCount)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SIF_HEAP_SIZE", "256")
	t.Setenv("SIF_REG_COUNT", "128")
	e, err := Load()
	require.NoError(t, err)
	require.Equal(t, 256, e.HeapSize)
	require.Equal(t, 128, e.RegCount)
}
