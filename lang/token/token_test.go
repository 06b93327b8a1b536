package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := IDENT; tok < maxToken; tok++ {
		s := tok.String()
		require.NotEmpty(t, s)
		require.False(t, strings.Contains(s, "illegal"), "token %d missing name", tok)
	}
}

func TestReservedRoundTrip(t *testing.T) {
	for word, tok := range Reserved {
		require.Equal(t, word, tok.String())
	}
}
