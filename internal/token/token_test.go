package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsURLSafe(t *testing.T) {
	tok, err := New()
	require.NoError(t, err)
	assert.Len(t, tok, 43) // 32 bytes, base64url without padding
	assert.False(t, strings.ContainsAny(tok, "+/="))
}

func TestNewDoesNotRepeat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok, err := New()
		require.NoError(t, err)
		require.False(t, seen[tok], "token repeated after %d draws", i)
		seen[tok] = true
	}
}
