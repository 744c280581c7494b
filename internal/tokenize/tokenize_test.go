package tokenize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenizeBasic(t *testing.T) {
	got := Tokenize("The Quick, Brown fox!")
	require.Equal(t, []string{"the", "quick", "brown", "fox"}, got)
}

func TestTokenizeDropsEmpty(t *testing.T) {
	got := Tokenize("  -- !!  hello  ...  ")
	require.Equal(t, []string{"hello"}, got)
}

func TestTokenizeIdentityAtQueryTime(t *testing.T) {
	require.Equal(t, Tokenize("Fox"), Tokenize("fox"))
}
