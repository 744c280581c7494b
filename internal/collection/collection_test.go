package collection

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadAllSkipsBlankAndTablessLines(t *testing.T) {
	input := "A\tthe quick brown fox\n\nno tab here\nB\tthe lazy dog\n"
	recs, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, uint32(0), recs[0].DocID)
	require.Equal(t, "A", recs[0].DocName)
	require.Equal(t, "the quick brown fox", recs[0].Passage)
	require.Equal(t, uint32(1), recs[1].DocID)
	require.Equal(t, "B", recs[1].DocName)
}

func TestNextReturnsEOF(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	_, err := r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestPassageKeepsEverythingAfterFirstTab(t *testing.T) {
	recs, err := ReadAll(strings.NewReader("doc\tfoo\tbar\n"))
	require.NoError(t, err)
	require.Equal(t, "foo\tbar", recs[0].Passage)
}
