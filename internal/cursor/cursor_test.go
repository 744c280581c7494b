package cursor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syedafeezu/mizugram/internal/lexblock"
	"github.com/syedafeezu/mizugram/internal/model"
)

func buildShard(t *testing.T, postings []model.Posting) (*os.File, model.LexiconEntry) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "index.bin")

	sw, err := lexblock.NewShardWriter(path)
	require.NoError(t, err)
	entry, err := sw.WriteTerm("t", postings)
	require.NoError(t, err)
	require.NoError(t, sw.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f, entry
}

func makePostings(n int) []model.Posting {
	out := make([]model.Posting, n)
	for i := 0; i < n; i++ {
		out[i] = model.Posting{DocID: uint32(i), TFS: float32(i)}
	}
	return out
}

func TestFullScanVisitsAscendingDocIDs(t *testing.T) {
	f, entry := buildShard(t, makePostings(1000))
	c, err := New(f, entry)
	require.NoError(t, err)

	var last int64 = -1
	count := 0
	for c.Next() {
		require.Greater(t, int64(c.DocID()), last)
		last = int64(c.DocID())
		count++
	}
	require.Equal(t, 1000, count)
}

func TestThousandDocsEightBlocksAndSkip(t *testing.T) {
	f, entry := buildShard(t, makePostings(1000))
	require.EqualValues(t, 8, entry.BlockCount) // ceil(1000/128) == 8
	require.EqualValues(t, 999, entry.BlockMaxDocIDs[7])

	c, err := New(f, entry)
	require.NoError(t, err)
	ok := c.NextGEQ(500)
	require.True(t, ok)
	require.EqualValues(t, 500, c.DocID())
}

func TestNextGEQEquivalentToRepeatedNext(t *testing.T) {
	f, entry := buildShard(t, makePostings(1000))

	for _, target := range []uint32{0, 1, 127, 128, 500, 999, 1000} {
		viaGEQ, err := New(f, entry)
		require.NoError(t, err)
		foundGEQ := viaGEQ.NextGEQ(target)

		viaNext, err := New(f, entry)
		require.NoError(t, err)
		var foundNext bool
		var docIDNext uint32
		for viaNext.Next() {
			if viaNext.DocID() >= target {
				foundNext = true
				docIDNext = viaNext.DocID()
				break
			}
		}

		require.Equal(t, foundNext, foundGEQ, "target=%d", target)
		if foundGEQ {
			require.Equal(t, docIDNext, viaGEQ.DocID(), "target=%d", target)
		}
	}
}

func TestNextGEQBeyondListReturnsFalse(t *testing.T) {
	f, entry := buildShard(t, makePostings(10))
	c, err := New(f, entry)
	require.NoError(t, err)
	require.False(t, c.NextGEQ(9999))
}

func TestIsValidAndIDFConstant(t *testing.T) {
	f, entry := buildShard(t, makePostings(5))
	entry.IDF = 1.23
	c, err := New(f, entry)
	require.NoError(t, err)
	require.False(t, c.IsValid())
	require.True(t, c.Next())
	require.True(t, c.IsValid())
	require.InDelta(t, 1.23, c.IDF(), 1e-6)
	c.Close()
	require.False(t, c.IsValid())
	require.False(t, c.Next())
}
