package lexblock

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syedafeezu/mizugram/internal/model"
)

func makePostings(n int) []model.Posting {
	out := make([]model.Posting, n)
	for i := 0; i < n; i++ {
		out[i] = model.Posting{DocID: uint32(i), TFS: float32(i) * 0.01}
	}
	return out
}

func TestEncodeDecodeBlockRoundTrip(t *testing.T) {
	postings := makePostings(300) // spans 3 blocks: 128, 128, 44
	blocks := EncodeBlocks(postings)
	require.Len(t, blocks, 3)
	require.EqualValues(t, 128, blocks[0].DocCount)
	require.EqualValues(t, 128, blocks[1].DocCount)
	require.EqualValues(t, 44, blocks[2].DocCount)
	require.EqualValues(t, 127, blocks[0].MaxDocID)
	require.EqualValues(t, 299, blocks[2].MaxDocID)

	offset := uint32(0)
	for bi, b := range blocks {
		decoded, err := DecodeBlock(b.Bytes, b.DocCount, b.CompressedDocIDLen)
		require.NoError(t, err)
		require.Len(t, decoded, int(b.DocCount))
		for i, p := range decoded {
			want := postings[int(offset)+i]
			require.Equal(t, want.DocID, p.DocID)
			require.InDelta(t, want.TFS, p.TFS, 1e-6)
		}
		require.Equal(t, b.MaxDocID, decoded[len(decoded)-1].DocID, "block %d last docID must equal blockMaxDocID", bi)
		offset += b.DocCount
	}
}

func TestThousandDocsEightBlocks(t *testing.T) {
	postings := makePostings(1000)
	blocks := EncodeBlocks(postings)
	require.Len(t, blocks, 8) // ceil(1000/128) == 8
	require.EqualValues(t, 999, blocks[7].MaxDocID)
}

func TestShardWriterAndLexiconRoundTrip(t *testing.T) {
	dir := t.TempDir()
	shardPath := filepath.Join(dir, "index_m.bin")

	sw, err := NewShardWriter(shardPath)
	require.NoError(t, err)

	entries := make([]model.LexiconEntry, 0, 2)
	e1, err := sw.WriteTerm("brown", makePostings(5))
	require.NoError(t, err)
	entries = append(entries, e1)

	e2, err := sw.WriteTerm("fox", makePostings(200))
	require.NoError(t, err)
	entries = append(entries, e2)

	require.NoError(t, sw.Close())

	lexPath := filepath.Join(dir, "lexicon.bin")
	require.NoError(t, WriteLexicon(lexPath, entries))

	loaded, err := LoadLexicon(lexPath, 10)
	require.NoError(t, err)
	require.Contains(t, loaded, "brown")
	require.Contains(t, loaded, "fox")
	require.EqualValues(t, 5, loaded["brown"].DocFrequency)
	require.EqualValues(t, 200, loaded["fox"].DocFrequency)
	require.Len(t, loaded["fox"].BlockOffsets, 2)

	wantIDF := math.Log((10.0 - 5 + 0.5) / (5 + 0.5))
	require.InDelta(t, wantIDF, loaded["brown"].IDF, 1e-5)

	// verify postings are actually readable back from the shard file at
	// the recorded offsets.
	raw, err := os.ReadFile(shardPath)
	require.NoError(t, err)
	fox := loaded["fox"]
	block0 := raw[fox.BlockOffsets[0] : fox.BlockOffsets[0]+uint64(fox.BlockCompressedDocIDLengths[0])+uint64(fox.BlockDocCounts[0])*4]
	decoded, err := DecodeBlock(block0, fox.BlockDocCounts[0], fox.BlockCompressedDocIDLengths[0])
	require.NoError(t, err)
	require.EqualValues(t, 0, decoded[0].DocID)
}

func TestValidateEntryRejectsBadBlockCounts(t *testing.T) {
	dir := t.TempDir()
	lexPath := filepath.Join(dir, "lexicon.bin")
	bad := model.LexiconEntry{
		Term:                        "x",
		Offset:                      0,
		DocFrequency:                10,
		BlockCount:                  1,
		BlockMaxDocIDs:              []uint32{5},
		BlockOffsets:                []uint64{0},
		BlockCompressedDocIDLengths: []uint32{3},
		BlockDocCounts:              []uint32{5}, // sum != docFrequency
	}
	require.NoError(t, WriteLexicon(lexPath, []model.LexiconEntry{bad}))
	_, err := LoadLexicon(lexPath, 100)
	require.Error(t, err)
}
