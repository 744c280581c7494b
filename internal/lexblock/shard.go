package lexblock

import (
	"bufio"
	"fmt"
	"os"

	"github.com/syedafeezu/mizugram/internal/model"
)

// ShardWriter accumulates block-encoded posting data for one
// lexicographic partition into a single shard file, handing back a
// LexiconEntry with offsets relative to the shard's own start (byte 0).
// The caller (merge package) rewrites these to absolute offsets once
// shards are concatenated.
type ShardWriter struct {
	path   string
	f      *os.File
	w      *bufio.Writer
	offset uint64
}

// NewShardWriter creates the shard file at path.
func NewShardWriter(path string) (*ShardWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("lexblock: create shard %s: %w", path, err)
	}
	return &ShardWriter{path: path, f: f, w: bufio.NewWriterSize(f, 1<<20)}, nil
}

// WriteTerm flushes postings (sorted ascending, deduplicated by docID)
// as a sequence of blocks and returns the lexicon entry describing
// them, with Offset and BlockOffsets relative to this shard's start.
func (s *ShardWriter) WriteTerm(term string, postings []model.Posting) (model.LexiconEntry, error) {
	entry := model.LexiconEntry{
		Term:         term,
		Offset:       s.offset,
		DocFrequency: uint32(len(postings)),
	}
	if len(postings) == 0 {
		return entry, nil
	}

	blocks := EncodeBlocks(postings)
	entry.BlockCount = uint32(len(blocks))
	entry.BlockMaxDocIDs = make([]uint32, len(blocks))
	entry.BlockOffsets = make([]uint64, len(blocks))
	entry.BlockCompressedDocIDLengths = make([]uint32, len(blocks))
	entry.BlockDocCounts = make([]uint32, len(blocks))

	for i, b := range blocks {
		entry.BlockOffsets[i] = s.offset
		entry.BlockMaxDocIDs[i] = b.MaxDocID
		entry.BlockCompressedDocIDLengths[i] = b.CompressedDocIDLen
		entry.BlockDocCounts[i] = b.DocCount

		if _, err := s.w.Write(b.Bytes); err != nil {
			return model.LexiconEntry{}, fmt.Errorf("lexblock: write block: %w", err)
		}
		s.offset += uint64(len(b.Bytes))
	}

	entry.Length = uint32(s.offset - entry.Offset)
	return entry, nil
}

// Size returns the number of bytes written so far.
func (s *ShardWriter) Size() uint64 { return s.offset }

// Close flushes and closes the shard file.
func (s *ShardWriter) Close() error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
