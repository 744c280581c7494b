// Package model holds the data shapes shared across the ingestion, merge,
// and query subsystems: documents, postings, runs, and lexicon entries.
package model

const (
	// K1 and B are the BM25 tuning constants baked into TFS at index time.
	K1 = 1.5
	B  = 0.75

	// BlockSize is the target cardinality of a posting block.
	BlockSize = 128

	// FanIn is the number of runs merged together in one cascade-pass task.
	FanIn = 8

	// MaxTermLen is the maximum byte length of a term representable in the
	// on-disk term-length prefix; runstore.Writer truncates longer terms.
	// The tokenizer itself does not enforce it.
	MaxTermLen = 65535
)

// Posting is a single (docID, TFS) pair within a term's inverted list.
type Posting struct {
	DocID uint32
	TFS   float32
}

// RunRecord is the unit exchanged during external merge: one posting
// tagged with the term it belongs to and the run file it came from.
type RunRecord struct {
	Term     string
	DocID    uint32
	RunIndex int
	TFS      float32
}

// DocMeta is the per-document metadata held in the page table and
// doc-length side files.
type DocMeta struct {
	DocID     uint32
	Name      string
	DocLength uint32
}

// LexiconEntry is the canonical blocked lexicon shape described in the
// data model: per-term location plus block-level skip metadata.
type LexiconEntry struct {
	Term                        string
	Offset                      uint64
	Length                      uint32
	DocFrequency                uint32
	BlockCount                  uint32
	BlockMaxDocIDs              []uint32
	BlockOffsets                []uint64
	BlockCompressedDocIDLengths []uint32
	BlockDocCounts              []uint32

	// IDF is derived at load time from N, the total document count; it is
	// never persisted to disk.
	IDF float32
}

// TFS computes the BM25 term-frequency-score component for a posting,
// excluding the IDF factor, given the raw term frequency tf, the
// document's token length, and the collection's average document length.
func TFS(tf float64, docLen, avgDocLen float64) float32 {
	if avgDocLen <= 0 {
		avgDocLen = 1
	}
	num := (K1 + 1) * tf
	den := tf + K1*((1-B)+B*(docLen/avgDocLen))
	if den == 0 {
		return 0
	}
	return float32(num / den)
}
