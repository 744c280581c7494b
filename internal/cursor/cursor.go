// Package cursor implements the lazy, block-granular posting-list
// cursor described in spec.md §4.7: next(), nextGEQ with mandatory
// block-max skipping, and the TFS/IDF/docID accessors DAAT evaluation
// needs.
package cursor

import (
	"fmt"
	"io"
	"os"

	"github.com/syedafeezu/mizugram/internal/lexblock"
	"github.com/syedafeezu/mizugram/internal/model"
)

type state int

const (
	stateAtStart state = iota
	stateInBlock
	stateExhausted
)

// Cursor reads one term's posting list from the shared index file
// handle, loading blocks on demand.
type Cursor struct {
	f     *os.File
	entry model.LexiconEntry
	st    state

	blockIdx int
	posInBlk int
	postings []model.Posting // decoded postings of the current block
}

// New opens a cursor over entry's posting list, eagerly loading block 0.
func New(f *os.File, entry model.LexiconEntry) (*Cursor, error) {
	c := &Cursor{f: f, entry: entry, st: stateAtStart}
	if entry.BlockCount == 0 {
		c.st = stateExhausted
		return c, nil
	}
	if err := c.loadBlock(0); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cursor) loadBlock(i int) error {
	length := uint64(c.entry.BlockCompressedDocIDLengths[i]) + uint64(c.entry.BlockDocCounts[i])*4
	buf := make([]byte, length)
	if _, err := c.f.ReadAt(buf, int64(c.entry.BlockOffsets[i])); err != nil && err != io.EOF {
		return fmt.Errorf("cursor: %q: read block %d: %w", c.entry.Term, i, err)
	}
	postings, err := lexblock.DecodeBlock(buf, c.entry.BlockDocCounts[i], c.entry.BlockCompressedDocIDLengths[i])
	if err != nil {
		return fmt.Errorf("cursor: %q: decode block %d: %w", c.entry.Term, i, err)
	}
	c.postings = postings
	c.blockIdx = i
	c.posInBlk = 0
	return nil
}

// Next advances one posting. It returns false and transitions to
// Exhausted once past the last posting of the last block.
func (c *Cursor) Next() bool {
	switch c.st {
	case stateExhausted:
		return false
	case stateAtStart:
		c.st = stateInBlock
		return true
	}

	c.posInBlk++
	if c.posInBlk < len(c.postings) {
		return true
	}
	if c.blockIdx+1 >= int(c.entry.BlockCount) {
		c.st = stateExhausted
		return false
	}
	if err := c.loadBlock(c.blockIdx + 1); err != nil {
		c.st = stateExhausted
		return false
	}
	return true
}

// NextGEQ skips whole blocks whose max docID is below target using
// block-level metadata, then linearly advances within the landing
// block until the current docID is >= target. Returns false if no such
// docID exists in the list.
func (c *Cursor) NextGEQ(target uint32) bool {
	if c.st == stateExhausted {
		return false
	}

	startBlock := 0
	if c.st == stateInBlock {
		startBlock = c.blockIdx
	}
	blk := startBlock
	for blk < int(c.entry.BlockCount) && c.entry.BlockMaxDocIDs[blk] < target {
		blk++
	}
	if blk >= int(c.entry.BlockCount) {
		c.st = stateExhausted
		return false
	}

	scanFrom := 0
	if blk == c.blockIdx && c.st == stateInBlock {
		scanFrom = c.posInBlk // current posting may already satisfy target
	} else {
		if err := c.loadBlock(blk); err != nil {
			c.st = stateExhausted
			return false
		}
	}
	c.st = stateInBlock

	for i := scanFrom; i < len(c.postings); i++ {
		if c.postings[i].DocID >= target {
			c.posInBlk = i
			return true
		}
	}
	// Not found in this block even though its max should satisfy target;
	// this cannot happen for a well-formed index, but fall through to
	// Next-driven advance defensively.
	for c.Next() {
		if c.DocID() >= target {
			return true
		}
	}
	return false
}

// DocID returns the docID at the current cursor position. Undefined at
// AtStart or Exhausted.
func (c *Cursor) DocID() uint32 {
	if c.posInBlk < 0 || c.posInBlk >= len(c.postings) {
		return 0
	}
	return c.postings[c.posInBlk].DocID
}

// TFS returns the TFS value aligned with the current docID.
func (c *Cursor) TFS() float32 {
	if c.posInBlk < 0 || c.posInBlk >= len(c.postings) {
		return 0
	}
	return c.postings[c.posInBlk].TFS
}

// IDF returns the term's IDF, constant for the cursor's lifetime.
func (c *Cursor) IDF() float32 { return c.entry.IDF }

// IsValid reports whether the cursor is positioned on a real posting.
func (c *Cursor) IsValid() bool {
	return c.st == stateInBlock && c.posInBlk >= 0 && c.posInBlk < len(c.postings)
}

// Close forces the cursor into the Exhausted state.
func (c *Cursor) Close() {
	c.st = stateExhausted
}

// DocFrequency returns the term's document frequency.
func (c *Cursor) DocFrequency() uint32 { return c.entry.DocFrequency }
