package lexblock

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/syedafeezu/mizugram/internal/model"
)

// WriteLexicon serializes entries, in order, to path using the layout in
// SPEC_FULL.md §6: termLen:u16 | term | offset:i64 | length:i32 |
// docFrequency:i32 | blockCount:i32 | blockMaxDocIDs[...]:i32 |
// blockOffsets[...]:i64 | blockCompressedDocIDLengths[...]:u64 |
// blockDocCounts[...]:i32. IDF is never persisted.
func WriteLexicon(path string, entries []model.LexiconEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lexblock: create lexicon: %w", err)
	}
	w := bufio.NewWriterSize(f, 1<<20)

	for _, e := range entries {
		if err := writeEntry(w, e); err != nil {
			f.Close()
			return fmt.Errorf("lexblock: write entry %q: %w", e.Term, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeEntry(w *bufio.Writer, e model.LexiconEntry) error {
	termBytes := []byte(e.Term)
	var u16b [2]byte
	binary.LittleEndian.PutUint16(u16b[:], uint16(len(termBytes)))
	if _, err := w.Write(u16b[:]); err != nil {
		return err
	}
	if _, err := w.Write(termBytes); err != nil {
		return err
	}

	var fixed [20]byte
	binary.LittleEndian.PutUint64(fixed[0:8], e.Offset)
	binary.LittleEndian.PutUint32(fixed[8:12], e.Length)
	binary.LittleEndian.PutUint32(fixed[12:16], e.DocFrequency)
	binary.LittleEndian.PutUint32(fixed[16:20], e.BlockCount)
	if _, err := w.Write(fixed[:20]); err != nil {
		return err
	}

	for _, v := range e.BlockMaxDocIDs {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	for _, v := range e.BlockOffsets {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	for _, v := range e.BlockCompressedDocIDLengths {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(v))
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	for _, v := range e.BlockDocCounts {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

// LoadLexicon reads every entry from path and derives each entry's IDF
// from n, the total document count (N = size of the doc-length table at
// load time, per SPEC_FULL.md §9 — never a hard-coded constant).
func LoadLexicon(path string, n int) (map[string]model.LexiconEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lexblock: open lexicon: %w", err)
	}
	defer f.Close()
	r := bufio.NewReaderSize(f, 1<<20)

	out := make(map[string]model.LexiconEntry)
	for {
		entry, err := readEntry(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("lexblock: read lexicon entry: %w", err)
		}
		if err := validateEntry(entry); err != nil {
			return nil, fmt.Errorf("lexblock: invariant violation for term %q: %w", entry.Term, err)
		}
		df := float64(entry.DocFrequency)
		entry.IDF = float32(math.Log((float64(n) - df + 0.5) / (df + 0.5)))
		out[entry.Term] = entry
	}
	return out, nil
}

func readEntry(r *bufio.Reader) (model.LexiconEntry, error) {
	var u16b [2]byte
	if _, err := io.ReadFull(r, u16b[:]); err != nil {
		return model.LexiconEntry{}, err
	}
	termLen := binary.LittleEndian.Uint16(u16b[:])
	termBytes := make([]byte, termLen)
	if _, err := io.ReadFull(r, termBytes); err != nil {
		return model.LexiconEntry{}, fmt.Errorf("term body: %w", err)
	}

	var fixed [20]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return model.LexiconEntry{}, fmt.Errorf("fixed header: %w", err)
	}
	e := model.LexiconEntry{
		Term:         string(termBytes),
		Offset:       binary.LittleEndian.Uint64(fixed[0:8]),
		Length:       binary.LittleEndian.Uint32(fixed[8:12]),
		DocFrequency: binary.LittleEndian.Uint32(fixed[12:16]),
		BlockCount:   binary.LittleEndian.Uint32(fixed[16:20]),
	}

	e.BlockMaxDocIDs = make([]uint32, e.BlockCount)
	for i := range e.BlockMaxDocIDs {
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return model.LexiconEntry{}, fmt.Errorf("blockMaxDocIDs: %w", err)
		}
		e.BlockMaxDocIDs[i] = binary.LittleEndian.Uint32(b[:])
	}
	e.BlockOffsets = make([]uint64, e.BlockCount)
	for i := range e.BlockOffsets {
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return model.LexiconEntry{}, fmt.Errorf("blockOffsets: %w", err)
		}
		e.BlockOffsets[i] = binary.LittleEndian.Uint64(b[:])
	}
	e.BlockCompressedDocIDLengths = make([]uint32, e.BlockCount)
	for i := range e.BlockCompressedDocIDLengths {
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return model.LexiconEntry{}, fmt.Errorf("blockCompressedDocIDLengths: %w", err)
		}
		e.BlockCompressedDocIDLengths[i] = uint32(binary.LittleEndian.Uint64(b[:]))
	}
	e.BlockDocCounts = make([]uint32, e.BlockCount)
	for i := range e.BlockDocCounts {
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return model.LexiconEntry{}, fmt.Errorf("blockDocCounts: %w", err)
		}
		e.BlockDocCounts[i] = binary.LittleEndian.Uint32(b[:])
	}
	return e, nil
}

// validateEntry checks the invariants from SPEC_FULL.md §3: block doc
// counts sum to docFrequency, block offsets strictly increase
// consistently with compressed lengths, and block max docIDs strictly
// increase.
func validateEntry(e model.LexiconEntry) error {
	var sum uint64
	for _, c := range e.BlockDocCounts {
		sum += uint64(c)
	}
	if sum != uint64(e.DocFrequency) {
		return fmt.Errorf("sum(blockDocCounts)=%d != docFrequency=%d", sum, e.DocFrequency)
	}
	for i := range e.BlockOffsets {
		if i == 0 {
			if e.BlockOffsets[0] != e.Offset {
				return fmt.Errorf("blockOffsets[0]=%d != offset=%d", e.BlockOffsets[0], e.Offset)
			}
			continue
		}
		want := e.BlockOffsets[i-1] + uint64(e.BlockCompressedDocIDLengths[i-1]) + uint64(e.BlockDocCounts[i-1])*4
		if e.BlockOffsets[i] != want {
			return fmt.Errorf("blockOffsets[%d]=%d, expected %d", i, e.BlockOffsets[i], want)
		}
		if e.BlockMaxDocIDs[i] <= e.BlockMaxDocIDs[i-1] {
			return fmt.Errorf("blockMaxDocIDs not strictly increasing at %d", i)
		}
	}
	return nil
}
