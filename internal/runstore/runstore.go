// Package runstore implements the buffered binary framing for sorted
// (term, docID, TFS) run files produced by the parser and consumed by
// the merger: record layout `termLen:u16 LE | term bytes | docID:i32 LE
// | TFS:f32 LE`.
package runstore

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/syedafeezu/mizugram/internal/model"
)

const minRecordBytes = 2 + 1 + 4 + 4 // termLen + shortest 1-byte term + docID + TFS

// Writer appends sorted run records to a binary file.
type Writer struct {
	f *os.File
	w *bufio.Writer
}

// NewWriter creates (or truncates) the run file at path.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("runstore: create %s: %w", path, err)
	}
	return &Writer{f: f, w: bufio.NewWriterSize(f, 1<<20)}, nil
}

// Put writes one record.
func (w *Writer) Put(term string, docID uint32, tfs float32) error {
	if len(term) > model.MaxTermLen {
		term = term[:model.MaxTermLen]
	}
	var hdr [10]byte
	binary.LittleEndian.PutUint16(hdr[0:2], uint16(len(term)))
	if _, err := w.w.Write(hdr[0:2]); err != nil {
		return err
	}
	if _, err := w.w.WriteString(term); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(hdr[2:6], docID)
	binary.LittleEndian.PutUint32(hdr[6:10], math.Float32bits(tfs))
	_, err := w.w.Write(hdr[2:10])
	return err
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// WriteSortedRecords sorts records by (term, docID) ascending and writes
// them to path in one shot. Used by the parser to flush a batch of
// pending pairs.
func WriteSortedRecords(path string, recs []model.RunRecord) error {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Term != recs[j].Term {
			return recs[i].Term < recs[j].Term
		}
		return recs[i].DocID < recs[j].DocID
	})
	w, err := NewWriter(path)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if err := w.Put(r.Term, r.DocID, r.TFS); err != nil {
			w.Close()
			return fmt.Errorf("runstore: write record: %w", err)
		}
	}
	return w.Close()
}

// Reader is a buffered, auto-refilling reader over one run file. It
// supports getOne-style sequential consumption and jumpTo for
// partitioned parallel merge. maxRecords bounds nothing observable
// here (Go's bufio already refills transparently) but is retained as a
// constructor parameter so callers can size the read-ahead intent
// consistently with the spec's buffered-reader contract.
type Reader struct {
	path      string
	fileIndex int
	f         *os.File
	r         *bufio.Reader
	valid     bool
	atEOF     bool
}

// New opens path for buffered sequential reading. chunkBytes sizes the
// underlying buffered-reader chunk; maxRecords is accepted for
// interface parity with the spec and does not change behavior.
func New(path string, fileIndex int, maxRecords int, chunkBytes int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("runstore: open %s: %w", path, err)
	}
	if chunkBytes < minRecordBytes {
		chunkBytes = 1 << 16
	}
	return &Reader{
		path:      path,
		fileIndex: fileIndex,
		f:         f,
		r:         bufio.NewReaderSize(f, chunkBytes),
		valid:     true,
	}, nil
}

// IsValid reports whether further GetOne calls can still return records.
func (r *Reader) IsValid() bool { return r.valid }

// FileIndex returns the run index this reader was constructed with.
func (r *Reader) FileIndex() int { return r.fileIndex }

// Close closes the underlying file handle.
func (r *Reader) Close() error { return r.f.Close() }

// GetOne returns the next record, or ok=false on clean EOF. Once ok is
// false, every subsequent call also returns false and IsValid reports
// false.
func (r *Reader) GetOne() (rec model.RunRecord, ok bool, err error) {
	if !r.valid {
		return model.RunRecord{}, false, nil
	}
	var lenBuf [2]byte
	if _, err := io.ReadFull(r.r, lenBuf[:]); err != nil {
		if err == io.EOF {
			r.valid = false
			r.atEOF = true
			return model.RunRecord{}, false, nil
		}
		r.valid = false
		return model.RunRecord{}, false, fmt.Errorf("runstore: %s: truncated at term length: %w", r.path, err)
	}
	termLen := binary.LittleEndian.Uint16(lenBuf[:])
	termBuf := make([]byte, termLen)
	if _, err := io.ReadFull(r.r, termBuf); err != nil {
		r.valid = false
		return model.RunRecord{}, false, fmt.Errorf("runstore: %s: truncated record (term body): %w", r.path, err)
	}
	var tail [8]byte
	if _, err := io.ReadFull(r.r, tail[:]); err != nil {
		r.valid = false
		return model.RunRecord{}, false, fmt.Errorf("runstore: %s: truncated record (docID/TFS): %w", r.path, err)
	}
	rec = model.RunRecord{
		Term:     string(termBuf),
		DocID:    binary.LittleEndian.Uint32(tail[0:4]),
		RunIndex: r.fileIndex,
		TFS:      math.Float32frombits(binary.LittleEndian.Uint32(tail[4:8])),
	}
	return rec, true, nil
}

// JumpTo advances past records whose term is lexicographically less
// than minTerm, then returns the first record with term >= minTerm. It
// returns ok=false if the run is exhausted before such a record is
// found.
func (r *Reader) JumpTo(minTerm string) (rec model.RunRecord, ok bool, err error) {
	for {
		rec, ok, err = r.GetOne()
		if err != nil || !ok {
			return rec, ok, err
		}
		if rec.Term >= minTerm {
			return rec, true, nil
		}
	}
}
