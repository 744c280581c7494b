package docstore

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

const docLengthsHeader = "MIZUGRAM_DLEN1"

// DocLengthWriter appends docID->docLength records to doc_lengths.bin.
// Safe for concurrent Put calls.
type DocLengthWriter struct {
	mu   sync.Mutex
	f    *os.File
	w    *bufio.Writer
	errM error
}

// NewDocLengthWriter creates (or truncates) the doc-length file at path.
func NewDocLengthWriter(path string) (*DocLengthWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("docstore: open doc lengths: %w", err)
	}
	w := bufio.NewWriter(f)
	if _, err := w.WriteString(docLengthsHeader); err != nil {
		f.Close()
		return nil, err
	}
	return &DocLengthWriter{f: f, w: w}, nil
}

// Put records the token count for docID.
func (d *DocLengthWriter) Put(docID uint32, length uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.errM != nil {
		return
	}
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], docID)
	binary.LittleEndian.PutUint32(buf[4:8], length)
	if _, err := d.w.Write(buf[:]); err != nil {
		d.errM = err
	}
}

// Close flushes and closes the underlying file.
func (d *DocLengthWriter) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.errM != nil {
		d.f.Close()
		return d.errM
	}
	if err := d.w.Flush(); err != nil {
		d.f.Close()
		return err
	}
	return d.f.Close()
}

// DocLengths is the loaded doc-length table plus the derived average
// length needed for TFS computation.
type DocLengths struct {
	Lengths map[uint32]uint32
	Avg     float64
}

// N is the total document count, the canonical source of N for IDF
// computation (see SPEC_FULL.md §9: never hard-code N).
func (d DocLengths) N() int { return len(d.Lengths) }

// LoadDocLengths reads the full docID->docLength table into memory.
func LoadDocLengths(path string) (DocLengths, error) {
	f, err := os.Open(path)
	if err != nil {
		return DocLengths{}, fmt.Errorf("docstore: open doc lengths: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	hdr := make([]byte, len(docLengthsHeader))
	if _, err := io.ReadFull(r, hdr); err != nil {
		return DocLengths{}, fmt.Errorf("docstore: doc lengths header: %w", err)
	}
	if string(hdr) != docLengthsHeader {
		return DocLengths{}, fmt.Errorf("docstore: bad doc lengths header")
	}

	lengths := make(map[uint32]uint32)
	var total uint64
	for {
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			if err == io.EOF {
				break
			}
			return DocLengths{}, fmt.Errorf("docstore: doc lengths record: %w", err)
		}
		docID := binary.LittleEndian.Uint32(buf[0:4])
		length := binary.LittleEndian.Uint32(buf[4:8])
		lengths[docID] = length
		total += uint64(length)
	}

	avg := 0.0
	if len(lengths) > 0 {
		avg = float64(total) / float64(len(lengths))
	}
	return DocLengths{Lengths: lengths, Avg: avg}, nil
}
