// Package query implements the document-at-a-time query evaluator
// described in spec.md §4.8: conjunctive (AND) and disjunctive (OR)
// traversal over posting-list cursors, BM25 aggregation, and top-k
// extraction.
package query

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/syedafeezu/mizugram/internal/cursor"
	"github.com/syedafeezu/mizugram/internal/docstore"
	"github.com/syedafeezu/mizugram/internal/lexblock"
	"github.com/syedafeezu/mizugram/internal/model"
)

// Index is an opened, read-only view over a built collection: the
// index file handle, the loaded lexicon, and the page table needed to
// render result doc names. The evaluator is single-threaded per query;
// concurrent queries must each open their own Index (spec.md §5).
type Index struct {
	f       *os.File
	lexicon map[string]model.LexiconEntry
	docs    map[uint32]string
	n       int
}

// Open loads the lexicon, page table, and doc-length table from dir and
// opens index.bin for cursor reads.
func Open(dir string) (*Index, error) {
	lengths, err := docstore.LoadDocLengths(filepath.Join(dir, "doc_lengths.bin"))
	if err != nil {
		return nil, fmt.Errorf("query: load doc lengths: %w", err)
	}
	docs, err := docstore.LoadPageTable(filepath.Join(dir, "page_table.bin"))
	if err != nil {
		return nil, fmt.Errorf("query: load page table: %w", err)
	}
	lex, err := lexblock.LoadLexicon(filepath.Join(dir, "lexicon.bin"), lengths.N())
	if err != nil {
		return nil, fmt.Errorf("query: load lexicon: %w", err)
	}
	f, err := os.Open(filepath.Join(dir, "index.bin"))
	if err != nil {
		return nil, fmt.Errorf("query: open index: %w", err)
	}
	return &Index{f: f, lexicon: lex, docs: docs, n: lengths.N()}, nil
}

// Close releases the index file handle.
func (idx *Index) Close() error {
	if idx.f == nil {
		return nil
	}
	return idx.f.Close()
}

// DocName resolves a docID to its document name.
func (idx *Index) DocName(docID uint32) string {
	return idx.docs[docID]
}

// openCursor opens a cursor for term, returning ok=false if the term is
// absent from the lexicon (spec.md's LexiconMissing — recovered
// locally, never fatal at query time).
func (idx *Index) openCursor(term string) (*cursor.Cursor, bool, error) {
	entry, ok := idx.lexicon[term]
	if !ok {
		return nil, false, nil
	}
	c, err := cursor.New(idx.f, entry)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}
