package merge

import (
	"container/heap"
	"fmt"

	"github.com/syedafeezu/mizugram/internal/lexblock"
	"github.com/syedafeezu/mizugram/internal/model"
	"github.com/syedafeezu/mizugram/internal/runstore"
)

// FinalMergePartition merges the previous pass's runs restricted to the
// lexicographic half-open range [start, end) — end == "" means
// unbounded (the trailing partition) — and writes the block-compressed
// shard plus per-term lexicon entries (offsets relative to the shard's
// own start; the caller is responsible for rebasing them onto the
// concatenated index.bin).
func FinalMergePartition(inputPaths []string, start, end, shardPath string, maxRecords, chunkBytes int) ([]model.LexiconEntry, error) {
	readers := make([]*runstore.Reader, len(inputPaths))
	for i, p := range inputPaths {
		r, err := runstore.New(p, i, maxRecords, chunkBytes)
		if err != nil {
			return nil, fmt.Errorf("merge: final[%s,%s): open %s: %w", start, end, p, err)
		}
		readers[i] = r
	}
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	shard, err := lexblock.NewShardWriter(shardPath)
	if err != nil {
		return nil, err
	}

	h := &recordHeap{}
	heap.Init(h)
	for i, r := range readers {
		rec, ok, err := r.JumpTo(start)
		if err != nil {
			shard.Close()
			return nil, fmt.Errorf("merge: final[%s,%s): jumpTo on %s: %w", start, end, inputPaths[i], err)
		}
		if ok {
			heap.Push(h, item{rec: rec, readerIdx: i})
		}
	}

	var entries []model.LexiconEntry
	var currentTerm string
	var postings []model.Posting
	haveCurrent := false

	flush := func() error {
		if !haveCurrent || len(postings) == 0 {
			return nil
		}
		entry, err := shard.WriteTerm(currentTerm, postings)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		postings = nil
		return nil
	}

	for h.Len() > 0 {
		top := (*h)[0]
		if end != "" && top.rec.Term >= end {
			break
		}
		heap.Pop(h)

		if !haveCurrent || top.rec.Term != currentTerm {
			if err := flush(); err != nil {
				shard.Close()
				return nil, fmt.Errorf("merge: final[%s,%s): flush %q: %w", start, end, currentTerm, err)
			}
			currentTerm = top.rec.Term
			haveCurrent = true
		}

		if n := len(postings); n > 0 && postings[n-1].DocID == top.rec.DocID {
			if top.rec.TFS > postings[n-1].TFS {
				postings[n-1].TFS = top.rec.TFS
			}
		} else {
			postings = append(postings, model.Posting{DocID: top.rec.DocID, TFS: top.rec.TFS})
		}

		rec, ok, err := readers[top.readerIdx].GetOne()
		if err != nil {
			shard.Close()
			return nil, fmt.Errorf("merge: final[%s,%s): read %s: %w", start, end, inputPaths[top.readerIdx], err)
		}
		if ok {
			heap.Push(h, item{rec: rec, readerIdx: top.readerIdx})
		}
	}

	if err := flush(); err != nil {
		shard.Close()
		return nil, fmt.Errorf("merge: final[%s,%s): final flush: %w", start, end, err)
	}

	if err := shard.Close(); err != nil {
		return nil, err
	}
	return entries, nil
}
