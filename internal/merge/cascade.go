package merge

import (
	"container/heap"
	"fmt"

	"github.com/syedafeezu/mizugram/internal/runstore"
)

// CascadeMerge k-way merges the sorted run files in inputPaths into a
// single sorted output run at outputPath. Every popped record is
// emitted verbatim (no coalescing — that only happens in the final
// partitioned pass), and output order is stable for equal keys because
// heap ties are broken by input run index.
func CascadeMerge(inputPaths []string, outputPath string, maxRecords, chunkBytes int) error {
	readers := make([]*runstore.Reader, len(inputPaths))
	for i, p := range inputPaths {
		r, err := runstore.New(p, i, maxRecords, chunkBytes)
		if err != nil {
			return fmt.Errorf("merge: cascade: open %s: %w", p, err)
		}
		readers[i] = r
	}
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	out, err := runstore.NewWriter(outputPath)
	if err != nil {
		return fmt.Errorf("merge: cascade: create %s: %w", outputPath, err)
	}

	h := &recordHeap{}
	heap.Init(h)
	for i, r := range readers {
		rec, ok, err := r.GetOne()
		if err != nil {
			out.Close()
			return fmt.Errorf("merge: cascade: read %s: %w", inputPaths[i], err)
		}
		if ok {
			heap.Push(h, item{rec: rec, readerIdx: i})
		}
	}

	for h.Len() > 0 {
		top := heap.Pop(h).(item)
		if err := out.Put(top.rec.Term, top.rec.DocID, top.rec.TFS); err != nil {
			out.Close()
			return fmt.Errorf("merge: cascade: write: %w", err)
		}

		rec, ok, err := readers[top.readerIdx].GetOne()
		if err != nil {
			out.Close()
			return fmt.Errorf("merge: cascade: read %s: %w", inputPaths[top.readerIdx], err)
		}
		if ok {
			heap.Push(h, item{rec: rec, readerIdx: top.readerIdx})
		}
	}

	return out.Close()
}
