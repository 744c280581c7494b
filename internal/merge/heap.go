package merge

import (
	"container/heap"

	"github.com/syedafeezu/mizugram/internal/model"
)

// item is one pending record in the merge heap, tagged with the source
// reader index so the merger knows which run to pull the next record
// from once this one is popped.
type item struct {
	rec       model.RunRecord
	readerIdx int
}

// recordHeap is a min-heap ordered by (term, docID) with ties broken by
// run index, matching the TupleComparator in the original C++ merger.
type recordHeap []item

func (h recordHeap) Len() int { return len(h) }

func (h recordHeap) Less(i, j int) bool {
	a, b := h[i].rec, h[j].rec
	if a.Term != b.Term {
		return a.Term < b.Term
	}
	if a.DocID != b.DocID {
		return a.DocID < b.DocID
	}
	return a.RunIndex < b.RunIndex
}

func (h recordHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *recordHeap) Push(x any) { *h = append(*h, x.(item)) }

func (h *recordHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

var _ heap.Interface = (*recordHeap)(nil)
