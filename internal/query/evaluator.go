package query

import (
	"container/heap"
	"sort"

	"github.com/syedafeezu/mizugram/internal/cursor"
	"github.com/syedafeezu/mizugram/internal/tokenize"
)

// Mode selects conjunctive or disjunctive DAAT evaluation.
type Mode int

const (
	AND Mode = iota
	OR
)

// Result is one ranked hit.
type Result struct {
	Rank    int
	DocID   uint32
	DocName string
	Score   float64
}

// TopK is the fixed result-set size per spec.md §4.8.
const TopK = 10

// Evaluate tokenizes queryString with the same tokenizer used at index
// time, resolves each term against the lexicon (dropping terms absent
// from it), and runs AND or OR DAAT evaluation. It returns the ranked
// top-10 results plus the list of query terms that were not found.
func Evaluate(idx *Index, queryString string, mode Mode) ([]Result, []string, error) {
	terms := tokenize.Tokenize(queryString)

	var cursors []*cursor.Cursor
	var missing []string
	defer func() {
		for _, c := range cursors {
			c.Close()
		}
	}()

	for _, t := range terms {
		c, ok, err := idx.openCursor(t)
		if err != nil {
			return nil, missing, err
		}
		if !ok {
			missing = append(missing, t)
			continue
		}
		cursors = append(cursors, c)
	}

	if len(cursors) == 0 {
		return nil, missing, nil
	}

	var scores map[uint32]float64
	switch mode {
	case AND:
		scores = evaluateAND(cursors)
	default:
		scores = evaluateOR(cursors)
	}

	results := topK(idx, scores, TopK)
	return results, missing, nil
}

// evaluateAND implements the conjunctive DAAT loop from spec.md §4.8:
// advance each cursor once; repeatedly converge on the max docID via
// nextGEQ until all cursors agree, scoring and advancing on agreement.
func evaluateAND(cursors []*cursor.Cursor) map[uint32]float64 {
	scores := make(map[uint32]float64)

	for _, c := range cursors {
		if !c.Next() {
			return scores
		}
	}

	for {
		var maxID uint32
		for i, c := range cursors {
			if i == 0 || c.DocID() > maxID {
				maxID = c.DocID()
			}
		}

		allMatch := true
		for _, c := range cursors {
			if c.DocID() < maxID {
				if !c.NextGEQ(maxID) {
					return scores
				}
			}
			if c.DocID() != maxID {
				allMatch = false
			}
		}

		if allMatch {
			var score float64
			for _, c := range cursors {
				score += float64(c.IDF()) * float64(c.TFS())
			}
			scores[maxID] += score

			for _, c := range cursors {
				if !c.Next() {
					return scores
				}
			}
		}
	}
}

type heapCursor struct {
	c *cursor.Cursor
}

type cursorHeap []heapCursor

func (h cursorHeap) Len() int            { return len(h) }
func (h cursorHeap) Less(i, j int) bool  { return h[i].c.DocID() < h[j].c.DocID() }
func (h cursorHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x any)         { *h = append(*h, x.(heapCursor)) }
func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// evaluateOR implements the disjunctive DAAT loop: a min-heap keyed by
// current docID, popping the smallest, accumulating IDF*TFS, and
// pushing the cursor back if it still has postings.
func evaluateOR(cursors []*cursor.Cursor) map[uint32]float64 {
	scores := make(map[uint32]float64)

	h := &cursorHeap{}
	heap.Init(h)
	for _, c := range cursors {
		if c.Next() {
			heap.Push(h, heapCursor{c: c})
		}
	}

	for h.Len() > 0 {
		top := heap.Pop(h).(heapCursor)
		scores[top.c.DocID()] += float64(top.c.IDF()) * float64(top.c.TFS())
		if top.c.Next() {
			heap.Push(h, top)
		}
	}
	return scores
}

// topK sorts accumulated scores descending, breaking ties by ascending
// docID, and returns at most k ranked results.
func topK(idx *Index, scores map[uint32]float64, k int) []Result {
	results := make([]Result, 0, len(scores))
	for docID, score := range scores {
		results = append(results, Result{DocID: docID, DocName: idx.DocName(docID), Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	if len(results) > k {
		results = results[:k]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}
