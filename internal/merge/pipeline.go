// Package merge implements the external k-way merge cascade and the
// final block-compressed, BM25-scored index build described in
// spec.md §4.5: a sequence of fan-in cascade passes over sorted runs,
// followed by a per-partition final pass that emits block-encoded
// posting shards and lexicon entries, concatenated into index.bin and
// lexicon.bin.
package merge

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/syedafeezu/mizugram/internal/lexblock"
	"github.com/syedafeezu/mizugram/internal/model"
	"github.com/syedafeezu/mizugram/internal/pool"
)

// Options configures a merge pipeline run.
type Options struct {
	Workers     int
	QueueCap    int
	FanIn       int // runs merged per cascade-pass task; defaults to model.FanIn
	MaxRecords  int // per-reader buffered record hint
	ChunkBytes  int // per-reader buffered chunk size
	WorkDir     string
	IndexPath   string
	LexiconPath string
	Logger      *slog.Logger
}

func (o *Options) setDefaults() {
	if o.Workers < 1 {
		o.Workers = 8
	}
	if o.QueueCap < 1 {
		o.QueueCap = 16
	}
	if o.FanIn < 1 {
		o.FanIn = model.FanIn
	}
	if o.MaxRecords < 1 {
		o.MaxRecords = 1 << 16
	}
	if o.ChunkBytes < 1 {
		o.ChunkBytes = 1 << 20
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Run executes the full merge pipeline over the given initial sorted
// run files, producing opts.IndexPath and opts.LexiconPath. Any I/O
// error aborts the whole pipeline (spec.md §4.5's fatal-merge-error
// contract). A failed cascade or partition task stops it before any
// shard is concatenated; an error while concatenating shards leaves a
// partial index.bin and no lexicon.bin.
func Run(initialRuns []string, opts Options) error {
	opts.setDefaults()
	log := opts.Logger

	if len(initialRuns) == 0 {
		return fmt.Errorf("merge: no input runs")
	}

	runs := initialRuns
	passNum := 0
	for len(runs) > opts.FanIn {
		passNum++
		next, err := cascadePass(runs, opts, passNum)
		if err != nil {
			return fmt.Errorf("merge: cascade pass %d: %w", passNum, err)
		}
		log.Info("cascade pass complete", "pass", passNum, "inputRuns", len(runs), "outputRuns", len(next))
		runs = next
	}

	entries, err := finalPass(runs, opts)
	if err != nil {
		return fmt.Errorf("merge: final pass: %w", err)
	}
	log.Info("final pass complete", "terms", len(entries))

	return nil
}

// cascadePass groups runs into batches of opts.FanIn and merges each
// batch in parallel via the thread pool, returning the output run
// paths for the next pass.
func cascadePass(runs []string, opts Options, passNum int) ([]string, error) {
	p := pool.New(opts.Workers, opts.QueueCap)
	defer p.Close()

	nBatches := (len(runs) + opts.FanIn - 1) / opts.FanIn
	outputs := make([]string, nBatches)
	errs := make([]error, nBatches)

	for b := 0; b < nBatches; b++ {
		b := b
		start := b * opts.FanIn
		end := start + opts.FanIn
		if end > len(runs) {
			end = len(runs)
		}
		batch := runs[start:end]
		out := filepath.Join(opts.WorkDir, fmt.Sprintf("cascade_%d_%d.bin", passNum, b))
		outputs[b] = out

		p.Submit(func() {
			perRun := opts.MaxRecords / len(batch)
			if perRun < 1 {
				perRun = 1
			}
			chunk := opts.ChunkBytes / len(batch)
			if chunk < 1 {
				chunk = 1
			}
			errs[b] = CascadeMerge(batch, out, perRun, chunk)
		})
	}
	p.WaitAll()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return outputs, nil
}

// finalPass runs one task per lexicographic partition over the final
// cascade-pass runs, then concatenates the resulting shards into
// opts.IndexPath and writes opts.LexiconPath with globally-rebased
// offsets.
func finalPass(runs []string, opts Options) ([]model.LexiconEntry, error) {
	partitions := DefaultPartitions()

	p := pool.New(opts.Workers, opts.QueueCap)
	defer p.Close()

	type result struct {
		shardPath string
		entries   []model.LexiconEntry
		size      int64
	}
	results := make([]result, len(partitions))
	errs := make([]error, len(partitions))

	var mu sync.Mutex
	for i, rng := range partitions {
		i, rng := i, rng
		shardPath := filepath.Join(opts.WorkDir, ShardName(rng))

		p.Submit(func() {
			perRun := opts.MaxRecords / len(runs)
			if perRun < 1 {
				perRun = 1
			}
			chunk := opts.ChunkBytes / len(runs)
			if chunk < 1 {
				chunk = 1
			}
			entries, err := FinalMergePartition(runs, rng.Start, rng.End, shardPath, perRun, chunk)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = result{shardPath: shardPath, entries: entries}
		})
	}
	p.WaitAll()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// Concatenate shards in lexicographic (partition) order and rebase
	// every entry's offsets by the cumulative byte offset.
	outFile, err := os.Create(opts.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("merge: create index: %w", err)
	}
	defer outFile.Close()

	var cumulative uint64
	var allEntries []model.LexiconEntry
	for _, r := range results {
		f, err := os.Open(r.shardPath)
		if err != nil {
			return nil, fmt.Errorf("merge: open shard %s: %w", r.shardPath, err)
		}
		n, err := copyAndCount(outFile, f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("merge: concatenate shard %s: %w", r.shardPath, err)
		}

		for _, e := range r.entries {
			rebased := e
			rebased.Offset += cumulative
			rebased.BlockOffsets = make([]uint64, len(e.BlockOffsets))
			for i, off := range e.BlockOffsets {
				rebased.BlockOffsets[i] = off + cumulative
			}
			allEntries = append(allEntries, rebased)
		}
		cumulative += uint64(n)
		os.Remove(r.shardPath)
	}

	sort.Slice(allEntries, func(i, j int) bool { return allEntries[i].Term < allEntries[j].Term })

	if err := lexblock.WriteLexicon(opts.LexiconPath, allEntries); err != nil {
		return nil, err
	}
	return allEntries, nil
}

func copyAndCount(dst *os.File, src *os.File) (int64, error) {
	info, err := src.Stat()
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(dst, src)
	if err != nil {
		return 0, err
	}
	if n != info.Size() {
		return 0, fmt.Errorf("short copy: wrote %d of %d bytes", n, info.Size())
	}
	return n, nil
}
