package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syedafeezu/mizugram/internal/docstore"
	"github.com/syedafeezu/mizugram/internal/model"
	"github.com/syedafeezu/mizugram/internal/runstore"
)

func writeCollection(t *testing.T, dir string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, "collection.tsv")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readAllRecords(t *testing.T, paths []string) []model.RunRecord {
	t.Helper()
	var all []model.RunRecord
	for i, p := range paths {
		r, err := runstore.New(p, i, 0, 0)
		require.NoError(t, err)
		for {
			rec, ok, err := r.GetOne()
			require.NoError(t, err)
			if !ok {
				break
			}
			all = append(all, rec)
		}
		require.NoError(t, r.Close())
	}
	return all
}

func TestBuildWritesPageTableAndDocLengths(t *testing.T) {
	dir := t.TempDir()
	collPath := writeCollection(t, dir, []string{
		"DocA\tthe quick brown fox",
		"DocB\tthe lazy dog",
	})

	runs, err := Build(collPath, Options{Workers: 2, QueueCap: 4, DataDir: dir})
	require.NoError(t, err)
	require.NotEmpty(t, runs)

	docs, err := docstore.LoadPageTable(filepath.Join(dir, "page_table.bin"))
	require.NoError(t, err)
	require.Equal(t, "DocA", docs[0])
	require.Equal(t, "DocB", docs[1])

	lengths, err := docstore.LoadDocLengths(filepath.Join(dir, "doc_lengths.bin"))
	require.NoError(t, err)
	require.EqualValues(t, 4, lengths.Lengths[0])
	require.EqualValues(t, 3, lengths.Lengths[1])
	require.InDelta(t, 3.5, lengths.Avg, 1e-9)
}

func TestBuildEmitsCorrectTFSUsingCollectionAverage(t *testing.T) {
	dir := t.TempDir()
	collPath := writeCollection(t, dir, []string{
		"DocA\tthe quick brown fox",
		"DocB\tthe lazy dog",
	})

	runs, err := Build(collPath, Options{Workers: 2, QueueCap: 4, DataDir: dir})
	require.NoError(t, err)

	recs := readAllRecords(t, runs)
	byKey := make(map[string]model.RunRecord)
	for _, r := range recs {
		byKey[r.Term] = r
	}

	avg := 3.5
	want := model.TFS(1, 4, avg)
	got, ok := byKey["fox"]
	require.True(t, ok)
	require.InDelta(t, want, got.TFS, 1e-6)
}

func TestBuildAggregatesRepeatedTermsIntoOneRecordWithRealTF(t *testing.T) {
	dir := t.TempDir()
	collPath := writeCollection(t, dir, []string{
		"DocA\tthe the the dog",
	})

	runs, err := Build(collPath, Options{Workers: 1, QueueCap: 2, DataDir: dir})
	require.NoError(t, err)

	recs := readAllRecords(t, runs)
	count := 0
	var theRec model.RunRecord
	for _, r := range recs {
		if r.Term == "the" {
			count++
			theRec = r
		}
	}
	require.Equal(t, 1, count, "repeated term within one document should collapse into a single run record")

	avg := 4.0
	want := model.TFS(3, 4, avg)
	require.InDelta(t, want, theRec.TFS, 1e-6)
}

func TestBuildRespectsMaxPendingRecordsThreshold(t *testing.T) {
	dir := t.TempDir()
	lines := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		lines = append(lines, "Doc\tword"+string(rune('a'+i%26))+" filler")
	}
	collPath := writeCollection(t, dir, lines)

	runs, err := Build(collPath, Options{Workers: 4, QueueCap: 8, MaxPendingRecords: 5, DataDir: dir})
	require.NoError(t, err)
	require.Greater(t, len(runs), 1, "small MaxPendingRecords should force multiple run files")

	recs := readAllRecords(t, runs)
	require.NotEmpty(t, recs)
}
