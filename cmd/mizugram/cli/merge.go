package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/syedafeezu/mizugram/internal/merge"
)

func newMergeCmd() *cobra.Command {
	var fanIn int

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge parsed run files into index.bin and lexicon.bin",
		Long: `Run the external k-way merge cascade over --data-dir/intermediate's
run files, then the final partitioned pass that writes index.bin and
lexicon.bin.`,
		Example: `  mizugram merge --data-dir ./index --fanin 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := filepath.Glob(filepath.Join(cfg.DataDir, "intermediate", "*.bin"))
			if err != nil {
				return fmt.Errorf("merge: list run files: %w", err)
			}
			if len(runs) == 0 {
				return fmt.Errorf("merge: no run files found under %s/intermediate (run `mizugram parse` first)", cfg.DataDir)
			}
			err = merge.Run(runs, merge.Options{
				Workers:     cfg.Threads,
				QueueCap:    cfg.QueueCap,
				FanIn:       fanIn,
				WorkDir:     filepath.Join(cfg.DataDir, "intermediate"),
				IndexPath:   filepath.Join(cfg.DataDir, "index.bin"),
				LexiconPath: filepath.Join(cfg.DataDir, "lexicon.bin"),
				Logger:      slog.Default(),
			})
			if err != nil {
				return fmt.Errorf("merge: %w", err)
			}
			slog.Info("merge finished", "index", filepath.Join(cfg.DataDir, "index.bin"))
			return nil
		},
	}

	cmd.Flags().IntVar(&fanIn, "fanin", cfg.FanIn, "Runs merged per cascade-pass task")
	return cmd
}
