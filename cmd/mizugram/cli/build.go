package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/syedafeezu/mizugram/internal/merge"
	"github.com/syedafeezu/mizugram/internal/parser"
)

func newBuildCmd() *cobra.Command {
	var (
		input string
		fanIn int
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Parse then merge in one invocation",
		Long:  `Sugar for running "parse" immediately followed by "merge" against the same --data-dir.`,
		Example: `  mizugram build --input collection.tsv --data-dir ./index`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("build: --input is required")
			}
			runs, err := parser.Build(input, parser.Options{
				Workers:           cfg.Threads,
				QueueCap:          cfg.QueueCap,
				MaxPendingRecords: cfg.MaxPending,
				DataDir:           cfg.DataDir,
				Logger:            slog.Default(),
			})
			if err != nil {
				return fmt.Errorf("build: parse: %w", err)
			}
			slog.Info("parse finished", "runFiles", len(runs))

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
				return fmt.Errorf("build: merge: %w", err)
			}
			slog.Info("build finished", "index", filepath.Join(cfg.DataDir, "index.bin"))
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Path to the tab-separated collection file")
	cmd.Flags().IntVar(&fanIn, "fanin", cfg.FanIn, "Runs merged per cascade-pass task")
	return cmd
}
