package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/syedafeezu/mizugram/internal/parser"
)

func newParseCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Tokenize a collection into sorted run files",
		Long: `Tokenize a tab-separated "docname\tpassage" collection, writing the
page table and doc-length table into --data-dir and sorted
(term, docID, TFS) run files into --data-dir/intermediate for a later
merge step.`,
		Example: `  mizugram parse --input collection.tsv --data-dir ./index`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("parse: --input is required")
			}
			runs, err := parser.Build(input, parser.Options{
				Workers:           cfg.Threads,
				QueueCap:          cfg.QueueCap,
				MaxPendingRecords: cfg.MaxPending,
				DataDir:           cfg.DataDir,
				Logger:            slog.Default(),
			})
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			slog.Info("parse finished", "runFiles", len(runs))
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Path to the tab-separated collection file")
	return cmd
}
