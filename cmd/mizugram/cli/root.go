// Package cli wires the mizugram subcommands together with Cobra, in
// the pack's githome/drive blueprint style: one root command, one
// newXCmd() constructor per subcommand file.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/syedafeezu/mizugram/internal/config"
)

var (
	Version = "dev"

	cfg config.Resolve
)

// Execute builds and runs the mizugram root command.
func Execute(ctx context.Context) error {
	cfg = config.FromEnv()

	rootCmd := &cobra.Command{
		Use:     "mizugram",
		Short:   "Disk-resident inverted-index search engine",
		Long:    `mizugram tokenizes a document collection, merges it into a block-compressed BM25-scored index, and answers AND/OR queries against it.`,
		Version: Version,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Index data directory")
	rootCmd.PersistentFlags().IntVar(&cfg.Threads, "threads", cfg.Threads, "Worker thread count")
	rootCmd.PersistentFlags().IntVar(&cfg.QueueCap, "queue-cap", cfg.QueueCap, "Bounded task queue capacity per worker pool")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	rootCmd.AddCommand(
		newParseCmd(),
		newMergeCmd(),
		newBuildCmd(),
		newQueryCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
