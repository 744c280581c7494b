package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/syedafeezu/mizugram/internal/query"
)

func newQueryCmd() *cobra.Command {
	var (
		modeFlag  string
		oneShot   string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Answer AND/OR queries against a built index",
		Long: `Open --data-dir's index.bin/lexicon.bin/page_table.bin and answer
queries. With --query, run a single query and exit; otherwise read a
REPL loop from stdin, one query per line.`,
		Example: `  mizugram query --data-dir ./index --query "quick fox" --mode AND
  mizugram query --data-dir ./index`,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := query.Open(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("query: open index: %w", err)
			}
			defer idx.Close()

			if oneShot != "" {
				return runOneQuery(cmd, idx, oneShot, modeFlag)
			}
			return runQueryREPL(cmd, idx, modeFlag)
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "OR", "Query mode: AND or OR")
	cmd.Flags().StringVar(&oneShot, "query", "", "Run a single query and exit")
	return cmd
}

func parseMode(s string) query.Mode {
	if strings.EqualFold(s, "AND") {
		return query.AND
	}
	return query.OR
}

func runOneQuery(cmd *cobra.Command, idx *query.Index, q, mode string) error {
	results, missing, err := query.Evaluate(idx, q, parseMode(mode))
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	printResults(cmd, results, missing)
	return nil
}

func runQueryREPL(cmd *cobra.Command, idx *query.Index, defaultMode string) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		mode := defaultMode
		if i := strings.LastIndexByte(line, '|'); i >= 0 {
			mode = strings.TrimSpace(line[i+1:])
			line = strings.TrimSpace(line[:i])
		}
		results, missing, err := query.Evaluate(idx, line, parseMode(mode))
		if err != nil {
			slog.Error("query failed", "error", err)
			continue
		}
		printResults(cmd, results, missing)
	}
	return scanner.Err()
}

func printResults(cmd *cobra.Command, results []query.Result, missing []string) {
	out := cmd.OutOrStdout()
	if len(missing) > 0 {
		fmt.Fprintf(out, "# terms not in lexicon: %s\n", strings.Join(missing, ", "))
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "# no results")
		return
	}
	for _, r := range results {
		fmt.Fprintf(out, "%d\t%s\t%.6f\n", r.Rank, r.DocName, r.Score)
	}
}
