// Command mizugram tokenizes a document collection, merges it into a
// block-compressed BM25-scored index, and answers AND/OR queries
// against the result.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/syedafeezu/mizugram/cmd/mizugram/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "mizugram:", err)
		os.Exit(1)
	}
}
