// Command slotdex is a thin demonstration entry point over the
// btree/pager/page stack: it opens (or creates) index.000 in the
// current directory, stores one record, reads it back, and reports
// basic layout stats. It is not a query surface or a REPL, per
// spec.md §1's non-goals.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mvarga/slotdex/btree"
	"github.com/mvarga/slotdex/pager"
	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", ".", "directory containing index.000")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintln(os.Stderr, "slotdex: logger init:", err)
			os.Exit(1)
		}
		logger = l
	}
	defer logger.Sync()

	if err := run(*dir, logger); err != nil {
		fmt.Fprintln(os.Stderr, "slotdex:", err)
		os.Exit(1)
	}
}

func run(dir string, logger *zap.Logger) error {
	store, err := pager.NewStore(pager.WithDir(dir), pager.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	mgr := pager.NewManager(store, logger)
	idx := btree.Open(mgr, logger)

	key := []byte("hello")
	value := []byte("world")
	if err := idx.Put(key, value); err != nil {
		return fmt.Errorf("put: %w", err)
	}

	got, err := idx.Get(key)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}

	fmt.Printf("put %q -> %q, read back %q\n", key, value, got)
	fmt.Printf("leaves written: %v\n", idx.Leaves())
	return nil
}
