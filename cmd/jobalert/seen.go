package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobalert/jobalert/internal/store"
)

var seenCmd = &cobra.Command{
	Use:   "seen",
	Short: "Print how many postings have been seen",
	RunE:  runSeen,
}

func init() {
	rootCmd.AddCommand(seenCmd)
}

func runSeen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	s, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	n, err := s.Count(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to count: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d postings seen (%s: %s)\n", n, store.Backend(cfg.Storage), cfg.Storage)
	return nil
}
