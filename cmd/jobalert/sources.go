package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobalert/jobalert/internal/extract"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured sources",
	Long:  "Reads the config and prints a table of all sources with the extraction strategy each one uses.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	extractor := extract.NewDefaultExtractor(cfg.Generic)

	fmt.Printf("%-25s %-12s %s\n", "Source", "Strategy", "URL")
	fmt.Println(strings.Repeat("─", 72))

	generic := 0
	for _, s := range cfg.Sources {
		name := extractor.StrategyFor(s.URL).Name()
		if name == "generic" {
			generic++
		}
		fmt.Printf("%-25s %-12s %s\n", s.Name, name, s.URL)
	}

	fmt.Printf("\nTotal: %d sources (%d site-specific, %d generic)\n", len(cfg.Sources), len(cfg.Sources)-generic, generic)
	return nil
}
