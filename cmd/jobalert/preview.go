package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobalert/jobalert/internal/extract"
	"github.com/jobalert/jobalert/internal/notifier"
	"github.com/jobalert/jobalert/internal/pipeline"
	"github.com/jobalert/jobalert/internal/preview"
	"github.com/jobalert/jobalert/internal/store"
)

var previewTimeout time.Duration

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Browse how a source is scraped and scored (TUI)",
	Long:  "Shows the source picker, scores the chosen source without touching seen state, then opens the split-pane preview.",
	RunE:  runPreviewCmd,
}

func init() {
	previewCmd.Flags().DurationVar(&previewTimeout, "timeout", 5*time.Minute, "give up evaluating a source after this long")
	rootCmd.AddCommand(previewCmd)
}

func runPreviewCmd(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig(setupLogger(debug))

	// Any log output once the TUI is up corrupts the display.
	silent := discardLogger()
	p := setupPipeline(cfg, store.NewNopStore(), notifier.NewLogNotifier(silent), silent)
	extractor := extract.NewDefaultExtractor(cfg.Generic)
	strategy := func(url string) string { return extractor.StrategyFor(url).Name() }

	for {
		choice, err := preview.RunSourcePicker(cfg.Sources, strategy)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return nil
		}
		if choice < 0 {
			return nil
		}
		src := cfg.Sources[choice]

		evals, err := preview.RunLoader(src.Name, previewTimeout, func(ctx context.Context) ([]pipeline.Evaluation, error) {
			return p.Preview(ctx, src)
		})
		if err != nil {
			fmt.Printf("Error evaluating %s: %v\n", src.Name, err)
			continue
		}

		wantQuit, err := preview.RunPreviewTUI(src.Name, cfg.Digest.MinScore, evals)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
		// else: back to the picker
	}
}
