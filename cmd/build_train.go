package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/intelligrit/stk-captions/internal/corpus"
	"github.com/intelligrit/stk-captions/internal/model"
	"github.com/intelligrit/stk-captions/internal/store"
	"github.com/spf13/cobra"
)

var buildWorkers int

var buildTrainCmd = &cobra.Command{
	Use:     "build-train [split]",
	Aliases: []string{"build_train"},
	Short:   "Rebuild the caption corpus file for a data split",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		split := "train"
		if len(args) == 1 {
			split = args[0]
		}
		if !cmd.Flags().Changed("workers") {
			buildWorkers = cfg.Build.Workers
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		fmt.Printf("Building captions for %s...\n", split)
		res, err := corpus.Build(ctx, corpus.Options{
			DataDir:     dataDir,
			Split:       split,
			ImageWidth:  cfg.Render.Width,
			ImageHeight: cfg.Render.Height,
			Workers:     buildWorkers,
			Progress: func(done, total int, base string) {
				logVerbose("  [%d/%d] %s", done, total, base)
			},
		})
		if err != nil {
			return fmt.Errorf("building %s: %w", split, err)
		}

		if err := corpus.Write(res.OutputPath, res.Records); err != nil {
			return fmt.Errorf("saving corpus: %w", err)
		}

		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		run := &model.BuildRun{
			ID:         uuid.NewString(),
			Split:      split,
			OutputPath: res.OutputPath,
			Frames:     len(res.Frames),
			Views:      res.Views,
			Records:    len(res.Records),
			BuiltAt:    time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.WriteBuild(run, res.Frames, res.Records); err != nil {
			return fmt.Errorf("indexing corpus: %w", err)
		}

		fmt.Printf("Generated %d captions from %d frames (%d views) in %s\n",
			len(res.Records), len(res.Frames), res.Views, split)
		fmt.Printf("Saved to %s\n", res.OutputPath)
		return nil
	},
}

func init() {
	buildTrainCmd.Flags().IntVar(&buildWorkers, "workers", 1, "Number of info files processed concurrently")
	rootCmd.AddCommand(buildTrainCmd)
}
