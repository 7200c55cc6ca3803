package cmd

import (
	"fmt"
	"sort"

	"github.com/intelligrit/stk-captions/internal/store"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show built caption corpora",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		splits, err := s.Splits()
		if err != nil {
			return fmt.Errorf("listing splits: %w", err)
		}

		fmt.Printf("Corpus Status\n")
		fmt.Printf("=============\n")
		if len(splits) == 0 {
			fmt.Println("No splits built yet. Run build-train first.")
			return nil
		}

		for _, split := range splits {
			run, err := s.LatestRun(split)
			if err != nil {
				return fmt.Errorf("reading %s run: %w", split, err)
			}
			fmt.Printf("  %-8s  frames: %5d  views: %5d  captions: %6d  builds: %d  last: %s\n",
				split, run.Frames, run.Views, s.CaptionCount(split), s.RunCount(split), run.BuiltAt)

			if !verbose {
				continue
			}
			tracks := s.TrackCounts(split)
			var names []string
			for t := range tracks {
				names = append(names, t)
			}
			sort.Strings(names)
			for _, t := range names {
				fmt.Printf("      %-20s %d frames\n", t, tracks[t])
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
