package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/intelligrit/stk-captions/internal/caption"
	"github.com/intelligrit/stk-captions/internal/extractor"
	"github.com/intelligrit/stk-captions/internal/render"
	"github.com/spf13/cobra"
)

var (
	checkInfoFile  string
	checkViewIndex int
	checkOut       string
	checkNoImage   bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Print the captions for one view and render an annotated image",
	RunE: func(cmd *cobra.Command, args []string) error {
		captions, err := caption.ForView(checkInfoFile, checkViewIndex, cfg.Render.Width, cfg.Render.Height)
		if err != nil {
			return err
		}

		rule := strings.Repeat("-", 50)
		fmt.Println("\nCaption:")
		fmt.Println(rule)
		for i, c := range captions {
			fmt.Printf("%d. %s\n", i+1, c)
			fmt.Println(rule)
		}

		if checkNoImage {
			return nil
		}

		base := extractor.BaseName(checkInfoFile)
		imagePath := filepath.Join(filepath.Dir(checkInfoFile), extractor.ImageName(base, checkViewIndex))
		if _, err := os.Stat(imagePath); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: no image for view %d (%s), skipping render\n", checkViewIndex, imagePath)
			return nil
		}

		out := checkOut
		if out == "" {
			out = filepath.Join(filepath.Dir(checkInfoFile), fmt.Sprintf("%s_%02d_annotated.png", base, checkViewIndex))
		}

		info, err := extractor.LoadFrameInfo(checkInfoFile)
		if err != nil {
			return err
		}
		logVerbose("Rendering %s", imagePath)
		if err := render.AnnotateFile(imagePath, info, checkViewIndex, out); err != nil {
			return fmt.Errorf("rendering view: %w", err)
		}

		fmt.Printf("Annotated image saved to %s\n", out)
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkInfoFile, "info-file", "", "Path to a *_info.json file (e.g. data/valid/00000_info.json)")
	checkCmd.Flags().IntVar(&checkViewIndex, "view-index", 0, "View index within the frame")
	checkCmd.Flags().StringVar(&checkOut, "out", "", "Where to save the annotated image (default: next to the info file)")
	checkCmd.Flags().BoolVar(&checkNoImage, "no-image", false, "Only print captions")
	checkCmd.MarkFlagRequired("info-file")
	rootCmd.AddCommand(checkCmd)
}
