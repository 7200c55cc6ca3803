package corpus

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/intelligrit/stk-captions/internal/caption"
	"github.com/intelligrit/stk-captions/internal/extractor"
	"github.com/intelligrit/stk-captions/internal/model"
	"golang.org/x/sync/errgroup"
)

// Options controls a corpus build for one split.
type Options struct {
	DataDir     string
	Split       string
	ImageWidth  int
	ImageHeight int
	// Workers bounds how many info files are processed at once. Values below 1 mean 1.
	Workers int
	// Progress, if set, is called after each info file completes. Calls are serialized.
	Progress func(done, total int, baseName string)
}

// Result is the outcome of a corpus build.
type Result struct {
	Split      string
	OutputPath string
	Frames     []model.FrameSummary
	Views      int
	Records    []model.CaptionRecord
}

type frameResult struct {
	summary model.FrameSummary
	records []model.CaptionRecord
}

// OutputPath returns where the caption corpus for a split is written.
func OutputPath(dataDir, split string) string {
	return filepath.Join(dataDir, split, split+"_captions.json")
}

// ImageFile returns the split-relative image reference for one view of an info file.
func ImageFile(split, infoPath string, viewIndex int) string {
	return path.Join(split, extractor.ImageName(extractor.BaseName(infoPath), viewIndex))
}

// InfoFiles lists the info records of a split in name order.
func InfoFiles(dataDir, split string) ([]string, error) {
	dir := filepath.Join(dataDir, split)
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading split %q: %w", split, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("split %q: %s is not a directory", split, dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*_info.json"))
	if err != nil {
		return nil, fmt.Errorf("listing info files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// Build generates captions for every view of every info file in a split.
// Records are ordered by info file name, then view, then caption order, no
// matter how many workers run. Any failure aborts the whole build.
func Build(ctx context.Context, opts Options) (*Result, error) {
	files, err := InfoFiles(opts.DataDir, opts.Split)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]frameResult, len(files))

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fr, err := buildFrame(opts, file)
			if err != nil {
				return fmt.Errorf("processing %s: %w", file, err)
			}
			results[i] = fr

			if opts.Progress != nil {
				mu.Lock()
				done++
				opts.Progress(done, len(files), fr.summary.BaseName)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Split:      opts.Split,
		OutputPath: OutputPath(opts.DataDir, opts.Split),
		Frames:     make([]model.FrameSummary, 0, len(results)),
	}
	for _, fr := range results {
		res.Frames = append(res.Frames, fr.summary)
		res.Views += fr.summary.ViewCount
		res.Records = append(res.Records, fr.records...)
	}
	return res, nil
}

func buildFrame(opts Options, infoPath string) (frameResult, error) {
	info, err := extractor.LoadFrameInfo(infoPath)
	if err != nil {
		return frameResult{}, err
	}

	fr := frameResult{
		summary: model.FrameSummary{
			BaseName:  extractor.BaseName(infoPath),
			Track:     info.Track,
			ViewCount: info.ViewCount(),
			KartCount: len(info.Karts),
		},
	}

	for view := 0; view < info.ViewCount(); view++ {
		karts, err := extractor.KartsForView(info, view, opts.ImageWidth, opts.ImageHeight)
		if err != nil {
			return frameResult{}, fmt.Errorf("view %d: %w", view, err)
		}
		image := ImageFile(opts.Split, infoPath, view)
		for _, c := range caption.Generate(karts, info.Track) {
			fr.records = append(fr.records, model.CaptionRecord{ImageFile: image, Caption: c})
		}
	}
	return fr, nil
}
