package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/intelligrit/stk-captions/internal/model"
	"github.com/stretchr/testify/require"
)

const frameA = `{
  "track": "snowmountain",
  "karts": ["tux", "hexley", "gnu"],
  "detections": [
    [[1, 0, 270, 170, 330, 230], [1, 1, 100, 100, 160, 150], [1, 2, 400, 260, 470, 320]],
    [[2, 0, 0, 300, 600, 400]]
  ]
}`

const frameB = `{
  "track": "lighthouse",
  "karts": ["konqi"],
  "detections": [
    [[1, 0, 280, 180, 320, 220]]
  ]
}`

func writeSplit(t *testing.T, files map[string]string) string {
	t.Helper()
	dataDir := t.TempDir()
	splitDir := filepath.Join(dataDir, "train")
	require.NoError(t, os.MkdirAll(splitDir, 0o755))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(splitDir, name), []byte(body), 0o644))
	}
	return dataDir
}

func TestBuild(t *testing.T) {
	dataDir := writeSplit(t, map[string]string{
		"00001_info.json":  frameB,
		"00000_info.json":  frameA,
		"00000_00_im.jpg":  "not an info file",
		"notes_extra.json": "{}",
	})

	res, err := Build(context.Background(), Options{
		DataDir: dataDir, Split: "train", ImageWidth: 150, ImageHeight: 100,
	})
	require.NoError(t, err)

	want := []model.CaptionRecord{
		{ImageFile: "train/00000_00_im.jpg", Caption: "tux is the ego car on the snowmountain track. There are 3 karts visible."},
		{ImageFile: "train/00000_00_im.jpg", Caption: "hexley is left and in front of the ego car."},
		{ImageFile: "train/00000_00_im.jpg", Caption: "gnu is right and behind the ego car."},
		{ImageFile: "train/00000_01_im.jpg", Caption: "A scene on the snowmountain track with no visible karts."},
		{ImageFile: "train/00001_00_im.jpg", Caption: "konqi is the ego car on the lighthouse track. There are 1 karts visible."},
	}
	if diff := cmp.Diff(want, res.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, res.Frames, 2)
	require.Equal(t, 3, res.Views)
	require.Equal(t, "00000", res.Frames[0].BaseName)
	require.Equal(t, "snowmountain", res.Frames[0].Track)
	require.Equal(t, filepath.Join(dataDir, "train", "train_captions.json"), res.OutputPath)
}

func TestBuild_WorkersKeepOrder(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 20; i++ {
		body := frameA
		if i%2 == 1 {
			body = frameB
		}
		files[fmt.Sprintf("%05d_info.json", i)] = body
	}
	dataDir := writeSplit(t, files)

	serial, err := Build(context.Background(), Options{DataDir: dataDir, Split: "train", ImageWidth: 150, ImageHeight: 100, Workers: 1})
	require.NoError(t, err)

	var progress, seenTotal int
	parallel, err := Build(context.Background(), Options{
		DataDir: dataDir, Split: "train", ImageWidth: 150, ImageHeight: 100, Workers: 8,
		Progress: func(done, total int, _ string) {
			progress, seenTotal = done, total
		},
	})
	require.NoError(t, err)
	require.Equal(t, 20, progress)
	require.Equal(t, 20, seenTotal)

	if diff := cmp.Diff(serial.Records, parallel.Records); diff != "" {
		t.Errorf("parallel build reordered records (-serial +parallel):\n%s", diff)
	}
}

func TestBuild_AbortsOnBadFrame(t *testing.T) {
	dataDir := writeSplit(t, map[string]string{
		"00000_info.json": frameA,
		"00001_info.json": `{"track": "x", "detections": [[[1, 0, 10]]]}`,
	})

	res, err := Build(context.Background(), Options{DataDir: dataDir, Split: "train", ImageWidth: 150, ImageHeight: 100})
	require.Error(t, err)
	require.Nil(t, res)
	require.Contains(t, err.Error(), "00001_info.json")
}

func TestBuild_MissingSplit(t *testing.T) {
	_, err := Build(context.Background(), Options{DataDir: t.TempDir(), Split: "valid"})
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist), "expected not-exist, got %v", err)
}

func TestBuild_EmptySplit(t *testing.T) {
	dataDir := writeSplit(t, nil)

	res, err := Build(context.Background(), Options{DataDir: dataDir, Split: "train", ImageWidth: 150, ImageHeight: 100})
	require.NoError(t, err)
	require.Empty(t, res.Records)
	require.Empty(t, res.Frames)
}

func TestBuild_Cancelled(t *testing.T) {
	dataDir := writeSplit(t, map[string]string{"00000_info.json": frameA})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, Options{DataDir: dataDir, Split: "train", ImageWidth: 150, ImageHeight: 100})
	require.ErrorIs(t, err, context.Canceled)
}

func TestImageFile(t *testing.T) {
	got := ImageFile("valid", filepath.Join("data", "valid", "0001f_info.json"), 7)
	require.Equal(t, "valid/0001f_07_im.jpg", got)
}
