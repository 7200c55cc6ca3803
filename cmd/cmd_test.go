package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/intelligrit/stk-captions/internal/corpus"
	"github.com/stretchr/testify/require"
)

const cmdInfo = `{
  "track": "snowmountain",
  "karts": ["tux", "hexley", "gnu"],
  "detections": [
    [[1, 0, 270, 170, 330, 230], [1, 1, 100, 100, 160, 150], [1, 2, 400, 260, 470, 320]],
    []
  ]
}`

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.toml")}, args...))
	return rootCmd.Execute()
}

func TestBuildTrainCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "valid"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "valid", "00000_info.json"), []byte(cmdInfo), 0o644))

	require.NoError(t, run(t, "--data-dir", dir, "build_train", "valid"))

	records, err := corpus.Read(corpus.OutputPath(dir, "valid"))
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Equal(t, "valid/00000_00_im.jpg", records[0].ImageFile)
	require.Equal(t, "valid/00000_01_im.jpg", records[3].ImageFile)

	require.NoError(t, run(t, "--data-dir", dir, "status"))
}

func TestBuildTrainMissingSplit(t *testing.T) {
	require.Error(t, run(t, "--data-dir", t.TempDir(), "build-train", "nope"))
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	info := filepath.Join(dir, "00000_info.json")
	require.NoError(t, os.WriteFile(info, []byte(cmdInfo), 0o644))

	require.NoError(t, run(t, "check", "--info-file", info, "--view-index", "1"))
	require.Error(t, run(t, "check", "--info-file", info, "--view-index", "9"))
}
