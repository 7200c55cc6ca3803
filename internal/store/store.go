package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/intelligrit/stk-captions/internal/model"
)

// Store indexes built caption corpora in DuckDB.
type Store struct {
	DB      *sql.DB
	DataDir string
}

// New opens (or creates) a DuckDB database in the given data directory.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "stk-captions.duckdb")
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}

	s := &Store{DB: db, DataDir: dataDir}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS build_runs (
			id TEXT PRIMARY KEY,
			split TEXT NOT NULL,
			output_path TEXT NOT NULL,
			frames INTEGER NOT NULL,
			views INTEGER NOT NULL,
			records INTEGER NOT NULL,
			built_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS frames (
			split TEXT NOT NULL,
			base_name TEXT NOT NULL,
			track TEXT NOT NULL,
			view_count INTEGER NOT NULL,
			kart_count INTEGER NOT NULL,
			PRIMARY KEY (split, base_name)
		)`,
		`CREATE TABLE IF NOT EXISTS captions (
			split TEXT NOT NULL,
			seq INTEGER NOT NULL,
			image_file TEXT NOT NULL,
			caption TEXT NOT NULL,
			PRIMARY KEY (split, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// WriteBuild replaces a split's frames and captions with the given build and records the run.
func (s *Store) WriteBuild(run *model.BuildRun, frames []model.FrameSummary, records []model.CaptionRecord) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, tbl := range []string{"frames", "captions"} {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE split = ?", tbl), run.Split); err != nil {
			return fmt.Errorf("clearing %s: %w", tbl, err)
		}
	}

	frameStmt, err := tx.Prepare(`INSERT INTO frames (split, base_name, track, view_count, kart_count) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer frameStmt.Close()

	for _, f := range frames {
		if _, err := frameStmt.Exec(run.Split, f.BaseName, f.Track, f.ViewCount, f.KartCount); err != nil {
			return fmt.Errorf("inserting frame %s: %w", f.BaseName, err)
		}
	}

	capStmt, err := tx.Prepare(`INSERT INTO captions (split, seq, image_file, caption) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer capStmt.Close()

	for i, r := range records {
		if _, err := capStmt.Exec(run.Split, i, r.ImageFile, r.Caption); err != nil {
			return fmt.Errorf("inserting caption %d: %w", i, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO build_runs (id, split, output_path, frames, views, records, built_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Split, run.OutputPath, run.Frames, run.Views, run.Records, run.BuiltAt); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('last_built_at', ?)", run.BuiltAt); err != nil {
		return err
	}

	return tx.Commit()
}

// ReadCaptions returns a split's caption records in corpus order.
// A non-empty imageFile restricts the result to that image.
func (s *Store) ReadCaptions(split, imageFile string) ([]model.CaptionRecord, error) {
	query := "SELECT image_file, caption FROM captions WHERE split = ?"
	args := []any{split}
	if imageFile != "" {
		query += " AND image_file = ?"
		args = append(args, imageFile)
	}
	query += " ORDER BY seq"

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.CaptionRecord
	for rows.Next() {
		var r model.CaptionRecord
		if err := rows.Scan(&r.ImageFile, &r.Caption); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ReadFrames returns a split's frame summaries ordered by base name.
func (s *Store) ReadFrames(split string) ([]model.FrameSummary, error) {
	rows, err := s.DB.Query("SELECT base_name, track, view_count, kart_count FROM frames WHERE split = ? ORDER BY base_name", split)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []model.FrameSummary
	for rows.Next() {
		var f model.FrameSummary
		if err := rows.Scan(&f.BaseName, &f.Track, &f.ViewCount, &f.KartCount); err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

// LatestRun returns the most recent build of a split, or sql.ErrNoRows.
func (s *Store) LatestRun(split string) (*model.BuildRun, error) {
	var r model.BuildRun
	err := s.DB.QueryRow(`SELECT id, split, output_path, frames, views, records, built_at
		FROM build_runs WHERE split = ? ORDER BY built_at DESC LIMIT 1`, split).
		Scan(&r.ID, &r.Split, &r.OutputPath, &r.Frames, &r.Views, &r.Records, &r.BuiltAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Splits returns every split that has been built, sorted by name.
func (s *Store) Splits() ([]string, error) {
	rows, err := s.DB.Query("SELECT DISTINCT split FROM build_runs ORDER BY split")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var splits []string
	for rows.Next() {
		var sp string
		if err := rows.Scan(&sp); err != nil {
			return nil, err
		}
		splits = append(splits, sp)
	}
	return splits, rows.Err()
}

// CaptionCount returns the number of caption records indexed for a split.
func (s *Store) CaptionCount(split string) int {
	var n int
	s.DB.QueryRow("SELECT COUNT(*) FROM captions WHERE split = ?", split).Scan(&n)
	return n
}

// RunCount returns how many builds of a split have been recorded.
func (s *Store) RunCount(split string) int {
	var n int
	s.DB.QueryRow("SELECT COUNT(*) FROM build_runs WHERE split = ?", split).Scan(&n)
	return n
}

// TrackCounts returns frame counts per track for a split.
func (s *Store) TrackCounts(split string) map[string]int {
	m := make(map[string]int)
	rows, err := s.DB.Query("SELECT track, COUNT(*) FROM frames WHERE split = ? GROUP BY track ORDER BY track", split)
	if err != nil {
		return m
	}
	defer rows.Close()
	for rows.Next() {
		var track string
		var cnt int
		rows.Scan(&track, &cnt)
		m[track] = cnt
	}
	return m
}
