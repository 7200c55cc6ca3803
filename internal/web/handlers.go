package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/intelligrit/stk-captions/internal/caption"
	"github.com/intelligrit/stk-captions/internal/extractor"
	"github.com/intelligrit/stk-captions/internal/model"
)

func (s *Server) handleSplits(w http.ResponseWriter, r *http.Request) {
	splits, err := s.Store.Splits()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	runs := make([]model.BuildRun, 0, len(splits))
	for _, sp := range splits {
		run, err := s.Store.LatestRun(sp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		runs = append(runs, *run)
	}
	writeJSON(w, runs)
}

func (s *Server) handleCaptions(w http.ResponseWriter, r *http.Request) {
	split := r.URL.Query().Get("split")
	if split == "" {
		http.Error(w, "missing 'split' parameter", http.StatusBadRequest)
		return
	}

	records, err := s.Store.ReadCaptions(split, r.URL.Query().Get("image"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []model.CaptionRecord{}
	}
	writeJSON(w, records)
}

func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	split := r.URL.Query().Get("split")
	if split == "" {
		http.Error(w, "missing 'split' parameter", http.StatusBadRequest)
		return
	}

	if _, err := s.Store.LatestRun(split); errors.Is(err, sql.ErrNoRows) {
		http.Error(w, fmt.Sprintf("split %q has not been built", split), http.StatusNotFound)
		return
	}

	frames, err := s.Store.ReadFrames(split)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if frames == nil {
		frames = []model.FrameSummary{}
	}
	writeJSON(w, frames)
}

// checkResponse is the live caption result for one view.
type checkResponse struct {
	InfoFile  string   `json:"info_file"`
	ViewIndex int      `json:"view_index"`
	Captions  []string `json:"captions"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	info := r.URL.Query().Get("info")
	if info == "" {
		http.Error(w, "missing 'info' parameter", http.StatusBadRequest)
		return
	}
	view, err := strconv.Atoi(r.URL.Query().Get("view"))
	if err != nil {
		http.Error(w, "invalid 'view' parameter", http.StatusBadRequest)
		return
	}

	path, err := s.resolveInfo(info)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	captions, err := caption.ForView(path, view, s.ImageWidth, s.ImageHeight)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "info file not found", http.StatusNotFound)
		return
	case errors.Is(err, extractor.ErrViewOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, checkResponse{InfoFile: info, ViewIndex: view, Captions: captions})
}

// resolveInfo maps a data-dir relative info path to a file path, refusing
// anything that escapes the data directory.
func (s *Server) resolveInfo(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", errors.New("info path must be relative to the data directory")
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.New("info path escapes the data directory")
	}
	if !strings.HasSuffix(clean, "_info.json") {
		return "", errors.New("info path must name a *_info.json file")
	}
	return filepath.Join(s.DataDir, clean), nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	// Wildcard CORS; the server is a local tool.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if v == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
