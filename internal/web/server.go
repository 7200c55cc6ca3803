package web

import (
	"fmt"
	"net/http"

	"github.com/intelligrit/stk-captions/internal/store"
)

// Server serves the caption corpus API.
type Server struct {
	Store *store.Store
	Addr  string
	// DataDir bounds which info files /api/check may read.
	DataDir     string
	ImageWidth  int
	ImageHeight int
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/splits", s.handleSplits)
	mux.HandleFunc("/api/captions", s.handleCaptions)
	mux.HandleFunc("/api/frames", s.handleFrames)
	mux.HandleFunc("/api/check", s.handleCheck)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	fmt.Printf("Serving at http://%s\n", s.Addr)
	return http.ListenAndServe(s.Addr, s.Handler())
}
