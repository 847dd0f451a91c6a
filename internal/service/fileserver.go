package service

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileServer serves byte ranges of data files under a single root
// directory over HTTP.
type FileServer struct {
	root string
}

// NewFileServer creates a fileserver confined to root.
func NewFileServer(root string) (*FileServer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve data root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat data root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data root %s is not a directory", abs)
	}
	return &FileServer{root: abs}, nil
}

// Handler returns the HTTP handler serving /segment and /healthz.
func (s *FileServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/segment", s.handleSegment)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

func (s *FileServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

// handleSegment streams length bytes of the named file starting at start.
// Requests for ranges past the end of the file are truncated; a start at or
// beyond the end is unsatisfiable.
func (s *FileServer) handleSegment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	start, err := strconv.ParseInt(q.Get("start"), 10, 64)
	if err != nil || start < 0 {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}
	length, err := strconv.ParseInt(q.Get("length"), 10, 64)
	if err != nil || length <= 0 {
		http.Error(w, "invalid length", http.StatusBadRequest)
		return
	}

	path, err := s.resolve(q.Get("path"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		http.Error(w, "stat failed", http.StatusInternalServerError)
		return
	}
	if start >= info.Size() {
		http.Error(w, "start beyond end of file", http.StatusRequestedRangeNotSatisfiable)
		return
	}
	if start+length > info.Size() {
		length = info.Size() - start
	}

	if _, err := file.Seek(start, io.SeekStart); err != nil {
		http.Error(w, "seek failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	if _, err := io.CopyN(w, file, length); err != nil {
		slog.Error("Failed to stream segment", "path", path, "start", start, "length", length, "error", err)
	}
}

// resolve maps a request path to an absolute path and rejects anything
// escaping the data root.
func (s *FileServer) resolve(reqPath string) (string, error) {
	if reqPath == "" {
		return "", fmt.Errorf("path is required")
	}
	// Treat the request path as relative to the root, even when absolute.
	rel := filepath.Clean("/" + filepath.Base(reqPath))
	if strings.Contains(reqPath, "..") {
		return "", fmt.Errorf("invalid path")
	}
	return filepath.Join(s.root, rel), nil
}
