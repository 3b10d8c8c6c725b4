package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

var contentTypes = map[string]string{
	".js":   "application/javascript",
	".css":  "text/css",
	".html": "text/html",
}

// handleAsset serves a file from the asset root. Anything that resolves
// outside the root is a 404, same as a missing file, so the response does not
// reveal whether the target exists.
func (s *SSEServer) handleAsset(w http.ResponseWriter, r *http.Request) {
	if s.assetsDir == "" {
		http.NotFound(w, r)
		return
	}

	name := chi.URLParam(r, "*")
	path, err := resolveAsset(s.assetsDir, name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	contentType := contentTypes[strings.ToLower(filepath.Ext(path))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// resolveAsset joins name onto root and verifies the cleaned result is still
// inside root.
func resolveAsset(root, name string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	path := filepath.Clean(filepath.Join(absRoot, filepath.FromSlash(name)))
	rel, err := filepath.Rel(absRoot, path)
	if err != nil {
		return "", ErrPathTraversal
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return path, nil
}
