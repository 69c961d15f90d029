// Package web serves the single-page UI bundle for the relay.
//
// Files that exist in the bundle are served as-is. Every other path gets the
// bundle's index.html so client-side routes survive a reload. Without a
// bundle directory an embedded placeholder page is served instead.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

//go:embed static
var placeholder embed.FS

const indexFile = "index.html"

// SPAHandler serves a UI bundle with an index.html fallback.
type SPAHandler struct {
	root  fs.FS
	files http.Handler
}

// NewSPAHandler serves the bundle in dir, or the embedded placeholder when dir is empty.
func NewSPAHandler(dir string) *SPAHandler {
	var root fs.FS
	if dir == "" {
		root, _ = fs.Sub(placeholder, "static")
	} else {
		root = os.DirFS(dir)
	}
	return &SPAHandler{root: root, files: http.FileServerFS(root)}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")

	if name != "" && name != indexFile {
		if info, err := fs.Stat(h.root, name); err == nil && !info.IsDir() {
			h.files.ServeHTTP(w, r)
			return
		}
	}

	http.ServeFileFS(w, r, h.root, indexFile)
}
