package server

import (
	"net/http"
	"sort"
	"strings"
)

// MountsHandler serves each configured host directory under "/<name>/".
type MountsHandler struct {
	routes []string
	mux    *http.ServeMux
}

// NewMountsHandler creates a handler for mounts, a name to directory map. Empty directories are skipped.
func NewMountsHandler(mounts map[string]string) *MountsHandler {
	h := &MountsHandler{mux: http.NewServeMux()}

	names := make([]string, 0, len(mounts))
	for name, dir := range mounts {
		if dir != "" && strings.Trim(name, "/") != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		prefix := "/" + strings.Trim(name, "/") + "/"
		h.routes = append(h.routes, prefix)
		h.mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(mounts[name]))))
	}
	return h
}

func (h *MountsHandler) Routes() []string {
	return h.routes
}

func (h *MountsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.mux.ServeHTTP(w, r)
}
