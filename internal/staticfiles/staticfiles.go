// Package staticfiles serves files from a registered directory mounted at
// a route's path prefix: traversal defense, trailing-slash redirects,
// index.html preference, and a themed directory listing as the fallback.
package staticfiles

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Server serves static files for a single route target. It implements
// dispatch.StaticServer.
type Server struct {
	Logger *slog.Logger
}

func (s *Server) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Serve handles one request against dir, mounted at mountPrefix.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, mountPrefix string, dir string) {
	originalPath := r.URL.Path

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) &&
		originalPath == mountPrefix && mountPrefix != "/" {
		location := mountPrefix + "/"
		if r.URL.RawQuery != "" {
			location += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, location, http.StatusTemporaryRedirect)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	stripped := stripMountPrefix(originalPath, mountPrefix)
	resolved, ok := resolvePath(dir, stripped)
	if !ok {
		s.log().Debug("rejecting path outside mount root", "path", originalPath)
		renderNotFound(w, originalPath)
		return
	}

	info, err := os.Stat(resolved)
	if err != nil {
		renderNotFound(w, originalPath)
		return
	}

	if info.IsDir() {
		s.serveDirectory(w, r, resolved, mountPrefix, originalPath)
		return
	}

	s.serveFile(w, r, resolved, stripped, mountPrefix)
}

func (s *Server) serveDirectory(w http.ResponseWriter, r *http.Request, resolved, mountPrefix, urlPath string) {
	indexPath := filepath.Join(resolved, "index.html")
	if idxInfo, err := os.Stat(indexPath); err == nil && !idxInfo.IsDir() {
		s.serveFile(w, r, indexPath, "", mountPrefix)
		return
	}

	entries, err := readDirEntries(resolved)
	if err != nil {
		renderNotFound(w, urlPath)
		return
	}
	renderDirectoryListing(w, urlPath, mountPrefix, entries)
}

// serveFile hands off to net/http's file serving machinery for Range
// requests, conditional GETs, and content-type sniffing. stripped, when
// non-empty, is the mount-relative path Go's server sees in r.URL.Path so
// any redirect it issues (e.g. ".../index.html" to "./") is computed
// relative to the mount; redirectRewriter then re-adds the mount prefix
// to absolute-path Locations.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, resolved, stripped, mountPrefix string) {
	original := r.URL.Path
	if stripped != "" {
		r.URL.Path = stripped
	}
	defer func() { r.URL.Path = original }()

	ww := w
	if mountPrefix != "/" {
		ww = &redirectRewriter{ResponseWriter: w, mountPrefix: mountPrefix}
	}
	http.ServeFile(ww, r, resolved)
}

// redirectRewriter prepends the route's mount prefix onto any
// same-origin redirect Location the underlying file server issues, so the
// client stays within the mount (spec requirement 6).
type redirectRewriter struct {
	http.ResponseWriter
	mountPrefix string
}

func (rw *redirectRewriter) WriteHeader(code int) {
	if code >= 300 && code < 400 {
		if loc := rw.Header().Get("Location"); strings.HasPrefix(loc, "/") {
			rw.Header().Set("Location", rw.mountPrefix+loc)
		}
	}
	rw.ResponseWriter.WriteHeader(code)
}
