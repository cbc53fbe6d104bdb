package staticfiles

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"
)

const commonCSS = `
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
  background: #0f1115; color: #e6e6e6; margin: 0; padding: 2rem; }
h1 { font-size: 1.25rem; color: #9aa3b2; }
table { width: 100%; max-width: 960px; border-collapse: collapse; margin-top: 1rem; }
th, td { text-align: left; padding: 0.4rem 0.75rem; border-bottom: 1px solid #2a2f3a; }
th { color: #9aa3b2; font-weight: 600; font-size: 0.85rem; text-transform: uppercase; }
a { color: #7ee787; text-decoration: none; }
a:hover { text-decoration: underline; }
.error-card { max-width: 640px; margin: 2rem auto; padding: 2rem;
  background: #161a21; border: 1px solid #2a2f3a; border-radius: 12px; }
.error-title { font-size: 1.5rem; margin: 0 0 0.5rem; color: #ff6b6b; }
`

func renderPage(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s - Roxy</title>
<style>%s</style>
</head>
<body>
%s
</body>
</html>
`, html.EscapeString(title), commonCSS, body)
}

// renderNotFound serves Roxy's themed 404 for any static-file failure:
// missing file, traversal rejection, or an unreadable directory.
func renderNotFound(w http.ResponseWriter, requestPath string) {
	body := fmt.Sprintf(`<div class="error-card">
<h1 class="error-title">Not Found</h1>
<p><code>%s</code> does not exist under this mount.</p>
</div>`, html.EscapeString(requestPath))
	renderPage(w, http.StatusNotFound, "Not Found", body)
}

// renderDirectoryListing serves the themed directory index for a folder
// with no index.html, at urlPath (the browser-visible, mount-prefixed
// path) backed by entries already sorted directories-first.
func renderDirectoryListing(w http.ResponseWriter, urlPath string, mountPrefix string, entries []entry) {
	var rows strings.Builder

	if urlPath != mountPrefix && urlPath != mountPrefix+"/" && urlPath != "/" {
		parent := parentURL(urlPath)
		rows.WriteString(`<tr data-name=".." data-dir="1" data-size="0" data-ts="0">` +
			fmt.Sprintf(`<td><a href="%s">..</a></td><td></td><td></td></tr>`, html.EscapeString(parent)))
	}

	for _, e := range entries {
		href := joinURL(urlPath, encodePathSegment(e.Name))
		if e.IsDir {
			href += "/"
		}
		sizeLabel := ""
		sizeAttr := "0"
		if !e.IsDir {
			sizeLabel = formatSize(e.Size)
			sizeAttr = fmt.Sprintf("%d", e.Size)
		}
		fmt.Fprintf(&rows,
			`<tr data-name="%s" data-dir="%s" data-size="%s" data-ts="%d">`+
				`<td><a href="%s">%s%s</a></td><td>%s</td><td>%s</td></tr>`,
			html.EscapeString(e.Name), dirFlag(e.IsDir), sizeAttr, e.ModTime,
			html.EscapeString(href), html.EscapeString(e.Name), dirSuffix(e.IsDir),
			sizeLabel, formatModTime(e.ModTime))
	}

	body := fmt.Sprintf(`<h1>Index of %s</h1>
<table>
<thead><tr><th>Name</th><th>Size</th><th>Modified</th></tr></thead>
<tbody>
%s
</tbody>
</table>`, html.EscapeString(urlPath), rows.String())

	renderPage(w, http.StatusOK, "Index of "+urlPath, body)
}

func dirSuffix(isDir bool) string {
	if isDir {
		return "/"
	}
	return ""
}

// dirFlag renders data-dir per spec.md §6's "data-dir ∈ {"0","1"}"
// compatibility invariant.
func dirFlag(isDir bool) string {
	if isDir {
		return "1"
	}
	return "0"
}

func formatModTime(unixSeconds int64) string {
	if unixSeconds == 0 {
		return ""
	}
	return time.Unix(unixSeconds, 0).UTC().Format("2006-01-02 15:04:05")
}

func parentURL(urlPath string) string {
	trimmed := strings.TrimSuffix(urlPath, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx <= 0 {
		return "/"
	}
	return trimmed[:idx+1]
}

func joinURL(base, segment string) string {
	if strings.HasSuffix(base, "/") {
		return base + segment
	}
	return base + "/" + segment
}
