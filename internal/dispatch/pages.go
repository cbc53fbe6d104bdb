package dispatch

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/roxydev/roxy/internal/domain"
)

// commonCSS is the shared page chrome for Roxy's own error pages: no
// external assets, just enough styling to look intentional in a browser.
const commonCSS = `
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
  background: #0f1115; color: #e6e6e6; margin: 0; display: flex;
  min-height: 100vh; align-items: center; justify-content: center; }
.error-card { max-width: 640px; margin: 2rem; padding: 2rem;
  background: #161a21; border: 1px solid #2a2f3a; border-radius: 12px; }
.error-title { font-size: 1.5rem; margin: 0 0 0.5rem; color: #ff6b6b; }
.error-subtitle { color: #9aa3b2; margin: 0 0 1.5rem; }
code, pre { background: #0b0d11; color: #7ee787; padding: 0.2rem 0.4rem;
  border-radius: 4px; font-family: "SF Mono", Consolas, monospace; }
pre { display: block; padding: 0.75rem 1rem; overflow-x: auto; }
.help-section { margin-top: 1.5rem; padding-top: 1.5rem;
  border-top: 1px solid #2a2f3a; }
.help-section h2 { font-size: 0.95rem; color: #9aa3b2;
  text-transform: uppercase; letter-spacing: 0.05em; }
`

// renderPage wraps body in Roxy's page shell, matching the title/chrome
// convention of a small local dev tool rather than a framework's defaults.
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
<div class="error-card">
%s
</div>
</body>
</html>
`, html.EscapeString(title), commonCSS, body)
}

// renderNotRegistered serves the 404 page shown when no registration
// matches the request's Host header, with a ready-to-run suggestion for
// registering it.
func renderNotRegistered(w http.ResponseWriter, hostname string) {
	escaped := html.EscapeString(hostname)
	body := fmt.Sprintf(`<h1 class="error-title">Domain Not Registered</h1>
<p class="error-subtitle"><code>%s</code> is not registered with Roxy.</p>
<div class="help-section">
<h2>Get started</h2>
<pre>roxy register %s --route "/=3000"</pre>`, escaped, escaped)

	if base, ok := wildcardBaseDomain(hostname); ok {
		escapedBase := html.EscapeString(base)
		body += fmt.Sprintf(`
<p>Or register the whole subdomain family at once:</p>
<pre>roxy register --wildcard %s --route "/=3000"</pre>`, escapedBase)
	}

	body += `
</div>`
	renderPage(w, http.StatusNotFound, "Domain Not Registered", body)
}

// renderNoRoute serves the 404 page shown when a registration exists for
// the host but no route's prefix covers the requested path.
func renderNoRoute(w http.ResponseWriter, reg domain.DomainRegistration, hostname, path string) {
	escapedHost := html.EscapeString(hostname)
	escapedPath := html.EscapeString(path)
	body := fmt.Sprintf(`<h1 class="error-title">No Route Found</h1>
<p class="error-subtitle"><code>%s</code> is registered, but no route covers <code>%s</code>.</p>
<div class="help-section">
<h2>Existing routes</h2>
<pre>%s</pre>
<h2>Add a route</h2>
<pre>roxy route add %s %s 3000</pre>
</div>`, escapedHost, escapedPath, existingRoutesList(reg), escapedHost, escapedPath)

	renderPage(w, http.StatusNotFound, "No Route Found", body)
}

func existingRoutesList(reg domain.DomainRegistration) string {
	var b strings.Builder
	for i, r := range reg.Routes {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s -> %s", html.EscapeString(string(r.Path)), html.EscapeString(r.Target.String()))
	}
	return b.String()
}

// wildcardBaseDomain returns the last two labels of hostname as a
// wildcard-registration suggestion, when hostname has three or more
// labels (so "api.myapp.roxy" suggests "myapp.roxy", but "myapp.roxy"
// itself has nothing narrower to suggest).
func wildcardBaseDomain(hostname string) (string, bool) {
	labels := strings.Split(hostname, ".")
	if len(labels) < 3 {
		return "", false
	}
	return strings.Join(labels[len(labels)-2:], "."), true
}
