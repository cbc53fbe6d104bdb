// Package dispatch resolves incoming requests to a registered route by
// Host header and longest path-prefix match, and renders themed error
// pages when a domain or route cannot be found.
package dispatch

import (
	"log/slog"
	"net/http"

	"github.com/roxydev/roxy/internal/domain"
)

// ProxyForwarder services a request against a proxy route target.
type ProxyForwarder interface {
	Forward(w http.ResponseWriter, r *http.Request, target domain.RouteTarget)
}

// StaticServer services a request against a static-files route target.
type StaticServer interface {
	Serve(w http.ResponseWriter, r *http.Request, mountPrefix string, dir string)
}

// Dispatcher is the top-level http.Handler: it resolves (host, path) to a
// route and forwards to the proxy or static-file collaborator.
type Dispatcher struct {
	Registry domain.Registry
	Proxy    ProxyForwarder
	Static   StaticServer
	Logger   *slog.Logger
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	host := r.Host
	if host == "" {
		http.Error(w, "Missing Host header", http.StatusBadRequest)
		return
	}
	hostname := domain.NormalizeHostname(host)

	reg, ok := d.Registry.Lookup(hostname)
	if !ok {
		d.log().Info("domain not registered", "host", hostname)
		renderNotRegistered(w, hostname)
		return
	}

	route, ok := reg.MatchRoute(r.URL.Path)
	if !ok {
		d.log().Info("no route found", "host", hostname, "path", r.URL.Path)
		renderNoRoute(w, reg, hostname, r.URL.Path)
		return
	}

	d.log().Debug("routing request", "method", r.Method, "host", hostname, "path", r.URL.Path, "route", string(route.Path))

	switch route.Target.Kind {
	case domain.StaticFilesTarget:
		d.Static.Serve(w, r, string(route.Path), route.Target.Directory)
	default:
		d.Proxy.Forward(w, r, route.Target)
	}
}

func (d *Dispatcher) log() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
