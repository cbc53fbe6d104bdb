// Package proxy forwards client requests to a registered backend,
// handling both regular HTTP/1.1+HTTP/2 exchanges and WebSocket tunnels.
package proxy

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/roxydev/roxy/internal/domain"
)

// Forwarder dispatches requests to proxy route targets. It implements
// dispatch.ProxyForwarder.
type Forwarder struct {
	Logger *slog.Logger
}

func (f *Forwarder) log() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// Forward sends r to target's backend, choosing the WebSocket tunnel or
// the regular reverse-proxy path based on the Upgrade header.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, target domain.RouteTarget) {
	if isWebSocketUpgrade(r.Header) {
		f.log().Debug("proxying websocket request", "target", target.String())
		f.forwardWebSocket(w, r, target)
		return
	}
	f.log().Debug("proxying http request", "target", target.String())
	f.forwardHTTP(w, r, target)
}

func schemeOf(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func clientIPOf(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (f *Forwarder) forwardHTTP(w http.ResponseWriter, r *http.Request, target domain.RouteTarget) {
	host := r.Host
	scheme := schemeOf(r)
	clientIP := clientIPOf(r)
	backend := target.String()

	rp := &httputil.ReverseProxy{
		// Rewrite, not Director: ReverseProxy only appends its own
		// X-Forwarded-For entry when Rewrite is nil. setForwardingHeaders
		// below already performs that append, so using Director too
		// would append the client IP twice.
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Scheme = "http"
			pr.Out.URL.Host = backend
			pr.Out.Host = backend

			// ReverseProxy removes X-Forwarded-For from pr.Out before
			// calling Rewrite, so restore the inbound chain to append to.
			if xff := pr.In.Header.Get("X-Forwarded-For"); xff != "" {
				pr.Out.Header.Set("X-Forwarded-For", xff)
			}
			setForwardingHeaders(pr.Out.Header, host, scheme, clientIP)
			stripHopByHop(pr.Out.Header)
		},
		ModifyResponse: func(resp *http.Response) error {
			stripHopByHop(resp.Header)
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			if isConnectionRefused(err) {
				f.log().Warn("service not running", "target", backend)
				http.Error(w, fmt.Sprintf("Service not running at %s", backend), http.StatusBadGateway)
				return
			}
			f.log().Warn("proxy failed", "target", backend, "error", err)
			http.Error(w, fmt.Sprintf("Proxy error: %s", err), http.StatusBadGateway)
		},
	}
	rp.ServeHTTP(w, r)
}

func isConnectionRefused(err error) bool {
	return strings.Contains(err.Error(), "connection refused")
}
