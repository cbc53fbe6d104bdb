package proxy

import (
	"net/http"
	"strings"
)

// hopByHopHeaders is the RFC 7230 §6.1 hop-by-hop set plus Upgrade. The
// WebSocket-path variant skips Connection and Upgrade from this list.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"TE",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// stripHopByHop removes the static hop-by-hop set plus any header named in
// a Connection value ("dynamic hop-by-hop"), per RFC 7230 §6.1.
func stripHopByHop(h http.Header) {
	for _, tok := range strings.Split(h.Get("Connection"), ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			h.Del(tok)
		}
	}
	for _, name := range hopByHopHeaders {
		h.Del(name)
	}
}

// stripHopByHopPreserveUpgrade is the WebSocket-path variant: Connection
// and Upgrade must survive so the backend can complete the handshake.
func stripHopByHopPreserveUpgrade(h http.Header) {
	for _, tok := range strings.Split(h.Get("Connection"), ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" && !strings.EqualFold(tok, "upgrade") {
			h.Del(tok)
		}
	}
	for _, name := range hopByHopHeaders {
		if name == "Connection" || name == "Upgrade" {
			continue
		}
		h.Del(name)
	}
}

// setForwardingHeaders sets X-Forwarded-Host/-Proto/-For on h, appending to
// any existing X-Forwarded-For chain when clientIP is known.
func setForwardingHeaders(h http.Header, host, scheme, clientIP string) {
	h.Set("X-Forwarded-Host", host)
	h.Set("X-Forwarded-Proto", scheme)
	if clientIP == "" {
		return
	}
	if existing := h.Get("X-Forwarded-For"); existing != "" {
		h.Set("X-Forwarded-For", existing+", "+clientIP)
	} else {
		h.Set("X-Forwarded-For", clientIP)
	}
}

// isWebSocketUpgrade reports whether r requests a WebSocket upgrade.
func isWebSocketUpgrade(h http.Header) bool {
	return strings.EqualFold(h.Get("Upgrade"), "websocket")
}
