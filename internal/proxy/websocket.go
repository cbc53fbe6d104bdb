package proxy

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/roxydev/roxy/internal/domain"
)

const websocketResponsePeekSize = 4096

// websocketCopyBufferSize is the per-direction pump buffer size once the
// tunnel is established.
const websocketCopyBufferSize = 8192

func (f *Forwarder) forwardWebSocket(w http.ResponseWriter, r *http.Request, target domain.RouteTarget) {
	backendAddr := fmt.Sprintf("%s:%d", target.Host, target.Port)
	backend, err := net.Dial("tcp", backendAddr)
	if err != nil {
		f.log().Warn("websocket backend connection failed", "target", target.String())
		http.Error(w, fmt.Sprintf("Cannot connect to service at %s", target.String()), http.StatusBadGateway)
		return
	}

	host := r.Host
	scheme := schemeOf(r)
	clientIP := clientIPOf(r)

	upgradeReq := buildUpgradeRequest(r, target, host, scheme, clientIP)
	if _, err := backend.Write([]byte(upgradeReq)); err != nil {
		backend.Close()
		http.Error(w, fmt.Sprintf("Backend write error: %s", err), http.StatusBadGateway)
		return
	}

	buf := make([]byte, websocketResponsePeekSize)
	n, err := backend.Read(buf)
	if err != nil {
		backend.Close()
		http.Error(w, fmt.Sprintf("Backend read error: %s", err), http.StatusBadGateway)
		return
	}
	respStr := string(buf[:n])

	firstLine := respStr
	if idx := strings.IndexAny(respStr, "\r\n"); idx != -1 {
		firstLine = respStr[:idx]
	}
	if !strings.Contains(firstLine, "101") {
		backend.Close()
		f.log().Warn("backend rejected websocket upgrade", "target", target.String())
		http.Error(w, "Backend rejected WebSocket upgrade", http.StatusBadGateway)
		return
	}

	acceptKey := extractSecWebSocketAccept(respStr)

	hijacker, ok := w.(http.Hijacker)
	if !ok {
		backend.Close()
		http.Error(w, "WebSocket upgrade not supported by this connection", http.StatusInternalServerError)
		return
	}
	client, clientBuf, err := hijacker.Hijack()
	if err != nil {
		backend.Close()
		http.Error(w, fmt.Sprintf("Hijack failed: %s", err), http.StatusInternalServerError)
		return
	}

	if _, err := client.Write(buildSwitchingProtocolsResponse(acceptKey)); err != nil {
		client.Close()
		backend.Close()
		return
	}

	f.log().Info("websocket connection established", "target", target.String())
	start := time.Now()
	go pumpWebSocket(client, clientBuf, backend, target.String(), start, f.log())
}

// buildUpgradeRequest serializes the HTTP/1.1 upgrade request line, the
// backend Host header, the three forwarding headers, and every other
// client header except Host, the forwarding headers, and hop-by-hop
// headers — but Connection and Upgrade are preserved so the backend can
// complete the handshake.
func buildUpgradeRequest(r *http.Request, target domain.RouteTarget, host, scheme, clientIP string) string {
	path := r.URL.Path
	if q := r.URL.RawQuery; q != "" {
		path += "?" + q
	}

	var b strings.Builder
	fmt.Fprintf(&b, "GET %s HTTP/1.1\r\n", path)
	fmt.Fprintf(&b, "Host: %s:%d\r\n", target.Host, target.Port)
	fmt.Fprintf(&b, "X-Forwarded-Host: %s\r\n", host)
	fmt.Fprintf(&b, "X-Forwarded-Proto: %s\r\n", scheme)
	if clientIP != "" {
		xff := clientIP
		if existing := r.Header.Get("X-Forwarded-For"); existing != "" {
			xff = existing + ", " + clientIP
		}
		fmt.Fprintf(&b, "X-Forwarded-For: %s\r\n", xff)
	}

	skip := map[string]bool{
		"Host":                true,
		"X-Forwarded-Host":    true,
		"X-Forwarded-Proto":   true,
		"X-Forwarded-For":     true,
		"Keep-Alive":          true,
		"Proxy-Authenticate":  true,
		"Proxy-Authorization": true,
		"Te":                  true,
		"Trailer":             true,
		"Transfer-Encoding":   true,
	}
	dynamicSkip := map[string]bool{}
	for _, tok := range strings.Split(r.Header.Get("Connection"), ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" && !strings.EqualFold(tok, "upgrade") {
			dynamicSkip[http.CanonicalHeaderKey(tok)] = true
		}
	}

	for name, values := range r.Header {
		canon := http.CanonicalHeaderKey(name)
		if skip[canon] || dynamicSkip[canon] {
			continue
		}
		for _, v := range values {
			fmt.Fprintf(&b, "%s: %s\r\n", name, v)
		}
	}
	b.WriteString("\r\n")
	return b.String()
}

// extractSecWebSocketAccept finds the Sec-WebSocket-Accept line in a raw
// HTTP response, case-insensitively.
func extractSecWebSocketAccept(response string) string {
	for _, line := range strings.Split(response, "\r\n") {
		if !strings.Contains(strings.ToLower(line), "sec-websocket-accept:") {
			continue
		}
		_, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		return strings.TrimSpace(value)
	}
	return ""
}

func buildSwitchingProtocolsResponse(acceptKey string) []byte {
	var b strings.Builder
	b.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	b.WriteString("Upgrade: websocket\r\n")
	b.WriteString("Connection: Upgrade\r\n")
	if acceptKey != "" {
		fmt.Fprintf(&b, "Sec-WebSocket-Accept: %s\r\n", acceptKey)
	}
	b.WriteString("\r\n")
	return []byte(b.String())
}

// pumpWebSocket splits the hijacked client connection and the backend
// connection and runs two concurrent byte-copy loops until either side
// hits EOF or error, then closes both.
func pumpWebSocket(client net.Conn, clientBuf *bufio.ReadWriter, backend net.Conn, target string, start time.Time, logger *slog.Logger) {
	defer client.Close()
	defer backend.Close()

	closedBy := make(chan string, 2)

	go func() {
		buf := make([]byte, websocketCopyBufferSize)
		_, _ = io.CopyBuffer(backend, clientBuf.Reader, buf)
		closedBy <- "client"
	}()
	go func() {
		buf := make([]byte, websocketCopyBufferSize)
		_, _ = io.CopyBuffer(client, backend, buf)
		closedBy <- "backend"
	}()

	first := <-closedBy
	duration := time.Since(start)
	logger.Info("websocket connection closed", "target", target, "duration_ms", duration.Milliseconds())
	logger.Debug("websocket close details", "target", target, "closed_by", first)
}
