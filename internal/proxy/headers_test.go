package proxy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHopByHopRemovesStaticSet(t *testing.T) {
	h := http.Header{}
	h.Set("Connection", "close")
	h.Set("Keep-Alive", "timeout=5")
	h.Set("Proxy-Authenticate", "Basic")
	h.Set("Proxy-Authorization", "Basic xyz")
	h.Set("Te", "trailers")
	h.Set("Trailer", "X-Checksum")
	h.Set("Transfer-Encoding", "chunked")
	h.Set("X-Custom", "keep-me")

	stripHopByHop(h)

	assert.Empty(t, h.Get("Connection"))
	assert.Empty(t, h.Get("Keep-Alive"))
	assert.Empty(t, h.Get("Proxy-Authenticate"))
	assert.Empty(t, h.Get("Proxy-Authorization"))
	assert.Empty(t, h.Get("Te"))
	assert.Empty(t, h.Get("Trailer"))
	assert.Empty(t, h.Get("Transfer-Encoding"))
	assert.Equal(t, "keep-me", h.Get("X-Custom"))
}

func TestStripHopByHopRemovesDynamicConnectionTokens(t *testing.T) {
	h := http.Header{}
	h.Set("Connection", "X-Custom-Secret")
	h.Set("X-Custom-Secret", "hidden")

	stripHopByHop(h)

	assert.Empty(t, h.Get("X-Custom-Secret"))
}

func TestStripHopByHopPreserveUpgradeKeepsConnectionAndUpgrade(t *testing.T) {
	h := http.Header{}
	h.Set("Connection", "Upgrade")
	h.Set("Upgrade", "websocket")
	h.Set("Te", "trailers")

	stripHopByHopPreserveUpgrade(h)

	assert.Equal(t, "Upgrade", h.Get("Connection"))
	assert.Equal(t, "websocket", h.Get("Upgrade"))
	assert.Empty(t, h.Get("Te"))
}

func TestSetForwardingHeadersWithKnownClientIP(t *testing.T) {
	h := http.Header{}
	setForwardingHeaders(h, "myapp.roxy", "https", "203.0.113.9")

	assert.Equal(t, "myapp.roxy", h.Get("X-Forwarded-Host"))
	assert.Equal(t, "https", h.Get("X-Forwarded-Proto"))
	assert.Equal(t, "203.0.113.9", h.Get("X-Forwarded-For"))
}

func TestSetForwardingHeadersOmitsXForwardedForWhenIPUnknown(t *testing.T) {
	h := http.Header{}
	setForwardingHeaders(h, "myapp.roxy", "http", "")

	assert.Empty(t, h.Get("X-Forwarded-For"))
}

func TestIsWebSocketUpgradeCaseInsensitive(t *testing.T) {
	h := http.Header{}
	h.Set("Upgrade", "WebSocket")
	assert.True(t, isWebSocketUpgrade(h))

	h.Set("Upgrade", "h2c")
	assert.False(t, isWebSocketUpgrade(h))
}
