package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roxydev/roxy/internal/domain"
)

type fakeRegistrySource struct {
	registry domain.Registry
	err      error
}

func (f fakeRegistrySource) LoadRegistry() (domain.Registry, error) {
	return f.registry, f.err
}

func mustExactRegistration(t *testing.T, host string, port int) domain.DomainRegistration {
	t.Helper()
	pattern, err := domain.NewExactPattern(host)
	require.NoError(t, err)
	prefix, err := domain.NewPathPrefix("/")
	require.NoError(t, err)
	target, err := domain.NewProxyTarget("127.0.0.1", port)
	require.NoError(t, err)
	reg, err := domain.NewDomainRegistration(pattern, []domain.Route{{Path: prefix, Target: target}}, true)
	require.NoError(t, err)
	return reg
}

func TestHandlerHealthReturnsOK(t *testing.T) {
	h := &Handler{StartTime: time.Now()}
	server := New("127.0.0.1", 0, "test-node", nil, h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	server.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHandlerStatusReportsRegistrySummary(t *testing.T) {
	reg := mustExactRegistration(t, "myapp.roxy", 3000)
	h := &Handler{
		StartTime: time.Now(),
		Registry:  fakeRegistrySource{registry: domain.NewRegistry([]domain.DomainRegistration{reg})},
	}
	server := New("127.0.0.1", 0, "test-node", nil, h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	server.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"node_id":"test-node"`)
	assert.Contains(t, body, `"count":1`)
	assert.Contains(t, body, "myapp.roxy")
}

func TestHandlerStatusHandlesNilRegistry(t *testing.T) {
	h := &Handler{StartTime: time.Now()}
	server := New("127.0.0.1", 0, "", nil, h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	server.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, h.NodeID)
}

func TestDashboardServesIndexForUnknownPath(t *testing.T) {
	h := &Handler{StartTime: time.Now()}
	server := New("127.0.0.1", 0, "test-node", nil, h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	server.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Roxy admin API")
}

func TestSwaggerRouteIsMounted(t *testing.T) {
	h := &Handler{StartTime: time.Now()}
	server := New("127.0.0.1", 0, "test-node", nil, h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	server.Engine().ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusNotFound, w.Code)
}
