package adminapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Server wraps the admin API's gin engine and HTTP server. It is only
// constructed when AdminAPIConfig.Enabled is true; by default Roxy runs
// with no admin surface at all.
//
// Security note: this surface is read-only but still carries a registry
// summary and host stats. Bind it to localhost (the default) unless you
// understand the exposure of running it elsewhere.
type Server struct {
	logger     *slog.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// New builds a Server bound to host:port. nodeID identifies this run in
// the status response and, if empty, a fresh one is generated.
func New(host string, port int, nodeID string, logger *slog.Logger, h *Handler) *Server {
	if nodeID == "" {
		nodeID = uuid.NewString()
	}
	h.NodeID = nodeID
	if h.StartTime.IsZero() {
		h.StartTime = time.Now()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), slogRequestLogger(logger))
	registerRoutes(engine, h)
	mountDashboard(engine, logger)

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{logger: logger, engine: engine, httpServer: httpServer}
}

// Addr returns the server's configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Engine exposes the gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// ListenAndServe blocks serving the admin API until the listener fails or
// Shutdown is called.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the admin API server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
