package adminapi

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/roxydev/roxy/internal/certs"
	"github.com/roxydev/roxy/internal/dnsserver"
	"github.com/roxydev/roxy/internal/domain"
)

// RegistrySource supplies the live Registry for the status endpoint. The
// daemon's registrationstore.Store satisfies this, but adminapi only
// depends on the narrow read it needs.
type RegistrySource interface {
	LoadRegistry() (domain.Registry, error)
}

// Handler holds the read-only dependencies the status endpoints report on.
// Nothing here mutates daemon state; this is strictly observability, the
// same role the teacher's handlers.Handler plays for its own REST surface.
type Handler struct {
	NodeID    string
	StartTime time.Time

	Registry RegistrySource
	Resolver *certs.Resolver
	CA       *certs.RootCA
	Stats    *dnsserver.Stats
}

// Health godoc
// @Summary Health check
// @Description Reports that the admin API is reachable
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Status godoc
// @Summary Daemon status
// @Description Returns the current registry summary, certificate cache occupancy, DNS query counters, and host stats
// @Tags system
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /status [get]
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		NodeID:    h.NodeID,
		StartTime: h.StartTime,
		Uptime:    time.Since(h.StartTime).Round(time.Second).String(),
		Registry:  h.registrySummary(),
		Certs:     h.certStats(),
		DNS:       h.dnsStats(),
		Host:      hostStats(),
	})
}

func (h *Handler) registrySummary() RegistrySummary {
	if h.Registry == nil {
		return RegistrySummary{}
	}
	registry, err := h.Registry.LoadRegistry()
	if err != nil {
		return RegistrySummary{}
	}

	all := registry.All()
	digests := make([]RegistrationDigest, 0, len(all))
	for _, reg := range all {
		digests = append(digests, RegistrationDigest{
			Pattern:      reg.Pattern.DisplayPattern(),
			Wildcard:     reg.Pattern.IsWildcard(),
			HTTPSEnabled: reg.HTTPSEnabled,
			RouteCount:   len(reg.Routes),
		})
	}
	return RegistrySummary{Count: registry.Len(), Registrations: digests}
}

func (h *Handler) certStats() CertStats {
	stats := CertStats{}
	if h.Resolver != nil {
		stats.Registered = h.Resolver.RegisteredCount()
		stats.CacheSize = h.Resolver.CacheSize()
		stats.CacheCapacity = h.Resolver.CacheCapacity()
	}
	if h.CA != nil {
		stats.CAReady = h.CA.Ready()
		stats.CALooksTrusted = h.CA.LooksTrustInstalled()
	}
	return stats
}

func (h *Handler) dnsStats() DNSStats {
	snap := h.Stats.Snapshot()
	return DNSStats{
		QueriesTotal: snap.QueriesTotal,
		QueriesUDP:   snap.QueriesUDP,
		QueriesTCP:   snap.QueriesTCP,
		ResponsesErr: snap.ResponsesErr,
		AvgLatencyMs: snap.AvgLatencyMs,
	}
}

// hostStats samples process/host memory via gopsutil, mirroring the
// teacher's handlers.Handler.Stats use of github.com/shirou/gopsutil/v3.
func hostStats() HostStats {
	h := HostStats{NumCPU: runtime.NumCPU()}
	if vm, err := mem.VirtualMemory(); err == nil {
		h.MemTotalMB = float64(vm.Total) / 1024 / 1024
		h.MemUsedMB = float64(vm.Used) / 1024 / 1024
		h.MemPercent = vm.UsedPercent
	}
	return h
}
