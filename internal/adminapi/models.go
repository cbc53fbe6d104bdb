// Package adminapi is Roxy's localhost-bound, read-only status surface: a
// small observability collaborator, not part of the request plane that
// internal/dispatch serves. It is disabled unless explicitly configured,
// the same relationship the teacher's internal/api package has to
// internal/server.
package adminapi

import "time"

// StatusResponse is the response body for GET /api/v1/status.
type StatusResponse struct {
	NodeID    string          `json:"node_id"`
	StartTime time.Time       `json:"start_time"`
	Uptime    string          `json:"uptime"`
	Registry  RegistrySummary `json:"registry"`
	Certs     CertStats       `json:"certs"`
	DNS       DNSStats        `json:"dns"`
	Host      HostStats       `json:"host"`
}

// RegistrySummary summarizes the currently loaded Registry.
type RegistrySummary struct {
	Count         int                  `json:"count"`
	Registrations []RegistrationDigest `json:"registrations"`
}

// RegistrationDigest is a single registration's display-friendly summary.
type RegistrationDigest struct {
	Pattern      string `json:"pattern"`
	Wildcard     bool   `json:"wildcard"`
	HTTPSEnabled bool   `json:"https_enabled"`
	RouteCount   int    `json:"route_count"`
}

// CertStats reports the on-demand certificate cache occupancy and the CA's
// trust-store bookkeeping marker.
type CertStats struct {
	Registered     int  `json:"registered"`
	CacheSize      int  `json:"cache_size"`
	CacheCapacity  int  `json:"cache_capacity"`
	CAReady        bool `json:"ca_ready"`
	CALooksTrusted bool `json:"ca_looks_trusted"`
}

// DNSStats mirrors the dnsserver.StatsSnapshot counters.
type DNSStats struct {
	QueriesTotal uint64  `json:"queries_total"`
	QueriesUDP   uint64  `json:"queries_udp"`
	QueriesTCP   uint64  `json:"queries_tcp"`
	ResponsesErr uint64  `json:"responses_err"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// HostStats carries process/host statistics gathered via gopsutil.
type HostStats struct {
	NumCPU     int     `json:"num_cpu"`
	MemUsedMB  float64 `json:"mem_used_mb"`
	MemTotalMB float64 `json:"mem_total_mb"`
	MemPercent float64 `json:"mem_percent"`
}

// HealthResponse is the response body for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
