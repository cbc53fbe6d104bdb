package dnsserver

import (
	"sync/atomic"
	"time"
)

// Stats accumulates DNS query counters shared by the UDP and TCP servers.
// It is read by the admin status endpoint, the same role the teacher's
// handlers.Handler.getDNSStats plays for its own /stats response.
type Stats struct {
	queriesUDP   atomic.Uint64
	queriesTCP   atomic.Uint64
	responsesErr atomic.Uint64
	latencySumNs atomic.Uint64
	latencyCount atomic.Uint64
}

// StatsSnapshot is a point-in-time read of Stats.
type StatsSnapshot struct {
	QueriesTotal uint64
	QueriesUDP   uint64
	QueriesTCP   uint64
	ResponsesErr uint64
	AvgLatencyMs float64
}

// responseRCode extracts the RCODE nibble from a marshaled DNS response's
// header flags without a full parse, for stats bookkeeping only.
func responseRCode(resp []byte) uint16 {
	if len(resp) < 4 {
		return 0
	}
	return uint16(resp[3] & 0x0F)
}

func (s *Stats) recordUDP(d time.Duration, rcode uint16) {
	if s == nil {
		return
	}
	s.queriesUDP.Add(1)
	s.record(d, rcode)
}

func (s *Stats) recordTCP(d time.Duration, rcode uint16) {
	if s == nil {
		return
	}
	s.queriesTCP.Add(1)
	s.record(d, rcode)
}

func (s *Stats) record(d time.Duration, rcode uint16) {
	s.latencySumNs.Add(uint64(d.Nanoseconds()))
	s.latencyCount.Add(1)
	if rcode != 0 {
		s.responsesErr.Add(1)
	}
}

// Snapshot returns the current counter values. A nil receiver returns a
// zero snapshot, so callers may hold an optional *Stats.
func (s *Stats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{}
	}
	udp := s.queriesUDP.Load()
	tcp := s.queriesTCP.Load()
	count := s.latencyCount.Load()

	var avgMs float64
	if count > 0 {
		avgMs = float64(s.latencySumNs.Load()) / float64(count) / float64(time.Millisecond)
	}

	return StatsSnapshot{
		QueriesTotal: udp + tcp,
		QueriesUDP:   udp,
		QueriesTCP:   tcp,
		ResponsesErr: s.responsesErr.Load(),
		AvgLatencyMs: avgMs,
	}
}
