// Package dns provides DNS protocol parsing, encoding, and packet manipulation.
//
// Standards Compliance:
//
// This package implements the subset of DNS needed to answer A/AAAA queries
// authoritatively for a single label:
//
//   - RFC 1035: Domain Names - Implementation and Specification (core DNS protocol)
//   - RFC 1034: Domain Names - Concepts and Facilities (DNS concepts)
//   - RFC 3596: DNS Extensions to Support IPv6 (AAAA records)
//
// Error Handling:
//
// All errors are wrapped with context using fmt.Errorf("...: %w", err).
// This preserves error chains while adding operational context.
package dns

import "errors"

var (
	// ErrDNSError is a sentinel error type for DNS protocol violations.
	// Wrap this with fmt.Errorf("context: %w", ErrDNSError) to add context.
	ErrDNSError = errors.New("dns wire error")
)
