package domain

import (
	"sort"
	"strings"
)

// Registry is the sorted, immutable-per-snapshot list of domain
// registrations consulted by the dispatcher and the TLS resolver.
//
// Ordering invariant: descending by pattern specificity; at equal
// specificity, Exact precedes Wildcard (spec.md §3 "Registry"). First
// match wins on lookup.
type Registry struct {
	registrations []DomainRegistration
}

// NewRegistry builds a Registry snapshot from an unordered set of
// registrations, sorting them per the ordering invariant.
func NewRegistry(regs []DomainRegistration) Registry {
	sorted := make([]DomainRegistration, len(regs))
	copy(sorted, regs)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := sorted[i].Pattern.Specificity(), sorted[j].Pattern.Specificity()
		if si != sj {
			return si > sj
		}
		// Exact (Kind == Exact == 0) precedes Wildcard at equal specificity.
		return sorted[i].Pattern.Kind < sorted[j].Pattern.Kind
	})
	return Registry{registrations: sorted}
}

// NormalizeHostname lowercases a Host header or SNI value and strips any
// port suffix and trailing dot, per spec.md §4.C item 1.
func NormalizeHostname(raw string) string {
	h := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(h, "[") {
		// Bracketed IPv6 literal, optionally followed by ":port".
		if end := strings.IndexByte(h, ']'); end != -1 {
			if rest := h[end+1:]; strings.HasPrefix(rest, ":") {
				h = h[:end+1]
			}
		}
	} else if idx := strings.LastIndexByte(h, ':'); idx != -1 {
		// Only strip a port suffix, not an IPv6 literal's internal colons.
		if !strings.Contains(h[:idx], ":") {
			h = h[:idx]
		}
	}
	h = strings.TrimSuffix(h, ".")
	return h
}

// Lookup returns the first registration whose pattern matches hostname.
func (r Registry) Lookup(hostname string) (DomainRegistration, bool) {
	for _, reg := range r.registrations {
		if reg.Pattern.Matches(hostname) {
			return reg, true
		}
	}
	return DomainRegistration{}, false
}

// All returns the registrations in registry order. The returned slice must
// not be mutated by callers.
func (r Registry) All() []DomainRegistration {
	return r.registrations
}

// Len returns the number of registrations in the snapshot.
func (r Registry) Len() int {
	return len(r.registrations)
}
