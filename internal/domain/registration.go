package domain

import (
	"errors"
	"fmt"
)

// ErrNoRoutes is returned when a registration is built with an empty
// route list; a registration without routes is meaningless (spec.md
// requires removing the whole registration instead of its last route).
var ErrNoRoutes = errors.New("registration must have at least one route")

// DomainRegistration is one entry in the Registry: a domain pattern with
// its routes and whether HTTPS should be offered for it.
type DomainRegistration struct {
	Pattern      Pattern
	Routes       []Route
	HTTPSEnabled bool
}

// NewDomainRegistration validates route-prefix uniqueness and non-emptiness.
func NewDomainRegistration(pattern Pattern, routes []Route, httpsEnabled bool) (DomainRegistration, error) {
	if len(routes) == 0 {
		return DomainRegistration{}, ErrNoRoutes
	}
	seen := make(map[PathPrefix]struct{}, len(routes))
	for _, r := range routes {
		if _, dup := seen[r.Path]; dup {
			return DomainRegistration{}, fmt.Errorf("duplicate path prefix %q in registration for %s", r.Path, pattern)
		}
		seen[r.Path] = struct{}{}
	}
	return DomainRegistration{Pattern: pattern, Routes: routes, HTTPSEnabled: httpsEnabled}, nil
}

// MatchRoute returns the route whose prefix matches requestPath, preferring
// the longest matching prefix (spec.md §4.C "longest-prefix match").
func (d DomainRegistration) MatchRoute(requestPath string) (Route, bool) {
	var best Route
	found := false
	for _, r := range d.Routes {
		if !r.Path.Matches(requestPath) {
			continue
		}
		if !found || len(r.Path) > len(best.Path) {
			best = r
			found = true
		}
	}
	return best, found
}
