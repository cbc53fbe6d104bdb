// Package domain holds the value objects shared by the dispatcher, the
// certificate resolver, and the registration store: domain patterns,
// path prefixes, route targets, and the sorted registry snapshot.
package domain

import (
	"fmt"
	"strings"
)

// Suffix is the reserved top-level label every registered domain must end with.
const Suffix = ".roxy"

// Name is a validated, lowercased ".roxy" hostname.
type Name string

// NewName validates and normalizes a raw domain string.
func NewName(raw string) (Name, error) {
	n := strings.ToLower(strings.TrimSpace(raw))

	if !strings.HasSuffix(n, Suffix) {
		return "", fmt.Errorf("domain must end with %q, got %q", Suffix, raw)
	}
	if len(n) <= len(Suffix) {
		return "", fmt.Errorf("domain name too short: %q", raw)
	}

	prefix := n[:len(n)-len(Suffix)]
	for _, c := range prefix {
		if !isDomainChar(c) {
			return "", fmt.Errorf("domain name contains invalid characters: %q", raw)
		}
	}
	if strings.HasPrefix(prefix, "-") || strings.HasPrefix(prefix, ".") ||
		strings.HasSuffix(prefix, "-") || strings.HasSuffix(prefix, ".") {
		return "", fmt.Errorf("domain name cannot start or end with '-' or '.': %q", raw)
	}

	return Name(n), nil
}

func isDomainChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '.'
}

func (n Name) String() string { return string(n) }
