package certs

import (
	"crypto/tls"
	"fmt"
	"path/filepath"

	"github.com/roxydev/roxy/internal/domain"
)

// LoadRegisteredCert loads "<stem>.crt"/"<stem>.key" for pattern from
// certsDir, where stem is pattern.CertName() (spec.md §4.B). Any failure
// here is fatal at startup — registered certs are never lazily minted.
func LoadRegisteredCert(certsDir string, pattern domain.Pattern) (*tls.Certificate, error) {
	stem := pattern.CertName()
	certPath := filepath.Join(certsDir, stem+".crt")
	keyPath := filepath.Join(certsDir, stem+".key")

	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("loading registered certificate for %s (stem %q): %w", pattern, stem, err)
	}
	return &cert, nil
}
