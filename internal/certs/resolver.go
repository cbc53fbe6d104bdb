package certs

import (
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/roxydev/roxy/internal/domain"
)

// Resolver selects a TLS certificate by SNI for Roxy's HTTPS listener.
// It tries, in order: registered certificates loaded at startup, then
// on-demand minted leaves for syntactically valid but unregistered
// `.roxy` hostnames (spec.md §4.B).
type Resolver struct {
	ca         *RootCA
	registry   domain.Registry
	registered map[string]*tls.Certificate
	cache      *onDemandCache
	logger     *slog.Logger
}

// NewResolver loads a registered certificate for every HTTPS-enabled
// registration in registry. A missing registered cert/key pair is fatal,
// matching spec.md's "Any failure to load a registered cert is fatal at
// startup."
func NewResolver(ca *RootCA, registry domain.Registry, certsDir string, cacheCapacity int, logger *slog.Logger) (*Resolver, error) {
	registered := make(map[string]*tls.Certificate)
	for _, reg := range registry.All() {
		if !reg.HTTPSEnabled {
			continue
		}
		cert, err := LoadRegisteredCert(certsDir, reg.Pattern)
		if err != nil {
			return nil, err
		}
		registered[reg.Pattern.CertName()] = cert
	}

	return &Resolver{
		ca:         ca,
		registry:   registry,
		registered: registered,
		cache:      newOnDemandCache(cacheCapacity),
		logger:     logger,
	}, nil
}

// GetCertificate implements the tls.Config.GetCertificate hook.
func (r *Resolver) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	hostname := domain.NormalizeHostname(hello.ServerName)
	if hostname == "" {
		return nil, fmt.Errorf("no SNI server name presented")
	}

	if reg, ok := r.registry.Lookup(hostname); ok && reg.HTTPSEnabled {
		if cert, ok := r.registered[reg.Pattern.CertName()]; ok {
			return cert, nil
		}
	}

	if cert, ok := r.cache.get(hostname); ok {
		return cert, nil
	}

	if _, err := domain.NewName(hostname); err != nil {
		return nil, fmt.Errorf("no certificate available for %q: %w", hostname, err)
	}
	if !r.ca.Ready() {
		return nil, fmt.Errorf("no certificate available for %q: root CA is not loaded", hostname)
	}

	cert, err := r.ca.MintLeaf(hostname)
	if err != nil {
		r.log().Warn("on-demand certificate minting failed", "hostname", hostname, "error", err)
		return nil, err
	}
	r.cache.put(hostname, cert)
	r.log().Info("minted on-demand certificate", "hostname", hostname, "cache_size", r.cache.len())
	return cert, nil
}

// CacheSize reports the number of on-demand leaf certificates currently
// cached, for the admin status endpoint.
func (r *Resolver) CacheSize() int { return r.cache.len() }

// CacheCapacity reports the configured bound on the on-demand cache.
func (r *Resolver) CacheCapacity() int { return r.cache.capacity }

// RegisteredCount reports the number of pre-loaded registered certificates.
func (r *Resolver) RegisteredCount() int { return len(r.registered) }

func (r *Resolver) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}
