package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"time"
)

const (
	organizationName = "Roxy Local Development"
	leafValidity     = 365 * 24 * time.Hour
	caValidity       = 365 * 24 * time.Hour
)

// MintLeaf generates an ECDSA P-256 keypair and signs a leaf certificate
// for hostname using ca, with SAN "DNS:<hostname>" (FR-3.1.2/3/4 of
// original_source's certificate generator).
func (ca *RootCA) MintLeaf(hostname string) (*tls.Certificate, error) {
	return ca.mint(hostname, []string{hostname})
}

func (ca *RootCA) mint(commonName string, sans []string) (*tls.Certificate, error) {
	if !ca.Ready() {
		return nil, fmt.Errorf("root CA is not loaded")
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating leaf key: %w", err)
	}

	serial, err := randomSerial()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   commonName,
			Organization: []string{organizationName},
		},
		DNSNames:    sans,
		NotBefore:   now,
		NotAfter:    now.Add(leafValidity),
		KeyUsage:    x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca.cert, &key.PublicKey, ca.key)
	if err != nil {
		return nil, fmt.Errorf("signing leaf certificate for %q: %w", commonName, err)
	}

	return &tls.Certificate{
		Certificate: [][]byte{der, ca.certDER},
		PrivateKey:  key,
	}, nil
}
