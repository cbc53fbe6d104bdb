// Package certs implements Roxy's Root CA, registered-certificate loading,
// and on-demand TLS leaf minting for `.roxy` hostnames.
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"
)

// RootCA owns the long-lived signing key used to mint every per-domain
// leaf certificate, registered or on-demand. Trusting the CA once lets
// every domain leaf validate without further trust prompts.
type RootCA struct {
	dataDir string

	cert    *x509.Certificate
	certDER []byte
	key     *ecdsa.PrivateKey
}

// NewRootCA returns a RootCA rooted at dataDir; it does not load or
// generate key material until Load or Generate is called.
func NewRootCA(dataDir string) *RootCA {
	return &RootCA{dataDir: dataDir}
}

// CertPath is the location of the CA's PEM-encoded certificate.
func (ca *RootCA) CertPath() string { return filepath.Join(ca.dataDir, "ca.crt") }

// KeyPath is the location of the CA's PEM-encoded private key.
func (ca *RootCA) KeyPath() string { return filepath.Join(ca.dataDir, "ca.key") }

// Exists reports whether both CA files are present on disk.
func (ca *RootCA) Exists() bool {
	if _, err := os.Stat(ca.CertPath()); err != nil {
		return false
	}
	if _, err := os.Stat(ca.KeyPath()); err != nil {
		return false
	}
	return true
}

// Generate creates a fresh self-signed ECDSA P-256 Root CA and persists it
// under dataDir, writing the key with 0600 permissions.
func (ca *RootCA) Generate() error {
	if err := os.MkdirAll(ca.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir %q: %w", ca.dataDir, err)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generating CA key: %w", err)
	}

	serial, err := randomSerial()
	if err != nil {
		return err
	}

	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   "Roxy Local Development Root CA",
			Organization: []string{organizationName},
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(caValidity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return fmt.Errorf("creating CA certificate: %w", err)
	}

	if err := writeCertPEM(ca.CertPath(), der); err != nil {
		return err
	}
	if err := writeKeyPEM(ca.KeyPath(), key); err != nil {
		return err
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return fmt.Errorf("parsing generated CA certificate: %w", err)
	}
	ca.cert = cert
	ca.certDER = der
	ca.key = key
	return nil
}

// Load reads the CA certificate and key from disk into memory.
func (ca *RootCA) Load() error {
	certPEM, err := os.ReadFile(ca.CertPath())
	if err != nil {
		return fmt.Errorf("reading CA certificate: %w", err)
	}
	certBlock, _ := pem.Decode(certPEM)
	if certBlock == nil {
		return fmt.Errorf("CA certificate file %q is not valid PEM", ca.CertPath())
	}
	cert, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return fmt.Errorf("parsing CA certificate: %w", err)
	}

	keyPEM, err := os.ReadFile(ca.KeyPath())
	if err != nil {
		return fmt.Errorf("reading CA key: %w", err)
	}
	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return fmt.Errorf("CA key file %q is not valid PEM", ca.KeyPath())
	}
	key, err := x509.ParseECPrivateKey(keyBlock.Bytes)
	if err != nil {
		return fmt.Errorf("parsing CA key: %w", err)
	}

	ca.cert = cert
	ca.certDER = certBlock.Bytes
	ca.key = key
	return nil
}

// Ready reports whether the CA has key material loaded and can sign leaves.
func (ca *RootCA) Ready() bool { return ca.cert != nil && ca.key != nil }

// Certificate returns the parsed CA certificate, or nil if not loaded.
func (ca *RootCA) Certificate() *x509.Certificate { return ca.cert }

// trustStoreMarkers lists the well-known paths a system-wide CA install
// would leave behind on common developer platforms. This is a best-effort
// presence check for the admin status endpoint only; Roxy never writes to
// or reads from the OS trust store itself (installing the CA is an
// external, manual step).
var trustStoreMarkers = []string{
	"/usr/local/share/ca-certificates/roxy-root-ca.crt",
	"/etc/ca-certificates/trust-source/anchors/roxy-root-ca.crt",
	"/usr/local/share/roxy/roxy-root-ca-installed",
}

// LooksTrustInstalled reports whether the CA certificate appears to have
// been installed into the system trust store, for display on the admin
// status endpoint. A false result does not mean the CA is untrusted — only
// that none of the well-known marker paths were found.
func (ca *RootCA) LooksTrustInstalled() bool {
	for _, marker := range trustStoreMarkers {
		if _, err := os.Stat(marker); err == nil {
			return true
		}
	}
	return false
}

func randomSerial() (*big.Int, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	serial, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("generating certificate serial: %w", err)
	}
	return serial, nil
}

func writeCertPEM(path string, der []byte) error {
	block := &pem.Block{Type: "CERTIFICATE", Bytes: der}
	return os.WriteFile(path, pem.EncodeToMemory(block), 0o644)
}

func writeKeyPEM(path string, key *ecdsa.PrivateKey) error {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return fmt.Errorf("marshaling private key: %w", err)
	}
	block := &pem.Block{Type: "EC PRIVATE KEY", Bytes: der}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return fmt.Errorf("writing key file %q: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}
