package certs

import (
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseLeafDER(der []byte) (*x509.Certificate, error) {
	return x509.ParseCertificate(der)
}

func setupCA(t *testing.T) *RootCA {
	t.Helper()
	ca := NewRootCA(t.TempDir())
	require.NoError(t, ca.Generate())
	return ca
}

func TestMintLeafSignedByCA(t *testing.T) {
	ca := setupCA(t)
	leaf, err := ca.MintLeaf("myapp.roxy")
	require.NoError(t, err)
	require.Len(t, leaf.Certificate, 2)

	parsed, err := parseLeafDER(leaf.Certificate[0])
	require.NoError(t, err)
	assert.Equal(t, "myapp.roxy", parsed.Subject.CommonName)
	assert.Equal(t, []string{"myapp.roxy"}, parsed.DNSNames)
	assert.NoError(t, parsed.CheckSignatureFrom(ca.Certificate()))
}

func TestMintLeafFailsWithoutCA(t *testing.T) {
	ca := NewRootCA(t.TempDir())
	_, err := ca.MintLeaf("myapp.roxy")
	assert.Error(t, err)
}
