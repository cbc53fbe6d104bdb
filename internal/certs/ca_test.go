package certs

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCAGenerateThenLoad(t *testing.T) {
	dir := t.TempDir()
	ca := NewRootCA(dir)
	require.NoError(t, ca.Generate())
	assert.True(t, ca.Exists())
	assert.True(t, ca.Ready())

	loaded := NewRootCA(dir)
	require.NoError(t, loaded.Load())
	assert.True(t, loaded.Ready())
	assert.Equal(t, ca.Certificate().SerialNumber, loaded.Certificate().SerialNumber)
}

func TestRootCANotExistsBeforeGenerate(t *testing.T) {
	ca := NewRootCA(t.TempDir())
	assert.False(t, ca.Exists())
	assert.False(t, ca.Ready())
}

func TestRootCALoadMissingFails(t *testing.T) {
	ca := NewRootCA(t.TempDir())
	assert.Error(t, ca.Load())
}

func TestRootCALooksTrustInstalledFalseWithoutMarkers(t *testing.T) {
	ca := NewRootCA(t.TempDir())
	assert.False(t, ca.LooksTrustInstalled())
}

func TestRootCAKeyFilePermissions(t *testing.T) {
	dir := t.TempDir()
	ca := NewRootCA(dir)
	require.NoError(t, ca.Generate())

	info, err := os.Stat(ca.KeyPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
