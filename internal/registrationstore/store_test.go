package registrationstore

import (
	"path/filepath"
	"testing"

	"github.com/roxydev/roxy/internal/domain"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roxy.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustExactPattern(t *testing.T, raw string) domain.Pattern {
	t.Helper()
	p, err := domain.NewExactPattern(raw)
	require.NoError(t, err)
	return p
}

func mustWildcardPattern(t *testing.T, raw string) domain.Pattern {
	t.Helper()
	p, err := domain.NewWildcardPattern(raw)
	require.NoError(t, err)
	return p
}

func mustRoute(t *testing.T, prefix string, port int) domain.Route {
	t.Helper()
	p, err := domain.NewPathPrefix(prefix)
	require.NoError(t, err)
	target, err := domain.NewProxyTarget("127.0.0.1", port)
	require.NoError(t, err)
	return domain.Route{Path: p, Target: target}
}

func TestOpenRunsMigrations(t *testing.T) {
	openTestStore(t)
}

func TestLoadRegistryEmptyStore(t *testing.T) {
	s := openTestStore(t)
	reg, err := s.LoadRegistry()
	require.NoError(t, err)
	require.Equal(t, 0, reg.Len())
}

func TestUpsertThenLoadRoundTrips(t *testing.T) {
	s := openTestStore(t)

	dr, err := domain.NewDomainRegistration(
		mustExactPattern(t, "myapp.roxy"),
		[]domain.Route{mustRoute(t, "/", 3000), mustRoute(t, "/api", 3001)},
		true,
	)
	require.NoError(t, err)
	require.NoError(t, s.UpsertRegistration(dr))

	registry, err := s.LoadRegistry()
	require.NoError(t, err)
	require.Equal(t, 1, registry.Len())

	loaded, ok := registry.Lookup("myapp.roxy")
	require.True(t, ok)
	require.True(t, loaded.HTTPSEnabled)
	require.Len(t, loaded.Routes, 2)
}

func TestUpsertOverwritesRoutesOnReRegister(t *testing.T) {
	s := openTestStore(t)

	first, err := domain.NewDomainRegistration(
		mustExactPattern(t, "myapp.roxy"),
		[]domain.Route{mustRoute(t, "/", 3000)},
		false,
	)
	require.NoError(t, err)
	require.NoError(t, s.UpsertRegistration(first))

	second, err := domain.NewDomainRegistration(
		mustExactPattern(t, "myapp.roxy"),
		[]domain.Route{mustRoute(t, "/", 4000)},
		true,
	)
	require.NoError(t, err)
	require.NoError(t, s.UpsertRegistration(second))

	registry, err := s.LoadRegistry()
	require.NoError(t, err)
	require.Equal(t, 1, registry.Len())

	loaded, ok := registry.Lookup("myapp.roxy")
	require.True(t, ok)
	require.True(t, loaded.HTTPSEnabled)
	require.Len(t, loaded.Routes, 1)
	require.Equal(t, 4000, loaded.Routes[0].Target.Port)
}

func TestRemoveRegistration(t *testing.T) {
	s := openTestStore(t)

	dr, err := domain.NewDomainRegistration(
		mustExactPattern(t, "myapp.roxy"),
		[]domain.Route{mustRoute(t, "/", 3000)},
		false,
	)
	require.NoError(t, err)
	require.NoError(t, s.UpsertRegistration(dr))

	pattern := mustExactPattern(t, "myapp.roxy")
	require.NoError(t, s.RemoveRegistration(pattern))

	registry, err := s.LoadRegistry()
	require.NoError(t, err)
	require.Equal(t, 0, registry.Len())
}

func TestExactAndWildcardPatternsAreDistinctRegistrations(t *testing.T) {
	s := openTestStore(t)

	exact, err := domain.NewDomainRegistration(
		mustExactPattern(t, "myapp.roxy"),
		[]domain.Route{mustRoute(t, "/", 3000)},
		false,
	)
	require.NoError(t, err)
	wildcard, err := domain.NewDomainRegistration(
		mustWildcardPattern(t, "myapp.roxy"),
		[]domain.Route{mustRoute(t, "/", 4000)},
		false,
	)
	require.NoError(t, err)

	require.NoError(t, s.UpsertRegistration(exact))
	require.NoError(t, s.UpsertRegistration(wildcard))

	registry, err := s.LoadRegistry()
	require.NoError(t, err)
	require.Equal(t, 2, registry.Len())
}

func TestHealth(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Health())
}
