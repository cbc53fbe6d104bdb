package registrationstore

import (
	"database/sql"
	"fmt"

	"github.com/roxydev/roxy/internal/domain"
)

// LoadRegistry reads every registration and its routes and builds a
// domain.Registry snapshot — the "Registry source" collaborator's
// startup/reload contract.
func (s *Store) LoadRegistry() (domain.Registry, error) {
	rows, err := s.conn.Query(`
		SELECT id, pattern_kind, base_domain, https_enabled
		FROM domain_registrations
		ORDER BY id`)
	if err != nil {
		return domain.Registry{}, fmt.Errorf("querying registrations: %w", err)
	}
	defer rows.Close()

	type rawReg struct {
		id           int64
		patternKind  string
		baseDomain   string
		httpsEnabled bool
	}
	var raws []rawReg
	for rows.Next() {
		var r rawReg
		if err := rows.Scan(&r.id, &r.patternKind, &r.baseDomain, &r.httpsEnabled); err != nil {
			return domain.Registry{}, fmt.Errorf("scanning registration row: %w", err)
		}
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return domain.Registry{}, fmt.Errorf("iterating registrations: %w", err)
	}

	regs := make([]domain.DomainRegistration, 0, len(raws))
	for _, r := range raws {
		pattern, err := parsePattern(r.patternKind, r.baseDomain)
		if err != nil {
			return domain.Registry{}, fmt.Errorf("registration %d: %w", r.id, err)
		}
		routes, err := s.loadRoutes(r.id)
		if err != nil {
			return domain.Registry{}, fmt.Errorf("registration %d: %w", r.id, err)
		}
		reg, err := domain.NewDomainRegistration(pattern, routes, r.httpsEnabled)
		if err != nil {
			return domain.Registry{}, fmt.Errorf("registration %d: %w", r.id, err)
		}
		regs = append(regs, reg)
	}

	return domain.NewRegistry(regs), nil
}

func (s *Store) loadRoutes(registrationID int64) ([]domain.Route, error) {
	rows, err := s.conn.Query(`
		SELECT path_prefix, target_kind, proxy_host, proxy_port, static_directory
		FROM routes
		WHERE registration_id = ?
		ORDER BY id`, registrationID)
	if err != nil {
		return nil, fmt.Errorf("querying routes: %w", err)
	}
	defer rows.Close()

	var routes []domain.Route
	for rows.Next() {
		var (
			pathPrefix      string
			targetKind      string
			proxyHost       sql.NullString
			proxyPort       sql.NullInt64
			staticDirectory sql.NullString
		)
		if err := rows.Scan(&pathPrefix, &targetKind, &proxyHost, &proxyPort, &staticDirectory); err != nil {
			return nil, fmt.Errorf("scanning route row: %w", err)
		}

		prefix, err := domain.NewPathPrefix(pathPrefix)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", pathPrefix, err)
		}

		var target domain.RouteTarget
		switch targetKind {
		case "proxy":
			target, err = domain.NewProxyTarget(proxyHost.String, int(proxyPort.Int64))
		case "static":
			target, err = domain.NewStaticFilesTarget(staticDirectory.String)
		default:
			err = fmt.Errorf("unknown target kind %q", targetKind)
		}
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", pathPrefix, err)
		}

		routes = append(routes, domain.Route{Path: prefix, Target: target})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating routes: %w", err)
	}
	return routes, nil
}

func parsePattern(kind, baseDomain string) (domain.Pattern, error) {
	switch kind {
	case "exact":
		return domain.NewExactPattern(baseDomain)
	case "wildcard":
		return domain.NewWildcardPattern(baseDomain)
	default:
		return domain.Pattern{}, fmt.Errorf("unknown pattern kind %q", kind)
	}
}

// UpsertRegistration inserts or replaces reg and its routes as a single
// transaction — the mutation side a CLI `roxy register`/`roxy route`
// surface would call.
func (s *Store) UpsertRegistration(reg domain.DomainRegistration) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	kind := "exact"
	if reg.Pattern.IsWildcard() {
		kind = "wildcard"
	}

	var registrationID int64
	err = tx.QueryRow(`
		INSERT INTO domain_registrations (pattern_kind, base_domain, https_enabled)
		VALUES (?, ?, ?)
		ON CONFLICT(pattern_kind, base_domain) DO UPDATE SET
			https_enabled = excluded.https_enabled
		RETURNING id`,
		kind, string(reg.Pattern.Base), reg.HTTPSEnabled).Scan(&registrationID)
	if err != nil {
		return fmt.Errorf("upserting registration: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM routes WHERE registration_id = ?`, registrationID); err != nil {
		return fmt.Errorf("clearing existing routes: %w", err)
	}

	for _, route := range reg.Routes {
		if err := insertRoute(tx, registrationID, route); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertRoute(tx *sql.Tx, registrationID int64, route domain.Route) error {
	switch route.Target.Kind {
	case domain.StaticFilesTarget:
		_, err := tx.Exec(`
			INSERT INTO routes (registration_id, path_prefix, target_kind, static_directory)
			VALUES (?, ?, 'static', ?)`,
			registrationID, string(route.Path), route.Target.Directory)
		return err
	default:
		_, err := tx.Exec(`
			INSERT INTO routes (registration_id, path_prefix, target_kind, proxy_host, proxy_port)
			VALUES (?, ?, 'proxy', ?, ?)`,
			registrationID, string(route.Path), route.Target.Host, route.Target.Port)
		return err
	}
}

// RemoveRegistration deletes a registration and its routes (cascade) by
// pattern.
func (s *Store) RemoveRegistration(pattern domain.Pattern) error {
	kind := "exact"
	if pattern.IsWildcard() {
		kind = "wildcard"
	}
	_, err := s.conn.Exec(`
		DELETE FROM domain_registrations
		WHERE pattern_kind = ? AND base_domain = ?`, kind, string(pattern.Base))
	if err != nil {
		return fmt.Errorf("removing registration: %w", err)
	}
	return nil
}
