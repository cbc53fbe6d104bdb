// Package config provides configuration loading and validation for roxyd.
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command-line flags (not handled here, see cmd/roxyd/main.go)
//  2. Environment variables (ROXY_* prefix)
//  3. YAML config file (if specified with --config)
//  4. Hardcoded defaults
//
// Environment variables are mapped from ROXY_CATEGORY_SETTING format,
// e.g., ROXY_SERVER_HTTP_PORT maps to server.http_port in YAML.
//
// All configuration is validated during Load() to ensure correctness early.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// initConfig sets up the config loader with defaults, env binding, and config file.
func initConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	// Environment variable binding
	// Uses ROXY_ prefix: ROXY_SERVER_HTTP_PORT -> server.http_port
	v.SetEnvPrefix("ROXY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

// setDefaults configures all default values.
func setDefaults(v *viper.Viper) {
	// Server defaults (spec.md §6: HTTP 80, HTTPS 443, DNS port configurable)
	v.SetDefault("server.http_port", 80)
	v.SetDefault("server.https_port", 443)
	v.SetDefault("server.dns_port", 53)
	v.SetDefault("server.lan_ipv4", "127.0.0.1")

	// Path defaults
	v.SetDefault("paths.data_dir", "~/.roxy")
	v.SetDefault("paths.certs_dir", "~/.roxy/certs")
	v.SetDefault("paths.log_file", "")

	// Logging defaults
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", false)
	v.SetDefault("logging.structured_format", "json")
	v.SetDefault("logging.include_pid", false)
	v.SetDefault("logging.extra_fields", map[string]string{})

	// On-demand certificate cache defaults
	v.SetDefault("certs.capacity", 256)

	// Admin API defaults: disabled and bound to localhost for safety.
	v.SetDefault("admin_api.enabled", false)
	v.SetDefault("admin_api.host", "127.0.0.1")
	v.SetDefault("admin_api.port", 7653)

	// Registration store defaults
	v.SetDefault("registration_store.path", "registrations.db")
}

// loadFromSource loads configuration from file and environment.
func loadFromSource(configPath string) (*Config, error) {
	v, err := initConfig(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	loadServerConfig(v, cfg)
	loadPathsConfig(v, cfg)
	loadLoggingConfig(v, cfg)
	loadCertsConfig(v, cfg)
	loadAdminAPIConfig(v, cfg)
	loadRegistrationStoreConfig(v, cfg)

	if err := normalizeConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadServerConfig(v *viper.Viper, cfg *Config) {
	cfg.Server.HTTPPort = v.GetInt("server.http_port")
	cfg.Server.HTTPSPort = v.GetInt("server.https_port")
	cfg.Server.DNSPort = v.GetInt("server.dns_port")
	cfg.Server.LANIPv4 = v.GetString("server.lan_ipv4")
}

func loadPathsConfig(v *viper.Viper, cfg *Config) {
	cfg.Paths.DataDir = expandTilde(v.GetString("paths.data_dir"))
	cfg.Paths.CertsDir = expandTilde(v.GetString("paths.certs_dir"))
	cfg.Paths.LogFile = expandTilde(v.GetString("paths.log_file"))
}

// expandTilde replaces a leading "~" with the user's home directory, the
// same convention the default `paths.data_dir`/`paths.certs_dir` values
// rely on ("~/.roxy"). Paths without a leading "~", and cases where the
// home directory cannot be determined, are returned unchanged.
func expandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return home + path[1:]
}

func loadLoggingConfig(v *viper.Viper, cfg *Config) {
	cfg.Logging.Level = strings.ToUpper(v.GetString("logging.level"))
	cfg.Logging.Structured = v.GetBool("logging.structured")
	cfg.Logging.StructuredFormat = v.GetString("logging.structured_format")
	cfg.Logging.IncludePID = v.GetBool("logging.include_pid")
	cfg.Logging.ExtraFields = v.GetStringMapString("logging.extra_fields")
}

func loadCertsConfig(v *viper.Viper, cfg *Config) {
	cfg.Certs.Capacity = v.GetInt("certs.capacity")
}

func loadAdminAPIConfig(v *viper.Viper, cfg *Config) {
	cfg.AdminAPI.Enabled = v.GetBool("admin_api.enabled")
	cfg.AdminAPI.Host = v.GetString("admin_api.host")
	cfg.AdminAPI.Port = v.GetInt("admin_api.port")
}

func loadRegistrationStoreConfig(v *viper.Viper, cfg *Config) {
	cfg.RegistrationStore.Path = v.GetString("registration_store.path")
}

// normalizeConfig validates and normalizes the configuration.
//
// Port equality across HTTP/HTTPS/DNS is rejected here, per spec.md §6.
func normalizeConfig(cfg *Config) error {
	for _, p := range []int{cfg.Server.HTTPPort, cfg.Server.HTTPSPort, cfg.Server.DNSPort} {
		if p <= 0 || p > 65535 {
			return errors.New("server ports must be 1..65535")
		}
	}
	if cfg.Server.HTTPPort == cfg.Server.HTTPSPort ||
		cfg.Server.HTTPPort == cfg.Server.DNSPort ||
		cfg.Server.HTTPSPort == cfg.Server.DNSPort {
		return errors.New("server.http_port, server.https_port, and server.dns_port must be distinct")
	}

	if cfg.Paths.DataDir == "" {
		return errors.New("paths.data_dir must not be empty")
	}
	if cfg.Paths.CertsDir == "" {
		return errors.New("paths.certs_dir must not be empty")
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.StructuredFormat == "" {
		cfg.Logging.StructuredFormat = "json"
	}
	if cfg.Logging.ExtraFields == nil {
		cfg.Logging.ExtraFields = map[string]string{}
	}

	if cfg.Certs.Capacity <= 0 {
		return errors.New("certs.capacity must be positive")
	}

	if cfg.AdminAPI.Enabled {
		if cfg.AdminAPI.Port <= 0 || cfg.AdminAPI.Port > 65535 {
			return errors.New("admin_api.port must be 1..65535")
		}
		if cfg.AdminAPI.Host == "" {
			cfg.AdminAPI.Host = "127.0.0.1"
		}
	}

	if cfg.RegistrationStore.Path == "" {
		cfg.RegistrationStore.Path = "registrations.db"
	}

	return nil
}
