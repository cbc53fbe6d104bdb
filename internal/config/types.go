// Package config provides configuration loading for roxyd using Viper.
// Configuration is loaded from YAML files with automatic environment variable binding.
//
// Environment variables use the ROXY_ prefix and underscore-separated keys:
//   - ROXY_SERVER_HTTP_PORT -> server.http_port
//   - ROXY_SERVER_DNS_PORT -> server.dns_port
//   - ROXY_CERTS_CAPACITY -> certs.capacity
package config

import (
	"os"
	"strings"
)

// ServerConfig contains listener port and LAN-address settings.
type ServerConfig struct {
	HTTPPort  int    `yaml:"http_port"  mapstructure:"http_port"`
	HTTPSPort int    `yaml:"https_port" mapstructure:"https_port"`
	DNSPort   int    `yaml:"dns_port"   mapstructure:"dns_port"`
	LANIPv4   string `yaml:"lan_ipv4"   mapstructure:"lan_ipv4"`
}

// PathsConfig contains the on-disk locations roxyd reads and writes.
type PathsConfig struct {
	DataDir  string `yaml:"data_dir"  mapstructure:"data_dir"`
	CertsDir string `yaml:"certs_dir" mapstructure:"certs_dir"`
	LogFile  string `yaml:"log_file"  mapstructure:"log_file"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level            string            `yaml:"level"             mapstructure:"level"             json:"level"`
	Structured       bool              `yaml:"structured"        mapstructure:"structured"        json:"structured"`
	StructuredFormat string            `yaml:"structured_format" mapstructure:"structured_format" json:"structured_format"`
	IncludePID       bool              `yaml:"include_pid"       mapstructure:"include_pid"       json:"include_pid"`
	ExtraFields      map[string]string `yaml:"extra_fields"      mapstructure:"extra_fields"      json:"extra_fields,omitempty"`
}

// CertsConfig controls the on-demand certificate cache and CA behavior.
type CertsConfig struct {
	// Capacity is K: the bound on the on-demand leaf certificate cache.
	// On overflow the whole cache is cleared, not LRU-evicted.
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
}

// AdminAPIConfig contains the localhost status/admin surface settings.
// This surface is an observability collaborator, not part of the core
// request plane, and is disabled by default.
type AdminAPIConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Host    string `yaml:"host"    mapstructure:"host"`
	Port    int    `yaml:"port"    mapstructure:"port"`
}

// RegistrationStoreConfig controls the default SQLite-backed registry source.
type RegistrationStoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // relative to data_dir unless absolute
}

// Config is the root configuration structure.
type Config struct {
	Server            ServerConfig            `yaml:"server"             mapstructure:"server"`
	Paths             PathsConfig             `yaml:"paths"              mapstructure:"paths"`
	Logging           LoggingConfig           `yaml:"logging"            mapstructure:"logging"`
	Certs             CertsConfig             `yaml:"certs"              mapstructure:"certs"`
	AdminAPI          AdminAPIConfig          `yaml:"admin_api"          mapstructure:"admin_api"`
	RegistrationStore RegistrationStoreConfig `yaml:"registration_store" mapstructure:"registration_store"`
}

// ResolveConfigPath determines the config file path from flag or environment.
func ResolveConfigPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv("ROXY_CONFIG")); v != "" {
		return v
	}
	return ""
}

// Load loads configuration from a YAML file with environment variable overrides.
// This is the main entry point for loading configuration.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (ROXY_*)
//  2. Config file values
//  3. Default values
func Load(path string) (*Config, error) {
	return loadFromSource(path)
}
