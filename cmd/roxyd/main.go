// Command roxyd is Roxy's daemon: it serves authoritative DNS for the
// `.roxy` zone and reverse-proxies/serves static files for every
// registered domain over HTTP and HTTPS.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/roxydev/roxy/internal/adminapi"
	"github.com/roxydev/roxy/internal/certs"
	"github.com/roxydev/roxy/internal/config"
	"github.com/roxydev/roxy/internal/dispatch"
	"github.com/roxydev/roxy/internal/dnsserver"
	"github.com/roxydev/roxy/internal/logging"
	"github.com/roxydev/roxy/internal/proxy"
	"github.com/roxydev/roxy/internal/registrationstore"
	"github.com/roxydev/roxy/internal/staticfiles"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds parsed command-line flag values.
type cliFlags struct {
	configPath string
	debug      bool
	jsonLogs   bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to YAML config file")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&f.jsonLogs, "json-logs", false, "Enable JSON structured logging")
	flag.Parse()
	return f
}

func run() error {
	flags := parseFlags()

	cfg, err := config.Load(config.ResolveConfigPath(flags.configPath))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flags.debug {
		cfg.Logging.Level = "DEBUG"
	}
	if flags.jsonLogs {
		cfg.Logging.Structured = true
		cfg.Logging.StructuredFormat = "json"
	}

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
		ExtraFields:      cfg.Logging.ExtraFields,
	})

	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir %q: %w", cfg.Paths.DataDir, err)
	}

	storePath := cfg.RegistrationStore.Path
	if !filepath.IsAbs(storePath) {
		storePath = filepath.Join(cfg.Paths.DataDir, storePath)
	}
	store, err := registrationstore.Open(storePath)
	if err != nil {
		return fmt.Errorf("opening registration store: %w", err)
	}
	defer store.Close()

	registry, err := store.LoadRegistry()
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	logger.Info("registry loaded", "registrations", registry.Len())

	ca := certs.NewRootCA(cfg.Paths.CertsDir)
	if ca.Exists() {
		if err := ca.Load(); err != nil {
			return fmt.Errorf("loading root CA: %w", err)
		}
	} else {
		logger.Info("no root CA found, generating a new one", "dir", cfg.Paths.CertsDir)
		if err := ca.Generate(); err != nil {
			return fmt.Errorf("generating root CA: %w", err)
		}
	}

	resolver, err := certs.NewResolver(ca, registry, cfg.Paths.CertsDir, cfg.Certs.Capacity, logger)
	if err != nil {
		return fmt.Errorf("building TLS resolver: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d := &dispatch.Dispatcher{
		Registry: registry,
		Proxy:    &proxy.Forwarder{Logger: logger},
		Static:   &staticfiles.Server{Logger: logger},
		Logger:   logger,
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: d,
	}
	httpsServer := &http.Server{
		Addr:      fmt.Sprintf(":%d", cfg.Server.HTTPSPort),
		Handler:   d,
		TLSConfig: &tls.Config{GetCertificate: resolver.GetCertificate},
	}

	dnsResolver, err := dnsserver.NewResolver(cfg.Server.LANIPv4)
	if err != nil {
		return fmt.Errorf("building DNS resolver: %w", err)
	}
	dnsStats := &dnsserver.Stats{}
	dnsHandler := &dnsserver.Handler{Resolver: dnsResolver}
	supervisor := &dnsserver.Supervisor{Logger: logger, Handler: dnsHandler, Stats: dnsStats}

	errCh := make(chan error, 4)
	go func() { errCh <- runHTTP(httpServer, logger, "http") }()
	go func() { errCh <- runHTTPS(httpsServer, logger) }()
	go func() { errCh <- supervisor.Run(ctx, cfg.Server.DNSPort) }()

	var adminSrv *adminapi.Server
	if cfg.AdminAPI.Enabled {
		adminSrv = adminapi.New(cfg.AdminAPI.Host, cfg.AdminAPI.Port, "", logger, &adminapi.Handler{
			Registry: store,
			Resolver: resolver,
			CA:       ca,
			Stats:    dnsStats,
		})
		logger.Info("admin API starting", "addr", adminSrv.Addr())
		go func() {
			serveErr := adminSrv.ListenAndServe()
			if serveErr == nil || errors.Is(serveErr, http.ErrServerClosed) {
				return
			}
			errCh <- fmt.Errorf("admin API: %w", serveErr)
		}()
	}

	logger.Info("roxyd starting",
		"http_port", cfg.Server.HTTPPort,
		"https_port", cfg.Server.HTTPSPort,
		"dns_port", cfg.Server.DNSPort,
		"admin_api_enabled", cfg.AdminAPI.Enabled,
	)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	_ = httpsServer.Shutdown(shutdownCtx)
	if adminSrv != nil {
		_ = adminSrv.Shutdown(shutdownCtx)
	}
	logger.Info("roxyd stopped")

	if runErr != nil {
		return fmt.Errorf("roxyd exited with error: %w", runErr)
	}
	return nil
}

func runHTTP(s *http.Server, logger *slog.Logger, name string) error {
	err := s.ListenAndServe()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	logger.Error(name+" server error", "error", err)
	return fmt.Errorf("%s listener: %w", name, err)
}

func runHTTPS(s *http.Server, logger *slog.Logger) error {
	err := s.ListenAndServeTLS("", "")
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	logger.Error("https server error", "error", err)
	return fmt.Errorf("https listener: %w", err)
}
