package dnsserver

import (
	"context"
	"fmt"
	"log/slog"
)

// Supervisor runs the four DNS listeners (UDP/TCP on IPv4/IPv6) concurrently.
// The first to return an error terminates the others, matching spec.md's
// "race-on-error supervisor" — a bind failure or unrecoverable listener
// error is fatal for the whole DNS subsystem, and therefore the daemon.
type Supervisor struct {
	Logger  *slog.Logger
	Handler *Handler
	Stats   *Stats
}

// Run binds UDP and TCP on both 0.0.0.0 and :: at port, and blocks until
// ctx is cancelled or one listener fails.
func (s *Supervisor) Run(ctx context.Context, port int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	listeners := []struct {
		name    string
		network string
		addr    string
		run     func(context.Context, string, string) error
	}{
		{"udp4", "udp4", fmt.Sprintf("0.0.0.0:%d", port), (&UDPServer{Logger: s.Logger, Handler: s.Handler, Stats: s.Stats}).Run},
		{"udp6", "udp6", fmt.Sprintf("[::]:%d", port), (&UDPServer{Logger: s.Logger, Handler: s.Handler, Stats: s.Stats}).Run},
		{"tcp4", "tcp4", fmt.Sprintf("0.0.0.0:%d", port), (&TCPServer{Logger: s.Logger, Handler: s.Handler, Stats: s.Stats}).Run},
		{"tcp6", "tcp6", fmt.Sprintf("[::]:%d", port), (&TCPServer{Logger: s.Logger, Handler: s.Handler, Stats: s.Stats}).Run},
	}

	errCh := make(chan error, len(listeners))
	for _, l := range listeners {
		l := l
		go func() {
			if err := l.run(ctx, l.network, l.addr); err != nil {
				errCh <- fmt.Errorf("dns %s listener: %w", l.name, err)
				return
			}
			errCh <- nil
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		cancel()
		for range len(listeners) - 1 {
			<-errCh
		}
		return err
	}
}
