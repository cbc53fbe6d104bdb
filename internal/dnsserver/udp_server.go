package dnsserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/roxydev/roxy/internal/dns"
	"github.com/roxydev/roxy/internal/pool"
)

// maxUDPResponseSize is the standard DNS-over-UDP answer bound (spec.md
// §4.A "Wire rules"). Roxy's answers are always a handful of bytes, so
// truncation never actually triggers, but the bound is enforced anyway.
const maxUDPResponseSize = 512

var recvBufferPool = pool.New(func() *[]byte {
	buf := make([]byte, dns.MaxIncomingDNSMessageSize)
	return &buf
})

// UDPServer answers DNS queries over a UDP socket. One receive loop reads,
// builds, and sends each reply in turn (spec.md §4.A "Concurrency": "UDP
// is a single receive loop per socket").
type UDPServer struct {
	Logger  *slog.Logger
	Handler *Handler
	Stats   *Stats

	conn *net.UDPConn
}

// Run binds addr with SO_REUSEPORT and serves until ctx is cancelled.
func (s *UDPServer) Run(ctx context.Context, network, addr string) error {
	conn, err := listenUDPReusePort(network, addr)
	if err != nil {
		return err
	}
	s.conn = conn

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.recvLoop(ctx, conn)
	}()

	<-ctx.Done()
	_ = conn.Close()
	<-done
	return nil
}

func (s *UDPServer) recvLoop(ctx context.Context, conn *net.UDPConn) {
	for {
		bufPtr := recvBufferPool.Get()
		buf := *bufPtr

		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			recvBufferPool.Put(bufPtr)
			if ctx.Err() != nil {
				return
			}
			if s.Logger != nil {
				s.Logger.Warn("dns udp read error", "error", err)
			}
			continue
		}

		start := time.Now()
		resp := s.Handler.Handle(buf[:n])
		recvBufferPool.Put(bufPtr)
		if len(resp) == 0 {
			continue
		}
		s.Stats.recordUDP(time.Since(start), responseRCode(resp))
		if len(resp) > maxUDPResponseSize {
			resp = resp[:maxUDPResponseSize]
			resp[2] |= byte(dns.TCFlag >> 8)
		}

		if _, err := conn.WriteToUDP(resp, peer); err != nil && s.Logger != nil {
			s.Logger.Warn("dns udp write error", "error", err, "peer", peer.String())
		}
	}
}

func listenUDPReusePort(network, addr string) (*net.UDPConn, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var ctrlErr error
			err := c.Control(func(fd uintptr) {
				ctrlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			return ctrlErr
		},
	}
	pc, err := lc.ListenPacket(context.Background(), network, addr)
	if err != nil {
		return nil, err
	}
	conn, ok := pc.(*net.UDPConn)
	if !ok {
		_ = pc.Close()
		return nil, errors.New("dnsserver: not a UDP connection")
	}
	return conn, nil
}
