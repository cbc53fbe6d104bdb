package dnsserver

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// maxTCPMessageSize bounds a single DNS-over-TCP message (RFC 1035 §4.2.2:
// the 2-byte length prefix can address up to 65535 bytes).
const maxTCPMessageSize = 65535

// tcpDeadline bounds how long a connection may sit mid-message before
// being dropped; DNS-over-TCP clients are expected to write promptly.
const tcpDeadline = 10 * time.Second

// TCPServer answers DNS queries over TCP, one query per connection per
// spec.md §4.A "Wire rules": read one length-prefixed query, write one
// length-prefixed response, close.
type TCPServer struct {
	Logger  *slog.Logger
	Handler *Handler
	Stats   *Stats

	ln net.Listener
}

// Run binds addr with SO_REUSEPORT and accepts connections until ctx is
// cancelled.
func (s *TCPServer) Run(ctx context.Context, network, addr string) error {
	ln, err := listenTCPReusePort(ctx, network, addr)
	if err != nil {
		return err
	}
	s.ln = ln

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.acceptLoop(ctx, ln)
	}()

	<-ctx.Done()
	_ = ln.Close()
	<-done
	return nil
}

func (s *TCPServer) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if s.Logger != nil {
				s.Logger.Warn("dns tcp accept error", "error", err)
			}
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *TCPServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(tcpDeadline))

	msg, ok := s.readMessage(conn)
	if !ok || len(msg) == 0 {
		return
	}

	start := time.Now()
	resp := s.Handler.Handle(msg)
	if len(resp) == 0 {
		return
	}
	s.Stats.recordTCP(time.Since(start), responseRCode(resp))
	s.writeMessage(conn, resp)
}

func (s *TCPServer) readMessage(conn net.Conn) ([]byte, bool) {
	lenBuf := make([]byte, 2)
	if _, err := io.ReadFull(conn, lenBuf); err != nil {
		return nil, false
	}
	msgLen := int(binary.BigEndian.Uint16(lenBuf))
	if msgLen == 0 {
		return nil, true
	}
	if msgLen > maxTCPMessageSize {
		return nil, false
	}

	msg := make([]byte, msgLen)
	if _, err := io.ReadFull(conn, msg); err != nil {
		return nil, false
	}
	return msg, true
}

func (s *TCPServer) writeMessage(conn net.Conn, resp []byte) {
	if len(resp) > maxTCPMessageSize {
		return
	}
	lenBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(lenBuf, uint16(len(resp)))

	bufs := net.Buffers{lenBuf, resp}
	if _, err := bufs.WriteTo(conn); err != nil && s.Logger != nil {
		s.Logger.Warn("dns tcp write error", "error", err)
	}
}

func listenTCPReusePort(ctx context.Context, network, addr string) (net.Listener, error) {
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
	return lc.Listen(ctx, network, addr)
}
