package dnsserver

import (
	"testing"

	"github.com/roxydev/roxy/internal/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	r, err := NewResolver("192.168.1.100")
	require.NoError(t, err)
	return &Handler{Resolver: r}
}

func encodeQuery(t *testing.T, id uint16, name string, qtype dns.RecordType) []byte {
	t.Helper()
	p := dns.Packet{
		Header:    dns.Header{ID: id, Flags: dns.RDFlag, QDCount: 1},
		Questions: []dns.Question{{Name: name, Type: uint16(qtype), Class: uint16(dns.ClassIN)}},
	}
	b, err := p.Marshal()
	require.NoError(t, err)
	return b
}

func TestHandleValidQuery(t *testing.T) {
	h := newTestHandler(t)
	reqBytes := encodeQuery(t, 0xBEEF, "myapp.roxy", dns.TypeA)

	resp := h.Handle(reqBytes)
	require.NotEmpty(t, resp)

	p, err := dns.ParsePacket(resp)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), p.Header.ID)
	assert.Equal(t, dns.RCode(dns.RCodeNoError), dns.RCodeFromFlags(p.Header.Flags))
}

func TestHandleTooShortReturnsFormErrWithZeroID(t *testing.T) {
	h := newTestHandler(t)
	resp := h.Handle([]byte{0x01})
	require.NotEmpty(t, resp)

	p, err := dns.ParsePacket(resp)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), p.Header.ID)
	assert.Equal(t, dns.RCode(dns.RCodeFormErr), dns.RCodeFromFlags(p.Header.Flags))
}

func TestHandlePreservesIDOnFormErr(t *testing.T) {
	h := newTestHandler(t)
	reqBytes := encodeQuery(t, 0x4242, "myapp.roxy", dns.TypeA)
	// Truncate after the header so QDCount says 1 but there's no question.
	resp := h.Handle(reqBytes[:dns.HeaderSize])

	p, err := dns.ParsePacket(resp)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x4242), p.Header.ID)
	assert.Equal(t, dns.RCode(dns.RCodeFormErr), dns.RCodeFromFlags(p.Header.Flags))
}
