package dnsserver

import (
	"testing"

	"github.com/roxydev/roxy/internal/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryPacket(name string, qtype dns.RecordType) dns.Packet {
	return dns.Packet{
		Header:    dns.Header{ID: 0x1234, Flags: dns.RDFlag, QDCount: 1},
		Questions: []dns.Question{{Name: name, Type: uint16(qtype), Class: uint16(dns.ClassIN)}},
	}
}

func TestResolveAnswersAForRoxyName(t *testing.T) {
	r, err := NewResolver("192.168.1.100")
	require.NoError(t, err)

	resp := r.Resolve(queryPacket("blog.myapp.roxy.", dns.TypeA))

	assert.Equal(t, dns.RCode(dns.RCodeNoError), dns.RCodeFromFlags(resp.Header.Flags))
	assert.NotZero(t, resp.Header.Flags&dns.AAFlag)
	assert.NotZero(t, resp.Header.Flags&dns.QRFlag)
	require.Len(t, resp.Answers, 1)
	ip, ok := resp.Answers[0].IPv4()
	require.True(t, ok)
	assert.Equal(t, "192.168.1.100", ip)
	assert.Equal(t, uint32(1), resp.Answers[0].TTL)
}

func TestResolveAnswersAAAAWithLoopback(t *testing.T) {
	r, err := NewResolver("192.168.1.100")
	require.NoError(t, err)

	resp := r.Resolve(queryPacket("blog.myapp.roxy", dns.TypeAAAA))

	require.Len(t, resp.Answers, 1)
	ip, ok := resp.Answers[0].IPv6()
	require.True(t, ok)
	assert.Equal(t, "::1", ip)
}

func TestResolveAnswersANYWithBoth(t *testing.T) {
	r, err := NewResolver("192.168.1.100")
	require.NoError(t, err)

	resp := r.Resolve(queryPacket("myapp.roxy", dns.TypeANY))
	require.Len(t, resp.Answers, 2)
}

func TestResolveUnsupportedQTypeEmptyNoError(t *testing.T) {
	r, err := NewResolver("192.168.1.100")
	require.NoError(t, err)

	resp := r.Resolve(queryPacket("myapp.roxy", dns.RecordType(16))) // TXT
	assert.Equal(t, dns.RCode(dns.RCodeNoError), dns.RCodeFromFlags(resp.Header.Flags))
	assert.Empty(t, resp.Answers)
}

func TestResolveRefusesNonRoxyZone(t *testing.T) {
	r, err := NewResolver("192.168.1.100")
	require.NoError(t, err)

	resp := r.Resolve(queryPacket("google.com", dns.TypeA))
	assert.Equal(t, dns.RCode(dns.RCodeRefused), dns.RCodeFromFlags(resp.Header.Flags))
	assert.Empty(t, resp.Answers)
	assert.NotZero(t, resp.Header.Flags&dns.RDFlag)
}

func TestNewResolverRejectsInvalidIP(t *testing.T) {
	_, err := NewResolver("not-an-ip")
	assert.Error(t, err)
}
