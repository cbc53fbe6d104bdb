// Package dnsserver implements Roxy's authoritative DNS responder for the
// `.roxy` zone: no recursion, no forwarding, no cache. A queries are answered
// with the configured LAN IPv4, AAAA queries with ::1, and ANY with both.
package dnsserver

import (
	"net"
	"strings"

	"github.com/roxydev/roxy/internal/dns"
)

// Roxy answers every A/AAAA/ANY query for `*.roxy` with a fixed TTL; there
// is no zone data to look up, so every answer uses the same short TTL.
const answerTTL = 1

// Resolver builds authoritative answers for the `.roxy` zone.
type Resolver struct {
	lanIPv4 net.IP
}

// NewResolver returns a Resolver that answers A queries with lanIPv4.
func NewResolver(lanIPv4 string) (*Resolver, error) {
	ip := net.ParseIP(lanIPv4).To4()
	if ip == nil {
		return nil, &net.ParseError{Type: "IPv4 address", Text: lanIPv4}
	}
	return &Resolver{lanIPv4: ip}, nil
}

// Resolve implements the query-handling rules of the DNS responder
// contract: parse already happened upstream (req is a valid, bounded
// query with at least one question); this builds the authoritative or
// refusal reply for req.Questions[0].
func (r *Resolver) Resolve(req dns.Packet) dns.Packet {
	q := req.Questions[0]
	name := strings.TrimSuffix(strings.ToLower(q.Name), ".")

	if !strings.HasSuffix(name, ".roxy") {
		return r.refused(req)
	}

	return r.answer(req, q, name)
}

func (r *Resolver) refused(req dns.Packet) dns.Packet {
	flags := dns.QRFlag | (req.Header.Flags & dns.RDFlag) | uint16(dns.RCodeRefused)
	return dns.Packet{
		Header: dns.Header{
			ID:      req.Header.ID,
			Flags:   flags,
			QDCount: 1,
		},
		Questions: req.Questions,
	}
}

func (r *Resolver) answer(req dns.Packet, q dns.Question, name string) dns.Packet {
	flags := dns.QRFlag | dns.AAFlag | (req.Header.Flags & dns.RDFlag) | uint16(dns.RCodeNoError)

	var answers []dns.Record
	switch dns.RecordType(q.Type) {
	case dns.TypeA:
		answers = append(answers, r.aRecord(name))
	case dns.TypeAAAA:
		answers = append(answers, r.aaaaRecord(name))
	case dns.TypeANY:
		answers = append(answers, r.aRecord(name), r.aaaaRecord(name))
	default:
		// Unsupported QTYPE: empty answer section, still NOERROR/AA.
	}

	return dns.Packet{
		Header: dns.Header{
			ID:      req.Header.ID,
			Flags:   flags,
			QDCount: 1,
			ANCount: uint16(len(answers)),
		},
		Questions: []dns.Question{q},
		Answers:   answers,
	}
}

func (r *Resolver) aRecord(name string) dns.Record {
	return dns.Record{
		Name:  name,
		Type:  uint16(dns.TypeA),
		Class: uint16(dns.ClassIN),
		TTL:   answerTTL,
		Data:  r.lanIPv4,
	}
}

func (r *Resolver) aaaaRecord(name string) dns.Record {
	return dns.Record{
		Name:  name,
		Type:  uint16(dns.TypeAAAA),
		Class: uint16(dns.ClassIN),
		TTL:   answerTTL,
		Data:  net.ParseIP("::1").To16(),
	}
}
