package dnsserver

import (
	"encoding/binary"

	"github.com/roxydev/roxy/internal/dns"
)

// Handler parses an incoming query and dispatches to Resolver, handling
// malformed requests per spec.md §4.A steps 1-2.
type Handler struct {
	Resolver *Resolver
}

// Handle returns the marshaled response for reqBytes, or nil if the reply
// could not be marshaled. A request whose header cannot be parsed still
// gets a FORMERR reply (with ID zero when fewer than two bytes arrived).
func (h *Handler) Handle(reqBytes []byte) []byte {
	parsed, err := dns.ParseRequestBounded(reqBytes)
	if err != nil {
		return buildErrorFromRaw(reqBytes, uint16(dns.RCodeFormErr))
	}

	resp := h.Resolver.Resolve(parsed)
	b, err := resp.Marshal()
	if err != nil {
		return nil
	}
	return b
}

// buildErrorFromRaw constructs a minimal error response directly from raw
// bytes when full parsing failed. Per spec.md §4.A step 1, the
// transaction ID is copied from the first two bytes of the query, or zero
// if the query is shorter than that; the question is included when the
// header could be parsed and carries one.
func buildErrorFromRaw(reqBytes []byte, rcode uint16) []byte {
	off := 0
	header, err := dns.ParseHeader(reqBytes, &off)
	if err != nil {
		id := uint16(0)
		if len(reqBytes) >= 2 {
			id = binary.BigEndian.Uint16(reqBytes[0:2])
		}
		p := dns.Packet{Header: dns.Header{ID: id}}
		b, err := dns.BuildErrorResponse(p, rcode).Marshal()
		if err != nil {
			return nil
		}
		return b
	}

	var questions []dns.Question
	if header.QDCount > 0 {
		if q, err := dns.ParseQuestion(reqBytes, &off); err == nil {
			questions = []dns.Question{q}
		}
	}

	p := dns.Packet{Header: dns.Header{ID: header.ID, Flags: header.Flags}, Questions: questions}
	b, err := dns.BuildErrorResponse(p, rcode).Marshal()
	if err != nil {
		return nil
	}
	return b
}
