package dns

import (
	"encoding/binary"
	"fmt"
	"net"
)

// Record is a resource record. Roxy's responder only ever produces and
// consumes A and AAAA records, so Data is always the raw 4- or 16-byte
// address and nothing else flows through the type switches below.
type Record struct {
	Name  string
	Type  uint16
	Class uint16
	TTL   uint32
	Data  []byte
}

func ParseRecord(msg []byte, off *int) (Record, error) {
	name, err := DecodeName(msg, off)
	if err != nil {
		return Record{}, err
	}
	if *off+10 > len(msg) {
		return Record{}, fmt.Errorf("%w: unexpected EOF while reading DNS record", ErrDNSError)
	}
	rrType := binary.BigEndian.Uint16(msg[*off : *off+2])
	rrClass := binary.BigEndian.Uint16(msg[*off+2 : *off+4])
	ttl := binary.BigEndian.Uint32(msg[*off+4 : *off+8])
	rdlen := binary.BigEndian.Uint16(msg[*off+8 : *off+10])
	*off += 10
	start := *off
	if start+int(rdlen) > len(msg) {
		return Record{}, fmt.Errorf("%w: unexpected EOF while reading DNS record rdata", ErrDNSError)
	}

	b := make([]byte, rdlen)
	copy(b, msg[*off:*off+int(rdlen)])
	*off += int(rdlen)

	return Record{Name: name, Type: rrType, Class: rrClass, TTL: ttl, Data: b}, nil
}

func (rr Record) Marshal() ([]byte, error) {
	nameWire, err := EncodeName(rr.Name)
	if err != nil {
		return nil, err
	}

	rdata, err := rr.marshalRData()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nameWire)+10+len(rdata))
	out = append(out, nameWire...)
	fixed := make([]byte, 10)
	binary.BigEndian.PutUint16(fixed[0:2], rr.Type)
	binary.BigEndian.PutUint16(fixed[2:4], rr.Class)
	binary.BigEndian.PutUint32(fixed[4:8], rr.TTL)
	binary.BigEndian.PutUint16(fixed[8:10], uint16(len(rdata)))
	out = append(out, fixed...)
	out = append(out, rdata...)
	return out, nil
}

func (rr Record) marshalRData() ([]byte, error) {
	switch RecordType(rr.Type) {
	case TypeA:
		if len(rr.Data) != 4 {
			return nil, fmt.Errorf("%w: A record data must be 4 bytes", ErrDNSError)
		}
		return rr.Data, nil
	case TypeAAAA:
		if len(rr.Data) != 16 {
			return nil, fmt.Errorf("%w: AAAA record data must be 16 bytes", ErrDNSError)
		}
		return rr.Data, nil
	default:
		return nil, fmt.Errorf("%w: unsupported RR type for serialization: %d", ErrDNSError, rr.Type)
	}
}

func (rr Record) IPv4() (string, bool) {
	if RecordType(rr.Type) != TypeA || len(rr.Data) != 4 {
		return "", false
	}
	return net.IPv4(rr.Data[0], rr.Data[1], rr.Data[2], rr.Data[3]).String(), true
}

func (rr Record) IPv6() (string, bool) {
	if RecordType(rr.Type) != TypeAAAA || len(rr.Data) != 16 {
		return "", false
	}
	return net.IP(rr.Data).String(), true
}
