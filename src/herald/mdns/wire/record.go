package wire

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"

	"github.com/avoip/herald/src/herald/names"
)

// SRV is the typed payload of an SRV record.
//
// See https://tools.ietf.org/html/rfc2782.
type SRV struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   names.Name
}

// TXTPair is one key/value entry of a TXT record.
//
// An entry without an '=' separator yields an empty value.
type TXTPair struct {
	Key   string
	Value string
}

// TXT is the ordered set of key/value pairs carried by a TXT record.
type TXT []TXTPair

// Get returns the value of the first pair whose key is k.
func (t TXT) Get(k string) (string, bool) {
	for _, p := range t {
		if p.Key == k {
			return p.Value, true
		}
	}

	return "", false
}

// Has returns true if the TXT data contains a pair with the key k.
func (t TXT) Has(k string) bool {
	_, ok := t.Get(k)
	return ok
}

// Record is a resource record parsed from the answer section of a DNS
// message.
//
// Data always holds the raw RDATA octets. Exactly one of the typed fields is
// additionally populated when Type is one of the types this package decodes.
type Record struct {
	Name  names.Name
	Type  RRType
	Class Class

	// CacheFlush is the top bit of the class field, signalling receivers to
	// evict prior records for this (name, type).
	//
	// See https://tools.ietf.org/html/rfc6762#section-18.13.
	CacheFlush bool

	TTL  uint32
	Data []byte

	A    net.IP
	AAAA net.IP
	PTR  names.Name
	TXT  TXT
	SRV  *SRV
}

// Matches returns true if the record's name matches the pattern p, which may
// contain wildcard labels.
func (r *Record) Matches(p names.Name) bool {
	return r.Name.Match(p)
}

// ParseRecord parses one resource record starting at off.
//
// msg must be the entire enclosing datagram; PTR and SRV payloads may contain
// names compressed against any earlier part of the message. It returns the
// record and the offset of the first octet after it.
func ParseRecord(msg []byte, off int) (Record, int, error) {
	name, off, err := ParseName(msg, off)
	if err != nil {
		return Record{}, 0, err
	}

	if off+10 > len(msg) {
		return Record{}, 0, fmt.Errorf(
			"record for '%s' is missing its fixed fields",
			name,
		)
	}

	t := RRType(binary.BigEndian.Uint16(msg[off : off+2]))
	class, flush := splitClass(binary.BigEndian.Uint16(msg[off+2 : off+4]))
	ttl := binary.BigEndian.Uint32(msg[off+4 : off+8])
	rdlen := int(binary.BigEndian.Uint16(msg[off+8 : off+10]))

	off += 10

	if off+rdlen > len(msg) {
		return Record{}, 0, fmt.Errorf(
			"record for '%s' declares %d octets of data but only %d remain",
			name,
			rdlen,
			len(msg)-off,
		)
	}

	r := Record{
		Name:       name,
		Type:       t,
		Class:      class,
		CacheFlush: flush,
		TTL:        ttl,
		Data:       msg[off : off+rdlen],
	}

	if err := r.decodePayload(msg, off); err != nil {
		return Record{}, 0, err
	}

	return r, off + rdlen, nil
}

// decodePayload populates the typed payload field for the record types this
// package understands. start is the absolute offset of the RDATA within msg.
func (r *Record) decodePayload(msg []byte, start int) error {
	switch r.Type {
	case TypeA:
		if len(r.Data) != net.IPv4len {
			return fmt.Errorf(
				"A record for '%s' has %d octets of data, expected %d",
				r.Name,
				len(r.Data),
				net.IPv4len,
			)
		}
		r.A = net.IP(r.Data)

	case TypeAAAA:
		if len(r.Data) != net.IPv6len {
			return fmt.Errorf(
				"AAAA record for '%s' has %d octets of data, expected %d",
				r.Name,
				len(r.Data),
				net.IPv6len,
			)
		}
		r.AAAA = net.IP(r.Data)

	case TypePTR:
		target, _, err := ParseName(msg, start)
		if err != nil {
			return err
		}
		r.PTR = target

	case TypeSRV:
		if len(r.Data) < 6 {
			return fmt.Errorf(
				"SRV record for '%s' has %d octets of data, expected at least 6",
				r.Name,
				len(r.Data),
			)
		}

		target, _, err := ParseName(msg, start+6)
		if err != nil {
			return err
		}

		r.SRV = &SRV{
			Priority: binary.BigEndian.Uint16(r.Data[0:2]),
			Weight:   binary.BigEndian.Uint16(r.Data[2:4]),
			Port:     binary.BigEndian.Uint16(r.Data[4:6]),
			Target:   target,
		}

	case TypeTXT:
		txt, err := parseTXT(r.Data)
		if err != nil {
			return fmt.Errorf("TXT record for '%s': %s", r.Name, err)
		}
		r.TXT = txt
	}

	return nil
}

// parseTXT parses the <len><"key=value"> tuples of a TXT payload.
func parseTXT(data []byte) (TXT, error) {
	var txt TXT

	for len(data) > 0 {
		l := int(data[0])
		if l == 0 {
			break
		}

		if 1+l > len(data) {
			return nil, fmt.Errorf(
				"character string of %d octets runs past the end of the payload",
				l,
			)
		}

		s := string(data[1 : 1+l])
		if i := strings.IndexByte(s, '='); i != -1 {
			txt = append(txt, TXTPair{Key: s[:i], Value: s[i+1:]})
		} else {
			txt = append(txt, TXTPair{Key: s})
		}

		data = data[1+l:]
	}

	return txt, nil
}
