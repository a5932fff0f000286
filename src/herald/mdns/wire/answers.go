package wire

import (
	"fmt"
	"net"

	"github.com/avoip/herald/src/herald/names"
)

// Per-record TTLs, in seconds.
//
// Host-specific records (SRV, A) use the short TTL recommended by RFC 6762
// for records containing a host name; other records use the standard 75
// minute TTL.
//
// See https://tools.ietf.org/html/rfc6762#section-10.
const (
	HostRecordTTL  = 120
	OtherRecordTTL = 4500
)

// AnswerBuffer accumulates the encoded answer records of a single outbound
// reply.
//
// It is consumed within one dispatch and is not safe for concurrent use. The
// appenders panic if given a name with an invalid label; names that reach the
// buffer are produced by handlers, not parsed from the network.
type AnswerBuffer struct {
	// SRVPort is the port number advertised by appended SRV records.
	SRVPort uint16

	buf   []byte
	count uint16
}

// Count returns the number of records appended so far.
func (b *AnswerBuffer) Count() uint16 {
	return b.count
}

// Bytes returns the concatenated encoded records in append order.
func (b *AnswerBuffer) Bytes() []byte {
	return b.buf
}

// AppendPTR appends a PTR record pointing name at target.
func (b *AnswerBuffer) AppendPTR(name, target names.Name) {
	b.appendRecordHeader(name, TypePTR, false, OtherRecordTTL)

	b.buf = appendUint16(b.buf, uint16(nameLength(target)))
	b.buf = AppendName(b.buf, target)
	b.count++
}

// AppendTXT appends a TXT record carrying a single counted string.
//
// Multiple strings are expressed as multiple records. It panics if txt is
// longer than 255 octets.
func (b *AnswerBuffer) AppendTXT(name names.Name, txt string) {
	if len(txt) > 255 {
		panic(fmt.Sprintf(
			"TXT data of %d octets does not fit in a counted string",
			len(txt),
		))
	}

	b.appendRecordHeader(name, TypeTXT, false, OtherRecordTTL)

	b.buf = appendUint16(b.buf, uint16(1+len(txt)))
	b.buf = append(b.buf, byte(len(txt)))
	b.buf = append(b.buf, txt...)
	b.count++
}

// AppendSRV appends an SRV record for name, targeting the host target at the
// buffer's configured port. Priority and weight are zero.
func (b *AnswerBuffer) AppendSRV(name, target names.Name) {
	b.appendRecordHeader(name, TypeSRV, true, HostRecordTTL)

	b.buf = appendUint16(b.buf, uint16(6+nameLength(target)))
	b.buf = appendUint16(b.buf, 0) // priority
	b.buf = appendUint16(b.buf, 0) // weight
	b.buf = appendUint16(b.buf, b.SRVPort)
	b.buf = AppendName(b.buf, target)
	b.count++
}

// AppendA appends an A record for name. It panics if ip is not an IPv4
// address.
func (b *AnswerBuffer) AppendA(name names.Name, ip net.IP) {
	v4 := ip.To4()
	if v4 == nil {
		panic(fmt.Sprintf("'%s' is not an IPv4 address", ip))
	}

	b.appendRecordHeader(name, TypeA, true, HostRecordTTL)

	b.buf = appendUint16(b.buf, net.IPv4len)
	b.buf = append(b.buf, v4...)
	b.count++
}

// appendRecordHeader appends the name, type, class and TTL fields common to
// every record. Records scoped to a single host set the cache-flush bit.
func (b *AnswerBuffer) appendRecordHeader(
	name names.Name,
	t RRType,
	flush bool,
	ttl uint32,
) {
	class := uint16(ClassIN)
	if flush {
		class |= classTopBit
	}

	b.buf = AppendName(b.buf, name)
	b.buf = appendUint16(b.buf, uint16(t))
	b.buf = appendUint16(b.buf, class)
	b.buf = appendUint32(b.buf, ttl)
}
