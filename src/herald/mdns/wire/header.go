// Package wire implements the subset of DNS message framing (RFC 1035) used
// by multicast DNS: the fixed 12-octet header, questions, resource records
// with compressed names, and an append-only encoder for outbound answers.
package wire

import (
	"encoding/binary"
	"fmt"
)

// HeaderLength is the size of the fixed DNS message header, in octets.
const HeaderLength = 12

// Flags is the decomposed flags field of a DNS message header.
type Flags struct {
	// Response is the QR bit. It is false for queries and true for replies.
	Response bool

	// Opcode is the 4-bit kind of query. Zero (standard query) is the only
	// value permitted in mDNS messages.
	//
	// See https://tools.ietf.org/html/rfc6762#section-18.3.
	Opcode uint8

	// Authoritative is the AA bit. mDNS replies always set it.
	//
	// See https://tools.ietf.org/html/rfc6762#section-18.4.
	Authoritative bool

	// Truncated is the TC bit.
	Truncated bool

	// RecursionDesired and RecursionAvailable are the RD and RA bits. They
	// have no meaning in mDNS and must be zero on transmission.
	RecursionDesired   bool
	RecursionAvailable bool

	// Zero is the 3-bit reserved field.
	Zero uint8

	// RCode is the 4-bit response code.
	RCode uint8
}

// Header is a DNS message header.
type Header struct {
	TransactionID   uint16
	Flags           Flags
	QuestionCount   uint16
	AnswerCount     uint16
	AuthorityCount  uint16
	AdditionalCount uint16
}

// bit positions within the two flag octets.
const (
	bitQR     = 7
	bitOpcode = 3
	bitAA     = 2
	bitTC     = 1
	bitRD     = 0
	bitRA     = 7
	bitZ      = 4
	bitRCode  = 0
)

// ParseHeader parses the fixed header at the start of msg.
func ParseHeader(msg []byte) (Header, error) {
	if len(msg) < HeaderLength {
		return Header{}, fmt.Errorf(
			"message is too short to contain a DNS header (%d bytes)",
			len(msg),
		)
	}

	f0 := msg[2]
	f1 := msg[3]

	return Header{
		TransactionID: binary.BigEndian.Uint16(msg[0:2]),
		Flags: Flags{
			Response:           f0&(1<<bitQR) != 0,
			Opcode:             (f0 >> bitOpcode) & 0b1111,
			Authoritative:      f0&(1<<bitAA) != 0,
			Truncated:          f0&(1<<bitTC) != 0,
			RecursionDesired:   f0&(1<<bitRD) != 0,
			RecursionAvailable: f1&(1<<bitRA) != 0,
			Zero:               (f1 >> bitZ) & 0b111,
			RCode:              (f1 >> bitRCode) & 0b1111,
		},
		QuestionCount:   binary.BigEndian.Uint16(msg[4:6]),
		AnswerCount:     binary.BigEndian.Uint16(msg[6:8]),
		AuthorityCount:  binary.BigEndian.Uint16(msg[8:10]),
		AdditionalCount: binary.BigEndian.Uint16(msg[10:12]),
	}, nil
}

// Append appends the packed 12-octet form of the header to buf.
func (h Header) Append(buf []byte) []byte {
	var f0, f1 uint8

	if h.Flags.Response {
		f0 |= 1 << bitQR
	}
	f0 |= (h.Flags.Opcode & 0b1111) << bitOpcode
	if h.Flags.Authoritative {
		f0 |= 1 << bitAA
	}
	if h.Flags.Truncated {
		f0 |= 1 << bitTC
	}
	if h.Flags.RecursionDesired {
		f0 |= 1 << bitRD
	}

	if h.Flags.RecursionAvailable {
		f1 |= 1 << bitRA
	}
	f1 |= (h.Flags.Zero & 0b111) << bitZ
	f1 |= (h.Flags.RCode & 0b1111) << bitRCode

	buf = appendUint16(buf, h.TransactionID)
	buf = append(buf, f0, f1)
	buf = appendUint16(buf, h.QuestionCount)
	buf = appendUint16(buf, h.AnswerCount)
	buf = appendUint16(buf, h.AuthorityCount)
	buf = appendUint16(buf, h.AdditionalCount)

	return buf
}

// Pack returns the packed 12-octet form of the header.
func (h Header) Pack() []byte {
	return h.Append(make([]byte, 0, HeaderLength))
}

// NewQueryHeader returns a header for an outbound query.
func NewQueryHeader(txid uint16, questions uint16) Header {
	return Header{
		TransactionID: txid,
		QuestionCount: questions,
	}
}

// NewReplyHeader returns a header for an outbound reply.
//
// The transaction ID of the query being answered is echoed unchanged, and the
// AA bit is set as required of mDNS responses.
func NewReplyHeader(txid uint16, answers uint16) Header {
	return Header{
		TransactionID: txid,
		Flags: Flags{
			Response:      true,
			Authoritative: true,
		},
		AnswerCount: answers,
	}
}

func appendUint16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
