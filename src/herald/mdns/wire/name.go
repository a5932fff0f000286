package wire

import (
	"fmt"

	"github.com/avoip/herald/src/herald/names"
)

// maxNameSteps bounds the total number of labels and compression pointers
// resolved while parsing a single name. Chains of pointers that exceed the
// bound are treated as malformed, which also defeats pointer loops.
const maxNameSteps = 128

const (
	labelTypeMask   = 0b1100_0000
	labelTypePlain  = 0b0000_0000
	labelTypePtr    = 0b1100_0000
	pointerHighMask = 0b0011_1111
)

// ParseName parses a possibly-compressed DNS name.
//
// msg must be the entire enclosing datagram, because compression pointers are
// offsets from the start of the message. off is the position of the first
// length octet of the name. It returns the parsed name and the offset of the
// first octet after the name (after the first compression pointer, if the
// name is compressed).
//
// Every read is bounds-checked against msg; a name that runs past the end of
// the datagram, uses a pointer at or beyond the datagram length, or resolves
// more than 128 labels fails to parse.
func ParseName(msg []byte, off int) (names.Name, int, error) {
	var name names.Name

	// resume is the offset to continue from after the name; it is fixed by
	// the first compression pointer encountered.
	resume := -1

	for steps := 0; ; steps++ {
		if off >= len(msg) {
			return nil, 0, fmt.Errorf(
				"name runs past the end of the message (offset %d of %d)",
				off,
				len(msg),
			)
		}

		l := msg[off]

		if l == 0 {
			off++
			break
		}

		if steps == maxNameSteps {
			return nil, 0, fmt.Errorf(
				"name at offset %d resolves more than %d labels",
				off,
				maxNameSteps,
			)
		}

		switch l & labelTypeMask {
		case labelTypePtr:
			if off+1 >= len(msg) {
				return nil, 0, fmt.Errorf(
					"compression pointer at offset %d is truncated",
					off,
				)
			}

			target := int(l&pointerHighMask)<<8 | int(msg[off+1])
			if target >= len(msg) {
				return nil, 0, fmt.Errorf(
					"compression pointer target %d is outside the message (%d bytes)",
					target,
					len(msg),
				)
			}

			if resume == -1 {
				resume = off + 2
			}

			off = target

		case labelTypePlain:
			end := off + 1 + int(l)
			if end > len(msg) {
				return nil, 0, fmt.Errorf(
					"label of %d octets at offset %d runs past the end of the message",
					l,
					off,
				)
			}

			name = append(name, names.Label(msg[off+1:end]))
			off = end

		default:
			return nil, 0, fmt.Errorf(
				"reserved label type 0x%02x at offset %d",
				l&labelTypeMask,
				off,
			)
		}
	}

	if resume != -1 {
		off = resume
	}

	return name, off, nil
}

// AppendName appends the wire form of a name to buf.
//
// Outbound names are never compressed; each label is emitted as a length
// octet followed by the label's octets, ending with the zero terminator. It
// panics if any label is empty or longer than 63 octets.
func AppendName(buf []byte, n names.Name) []byte {
	for _, l := range n {
		if err := l.Validate(); err != nil {
			panic(err)
		}

		buf = append(buf, byte(len(l)))
		buf = append(buf, l...)
	}

	return append(buf, 0)
}

// nameLength returns the encoded length of a name, in octets.
func nameLength(n names.Name) int {
	size := 1
	for _, l := range n {
		size += 1 + len(l)
	}
	return size
}
