package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/avoip/herald/src/herald/names"
)

// Question is a single entry in the question section of a DNS message.
type Question struct {
	Name  names.Name
	Type  RRType
	Class Class

	// UnicastResponse is the top bit of the class field, set when the querier
	// asks for a unicast reply.
	//
	// See https://tools.ietf.org/html/rfc6762#section-18.12.
	UnicastResponse bool
}

// ParseQuestion parses one question starting at off.
//
// msg must be the entire enclosing datagram so that compressed names can be
// resolved. It returns the question and the offset of the first octet after
// it.
func ParseQuestion(msg []byte, off int) (Question, int, error) {
	name, off, err := ParseName(msg, off)
	if err != nil {
		return Question{}, 0, err
	}

	if off+4 > len(msg) {
		return Question{}, 0, fmt.Errorf(
			"question for '%s' is missing its type and class fields",
			name,
		)
	}

	t := RRType(binary.BigEndian.Uint16(msg[off : off+2]))
	class, unicast := splitClass(binary.BigEndian.Uint16(msg[off+2 : off+4]))

	return Question{
		Name:            name,
		Type:            t,
		Class:           class,
		UnicastResponse: unicast,
	}, off + 4, nil
}
