// Package mdns implements a multicast DNS service that dispatches inbound
// questions and answers across an ordered chain of domain handlers, and
// emits a single consolidated multicast reply when handlers produce answers.
package mdns

import (
	"net"

	"github.com/avoip/herald/src/herald/mdns/wire"
	"github.com/avoip/herald/src/herald/names"
)

// Question is a single question parsed from an inbound query.
type Question = wire.Question

// Reply is a single answer record parsed from an inbound reply, with its
// typed payload populated for the record types the wire codec understands.
type Reply = wire.Record

// Record types understood by the wire codec, re-exported for the convenience
// of handler implementations.
const (
	TypeA    = wire.TypeA
	TypePTR  = wire.TypePTR
	TypeTXT  = wire.TypeTXT
	TypeAAAA = wire.TypeAAAA
	TypeSRV  = wire.TypeSRV
)

// Disposition is a handler's verdict on a question or reply.
type Disposition int

const (
	// NotYetHandled indicates the handler did not recognize the input and
	// the next handler in the chain should be consulted.
	NotYetHandled Disposition = iota

	// Handled indicates the handler has consumed the input; no further
	// handlers are consulted.
	Handled
)

// String returns a human-readable representation of the disposition.
func (d Disposition) String() string {
	switch d {
	case Handled:
		return "handled"
	case NotYetHandled:
		return "not-yet-handled"
	}

	return "unknown"
}

// AnswerList collects the answer records contributed by handlers while a
// query is dispatched.
//
// Appended records are serialized immediately; a handler must not retain the
// list or append to it after returning from HandleQuestion.
type AnswerList interface {
	// AppendPTR appends a PTR record pointing name at target.
	AppendPTR(name, target names.Name)

	// AppendTXT appends a TXT record carrying a single counted string.
	AppendTXT(name names.Name, txt string)

	// AppendSRV appends an SRV record targeting the host target at the
	// service's configured port.
	AppendSRV(name, target names.Name)

	// AppendA appends an A record for the given IPv4 address.
	AppendA(name names.Name, ip net.IP)
}

// Handler is a domain plug-in consulted for each inbound question and reply.
//
// Handlers are consulted in registration order; the first handler to return
// Handled stops the chain. A handler is free to append answer records before
// returning NotYetHandled, but must not touch the answer list after
// returning.
type Handler interface {
	// HandleQuestion handles a single question from an inbound query,
	// appending any answer records to answers.
	HandleQuestion(q *Question, answers AnswerList) Disposition

	// HandleReply handles the full set of answer records parsed from one
	// inbound reply datagram.
	HandleReply(replies []Reply) Disposition
}
