package mdns

import (
	"context"

	"github.com/avoip/herald/src/herald/mdns/transport"
	"github.com/avoip/herald/src/herald/mdns/wire"

	"github.com/dogmatiq/dodeca/logging"
)

// handleQuery is a command that decodes an inbound query and schedules its
// reply for emission.
type handleQuery struct {
	Packet *transport.InboundPacket
	Header wire.Header
}

func (c *handleQuery) Execute(ctx context.Context, s *Service) error {
	defer c.Packet.Close()

	questions := make([]wire.Question, 0, c.Header.QuestionCount)
	off := wire.HeaderLength

	for i := uint16(0); i < c.Header.QuestionCount; i++ {
		q, n, err := wire.ParseQuestion(c.Packet.Data, off)
		if err != nil {
			// A datagram that cannot be fully decoded produces no reply at
			// all.
			logging.Log(
				s.logger,
				"discarding mDNS query from %s: %s",
				c.Packet.Source.Address,
				err,
			)
			return nil
		}

		questions = append(questions, q)
		off = n
	}

	if len(questions) == 0 {
		return nil
	}

	// The reply is not built immediately. Emission is deferred until the
	// inbound queue goes idle so that all datagrams of a burst are decoded
	// before any answers are produced.
	s.deferCommand(&emitReply{
		Transport:     c.Packet.Transport,
		Source:        c.Packet.Source,
		TransactionID: c.Header.TransactionID,
		Questions:     questions,
	})

	return nil
}

// emitReply is a deferred command that drives the handler chain over the
// questions of one inbound query and emits at most one reply datagram.
type emitReply struct {
	Transport     transport.Transport
	Source        transport.Endpoint
	TransactionID uint16
	Questions     []wire.Question
}

func (c *emitReply) Execute(ctx context.Context, s *Service) error {
	answers := &wire.AnswerBuffer{SRVPort: s.port}

	for i := range c.Questions {
		q := &c.Questions[i]

		if !s.dispatchQuestion(q, answers) {
			logging.Log(
				s.logger,
				"no handler for mDNS question '%s' (%s)",
				q.Name,
				q.Type,
			)
		}
	}

	if answers.Count() == 0 {
		logging.Debug(
			s.logger,
			"produced no answers for mDNS query from %s",
			c.Source.Address,
		)
		return nil
	}

	// Replies are only sent via IPv4.
	if c.Transport.Group().IP.To4() == nil {
		logging.Debug(
			s.logger,
			"not replying to mDNS query received via %s",
			c.Transport.Group(),
		)
		return nil
	}

	buf := make([]byte, 0, wire.HeaderLength+len(answers.Bytes()))
	buf = wire.NewReplyHeader(c.TransactionID, answers.Count()).Append(buf)
	buf = append(buf, answers.Bytes()...)

	if err := transport.SendMulticastReply(c.Transport, c.Source, buf); err != nil {
		// Send failures never stop the service.
		logging.Log(s.logger, "unable to send mDNS reply: %s", err)
	}

	return nil
}
