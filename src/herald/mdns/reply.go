package mdns

import (
	"context"

	"github.com/avoip/herald/src/herald/mdns/transport"
	"github.com/avoip/herald/src/herald/mdns/wire"

	"github.com/dogmatiq/dodeca/logging"
)

// handleReply is a command that decodes an inbound reply and passes its
// answer records through the handler chain.
type handleReply struct {
	Packet *transport.InboundPacket
	Header wire.Header
}

func (c *handleReply) Execute(ctx context.Context, s *Service) error {
	defer c.Packet.Close()

	msg := c.Packet.Data
	off := wire.HeaderLength

	// Skip over any questions echoed into the reply.
	for i := uint16(0); i < c.Header.QuestionCount; i++ {
		_, n, err := wire.ParseQuestion(msg, off)
		if err != nil {
			logDiscardReply(s.logger, c.Packet.Source, err)
			return nil
		}
		off = n
	}

	replies := make([]Reply, 0, c.Header.AnswerCount)

	for i := uint16(0); i < c.Header.AnswerCount; i++ {
		r, n, err := wire.ParseRecord(msg, off)
		if err != nil {
			// A single undecodable record discards the entire datagram; no
			// partial record vectors reach the handlers.
			logDiscardReply(s.logger, c.Packet.Source, err)
			return nil
		}

		replies = append(replies, r)
		off = n
	}

	if len(replies) == 0 {
		return nil
	}

	if !s.dispatchReply(replies) {
		logging.Debug(
			s.logger,
			"ignoring mDNS reply from %s (%d records)",
			c.Packet.Source.Address,
			len(replies),
		)
	}

	return nil
}

func logDiscardReply(logger logging.Logger, source transport.Endpoint, err error) {
	logging.Log(
		logger,
		"discarding mDNS reply from %s: %s",
		source.Address,
		err,
	)
}
