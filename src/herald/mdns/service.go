package mdns

import (
	"context"
	"errors"
	"net"

	"github.com/avoip/herald/src/herald/mdns/transport"
	"github.com/avoip/herald/src/herald/mdns/wire"

	"github.com/dogmatiq/dodeca/logging"
	"golang.org/x/sync/errgroup"
)

// DefaultServicePort is the TCP port advertised in SRV records when no port
// is configured.
const DefaultServicePort = 80

// errServiceStopped is returned when a command is submitted to a service
// whose main loop has already exited.
var errServiceStopped = errors.New("mDNS service is no longer running")

// command is a unit-of-work performed within the service's main loop.
type command interface {
	Execute(ctx context.Context, s *Service) error
}

// Service is a multicast DNS service for a single network interface.
//
// It decodes inbound datagrams, dispatches their questions and answers across
// an ordered chain of handlers, and emits at most one multicast reply per
// inbound query.
type Service struct {
	handlers   []Handler
	iface      *net.Interface
	ifaceIP    net.IP
	identity   Identity
	port       uint16
	enableIPv6 bool
	logger     logging.Logger

	transports []transport.Transport

	done     chan struct{}
	commands chan command
	deferred []command
}

// New returns a new mDNS service.
func New(options ...Option) (*Service, error) {
	s := &Service{
		identity: DefaultIdentity,
		port:     DefaultServicePort,
		done:     make(chan struct{}),
		commands: make(chan command),
	}

	for _, opt := range options {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.iface == nil && len(s.transports) == 0 {
		iface, err := internetInterface()
		if err != nil {
			return nil, err
		}
		s.iface = &iface
	}

	if s.iface != nil && s.ifaceIP == nil {
		ip, err := interfaceIPv4(s.iface)
		if err != nil {
			return nil, err
		}
		s.ifaceIP = ip
	}

	if s.logger == nil {
		s.logger = logging.DefaultLogger
	}

	return s, nil
}

// AddHandler appends h to the service's handler chain.
//
// Handlers are consulted in the order they are added, and must all be added
// before Run() is called.
func (s *Service) AddHandler(h Handler) {
	s.handlers = append(s.handlers, h)
}

// Identity returns the node identity advertised by the service's handlers.
func (s *Service) Identity() Identity {
	return s.identity
}

// Port returns the TCP port advertised in SRV records.
func (s *Service) Port() uint16 {
	return s.port
}

// InterfaceIP returns the IPv4 address of the interface the service is bound
// to, or nil if the service is not bound to a network interface.
func (s *Service) InterfaceIP() net.IP {
	return s.ifaceIP
}

// Run processes mDNS messages until ctx is canceled or an error occurs.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	transports := s.transports
	if len(transports) == 0 {
		transports = append(transports, &transport.IPv4Transport{
			Logger: s.logger,
		})

		if s.enableIPv6 {
			transports = append(transports, &transport.IPv6Transport{
				Logger: s.logger,
			})
		}
	}

	for _, t := range transports {
		t := t // capture loop variable
		g.Go(func() error {
			return s.receive(ctx, t)
		})
	}

	g.Go(func() error {
		return s.run(ctx)
	})

	err := g.Wait()

	if err == context.Canceled {
		return nil
	}

	return err
}

// run is the service's main loop. Commands submitted via s.commands run one
// at a time; deferred commands run only when no submitted command is waiting.
func (s *Service) run(ctx context.Context) error {
	defer close(s.done)

	// When ready to send its first replies the host waits for a short random
	// delay, uniformly distributed in the range 0-250ms, to guard against
	// several devices being powered on simultaneously.
	//
	// See https://tools.ietf.org/html/rfc6762#section-8.1.
	if err := sleep(ctx, randT(startupDelayMax)); err != nil {
		return err
	}

	for {
		var c command

		if len(s.deferred) > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case c = <-s.commands:
			default:
				// The inbound queue is idle; service the oldest deferred
				// command.
				c = s.deferred[0]
				s.deferred = s.deferred[1:]
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case c = <-s.commands:
			}
		}

		if err := c.Execute(ctx, s); err != nil {
			return err
		}
	}
}

// execute submits a command to the main loop, blocking until it is accepted.
func (s *Service) execute(ctx context.Context, c command) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return errServiceStopped
	case s.commands <- c:
		return nil
	}
}

// deferCommand schedules c to run once the inbound queue next goes idle.
// It must only be called from the main loop.
func (s *Service) deferCommand(c command) {
	s.deferred = append(s.deferred, c)
}

// dispatchQuestion consults the handler chain for a single question. It
// returns false if no handler claimed the question.
func (s *Service) dispatchQuestion(q *Question, answers AnswerList) bool {
	for _, h := range s.handlers {
		if h.HandleQuestion(q, answers) == Handled {
			return true
		}
	}

	return false
}

// dispatchReply consults the handler chain for the answer records of one
// inbound reply. It returns false if no handler claimed them.
func (s *Service) dispatchReply(replies []Reply) bool {
	for _, h := range s.handlers {
		if h.HandleReply(replies) == Handled {
			return true
		}
	}

	return false
}

// receive reads packets from t and converts them to commands for the main
// loop.
func (s *Service) receive(ctx context.Context, t transport.Transport) error {
	if err := t.Listen(s.iface); err != nil {
		return err
	}
	defer t.Close()

	go func() {
		<-ctx.Done()
		_ = t.Close() // break out of t.Read() when the context is canceled
	}()

	for {
		in, err := t.Read()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		c, ok := s.route(in)
		if !ok {
			in.Close()
			continue
		}

		select {
		case <-ctx.Done():
			in.Close()
			return ctx.Err()
		case s.commands <- c:
		}
	}
}

// route inspects the header of an inbound packet and produces the command
// that will process it, if any.
func (s *Service) route(in *transport.InboundPacket) (command, bool) {
	h, err := wire.ParseHeader(in.Data)
	if err != nil {
		logging.Log(
			s.logger,
			"discarding malformed mDNS packet from %s: %s",
			in.Source.Address,
			err,
		)
		return nil, false
	}

	// Messages with a non-zero opcode or response code are silently ignored.
	//
	// See https://tools.ietf.org/html/rfc6762#section-18.3 and section-18.11.
	if h.Flags.Opcode != 0 || h.Flags.RCode != 0 {
		logging.Debug(
			s.logger,
			"ignoring mDNS packet from %s with opcode %d, rcode %d",
			in.Source.Address,
			h.Flags.Opcode,
			h.Flags.RCode,
		)
		return nil, false
	}

	if h.Flags.Response {
		return &handleReply{in, h}, true
	}

	return &handleQuery{in, h}, true
}
