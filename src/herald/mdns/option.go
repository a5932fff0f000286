package mdns

import (
	"net"

	"github.com/avoip/herald/src/herald/mdns/transport"

	"github.com/dogmatiq/dodeca/logging"
)

// Option is a function that applies an option to a service created by New().
type Option func(*Service) error

// UseLogger returns an option that sets the logger used by the service.
func UseLogger(l logging.Logger) Option {
	return func(s *Service) error {
		s.logger = l
		return nil
	}
}

// UseInterface returns an option that sets the network interface on which the
// service listens for mDNS messages.
//
// If this option is not provided, the service uses the interface that routes
// to the internet.
func UseInterface(iface net.Interface) Option {
	return func(s *Service) error {
		s.iface = &iface
		return nil
	}
}

// UseIdentity returns an option that sets the node identity advertised by the
// service's handlers.
func UseIdentity(id Identity) Option {
	return func(s *Service) error {
		s.identity = id
		return nil
	}
}

// UseServicePort returns an option that sets the TCP port advertised by SRV
// records in outbound replies.
func UseServicePort(port uint16) Option {
	return func(s *Service) error {
		s.port = port
		return nil
	}
}

// UseTransport returns an option that adds t to the set of transports used by
// the service, replacing the default UDP transports.
func UseTransport(t transport.Transport) Option {
	return func(s *Service) error {
		s.transports = append(s.transports, t)
		return nil
	}
}

// EnableIPv6 is an option that makes the service listen on the IPv6 multicast
// group in addition to IPv4. Replies are still sent via IPv4 only.
func EnableIPv6(s *Service) error {
	s.enableIPv6 = true
	return nil
}
