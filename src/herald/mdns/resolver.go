package mdns

import (
	"context"
	"net"

	"github.com/dogmatiq/dodeca/logging"
)

// Resolver resolves host names to IP addresses asynchronously.
//
// It is implemented by Service for use by handlers that need to chase SRV
// targets that arrive without an accompanying A record.
type Resolver interface {
	// ResolveHostname resolves hostname and invokes f with the result.
	//
	// The lookup happens off the dispatch goroutine; f is invoked on the
	// dispatch goroutine once the lookup completes, so it may safely touch
	// handler state without synchronization.
	ResolveHostname(ctx context.Context, hostname string, f func([]net.IP, error))
}

// ResolveHostname implements the Resolver interface.
func (s *Service) ResolveHostname(ctx context.Context, hostname string, f func([]net.IP, error)) {
	go func() {
		addrs, err := net.DefaultResolver.LookupIPAddr(ctx, hostname)

		ips := make([]net.IP, len(addrs))
		for i, a := range addrs {
			ips[i] = a.IP
		}

		if err := s.execute(ctx, &resolved{ips, err, f}); err != nil {
			// The service has stopped or ctx was canceled; the continuation
			// is never invoked.
			logging.Debug(
				s.logger,
				"discarding result of hostname lookup for '%s': %s",
				hostname,
				err,
			)
		}
	}()
}

// resolved is a command that delivers the result of a hostname lookup to its
// continuation on the main loop.
type resolved struct {
	Addrs    []net.IP
	Err      error
	Continue func([]net.IP, error)
}

func (c *resolved) Execute(ctx context.Context, s *Service) error {
	c.Continue(c.Addrs, c.Err)
	return nil
}
