// Package transport provides the UDP multicast transports used by the mDNS
// service. Packets are carried as raw octets; framing is the concern of the
// wire codec.
package transport

import (
	"errors"
	"net"
)

// Port is the mDNS port number.
const Port = 5353

// ErrSocket is returned (wrapped) when the listening socket cannot be
// created or the multicast group cannot be joined.
var ErrSocket = errors.New("failed to create mDNS socket")

// Transport is an interface for communicating via UDP.
type Transport interface {
	// Listen starts listening for UDP packets on the given interface.
	Listen(iface *net.Interface) error

	// Read reads the next packet from the transport.
	Read() (*InboundPacket, error)

	// Write sends a packet via the transport.
	Write(*OutboundPacket) error

	// Group returns the multicast group address for this transport.
	Group() *net.UDPAddr

	// Close closes the transport, preventing further reads and writes.
	Close() error
}

// SendMulticastReply sends data to the transport's multicast group, scoped
// to the interface on which the packet being replied to arrived.
func SendMulticastReply(t Transport, source Endpoint, data []byte) error {
	out := &OutboundPacket{
		Destination: Endpoint{
			InterfaceIndex: source.InterfaceIndex,
			Address:        t.Group(),
		},
		Data: data,
	}
	defer out.Close()

	return t.Write(out)
}
