package nmos

import (
	"context"
	"net"
	"strings"

	"github.com/avoip/herald/src/herald/mdns"
	"github.com/avoip/herald/src/herald/names"

	"github.com/dogmatiq/dodeca/logging"
)

// Registration describes a Registration API discovered via mDNS.
type Registration struct {
	// Address is the IPv4 address of the host providing the API.
	Address net.IP

	// Port is the TCP port of the API, or zero if the reply carried no SRV
	// record.
	Port uint16

	// Proto and Version are the api_proto and api_ver TXT values advertised
	// by the API.
	Proto   string
	Version string
}

// Registrar starts registrations against a discovered Registration API.
type Registrar interface {
	// StartRegistration begins registering the local node's resources with
	// the Registration API described by r. It must not block.
	StartRegistration(r Registration)
}

// HandleReply watches inbound replies for an instance of the Registration
// API.
//
// When one is recognized the handler collects the instance's SRV port, A
// address and api_proto/api_ver TXT values from the same datagram and starts
// a registration. If the reply carries an SRV target but no A record, the
// target host name is resolved asynchronously before registration begins.
func (h *Handler) HandleReply(replies []mdns.Reply) mdns.Disposition {
	var (
		found   bool
		reg     Registration
		srvName names.Name
	)

	for i := range replies {
		r := &replies[i]

		if r.Matches(registerInstance) || r.Matches(registrationInstance) {
			logging.Log(h.logger, "recognized NMOS registration API instance '%s'", r.Name)
			found = true
		}

		switch r.Type {
		case mdns.TypeTXT:
			proto, ok := r.TXT.Get("api_proto")
			if !ok {
				logging.Debug(h.logger, "TXT record for '%s' has no api_proto", r.Name)
				break
			}
			ver, ok := r.TXT.Get("api_ver")
			if !ok {
				logging.Debug(h.logger, "TXT record for '%s' has no api_ver", r.Name)
				break
			}
			reg.Proto = proto
			reg.Version = ver

		case mdns.TypePTR:
			logging.Debug(h.logger, "service instance in PTR: %s", r.PTR)

		case mdns.TypeSRV:
			reg.Port = r.SRV.Port
			if reg.Address == nil {
				srvName = r.SRV.Target
			}

		case mdns.TypeA:
			reg.Address = r.A

		case mdns.TypeAAAA:
			// The registration client is IPv4-only.
			logging.Debug(h.logger, "skipping AAAA record for '%s'", r.Name)

		default:
			logging.Debug(h.logger, "unhandled reply type %s for '%s'", r.Type, r.Name)
		}
	}

	if !found {
		return mdns.NotYetHandled
	}

	if reg.Address == nil && srvName != nil {
		h.resolveAndRegister(srvName, reg)
		return mdns.Handled
	}

	h.register(reg)
	return mdns.Handled
}

// register validates reg and starts the registration.
func (h *Handler) register(reg Registration) {
	if reg.Address == nil {
		logging.Log(h.logger, "not registering, no address found for the registration API")
		return
	}

	if reg.Proto != "http" && reg.Proto != "https" {
		logging.Log(h.logger, "not registering, unhandled api_proto '%s'", reg.Proto)
		return
	}

	if reg.Version != APIVersion {
		logging.Log(h.logger, "not registering, unhandled api_ver '%s'", reg.Version)
		return
	}

	h.registrar.StartRegistration(reg)
}

// resolveAndRegister resolves the SRV target host name and completes the
// registration once an address is known. The continuation runs on the
// dispatch goroutine.
func (h *Handler) resolveAndRegister(target names.Name, reg Registration) {
	hostname := unicastHostname(target)

	logging.Log(h.logger, "resolving registration API host '%s'", hostname)

	h.resolver.ResolveHostname(
		context.Background(),
		hostname,
		func(ips []net.IP, err error) {
			if err != nil {
				logging.Log(h.logger, "unable to resolve '%s': %s", hostname, err)
				return
			}

			for _, ip := range ips {
				if v4 := ip.To4(); v4 != nil {
					reg.Address = v4
					h.register(reg)
					return
				}
			}

			logging.Log(h.logger, "'%s' has no IPv4 address", hostname)
		},
	)
}

// unicastHostname converts an mDNS name to a host name suitable for unicast
// resolution by stripping the "local" domain, if present.
func unicastHostname(n names.Name) string {
	labels := make([]string, 0, len(n))
	for _, l := range n {
		labels = append(labels, string(l))
	}

	if len(labels) > 1 && labels[len(labels)-1] == "local" {
		labels = labels[:len(labels)-1]
	}

	return strings.Join(labels, ".")
}
