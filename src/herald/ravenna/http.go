// Package ravenna provides mDNS handlers that advertise a RAVENNA node's
// HTTP and RTSP services.
//
// RAVENNA devices are discovered by browsing for the "_ravenna" subtype of
// the standard _http._tcp and _rtsp._tcp service types.
package ravenna

import (
	"net"

	"github.com/avoip/herald/src/herald/mdns"
	"github.com/avoip/herald/src/herald/names"

	"github.com/dogmatiq/dodeca/logging"
)

// Service types recognized by the handlers.
var (
	httpService = names.New("_ravenna", "_sub", "_http", "_tcp", "local")
	rtspService = names.New("_ravenna", "_sub", "_rtsp", "_tcp", "local")
)

// Node exposes the parts of the mDNS service the advertiser consults when
// building answers. It is implemented by mdns.Service.
type Node interface {
	Identity() mdns.Identity
	InterfaceIP() net.IP
}

// HTTPAdvertiser answers queries for the RAVENNA HTTP service subtype by
// advertising the node's HTTP and RTSP service instances.
type HTTPAdvertiser struct {
	node   Node
	logger logging.Logger
}

// NewHTTPAdvertiser returns a handler that advertises node's services.
func NewHTTPAdvertiser(node Node, logger logging.Logger) *HTTPAdvertiser {
	if logger == nil {
		logger = logging.DefaultLogger
	}

	return &HTTPAdvertiser{node, logger}
}

// HandleQuestion answers queries for the RAVENNA HTTP service subtype.
//
// Each of the node's service instances is advertised with a full record set:
// a PTR record pointing the queried service type at the instance, an empty
// TXT record for the instance, its SRV record targeting the node's host name,
// and an A record for the node's interface address.
func (h *HTTPAdvertiser) HandleQuestion(q *mdns.Question, answers mdns.AnswerList) mdns.Disposition {
	if !q.Name.Equal(httpService) {
		return mdns.NotYetHandled
	}

	id := h.node.Identity()
	hostname := id.Hostname()
	ip := h.node.InterfaceIP()

	logging.Log(h.logger, "advertising RAVENNA services for node '%s'", id.NodeID)

	instances := []names.Name{
		names.New(id.NodeID, "_http", "_tcp"),
		names.New(id.NodeID, "_ravenna", "_sub", "_http", "_tcp"),
		names.New(id.NodeID, "_rtsp", "_tcp"),
		names.New(id.NodeID, "_ravenna", "_sub", "_rtsp", "_tcp"),
	}

	for _, instance := range instances {
		answers.AppendPTR(q.Name, instance)
		answers.AppendTXT(instance, "")
		answers.AppendSRV(instance, hostname)
		answers.AppendA(instance, ip)
	}

	return mdns.Handled
}

// HandleReply is a no-op; the advertiser only answers questions.
func (h *HTTPAdvertiser) HandleReply([]mdns.Reply) mdns.Disposition {
	return mdns.NotYetHandled
}
