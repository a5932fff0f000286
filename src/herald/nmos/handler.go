// Package nmos provides an mDNS handler implementing the discovery side of
// the AMWA NMOS IS-04 registration model: it advertises the node's Node API
// in response to _nmos-node queries, and watches inbound replies for a
// Registration API to register with.
package nmos

import (
	"fmt"

	"github.com/avoip/herald/src/herald/mdns"
	"github.com/avoip/herald/src/herald/names"

	"github.com/dogmatiq/dodeca/logging"
)

// APIVersion is the only NMOS API version this handler speaks.
const APIVersion = "v1.3"

// Service names recognized by the handler.
//
// See https://specs.amwa.tv/is-04/releases/v1.3.1/docs/Discovery.html.
var (
	nodeService     = names.New("_nmos-node", "_tcp", "local")
	registerService = names.New("_nmos-register", "_tcp", "local")
	queryService    = names.New("_nmos-query", "_tcp", "local")

	// Instances of the Registration API, as they appear in the answer
	// section of a reply. Older registries announce themselves under the
	// pre-v1.3 "_nmos-registration" name.
	registerInstance     = names.New("*", "_nmos-register", "_tcp", "local")
	registrationInstance = names.New("*", "_nmos-registration", "_tcp", "local")
)

// Registry exposes the per-resource version counters advertised in the Node
// API's TXT records.
//
// See https://specs.amwa.tv/is-04/releases/v1.3.1/docs/APIs.html.
type Registry interface {
	NumSelf() uint8
	NumSources() uint8
	NumFlows() uint8
	NumDevices() uint8
	NumSenders() uint8
	NumReceivers() uint8
}

// Handler is an mDNS handler that advertises the local Node API and
// initiates registration when a Registration API is discovered.
type Handler struct {
	node      Node
	registry  Registry
	registrar Registrar
	resolver  mdns.Resolver
	logger    logging.Logger
}

// Node exposes the parts of the mDNS service the handler consults when
// building answers. It is implemented by mdns.Service.
type Node interface {
	Identity() mdns.Identity
}

// NewHandler returns a handler that advertises the Node API described by
// registry and starts registrations via registrar.
func NewHandler(
	node Node,
	registry Registry,
	registrar Registrar,
	resolver mdns.Resolver,
	logger logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.DefaultLogger
	}

	return &Handler{
		node:      node,
		registry:  registry,
		registrar: registrar,
		resolver:  resolver,
		logger:    logger,
	}
}

// HandleQuestion answers queries for the NMOS service types.
//
// Queries for the Node API are answered with the API's TXT description;
// queries for the Registration and Query APIs are claimed without answers,
// as this node does not provide those APIs.
func (h *Handler) HandleQuestion(q *mdns.Question, answers mdns.AnswerList) mdns.Disposition {
	switch {
	case q.Name.Equal(nodeService):
		logging.Log(h.logger, "answering NMOS node query")
		h.appendNodeTXT(q.Name, answers)
		return mdns.Handled

	case q.Name.Equal(registerService):
		logging.Debug(h.logger, "ignoring NMOS registration query, node provides no registration API")
		return mdns.Handled

	case q.Name.Equal(queryService):
		logging.Debug(h.logger, "ignoring NMOS query query, node provides no query API")
		return mdns.Handled
	}

	return mdns.NotYetHandled
}

// appendNodeTXT appends the TXT records describing the local Node API to
// answers. Each key/value pair is carried in its own record.
func (h *Handler) appendNodeTXT(service names.Name, answers mdns.AnswerList) {
	instance := append(
		names.Name{names.Label(h.node.Identity().NodeID)},
		service...,
	)

	pairs := []struct {
		key   string
		value string
	}{
		{"api_proto", "http"},
		{"api_ver", APIVersion},
		{"api_auth", "false"},
		{"ver_slf", formatVersion(h.registry.NumSelf())},
		{"ver_src", formatVersion(h.registry.NumSources())},
		{"ver_flw", formatVersion(h.registry.NumFlows())},
		{"ver_dvc", formatVersion(h.registry.NumDevices())},
		{"ver_snd", formatVersion(h.registry.NumSenders())},
		{"ver_rcv", formatVersion(h.registry.NumReceivers())},
	}

	for _, p := range pairs {
		answers.AppendTXT(instance, p.key+"="+p.value)
	}
}

func formatVersion(v uint8) string {
	return fmt.Sprintf("%d", v)
}
