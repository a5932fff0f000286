package mdns

import "github.com/avoip/herald/src/herald/names"

// Identity identifies the node advertised by the service's handlers.
type Identity struct {
	// NodeID is the vendor-assigned node identifier, used as the first label
	// of advertised service instance names.
	NodeID string

	// NodeName is the node's host name, advertised as the target of SRV
	// records.
	NodeName string
}

// DefaultIdentity is the identity used when none is configured.
var DefaultIdentity = Identity{
	NodeID:   "herald_node_id",
	NodeName: "heraldnode",
}

// Hostname returns the node's host name within the .local domain.
func (id Identity) Hostname() names.Name {
	return names.New(id.NodeName, "local")
}
