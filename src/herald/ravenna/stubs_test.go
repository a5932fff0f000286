package ravenna_test

import (
	"net"

	"github.com/avoip/herald/src/herald/mdns"
	"github.com/avoip/herald/src/herald/names"
)

// nodeStub provides a fixed identity and interface address.
type nodeStub struct {
	id mdns.Identity
	ip net.IP
}

func (n *nodeStub) Identity() mdns.Identity {
	return n.id
}

func (n *nodeStub) InterfaceIP() net.IP {
	return n.ip
}

// answerEntry is one record captured by an answerRecorder.
type answerEntry struct {
	Kind   string
	Name   names.Name
	Target names.Name
	Text   string
	IP     net.IP
}

// answerRecorder is an AnswerList that records the appended records instead
// of serializing them.
type answerRecorder struct {
	entries []answerEntry
}

func (r *answerRecorder) AppendPTR(name, target names.Name) {
	r.entries = append(r.entries, answerEntry{Kind: "PTR", Name: name, Target: target})
}

func (r *answerRecorder) AppendTXT(name names.Name, txt string) {
	r.entries = append(r.entries, answerEntry{Kind: "TXT", Name: name, Text: txt})
}

func (r *answerRecorder) AppendSRV(name, target names.Name) {
	r.entries = append(r.entries, answerEntry{Kind: "SRV", Name: name, Target: target})
}

func (r *answerRecorder) AppendA(name names.Name, ip net.IP) {
	r.entries = append(r.entries, answerEntry{Kind: "A", Name: name, IP: ip})
}
