package names

import (
	"errors"
	"strings"
)

// Name is a DNS name, represented as the ordered sequence of labels that
// appear between the dots.
type Name []Label

// Parse parses a dotted name such as "_http._tcp.local".
//
// A trailing dot is accepted and ignored, so fully-qualified and relative
// spellings of the same name parse to the same value.
func Parse(n string) (Name, error) {
	n = strings.TrimSuffix(n, ".")

	if n == "" {
		return nil, errors.New("name must not be empty")
	}

	var name Name
	for _, l := range strings.Split(n, ".") {
		name = append(name, Label(l))
	}

	return name, name.Validate()
}

// MustParse parses a dotted name.
// It panics if n is invalid.
func MustParse(n string) Name {
	v, err := Parse(n)
	if err != nil {
		panic(err)
	}
	return v
}

// New returns a name built from the given labels.
func New(labels ...string) Name {
	name := make(Name, len(labels))
	for i, l := range labels {
		name[i] = Label(l)
	}
	return name
}

// Validate returns nil if every label in the name is valid.
func (n Name) Validate() error {
	if len(n) == 0 {
		return errors.New("name must contain at least one label")
	}

	for _, l := range n {
		if err := l.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Equal returns true if n and o consist of the same labels in the same order.
func (n Name) Equal(o Name) bool {
	if len(n) != len(o) {
		return false
	}

	for i, l := range n {
		if o[i] != l {
			return false
		}
	}

	return true
}

// Match returns true if n matches the pattern p.
//
// The comparison is label-by-label. A wildcard label in the pattern matches
// any label of the candidate, so "x._rtsp._tcp.local" matches the pattern
// "*._rtsp._tcp.local". Names of different lengths never match.
func (n Name) Match(p Name) bool {
	if len(n) != len(p) {
		return false
	}

	for i, l := range p {
		if l.IsWildcard() {
			continue
		}
		if n[i] != l {
			return false
		}
	}

	return true
}

// String returns a human-readable dotted representation of the name.
func (n Name) String() string {
	labels := make([]string, len(n))
	for i, l := range n {
		labels[i] = string(l)
	}
	return strings.Join(labels, ".")
}
