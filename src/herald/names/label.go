package names

import (
	"errors"
	"fmt"
	"strings"
)

// Label is the part of a DNS name contained within dots.
type Label string

// MaxLabelLength is the largest label permitted by RFC 1035, in octets.
const MaxLabelLength = 63

// Wildcard is the label that matches any label when used in a pattern.
const Wildcard Label = "*"

// IsWildcard returns true if the label is the wildcard label.
func (l Label) IsWildcard() bool {
	return l == Wildcard
}

// Validate returns nil if the label is valid.
func (l Label) Validate() error {
	if l == "" {
		return errors.New("label must not be empty")
	}

	if len(l) > MaxLabelLength {
		return fmt.Errorf("label '%s' is invalid, longer than %d octets", string(l), MaxLabelLength)
	}

	if strings.Contains(string(l), ".") {
		return fmt.Errorf("label '%s' is invalid, contains unexpected dots", string(l))
	}

	return nil
}

// String returns a representation of the label as used by DNS systems.
// It panics if the label is not valid.
func (l Label) String() string {
	if err := l.Validate(); err != nil {
		panic(err)
	}

	return string(l)
}
