package action

import "github.com/next-trace/scg-service-state/promise"

// Async is the payload of an action wrapping an in-flight operation.
// The dispatch loop turns it into pending and fulfilled/rejected actions.
type Async struct {
	Promise *promise.Promise
	Data    any
}

// Suffixes names the three lifecycle stages appended to an async action type.
type Suffixes struct {
	Pending   string `yaml:"pending"`
	Fulfilled string `yaml:"fulfilled"`
	Rejected  string `yaml:"rejected"`
}

// DefaultSuffixes are the canonical lifecycle suffixes.
var DefaultSuffixes = Suffixes{Pending: "PENDING", Fulfilled: "FULFILLED", Rejected: "REJECTED"}

// Delimiter joins a base type and a lifecycle suffix.
const Delimiter = "_"

// WithDefaults fills empty suffixes with the canonical names.
func (s Suffixes) WithDefaults() Suffixes {
	if s.Pending == "" {
		s.Pending = DefaultSuffixes.Pending
	}

	if s.Fulfilled == "" {
		s.Fulfilled = DefaultSuffixes.Fulfilled
	}

	if s.Rejected == "" {
		s.Rejected = DefaultSuffixes.Rejected
	}

	return s
}

// PendingType returns base with the pending suffix.
func (s Suffixes) PendingType(base string) string { return base + Delimiter + s.Pending }

// FulfilledType returns base with the fulfilled suffix.
func (s Suffixes) FulfilledType(base string) string { return base + Delimiter + s.Fulfilled }

// RejectedType returns base with the rejected suffix.
func (s Suffixes) RejectedType(base string) string { return base + Delimiter + s.Rejected }
