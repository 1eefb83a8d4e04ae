package servicestate

import (
	"encoding/json"
	"fmt"

	serr "github.com/next-trace/scg-service-state/contract/errors"
	"github.com/next-trace/scg-service-state/contract/service"
)

// State is the per-service slice owned by a bundle's reducer. It is replaced
// wholesale on every matching action; records and pages reachable from it are
// never modified in place.
type State struct {
	IsError    *serr.ServiceError
	IsLoading  bool
	IsSaving   bool
	IsFinished bool

	// Data holds the payload of the latest get/create/update/patch/remove.
	Data service.Record
	// QueryResult holds the latest find page, kept in sync with real-time events.
	QueryResult *service.Page
	// Store is an externally pushed snapshot, independent of the CRUD lifecycle.
	Store any

	FindPending   bool
	GetPending    bool
	CreatePending bool
	UpdatePending bool
	PatchPending  bool
	RemovePending bool
}

// InitialState returns the canonical empty state.
func InitialState() State {
	return State{QueryResult: service.EmptyPage()}
}

// Pending reports whether m is in flight.
func (s State) Pending(m Method) bool {
	switch m {
	case MethodFind:
		return s.FindPending
	case MethodGet:
		return s.GetPending
	case MethodCreate:
		return s.CreatePending
	case MethodUpdate:
		return s.UpdatePending
	case MethodPatch:
		return s.PatchPending
	case MethodRemove:
		return s.RemovePending
	default:
		return false
	}
}

func (s State) withPending(m Method, v bool) State {
	switch m {
	case MethodFind:
		s.FindPending = v
	case MethodGet:
		s.GetPending = v
	case MethodCreate:
		s.CreatePending = v
	case MethodUpdate:
		s.UpdatePending = v
	case MethodPatch:
		s.PatchPending = v
	case MethodRemove:
		s.RemovePending = v
	}

	return s
}

// withOnlyPending marks m pending and clears every sibling flag.
func (s State) withOnlyPending(m Method) State {
	for _, other := range Methods {
		s = s.withPending(other, other == m)
	}

	return s
}

// Export renders s using the bundle's configured key names.
func (b *Bundle) Export(s State) map[string]any {
	f := b.cfg.Fields

	out := map[string]any{
		f.IsError:     s.IsError,
		f.IsLoading:   s.IsLoading,
		f.IsSaving:    s.IsSaving,
		f.IsFinished:  s.IsFinished,
		f.Data:        s.Data,
		f.QueryResult: s.QueryResult,
		f.Store:       s.Store,
	}

	for _, m := range Methods {
		out[f.pending(m)] = s.Pending(m)
	}

	return out
}

// MarshalState encodes s as JSON using the configured key names.
func (b *Bundle) MarshalState(s State) ([]byte, error) {
	data, err := json.Marshal(b.Export(s))
	if err != nil {
		return nil, fmt.Errorf("marshal %s state: %w", b.Name, err)
	}

	return data, nil
}
