package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/next-trace/scg-service-state/contract/action"
	"github.com/next-trace/scg-service-state/contract/service"
	"github.com/next-trace/scg-service-state/servicestate"
)

// Replication steps reported in Last.Action.
const (
	StepSnapshot       = "snapshot"
	StepAddListeners   = "add-listeners"
	StepRemoveListener = "remove-listeners"
	StepMutated        = "mutated"
	StepLeftPub        = "left-pub"
	StepRemove         = "remove"
	StepChangeSort     = "change-sort"
)

// Last describes the step that produced a snapshot.
type Last struct {
	Action    string            `json:"action"`
	EventName service.EventName `json:"eventName,omitempty"`
	Record    service.Record    `json:"record,omitempty"`
}

// Snapshot is the replicated view pushed into a store field.
type Snapshot struct {
	Connected bool             `json:"connected"`
	Last      Last             `json:"last"`
	Records   []service.Record `json:"records"`
}

// SortFunc orders two records like strings.Compare.
type SortFunc func(a, b service.Record) int

// SortBy orders records by field, descending when desc is set. Numbers and
// strings compare naturally; other values keep their relative order.
func SortBy(field string, desc bool) SortFunc {
	return func(a, b service.Record) int {
		c := compareValues(a[field], b[field])
		if desc {
			return -c
		}

		return c
	}
}

// ReplicatorOption configures a Replicator.
type ReplicatorOption func(*Replicator)

// WithPublication keeps only records for which keep returns true.
func WithPublication(keep func(service.Record) bool) ReplicatorOption {
	return func(r *Replicator) { r.publication = keep }
}

// WithSort orders the replicated records.
func WithSort(fn SortFunc) ReplicatorOption { return func(r *Replicator) { r.sortFn = fn } }

// WithQuery narrows the initial snapshot query.
func WithQuery(q service.Query) ReplicatorOption { return func(r *Replicator) { r.query = q } }

// WithIDField sets the record identifier field. Default "id".
func WithIDField(f string) ReplicatorOption { return func(r *Replicator) { r.idField = f } }

// WithLogger sets the logger for replication diagnostics.
func WithLogger(l *slog.Logger) ReplicatorOption { return func(r *Replicator) { r.logger = l } }

// Replicator mirrors the published subset of a service from a snapshot plus
// its mutation events.
type Replicator struct {
	svc         service.Service
	publication func(service.Record) bool
	sortFn      SortFunc
	query       service.Query
	idField     string
	logger      *slog.Logger

	mu        sync.Mutex
	records   []service.Record
	connected bool
	sub       service.Subscription
	listeners []func(Snapshot)
}

// NewReplicator creates a disconnected replicator for svc.
func NewReplicator(svc service.Service, opts ...ReplicatorOption) *Replicator {
	r := &Replicator{
		svc:         svc,
		publication: func(service.Record) bool { return true },
		idField:     "id",
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

// OnSnapshot registers fn to receive every snapshot.
func (r *Replicator) OnSnapshot(fn func(Snapshot)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// StoreInto returns a snapshot listener dispatching b's store action.
func StoreInto(b *servicestate.Bundle, dispatch action.Dispatch) func(Snapshot) {
	return func(s Snapshot) { dispatch(b.Store(s)) }
}

// Connect loads the initial snapshot and starts listening for events.
func (r *Replicator) Connect(ctx context.Context) error {
	page, err := r.svc.Find(ctx, service.Params{Query: r.query})
	if err != nil {
		return fmt.Errorf("replicate snapshot: %w", err)
	}

	r.mu.Lock()
	r.records = r.records[:0]

	for _, rec := range page.Data {
		if r.publication(rec) {
			r.records = append(r.records, rec)
		}
	}

	r.sortLocked()
	r.connected = true
	r.mu.Unlock()

	r.publish(Last{Action: StepSnapshot})

	subs := make([]service.Subscription, 0, len(service.EventNames))
	for _, name := range service.EventNames {
		subs = append(subs, r.svc.Subscribe(name, func(rec service.Record) { r.handle(name, rec) }))
	}

	r.mu.Lock()
	prev := r.sub
	r.sub = service.SubscriptionFunc(func() {
		for _, s := range subs {
			s.Unsubscribe()
		}
	})
	r.mu.Unlock()

	// Reconnecting replaces the listeners of the previous Connect.
	if prev != nil {
		prev.Unsubscribe()
	}

	r.publish(Last{Action: StepAddListeners})

	if r.logger != nil {
		r.logger.DebugContext(ctx, "replication connected", slog.Int("records", len(page.Data)))
	}

	return nil
}

// Disconnect stops listening. The last records are kept.
func (r *Replicator) Disconnect() {
	r.mu.Lock()
	sub := r.sub
	r.sub = nil
	r.connected = false
	r.mu.Unlock()

	if sub == nil {
		return
	}

	sub.Unsubscribe()
	r.publish(Last{Action: StepRemoveListener})
}

// ChangeSort reorders the records with fn.
func (r *Replicator) ChangeSort(fn SortFunc) {
	r.mu.Lock()
	r.sortFn = fn
	r.sortLocked()
	r.mu.Unlock()

	r.publish(Last{Action: StepChangeSort})
}

// Records returns a copy of the replicated records.
func (r *Replicator) Records() []service.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.records)
}

func (r *Replicator) handle(name service.EventName, rec service.Record) {
	r.mu.Lock()

	idx := r.indexLocked(rec)
	last := Last{EventName: name, Record: rec}

	switch {
	case name == service.Removed:
		if idx < 0 {
			r.mu.Unlock()
			return
		}

		r.records = slices.Delete(r.records, idx, idx+1)
		last.Action = StepRemove
	case r.publication(rec):
		if idx >= 0 {
			r.records[idx] = rec
		} else {
			r.records = append(r.records, rec)
		}

		r.sortLocked()
		last.Action = StepMutated
	case idx >= 0:
		r.records = slices.Delete(r.records, idx, idx+1)
		last.Action = StepLeftPub
	default:
		r.mu.Unlock()
		return
	}

	r.mu.Unlock()

	r.publish(last)
}

func (r *Replicator) publish(last Last) {
	r.mu.Lock()
	snap := Snapshot{Connected: r.connected, Last: last, Records: slices.Clone(r.records)}
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// indexLocked must be called with mu held.
func (r *Replicator) indexLocked(rec service.Record) int {
	id := rec[r.idField]

	return slices.IndexFunc(r.records, func(x service.Record) bool {
		return service.SameID(x[r.idField], id)
	})
}

// sortLocked must be called with mu held.
func (r *Replicator) sortLocked() {
	if r.sortFn == nil {
		return
	}

	slices.SortStableFunc(r.records, r.sortFn)
}

func compareValues(a, b any) int {
	if c, ok := service.CompareNumbers(a, b); ok {
		return c
	}

	sa, okA := a.(string)
	sb, okB := b.(string)

	if okA && okB {
		return strings.Compare(sa, sb)
	}

	return 0
}
