package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	serr "github.com/next-trace/scg-service-state/contract/errors"
	"github.com/next-trace/scg-service-state/contract/service"
)

// Option configures a Service.
type Option func(*Service)

// WithIDField sets the record identifier field. Default "id".
func WithIDField(f string) Option { return func(s *Service) { s.idField = f } }

// WithIDGenerator sets how ids are assigned to created records lacking one.
func WithIDGenerator(gen func() any) Option { return func(s *Service) { s.genID = gen } }

// UUIDs generates random UUID strings.
func UUIDs() func() any { return func() any { return uuid.NewString() } }

// WithPaginate enables pagination with a default and maximum page size.
func WithPaginate(def, maxSize int) Option {
	return func(s *Service) { s.pageDefault, s.pageMax = def, maxSize }
}

// WithPublisher forwards every mutation event to p.
func WithPublisher(p service.EventPublisher) Option { return func(s *Service) { s.pub = p } }

// WithLogger sets the logger used for publish failures.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithRecords seeds the service.
func WithRecords(records ...service.Record) Option {
	return func(s *Service) { s.seed = append(s.seed, records...) }
}

// Service is an in-memory remote service. It is safe for concurrent use.
type Service struct {
	name    string
	idField string
	genID   func() any

	pageDefault int
	pageMax     int

	mu    sync.RWMutex
	order []string
	byKey map[string]service.Record
	seed  []service.Record
	seq   int

	// emitMu orders event delivery to match the order mutations applied.
	emitMu sync.Mutex
	emitter
	pub    service.EventPublisher
	logger *slog.Logger
}

var _ service.Service = (*Service)(nil)

// New creates a service. name labels published events.
func New(name string, opts ...Option) *Service {
	s := &Service{
		name:    name,
		idField: "id",
		byKey:   make(map[string]service.Record),
		emitter: newEmitter(),
	}

	for _, o := range opts {
		o(s)
	}

	if s.genID == nil {
		s.genID = s.nextSeq
	}

	for _, r := range s.seed {
		rec := r.Clone()
		if rec[s.idField] == nil {
			rec[s.idField] = s.freeID()
		}

		s.insert(rec[s.idField], rec)
	}

	s.seed = nil

	return s
}

// Find returns the records matching params.Query.
func (s *Service) Find(ctx context.Context, params service.Params) (service.Page, error) {
	if err := ctx.Err(); err != nil {
		return service.Page{}, err
	}

	q, err := parseQuery(params.Query)
	if err != nil {
		return service.Page{}, err
	}

	s.mu.RLock()
	matched := make([]service.Record, 0, len(s.order))

	for _, k := range s.order {
		if r := s.byKey[k]; q.match(r) {
			matched = append(matched, r.Clone())
		}
	}
	s.mu.RUnlock()

	q.sort(matched)

	limit := q.limit
	if limit < 0 && s.pageDefault > 0 {
		limit = s.pageDefault
	}

	if s.pageMax > 0 && limit > s.pageMax {
		limit = s.pageMax
	}

	page := service.Page{Total: len(matched), Skip: q.skip}

	data := matched
	if q.skip > 0 {
		data = data[min(q.skip, len(data)):]
	}

	if limit >= 0 {
		page.Limit = limit
		data = data[:min(limit, len(data))]
	}

	page.Data = data

	return page, nil
}

// Get returns the record with id.
func (s *Service) Get(ctx context.Context, id any, _ service.Params) (service.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	r, ok := s.byKey[key(id)]
	s.mu.RUnlock()

	if !ok {
		return nil, notFound(id)
	}

	return r.Clone(), nil
}

// Create stores data, assigning an id when it has none.
func (s *Service) Create(ctx context.Context, data service.Record, _ service.Params) (service.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := data.Clone()
	if rec == nil {
		rec = service.Record{}
	}

	s.mu.Lock()

	id, ok := rec[s.idField]
	if !ok || id == nil {
		id = s.freeID()
		rec[s.idField] = id
	}

	if _, exists := s.byKey[key(id)]; exists {
		s.mu.Unlock()
		return nil, serr.BadRequest("Record with id '%v' already exists", id)
	}

	s.insert(id, rec)
	s.commit(ctx, service.Created, rec)

	return rec.Clone(), nil
}

// Update replaces the record with id by data, keeping the id.
func (s *Service) Update(ctx context.Context, id any, data service.Record, _ service.Params) (service.Record, error) {
	return s.mutate(ctx, id, service.Updated, func(old service.Record) service.Record {
		rec := data.Clone()
		if rec == nil {
			rec = service.Record{}
		}

		rec[s.idField] = old[s.idField]

		return rec
	})
}

// Patch merges data into the record with id.
func (s *Service) Patch(ctx context.Context, id any, data service.Record, _ service.Params) (service.Record, error) {
	return s.mutate(ctx, id, service.Patched, func(old service.Record) service.Record {
		rec := old.Clone()
		for k, v := range data {
			if k == s.idField {
				continue
			}

			rec[k] = v
		}

		return rec
	})
}

// Remove deletes the record with id and returns it.
func (s *Service) Remove(ctx context.Context, id any, _ service.Params) (service.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := key(id)

	s.mu.Lock()

	r, ok := s.byKey[k]
	if !ok {
		s.mu.Unlock()
		return nil, notFound(id)
	}

	delete(s.byKey, k)

	for i, o := range s.order {
		if o == k {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	s.commit(ctx, service.Removed, r)

	return r.Clone(), nil
}

func (s *Service) mutate(
	ctx context.Context,
	id any,
	ev service.EventName,
	fn func(old service.Record) service.Record,
) (service.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := key(id)

	s.mu.Lock()

	old, ok := s.byKey[k]
	if !ok {
		s.mu.Unlock()
		return nil, notFound(id)
	}

	rec := fn(old)
	s.byKey[k] = rec
	s.commit(ctx, ev, rec)

	return rec.Clone(), nil
}

// commit releases mu, which must be held, and emits ev before any later
// mutation can. Handlers must not mutate the service synchronously.
func (s *Service) commit(ctx context.Context, ev service.EventName, rec service.Record) {
	s.emitMu.Lock()
	s.mu.Unlock()

	defer s.emitMu.Unlock()

	s.emit(ctx, ev, rec)
}

// emit notifies local subscribers, then the publisher if one is configured.
func (s *Service) emit(ctx context.Context, ev service.EventName, rec service.Record) {
	s.emitter.emit(ev, rec.Clone())

	if s.pub == nil {
		return
	}

	e := service.Event{Service: s.name, Name: ev, Record: rec.Clone()}
	if err := s.pub.Publish(ctx, e, service.PublishOptions{Key: fmt.Sprint(rec[s.idField])}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "publish service event", slog.String("topic", e.Topic()), slog.Any("err", err))
	}
}

// insert must be called with mu held or before the service is shared.
func (s *Service) insert(id any, rec service.Record) {
	k := key(id)
	if _, exists := s.byKey[k]; !exists {
		s.order = append(s.order, k)
	}

	s.byKey[k] = rec
}

// freeID must be called with mu held.
func (s *Service) freeID() any {
	for {
		id := s.genID()
		if _, taken := s.byKey[key(id)]; !taken {
			return id
		}
	}
}

func (s *Service) nextSeq() any {
	s.seq++
	return s.seq
}

func notFound(id any) error {
	return serr.NotFound("No record found for id '%v'", id)
}

// key normalizes an id so numeric ids match across int and float kinds.
func key(id any) string { return service.IDKey(id) }
