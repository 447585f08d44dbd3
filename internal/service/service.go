// Package service implements CRUD over the user collection. Every operation
// reads the full collection from the store and writes it back whole; nothing
// is cached between calls.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"userdesk/internal/query"
	"userdesk/internal/store"
	"userdesk/internal/validation"
	"userdesk/pkg/domain"
)

// NotFoundError reports that no record has the given id.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("user %s not found", e.ID)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// MetricsRecorder observes operation outcomes.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithMetricsRecorder reports each operation to r.
func WithMetricsRecorder(r MetricsRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithQueryEngine sets the engine used by List.
func WithQueryEngine(e query.Engine) Option {
	return func(s *Service) { s.engine = e }
}

// Service is the Record Service.
type Service struct {
	store   store.Store
	now     func() time.Time
	newID   func() string
	metrics MetricsRecorder
	engine  query.Engine
}

// New constructs a service over st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:   store.Guard(st),
		now:     time.Now,
		newID:   uuid.NewString,
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) observe(ctx context.Context, operation string, started time.Time, err error) {
	s.metrics.Observe(ctx, operation, err == nil, s.now().Sub(started))
}

// List returns one page of users matching q, with the filtered total.
func (s *Service) List(ctx context.Context, q query.Query) (page query.Page, err error) {
	defer func(started time.Time) { s.observe(ctx, "list", started, err) }(s.now())
	records, err := s.store.ReadAll(ctx)
	if err != nil {
		return query.Page{}, err
	}
	return s.engine.Apply(records, q), nil
}

// Get returns the user with id or NotFoundError.
func (s *Service) Get(ctx context.Context, id string) (user domain.User, err error) {
	defer func(started time.Time) { s.observe(ctx, "get", started, err) }(s.now())
	records, err := s.store.ReadAll(ctx)
	if err != nil {
		return domain.User{}, err
	}
	idx := records.Index(id)
	if idx < 0 {
		return domain.User{}, NotFoundError{ID: id}
	}
	return records[idx], nil
}

// Create assigns an id and timestamps to a validated payload, appends it
// and persists the collection.
func (s *Service) Create(ctx context.Context, payload domain.User) (created domain.User, err error) {
	defer func(started time.Time) { s.observe(ctx, "create", started, err) }(s.now())
	if !payload.Role.Valid() {
		return domain.User{}, invalidRole(payload.Role)
	}
	records, err := s.store.ReadAll(ctx)
	if err != nil {
		return domain.User{}, err
	}
	created = payload.Clone()
	created.Normalize()
	created.ID = s.uniqueID(records)
	ts := domain.Timestamp(s.now())
	created.CreatedAt = ts
	created.UpdatedAt = ts
	records = append(records, created)
	if err := s.store.WriteAll(ctx, records); err != nil {
		return domain.User{}, err
	}
	return created.Clone(), nil
}

// Update merges patch into the user with id; see Merge for the rules.
// id and createdAt cannot be changed.
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) (updated domain.User, err error) {
	defer func(started time.Time) { s.observe(ctx, "update", started, err) }(s.now())
	records, err := s.store.ReadAll(ctx)
	if err != nil {
		return domain.User{}, err
	}
	idx := records.Index(id)
	if idx < 0 {
		return domain.User{}, NotFoundError{ID: id}
	}
	existing := records[idx]
	updated, err = mergeUser(existing, patch)
	if err != nil {
		return domain.User{}, err
	}
	if !updated.Role.Valid() {
		return domain.User{}, invalidRole(updated.Role)
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = domain.Timestamp(s.now())
	records[idx] = updated
	if err := s.store.WriteAll(ctx, records); err != nil {
		return domain.User{}, err
	}
	return updated.Clone(), nil
}

// Delete removes the user with id. When nothing matches it returns
// NotFoundError and leaves the collection untouched.
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	defer func(started time.Time) { s.observe(ctx, "delete", started, err) }(s.now())
	records, err := s.store.ReadAll(ctx)
	if err != nil {
		return err
	}
	idx := records.Index(id)
	if idx < 0 {
		return NotFoundError{ID: id}
	}
	records = append(records[:idx], records[idx+1:]...)
	return s.store.WriteAll(ctx, records)
}

func (s *Service) uniqueID(records domain.Collection) string {
	for {
		id := s.newID()
		if id != "" && records.Index(id) < 0 {
			return id
		}
	}
}

func invalidRole(r domain.Role) error {
	return validation.Violations{{
		Field:   "role",
		Message: fmt.Sprintf(`"role" must be one of [Admin, Editor, Viewer], got %q`, string(r)),
	}}
}
