// Package store owns the saved insight collection and its persistence lifecycle.
//
// The collection is loaded once, grows only by prepending a new insight, and is
// rewritten in full under a single storage key after every append.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/insight-journal/internal/logging"
	"github.com/jonathan/insight-journal/internal/metrics"
	"github.com/jonathan/insight-journal/internal/pillars"
	"github.com/jonathan/insight-journal/internal/schemas"
	"github.com/jonathan/insight-journal/internal/types"
	"go.uber.org/zap"
)

// CollectionKey is the storage key holding the serialized collection.
const CollectionKey = "crypto_intelligence_insights"

// Store holds the in-memory collection and writes it through to Storage.
type Store struct {
	storage Storage
	catalog *pillars.Catalog
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	insights types.InsightCollection
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = logging.OrNop(l) }
}

// WithClock overrides the clock used to stamp new insights.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store. Call Load before use.
func New(storage Storage, catalog *pillars.Catalog, opts ...Option) *Store {
	s := &Store{
		storage:  storage,
		catalog:  catalog,
		logger:   zap.NewNop(),
		now:      time.Now,
		insights: types.InsightCollection{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted collection and makes it the in-memory state.
// Absent or unreadable state yields an empty collection; Load never fails.
func (s *Store) Load(ctx context.Context) types.InsightCollection {
	loaded := s.read(ctx)

	s.mu.Lock()
	s.insights = loaded
	s.mu.Unlock()

	return clone(loaded)
}

func (s *Store) read(ctx context.Context) types.InsightCollection {
	raw, ok, err := s.storage.Read(ctx, CollectionKey)
	if err != nil {
		s.recovered("read failed", err)
		return types.InsightCollection{}
	}
	if !ok {
		return types.InsightCollection{}
	}

	c, err := Decode([]byte(raw))
	if err != nil {
		s.recovered("unreadable collection", err)
		return types.InsightCollection{}
	}
	return c
}

func (s *Store) recovered(reason string, err error) {
	metrics.LoadRecoveries.Inc()
	s.logger.Warn("starting with empty insight collection",
		zap.String("key", CollectionKey),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

// Decode parses a serialized collection, rejecting documents that do not match the collection schema.
func Decode(data []byte) (types.InsightCollection, error) {
	if err := schemas.Validate(schemas.InsightCollection, data); err != nil {
		return nil, err
	}
	var c types.InsightCollection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode insight collection: %w", err)
	}
	if c == nil {
		c = types.InsightCollection{}
	}
	return c, nil
}

// Append returns a new collection with in first followed by all of c. c is not modified.
func Append(c types.InsightCollection, in types.Insight) types.InsightCollection {
	out := make(types.InsightCollection, 0, len(c)+1)
	out = append(out, in)
	return append(out, c...)
}

// Persist serializes c and overwrites the stored collection.
func (s *Store) Persist(ctx context.Context, c types.InsightCollection) error {
	if c == nil {
		c = types.InsightCollection{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return &PersistenceError{Key: CollectionKey, Cause: err}
	}
	if err := s.storage.Write(ctx, CollectionKey, string(data)); err != nil {
		metrics.PersistFailures.Inc()
		return &PersistenceError{Key: CollectionKey, Cause: err}
	}
	return nil
}

// Save validates in, prepends it to the in-memory collection and persists the result.
// A validation failure changes nothing. A *PersistenceError means the insight is kept
// in memory but was not written durably. The returned collection is the in-memory state.
func (s *Store) Save(ctx context.Context, in types.Insight) (types.InsightCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ValidateInsight(s.catalog, s.insights, in); err != nil {
		return clone(s.insights), err
	}

	s.insights = Append(s.insights, in)
	metrics.InsightsSaved.Inc()

	if err := s.Persist(ctx, s.insights); err != nil {
		s.logger.Error("insight saved in memory only", zap.String("id", in.ID), zap.Error(err))
		return clone(s.insights), err
	}
	return clone(s.insights), nil
}

// Create stamps a draft with a new id and the store clock, then saves it.
func (s *Store) Create(ctx context.Context, draft types.InsightDraft) (types.Insight, types.InsightCollection, error) {
	in := types.NewInsight(draft, s.now())
	c, err := s.Save(ctx, in)
	return in, c, err
}

// Insights returns a snapshot of the in-memory collection, newest first.
func (s *Store) Insights() types.InsightCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.insights)
}

// Get returns the saved insight with the given id.
func (s *Store) Get(id string) (types.Insight, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insights.Find(id)
}

func clone(c types.InsightCollection) types.InsightCollection {
	out := make(types.InsightCollection, len(c))
	copy(out, c)
	return out
}
