package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"faqbot/internal/domain"
	"faqbot/internal/port"
)

// Service mediates all interaction with the search backend: collection
// lifecycle, bulk ingestion and single-query retrieval. It is constructed
// once with its backend and collection name and holds no per-call mutable
// state, so concurrent calls are safe whenever the backend client is.
//
// The service has two states: uninitialized until EnsureCollection
// succeeds, ready afterwards. IndexRecords and Answer fail with
// domain.ErrNotReady before that.
type Service struct {
	backend    port.SearchBackend
	collection string
	topK       int
	logger     *slog.Logger
	ready      atomic.Bool
}

// New creates a Service bound to one collection of the given backend.
func New(backend port.SearchBackend, collection string, topK int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		backend:    backend,
		collection: collection,
		topK:       topK,
		logger:     logger,
	}
}

// Collection returns the collection name the service owns.
func (s *Service) Collection() string {
	return s.collection
}

// Ready reports whether EnsureCollection has succeeded.
func (s *Service) Ready() bool {
	return s.ready.Load()
}

// EnsureCollection checks for the collection and creates it when absent.
// Idempotent: a second call finds the collection and issues no create. The
// service does not retry; retry policy belongs to the caller.
func (s *Service) EnsureCollection(ctx context.Context) error {
	if s.collection == "" {
		return fmt.Errorf("%w: empty collection name", domain.ErrBackend)
	}

	exists, err := s.backend.CollectionExists(ctx, s.collection)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.backend.CreateCollection(ctx, s.collection); err != nil {
			return err
		}
		s.logger.Info("collection created", "collection", s.collection)
	}

	s.ready.Store(true)
	return nil
}

// IndexRecords submits all records as a single bulk operation and returns
// the count the backend confirms as indexed. On partial failure the
// confirmed count is reported alongside the error rather than discarded.
func (s *Service) IndexRecords(ctx context.Context, records []domain.Record) (int, error) {
	if !s.ready.Load() {
		return 0, domain.ErrNotReady
	}
	return s.backend.BulkIndex(ctx, s.collection, records)
}

// Answer issues one relevance-ranked match query against the message field
// and returns the top hits in descending score order. An empty result is an
// empty slice. A malformed backend response is soft: it is logged and
// yields an empty result so an interactive loop can continue; every other
// backend failure propagates.
func (s *Service) Answer(ctx context.Context, query string) ([]domain.Record, error) {
	if !s.ready.Load() {
		return nil, domain.ErrNotReady
	}

	hits, err := s.backend.Search(ctx, s.collection, query, s.topK)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedResponse) {
			s.logger.Warn("discarding malformed backend response", "collection", s.collection, "err", err)
			return nil, nil
		}
		return nil, err
	}

	records := make([]domain.Record, len(hits))
	for i, hit := range hits {
		records[i] = hit.Record
	}
	return records, nil
}
