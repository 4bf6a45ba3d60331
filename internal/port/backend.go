package port

import (
	"context"

	"faqbot/internal/domain"
)

// SearchBackend is the contract every pluggable search engine must satisfy.
// Implementations must be safe for concurrent use if callers are to issue
// concurrent queries; the retrieval service adds no locking of its own.
type SearchBackend interface {
	// CollectionExists reports whether the named collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// CreateCollection creates the named collection with default settings.
	CreateCollection(ctx context.Context, name string) error

	// BulkIndex submits all records against the collection in a single bulk
	// operation and returns the count the backend confirms as indexed. On
	// partial failure the confirmed count is still returned alongside the
	// error.
	BulkIndex(ctx context.Context, collection string, records []domain.Record) (int, error)

	// Search runs a relevance-ranked full-text match query against the
	// message field and returns up to k hits in descending score order. An
	// empty result is an empty slice, never an error.
	Search(ctx context.Context, collection, query string, k int) ([]domain.ScoredRecord, error)

	// Close releases the backend connection.
	Close() error
}
