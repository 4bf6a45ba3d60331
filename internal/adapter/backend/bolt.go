package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"faqbot/internal/adapter/store"
	"faqbot/internal/domain"
	"faqbot/internal/port"
)

// BoltBackend is the embedded search engine: records and their inverted
// index live in a bbolt file, ranking is BM25 over the stored postings.
type BoltBackend struct {
	store     *store.BoltStore
	tokenizer port.Tokenizer
	k1        float64
	b         float64
}

// NewBoltBackend opens the embedded engine at path.
func NewBoltBackend(path string, tokenizer port.Tokenizer, k1, b float64) (*BoltBackend, error) {
	st, err := store.NewBoltStore(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	return &BoltBackend{
		store:     st,
		tokenizer: tokenizer,
		k1:        k1,
		b:         b,
	}, nil
}

// Store exposes the underlying store for stats reporting.
func (e *BoltBackend) Store() *store.BoltStore {
	return e.store
}

func (e *BoltBackend) Close() error {
	return e.store.Close()
}

func (e *BoltBackend) CollectionExists(ctx context.Context, name string) (bool, error) {
	exists, err := e.store.CollectionExists(name)
	if err != nil {
		return false, fmt.Errorf("%w: check collection %s: %v", domain.ErrBackendUnavailable, name, err)
	}
	return exists, nil
}

func (e *BoltBackend) CreateCollection(ctx context.Context, name string) error {
	if err := e.store.CreateCollection(name); err != nil {
		return fmt.Errorf("%w: create collection %s: %v", domain.ErrBackendUnavailable, name, err)
	}
	return nil
}

// BulkIndex analyzes every record's message and writes records plus
// postings in one transaction.
func (e *BoltBackend) BulkIndex(ctx context.Context, name string, records []domain.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	indexed := make([]store.IndexedRecord, 0, len(records))
	for _, rec := range records {
		id := rec.ID()
		if id == "" {
			id = uuid.NewString()
		}

		postings := make(map[string]int)
		for _, term := range e.tokenizer.Tokenize(rec.Message()) {
			postings[term]++
		}

		stored := rec.Clone()
		stored[domain.FieldID] = id

		indexed = append(indexed, store.IndexedRecord{
			ID:       id,
			Record:   stored,
			Postings: postings,
		})
	}

	count, err := e.store.BatchIndex(name, indexed)
	if err != nil {
		return count, fmt.Errorf("%w: bulk index into %s: %v", domain.ErrBackend, name, err)
	}
	return count, nil
}

// Search ranks records against the query with BM25 and returns the top k in
// descending score order.
func (e *BoltBackend) Search(ctx context.Context, name, query string, k int) ([]domain.ScoredRecord, error) {
	queryTerms := e.tokenizer.Tokenize(query)
	if len(queryTerms) == 0 {
		return nil, nil
	}

	stats, err := e.store.GetStats(name)
	if err != nil {
		return nil, fmt.Errorf("%w: stats for %s: %v", domain.ErrBackend, name, err)
	}
	if stats.TotalRecords == 0 {
		return nil, nil
	}

	scores := make(map[string]float64)
	lengths := make(map[string]int)
	records := make(map[string]domain.Record)

	for _, term := range queryTerms {
		postings, err := e.store.GetPostings(name, term)
		if err != nil {
			return nil, fmt.Errorf("%w: postings for %q: %v", domain.ErrBackend, term, err)
		}

		termIDF := idf(float64(len(postings)), float64(stats.TotalRecords))

		for _, p := range postings {
			if _, seen := lengths[p.RecordID]; !seen {
				rec, length, err := e.store.GetRecord(name, p.RecordID)
				if err != nil {
					// A posting without its record means the index is stale;
					// skip the hit rather than fail the whole query.
					slog.Warn("skipping unreadable record",
						"collection", name, "record_id", p.RecordID, "error", err)
					continue
				}
				lengths[p.RecordID] = length
				records[p.RecordID] = rec
			}

			dl := float64(lengths[p.RecordID])
			scores[p.RecordID] += bm25(termIDF, float64(p.TF), dl, stats.AvgRecordLen, e.k1, e.b)
		}
	}

	results := make([]domain.ScoredRecord, 0, len(scores))
	for id, score := range scores {
		results = append(results, domain.ScoredRecord{
			Record: records[id],
			Score:  score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}

	return results, nil
}
