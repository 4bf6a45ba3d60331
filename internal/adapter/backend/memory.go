package backend

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"faqbot/internal/domain"
	"faqbot/internal/port"
)

// MemoryBackend is an in-process search engine with no persistence. Useful
// for tests and throwaway sessions; same analysis and ranking as the bolt
// engine.
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
	tokenizer   port.Tokenizer
	k1          float64
	b           float64
}

type memCollection struct {
	records  map[string]domain.Record
	lengths  map[string]int
	terms    map[string][]string
	postings map[string][]domain.Posting
	totalLen int
}

// evict removes a record's postings and length, so a re-indexed id replaces
// its previous entry instead of stacking on top of it.
func (c *memCollection) evict(id string) {
	length, ok := c.lengths[id]
	if !ok {
		return
	}
	c.totalLen -= length
	for _, term := range c.terms[id] {
		kept := c.postings[term][:0]
		for _, p := range c.postings[term] {
			if p.RecordID != id {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(c.postings, term)
		} else {
			c.postings[term] = kept
		}
	}
	delete(c.terms, id)
	delete(c.lengths, id)
	delete(c.records, id)
}

// NewMemoryBackend creates an empty in-memory engine.
func NewMemoryBackend(tokenizer port.Tokenizer, k1, b float64) *MemoryBackend {
	return &MemoryBackend{
		collections: make(map[string]*memCollection),
		tokenizer:   tokenizer,
		k1:          k1,
		b:           b,
	}
}

func (e *MemoryBackend) Close() error {
	return nil
}

func (e *MemoryBackend) CollectionExists(ctx context.Context, name string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.collections[name]
	return ok, nil
}

func (e *MemoryBackend) CreateCollection(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.collections[name]; ok {
		return nil
	}
	e.collections[name] = &memCollection{
		records:  make(map[string]domain.Record),
		lengths:  make(map[string]int),
		terms:    make(map[string][]string),
		postings: make(map[string][]domain.Posting),
	}
	return nil
}

func (e *MemoryBackend) BulkIndex(ctx context.Context, name string, records []domain.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.collections[name]
	if !ok {
		return 0, fmt.Errorf("%w: collection not found: %s", domain.ErrBackend, name)
	}

	count := 0
	for _, rec := range records {
		id := rec.ID()
		if id == "" {
			id = uuid.NewString()
		}

		stored := rec.Clone()
		stored[domain.FieldID] = id

		length := 0
		tf := make(map[string]int)
		for _, term := range e.tokenizer.Tokenize(rec.Message()) {
			tf[term]++
			length++
		}

		c.evict(id)

		terms := make([]string, 0, len(tf))
		c.records[id] = stored
		c.lengths[id] = length
		c.totalLen += length
		for term, n := range tf {
			c.postings[term] = append(c.postings[term], domain.Posting{RecordID: id, TF: n})
			terms = append(terms, term)
		}
		c.terms[id] = terms
		count++
	}

	return count, nil
}

func (e *MemoryBackend) Search(ctx context.Context, name, query string, k int) ([]domain.ScoredRecord, error) {
	queryTerms := e.tokenizer.Tokenize(query)
	if len(queryTerms) == 0 {
		return nil, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	c, ok := e.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: collection not found: %s", domain.ErrBackend, name)
	}
	if len(c.records) == 0 {
		return nil, nil
	}

	avgLen := float64(c.totalLen) / float64(len(c.records))
	scores := make(map[string]float64)

	for _, term := range queryTerms {
		postings := c.postings[term]
		termIDF := idf(float64(len(postings)), float64(len(c.records)))
		for _, p := range postings {
			dl := float64(c.lengths[p.RecordID])
			scores[p.RecordID] += bm25(termIDF, float64(p.TF), dl, avgLen, e.k1, e.b)
		}
	}

	results := make([]domain.ScoredRecord, 0, len(scores))
	for id, score := range scores {
		results = append(results, domain.ScoredRecord{
			Record: c.records[id].Clone(),
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
