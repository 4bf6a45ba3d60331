package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	"faqbot/internal/domain"
)

// ElasticBackend talks to an external Elasticsearch cluster. Indexing,
// tokenization and relevance scoring are fully delegated; this adapter only
// shapes requests and validates responses.
type ElasticBackend struct {
	client *elasticsearch.Client
}

// NewElasticBackend creates a client for the given node addresses.
func NewElasticBackend(addresses []string) (*ElasticBackend, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	return &ElasticBackend{client: client}, nil
}

// Close is a no-op; the elasticsearch client holds no dedicated connection.
func (e *ElasticBackend) Close() error {
	return nil
}

func (e *ElasticBackend) CollectionExists(ctx context.Context, name string) (bool, error) {
	res, err := e.client.Indices.Exists(
		[]string{name},
		e.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("%w: exists %s: %v", domain.ErrBackendUnavailable, name, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	default:
		return false, fmt.Errorf("%w: exists %s: status %d", domain.ErrBackend, name, res.StatusCode)
	}
}

func (e *ElasticBackend) CreateCollection(ctx context.Context, name string) error {
	res, err := e.client.Indices.Create(
		name,
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrBackendUnavailable, name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: create %s: status %d", domain.ErrBackend, name, res.StatusCode)
	}
	return nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
	} `json:"items"`
}

// BulkIndex submits all records in one _bulk request. Per-record failures
// are counted from the item statuses so partial success is still reported.
func (e *ElasticBackend) BulkIndex(ctx context.Context, name string, records []domain.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	for _, rec := range records {
		id := rec.ID()
		if id == "" {
			id = uuid.NewString()
		}
		action := map[string]map[string]string{
			"index": {"_index": name, "_id": id},
		}
		meta, err := json.Marshal(action)
		if err != nil {
			return 0, fmt.Errorf("%w: encode bulk action: %v", domain.ErrBackend, err)
		}
		src, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("%w: encode record %s: %v", domain.ErrBackend, id, err)
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(src)
		buf.WriteByte('\n')
	}

	res, err := e.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithContext(ctx),
		e.client.Bulk.WithIndex(name),
		e.client.Bulk.WithRefresh("wait_for"),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: bulk into %s: %v", domain.ErrBackend, name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("%w: bulk into %s: status %d", domain.ErrBackend, name, res.StatusCode)
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("%w: bulk response: %v", domain.ErrMalformedResponse, err)
	}

	count := 0
	for _, item := range parsed.Items {
		for _, op := range item {
			if op.Status >= 200 && op.Status < 300 {
				count++
			}
		}
	}

	if parsed.Errors {
		return count, fmt.Errorf("%w: bulk into %s: %d of %d records rejected",
			domain.ErrBackend, name, len(records)-count, len(records))
	}
	return count, nil
}

type searchResponse struct {
	Hits *struct {
		Hits []struct {
			ID     string                 `json:"_id"`
			Score  *float64               `json:"_score"`
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search issues a single match query against the message field.
func (e *ElasticBackend) Search(ctx context.Context, name, query string, k int) ([]domain.ScoredRecord, error) {
	body := map[string]interface{}{
		"size": k,
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				domain.FieldMessage: query,
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("%w: encode query: %v", domain.ErrBackend, err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(name),
		e.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %v", domain.ErrBackend, name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: search %s: status %d", domain.ErrBackend, name, res.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: search response: %v", domain.ErrMalformedResponse, err)
	}
	if parsed.Hits == nil {
		return nil, fmt.Errorf("%w: search response missing hits", domain.ErrMalformedResponse)
	}

	results := make([]domain.ScoredRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		if hit.Source == nil {
			return nil, fmt.Errorf("%w: hit %s missing source", domain.ErrMalformedResponse, hit.ID)
		}
		rec := make(domain.Record, len(hit.Source)+1)
		for field, v := range hit.Source {
			switch tv := v.(type) {
			case string:
				rec[field] = tv
			default:
				rec[field] = fmt.Sprint(tv)
			}
		}
		if rec.ID() == "" {
			rec[domain.FieldID] = hit.ID
		}

		score := 0.0
		if hit.Score != nil {
			score = *hit.Score
		}
		results = append(results, domain.ScoredRecord{Record: rec, Score: score})
	}

	return results, nil
}
