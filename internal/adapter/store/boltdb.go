package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"faqbot/internal/domain"
)

var (
	bucketCollections = []byte("collections")
	bucketRecords     = []byte("records")
	bucketTerms       = []byte("terms")
	bucketMeta        = []byte("meta")
	keyStats          = []byte("stats")
)

// BoltStore persists collections of records and their inverted index in a
// single bbolt file. Each collection is a nested bucket holding records,
// term postings and stats.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCollections)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// DB exposes the underlying handle for callers that manage transactions
// themselves.
func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// recordMeta is the stored envelope around a record: its fields, the
// analyzed length of its message (needed for length normalization at query
// time), and its distinct terms (needed to scrub stale postings when the
// record is re-indexed).
type recordMeta struct {
	Fields map[string]string `json:"fields"`
	Length int               `json:"length"`
	Terms  []string          `json:"terms"`
}

// IndexedRecord is one record prepared for indexing: the record itself plus
// its term frequencies.
type IndexedRecord struct {
	ID       string
	Record   domain.Record
	Postings map[string]int
}

// CollectionExists reports whether the named collection bucket exists.
func (s *BoltStore) CollectionExists(name string) (bool, error) {
	var exists bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(bucketCollections).Bucket([]byte(name)) != nil
		return nil
	})
	return exists, err
}

// CreateCollection creates the named collection and its sub-buckets. Safe to
// call when the collection already exists.
func (s *BoltStore) CreateCollection(name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		c, err := tx.Bucket(bucketCollections).CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
		for _, b := range [][]byte{bucketRecords, bucketTerms, bucketMeta} {
			if _, err := c.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
}

func collection(tx *bbolt.Tx, name string) (*bbolt.Bucket, error) {
	c := tx.Bucket(bucketCollections).Bucket([]byte(name))
	if c == nil {
		return nil, fmt.Errorf("collection not found: %s", name)
	}
	return c, nil
}

// BatchIndex writes all records, merges their postings and refreshes stats
// in a single transaction. Re-indexing an existing id replaces the record:
// its previous postings leave the term lists before the new ones are merged
// in. Returns the number of records written.
func (s *BoltStore) BatchIndex(name string, records []IndexedRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	count := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		c, err := collection(tx, name)
		if err != nil {
			return err
		}
		recordBucket := c.Bucket(bucketRecords)
		termBucket := c.Bucket(bucketTerms)

		// Every term list that gains new postings or held postings of a
		// re-indexed record gets rewritten below.
		incoming := make(map[string]struct{}, len(records))
		touched := make(map[string]struct{})
		for _, rec := range records {
			incoming[rec.ID] = struct{}{}
			if data := recordBucket.Get([]byte(rec.ID)); data != nil {
				var old recordMeta
				if err := json.Unmarshal(data, &old); err != nil {
					return err
				}
				for _, term := range old.Terms {
					touched[term] = struct{}{}
				}
			}
		}

		merged := make(map[string][]domain.Posting)

		for _, rec := range records {
			length := 0
			terms := make([]string, 0, len(rec.Postings))
			for term, tf := range rec.Postings {
				length += tf
				terms = append(terms, term)
			}
			sort.Strings(terms)

			meta := recordMeta{
				Fields: rec.Record,
				Length: length,
				Terms:  terms,
			}
			data, err := json.Marshal(meta)
			if err != nil {
				return err
			}
			if err := recordBucket.Put([]byte(rec.ID), data); err != nil {
				return err
			}

			for term, tf := range rec.Postings {
				merged[term] = append(merged[term], domain.Posting{
					RecordID: rec.ID,
					TF:       tf,
				})
				touched[term] = struct{}{}
			}
			count++
		}

		for term := range touched {
			var existing []domain.Posting
			if data := termBucket.Get([]byte(term)); data != nil {
				json.Unmarshal(data, &existing)
			}

			kept := make([]domain.Posting, 0, len(existing)+len(merged[term]))
			for _, p := range existing {
				if _, replaced := incoming[p.RecordID]; !replaced {
					kept = append(kept, p)
				}
			}
			kept = append(kept, merged[term]...)

			if len(kept) == 0 {
				if err := termBucket.Delete([]byte(term)); err != nil {
					return err
				}
				continue
			}
			data, err := json.Marshal(kept)
			if err != nil {
				return err
			}
			if err := termBucket.Put([]byte(term), data); err != nil {
				return err
			}
		}

		return refreshStats(c)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// refreshStats recomputes collection stats from the stored records. Runs
// inside the indexing transaction so stats never drift from the data.
func refreshStats(c *bbolt.Bucket) error {
	totalRecords := 0
	totalLen := 0
	err := c.Bucket(bucketRecords).ForEach(func(k, v []byte) error {
		var meta recordMeta
		if err := json.Unmarshal(v, &meta); err != nil {
			return err
		}
		totalRecords++
		totalLen += meta.Length
		return nil
	})
	if err != nil {
		return err
	}

	totalTerms := 0
	err = c.Bucket(bucketTerms).ForEach(func(k, v []byte) error {
		totalTerms++
		return nil
	})
	if err != nil {
		return err
	}

	stats := domain.Stats{
		TotalRecords: totalRecords,
		TotalTerms:   totalTerms,
	}
	if totalRecords > 0 {
		stats.AvgRecordLen = float64(totalLen) / float64(totalRecords)
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.Bucket(bucketMeta).Put(keyStats, data)
}

// GetRecord returns one record with its analyzed length.
func (s *BoltStore) GetRecord(name, id string) (domain.Record, int, error) {
	var rec domain.Record
	var length int
	err := s.db.View(func(tx *bbolt.Tx) error {
		c, err := collection(tx, name)
		if err != nil {
			return err
		}
		data := c.Bucket(bucketRecords).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("record not found: %s", id)
		}
		var meta recordMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		rec = meta.Fields
		length = meta.Length
		return nil
	})
	return rec, length, err
}

// GetPostings returns the postings list for a term, nil when the term is
// unknown.
func (s *BoltStore) GetPostings(name, term string) ([]domain.Posting, error) {
	var postings []domain.Posting
	err := s.db.View(func(tx *bbolt.Tx) error {
		c, err := collection(tx, name)
		if err != nil {
			return err
		}
		data := c.Bucket(bucketTerms).Get([]byte(term))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &postings)
	})
	return postings, err
}

// GetStats returns the collection stats.
func (s *BoltStore) GetStats(name string) (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		c, err := collection(tx, name)
		if err != nil {
			return err
		}
		data := c.Bucket(bucketMeta).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}
