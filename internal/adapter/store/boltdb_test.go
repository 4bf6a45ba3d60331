package store

import (
	"path/filepath"
	"testing"

	"faqbot/internal/domain"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	st, err := NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCreateCollection(t *testing.T) {
	st := newTestStore(t)

	exists, err := st.CollectionExists("faq")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("collection should not exist yet")
	}

	if err := st.CreateCollection("faq"); err != nil {
		t.Fatal(err)
	}

	exists, err = st.CollectionExists("faq")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("collection should exist after create")
	}

	// Creating again must not fail.
	if err := st.CreateCollection("faq"); err != nil {
		t.Errorf("second create failed: %v", err)
	}
}

func TestBatchIndex(t *testing.T) {
	st := newTestStore(t)
	if err := st.CreateCollection("faq"); err != nil {
		t.Fatal(err)
	}

	records := []IndexedRecord{
		{
			ID:       "r1",
			Record:   domain.Record{"id": "r1", "message": "reset password", "answer": "Go to settings."},
			Postings: map[string]int{"reset": 1, "password": 1},
		},
		{
			ID:       "r2",
			Record:   domain.Record{"id": "r2", "message": "opening hours today", "answer": "9 to 5."},
			Postings: map[string]int{"opening": 1, "hour": 1, "today": 1},
		},
	}

	count, err := st.BatchIndex("faq", records)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 indexed, got %d", count)
	}

	rec, length, err := st.GetRecord("faq", "r1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Answer() != "Go to settings." {
		t.Errorf("unexpected answer: %q", rec.Answer())
	}
	if length != 2 {
		t.Errorf("expected length 2, got %d", length)
	}

	postings, err := st.GetPostings("faq", "password")
	if err != nil {
		t.Fatal(err)
	}
	if len(postings) != 1 || postings[0].RecordID != "r1" || postings[0].TF != 1 {
		t.Errorf("unexpected postings: %+v", postings)
	}

	stats, err := st.GetStats("faq")
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRecords != 2 {
		t.Errorf("expected 2 records in stats, got %d", stats.TotalRecords)
	}
	if stats.TotalTerms != 5 {
		t.Errorf("expected 5 distinct terms, got %d", stats.TotalTerms)
	}
	if stats.AvgRecordLen != 2.5 {
		t.Errorf("expected avg length 2.5, got %f", stats.AvgRecordLen)
	}
}

func TestBatchIndex_ReindexReplacesPostings(t *testing.T) {
	st := newTestStore(t)
	if err := st.CreateCollection("faq"); err != nil {
		t.Fatal(err)
	}

	first := []IndexedRecord{{
		ID:       "r1",
		Record:   domain.Record{"id": "r1", "message": "reset password", "answer": "Go to settings."},
		Postings: map[string]int{"reset": 1, "password": 1},
	}}
	if _, err := st.BatchIndex("faq", first); err != nil {
		t.Fatal(err)
	}

	second := []IndexedRecord{{
		ID:       "r1",
		Record:   domain.Record{"id": "r1", "message": "password password token", "answer": "Go to settings."},
		Postings: map[string]int{"password": 2, "token": 1},
	}}
	if _, err := st.BatchIndex("faq", second); err != nil {
		t.Fatal(err)
	}

	// The record was replaced, so its old postings must be gone: one entry
	// for "password" with the new frequency, none at all for "reset".
	postings, err := st.GetPostings("faq", "password")
	if err != nil {
		t.Fatal(err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting for re-indexed record, got %+v", postings)
	}
	if postings[0].RecordID != "r1" || postings[0].TF != 2 {
		t.Errorf("unexpected posting: %+v", postings[0])
	}

	postings, err = st.GetPostings("faq", "reset")
	if err != nil {
		t.Fatal(err)
	}
	if postings != nil {
		t.Errorf("expected dropped term to vanish, got %+v", postings)
	}

	stats, err := st.GetStats("faq")
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRecords != 1 {
		t.Errorf("expected 1 record in stats, got %d", stats.TotalRecords)
	}
	if stats.TotalTerms != 2 {
		t.Errorf("expected 2 distinct terms, got %d", stats.TotalTerms)
	}
	if stats.AvgRecordLen != 3 {
		t.Errorf("expected avg length 3, got %f", stats.AvgRecordLen)
	}
}

func TestBatchIndex_Empty(t *testing.T) {
	st := newTestStore(t)
	if err := st.CreateCollection("faq"); err != nil {
		t.Fatal(err)
	}

	count, err := st.BatchIndex("faq", nil)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected 0 indexed, got %d", count)
	}
}

func TestBatchIndex_MissingCollection(t *testing.T) {
	st := newTestStore(t)

	_, err := st.BatchIndex("ghost", []IndexedRecord{
		{ID: "r1", Record: domain.Record{"message": "hi"}, Postings: map[string]int{"hi": 1}},
	})
	if err == nil {
		t.Error("expected error for missing collection")
	}
}

func TestGetPostings_UnknownTerm(t *testing.T) {
	st := newTestStore(t)
	if err := st.CreateCollection("faq"); err != nil {
		t.Fatal(err)
	}

	postings, err := st.GetPostings("faq", "unseen")
	if err != nil {
		t.Fatal(err)
	}
	if postings != nil {
		t.Errorf("expected nil postings, got %+v", postings)
	}
}
