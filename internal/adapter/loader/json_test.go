package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"faqbot/internal/domain"
)

func writeCorpus(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeCorpus(t, t.TempDir(), "corpus.json", `[
		{"message": "How to reset password?", "answer": "Go to settings.", "topic": "account"},
		{"message": "What are the opening hours?", "answer": "9 to 5."}
	]`)

	records, err := NewJSONLoader().Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Message() != "How to reset password?" {
		t.Errorf("unexpected message: %q", records[0].Message())
	}
	if records[0].Answer() != "Go to settings." {
		t.Errorf("unexpected answer: %q", records[0].Answer())
	}
	// Extra fields pass through opaquely.
	if records[0]["topic"] != "account" {
		t.Errorf("expected topic passthrough, got %q", records[0]["topic"])
	}
}

func TestLoad_MissingAnswer(t *testing.T) {
	path := writeCorpus(t, t.TempDir(), "corpus.json",
		`[{"message": "Is anyone there?"}]`)

	records, err := NewJSONLoader().Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Answer() != domain.FallbackAnswer {
		t.Errorf("expected fallback answer %q, got %q", domain.FallbackAnswer, records[0].Answer())
	}
}

func TestLoad_NumericField(t *testing.T) {
	path := writeCorpus(t, t.TempDir(), "corpus.json",
		`[{"message": "What is the answer?", "answer": "42", "priority": 3}]`)

	records, err := NewJSONLoader().Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records[0]["priority"] != "3" {
		t.Errorf("expected numeric field stringified, got %q", records[0]["priority"])
	}
}

func TestLoad_SourceNotFound(t *testing.T) {
	_, err := NewJSONLoader().Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, domain.ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeCorpus(t, t.TempDir(), "corpus.json", `{"not": "an array"`)

	_, err := NewJSONLoader().Load(path)
	if !errors.Is(err, domain.ErrMalformedSource) {
		t.Errorf("expected ErrMalformedSource, got %v", err)
	}
}

func TestLoad_NestedField(t *testing.T) {
	path := writeCorpus(t, t.TempDir(), "corpus.json",
		`[{"message": "hello", "meta": {"nested": true}}]`)

	_, err := NewJSONLoader().Load(path)
	if !errors.Is(err, domain.ErrMalformedSource) {
		t.Errorf("expected ErrMalformedSource for nested field, got %v", err)
	}
}

func TestLoad_MissingMessage(t *testing.T) {
	path := writeCorpus(t, t.TempDir(), "corpus.json",
		`[{"answer": "an orphan answer"}]`)

	_, err := NewJSONLoader().Load(path)
	if !errors.Is(err, domain.ErrMalformedSource) {
		t.Errorf("expected ErrMalformedSource for missing message, got %v", err)
	}
}

func TestLoadGlob(t *testing.T) {
	dir := t.TempDir()
	writeCorpus(t, dir, "a.json", `[{"message": "first", "answer": "1"}]`)
	writeCorpus(t, dir, "b.json", `[{"message": "second", "answer": "2"}]`)

	records, err := NewJSONLoader().LoadGlob(filepath.Join(dir, "*.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestLoadGlob_NoMatch(t *testing.T) {
	_, err := NewJSONLoader().LoadGlob(filepath.Join(t.TempDir(), "*.json"))
	if !errors.Is(err, domain.ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
}
