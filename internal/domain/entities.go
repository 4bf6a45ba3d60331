package domain

// Field names every corpus record is expected to carry. Anything else in a
// record passes through untouched.
const (
	FieldID      = "id"
	FieldMessage = "message"
	FieldAnswer  = "answer"
)

// FallbackAnswer is rendered when a record has no answer field.
const FallbackAnswer = "Not available"

// Record is one question/answer document unit: a flat string-keyed mapping
// with at least a message (the indexed prompt) and usually an answer.
type Record map[string]string

// ID returns the record identity, empty when the corpus did not assign one.
func (r Record) ID() string {
	return r[FieldID]
}

// Message returns the indexed prompt text.
func (r Record) Message() string {
	return r[FieldMessage]
}

// Answer returns the response text, or FallbackAnswer when the record
// carries none.
func (r Record) Answer() string {
	if a, ok := r[FieldAnswer]; ok && a != "" {
		return a
	}
	return FallbackAnswer
}

// Clone returns a shallow copy so stored records are not aliased by callers.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ScoredRecord is a search hit: the record plus the backend's relevance
// score. Results are ordered by descending score.
type ScoredRecord struct {
	Record Record
	Score  float64
}

// Posting is one inverted-index entry for the embedded engines.
type Posting struct {
	RecordID string `json:"record_id"`
	TF       int    `json:"tf"`
}

// Stats describes one collection of the embedded engines.
type Stats struct {
	TotalRecords int     `json:"total_records"`
	TotalTerms   int     `json:"total_terms"`
	AvgRecordLen float64 `json:"avg_record_len"`
}
