package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"faqbot/internal/domain"
	"faqbot/internal/port"
)

// JSONLoader reads corpus files holding a JSON array of flat record
// objects. It performs no backend interaction.
type JSONLoader struct{}

var _ port.CorpusLoader = (*JSONLoader)(nil)

func NewJSONLoader() *JSONLoader {
	return &JSONLoader{}
}

// Load parses one corpus file into records.
func (l *JSONLoader) Load(source string) ([]domain.Record, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, source)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceNotFound, source, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedSource, source, err)
	}

	records := make([]domain.Record, 0, len(raw))
	for i, obj := range raw {
		rec := make(domain.Record, len(obj))
		for k, v := range obj {
			switch tv := v.(type) {
			case string:
				rec[k] = tv
			case json.Number:
				rec[k] = tv.String()
			case bool:
				rec[k] = fmt.Sprint(tv)
			case nil:
				// Omitted field, keep the record flat.
			default:
				return nil, fmt.Errorf("%w: %s: record %d field %q is not a flat value",
					domain.ErrMalformedSource, source, i, k)
			}
		}
		if rec.Message() == "" {
			return nil, fmt.Errorf("%w: %s: record %d has no message field",
				domain.ErrMalformedSource, source, i)
		}
		records = append(records, rec)
	}

	return records, nil
}

// LoadGlob loads every corpus file matching the doublestar pattern and
// merges the records in path order. A pattern matching nothing is treated
// as a missing source.
func (l *JSONLoader) LoadGlob(pattern string) ([]domain.Record, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: bad pattern %s: %v", domain.ErrSourceNotFound, pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no files match %s", domain.ErrSourceNotFound, pattern)
	}
	sort.Strings(matches)

	var records []domain.Record
	for _, path := range matches {
		recs, err := l.Load(path)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}
