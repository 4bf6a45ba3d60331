package port

import "faqbot/internal/domain"

// CorpusLoader turns an external source into validated records. It performs
// no backend interaction.
type CorpusLoader interface {
	Load(source string) ([]domain.Record, error)
}
