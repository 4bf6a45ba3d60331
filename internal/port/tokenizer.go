package port

// Tokenizer splits free text into index terms.
type Tokenizer interface {
	Tokenize(text string) []string
}
