package port

// Tokenizer turns a line of text into normalized terms.
type Tokenizer interface {
	Tokenize(text string) []string
}
