package fs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"search/internal/domain"
	"search/internal/port"
)

// Loader reads text files into documents.
type Loader struct {
	tokenizer port.Tokenizer
}

func NewLoader(tokenizer port.Tokenizer) *Loader {
	return &Loader{tokenizer: tokenizer}
}

// LoadDocument reads path line by line and returns its terms in order. The
// document location is path unchanged.
func (l *Loader) LoadDocument(path string) (domain.Document, error) {
	doc := domain.Document{Location: path}

	err := ReadLines(path, func(line string) {
		doc.Terms = append(doc.Terms, l.tokenizer.Tokenize(line)...)
	})
	if err != nil {
		return domain.Document{}, err
	}

	return doc, nil
}

// ReadLines calls fn for every line of the file at path, including a final
// line without a trailing newline. Lines have no length limit.
func ReadLines(path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := EachLine(f, fn); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// EachLine calls fn for every line read from r with the line terminator
// ("\n" or "\r\n") removed.
func EachLine(r io.Reader, fn func(line string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			fn(strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
