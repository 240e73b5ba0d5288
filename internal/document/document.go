// Package document extracts plain text from paginated documents.
package document

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnknownBackend is returned by Open when the requested backend does not exist.
var ErrUnknownBackend = errors.New("unknown document backend")

const (
	BackendFitz = "fitz"
	BackendPure = "pure"
)

// Backends lists the supported extraction backends, default first.
var Backends = []string{BackendFitz, BackendPure}

// PageSource is an open document whose pages can be read one by one.
// Pages are zero-indexed.
type PageSource interface {
	NumPage() int
	Text(n int) (string, error)
	Close() error
}

// Open opens path with the named backend. An empty backend selects fitz.
func Open(path, backend string) (PageSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat document: %w", err)
	}

	switch backend {
	case "", BackendFitz:
		return openFitz(path)
	case BackendPure:
		return openPure(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Extract returns the text of every page in order, each followed by a newline.
func Extract(src PageSource) (string, error) {
	text := &strings.Builder{}

	for n := 0; n < src.NumPage(); n++ {
		page, err := src.Text(n)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from page #%d: %w", n, err)
		}

		text.WriteString(page)
		text.WriteString("\n")
	}

	return text.String(), nil
}

// ReadFile opens, extracts and closes the document at path.
func ReadFile(path, backend string) (string, error) {
	src, err := Open(path, backend)
	if err != nil {
		return "", err
	}
	defer src.Close()

	return Extract(src)
}

// Reader adapts ReadFile to the pipeline's extractor interface.
type Reader struct {
	Backend string
}

func (r Reader) ReadText(path string) (string, error) {
	return ReadFile(path, r.Backend)
}
