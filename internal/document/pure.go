package document

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// pureSource reads the text layer without cgo. Fonts are shared across pages
// so each one is decoded once.
type pureSource struct {
	file   *os.File
	reader *pdf.Reader
	fonts  map[string]*pdf.Font
}

func openPure(path string) (PageSource, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	return &pureSource{
		file:   file,
		reader: reader,
		fonts:  map[string]*pdf.Font{},
	}, nil
}

func (s *pureSource) NumPage() int {
	return s.reader.NumPage()
}

func (s *pureSource) Text(n int) (string, error) {
	// ledongthuc/pdf pages are one-indexed
	page := s.reader.Page(n + 1)
	if page.V.IsNull() {
		return "", nil
	}

	for _, name := range page.Fonts() {
		if _, ok := s.fonts[name]; !ok {
			font := page.Font(name)
			s.fonts[name] = &font
		}
	}

	return page.GetPlainText(s.fonts)
}

func (s *pureSource) Close() error {
	return s.file.Close()
}
