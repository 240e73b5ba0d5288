package document

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

type fitzSource struct {
	doc *fitz.Document
}

func openFitz(path string) (PageSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	return &fitzSource{doc: doc}, nil
}

func (s *fitzSource) NumPage() int {
	return s.doc.NumPage()
}

func (s *fitzSource) Text(n int) (string, error) {
	return s.doc.Text(n)
}

func (s *fitzSource) Close() error {
	return s.doc.Close()
}
