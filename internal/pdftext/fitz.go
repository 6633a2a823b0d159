package pdftext

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// FitzExtractor uses go-fitz (MuPDF) for PDF text extraction
type FitzExtractor struct{}

// NewFitzExtractor creates a new go-fitz based extractor
func NewFitzExtractor() *FitzExtractor {
	return &FitzExtractor{}
}

func (g *FitzExtractor) Name() string { return "mupdf" }

// PageCount returns the number of pages in a PDF using go-fitz
func (g *FitzExtractor) PageCount(data []byte) (int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	return doc.NumPage(), nil
}

// PageTexts extracts the text of the leading pages. go-fitz uses 0-based indexing.
func (g *FitzExtractor) PageTexts(data []byte, maxPages int) ([]string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	n := pageLimit(doc.NumPage(), maxPages)
	pages := make([]string, 0, n)
	for i := 0; i < n; i++ {
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i+1, err)
		}
		pages = append(pages, text)
	}

	log.Debug().Int("pages", n).Int("total", doc.NumPage()).Msg("extracted pdf text with go-fitz")
	return pages, nil
}
