package pdftext

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PlainExtractor is the pure-Go fallback built on ledongthuc/pdf. It needs no
// native library but only understands simple font encodings.
type PlainExtractor struct{}

func NewPlainExtractor() *PlainExtractor { return &PlainExtractor{} }

func (p *PlainExtractor) Name() string { return "ledongthuc" }

func (p *PlainExtractor) PageCount(data []byte) (n int, err error) {
	defer recoverInto(&err)
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	return r.NumPage(), nil
}

// PageTexts reads pages 1..maxPages. The reader panics on some malformed
// inputs; those are converted to errors.
func (p *PlainExtractor) PageTexts(data []byte, maxPages int) (pages []string, err error) {
	defer recoverInto(&err)
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	n := pageLimit(r.NumPage(), maxPages)
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("pdf reader panic: %v", r)
	}
}
