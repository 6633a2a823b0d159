// Package pdftext pulls plain text out of in-memory PDF documents. Extractors
// are tried cheapest first; MuPDF (go-fitz) when the native library is
// present, then the pure-Go reader.
package pdftext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Extractor returns the text of the first maxPages pages of a PDF, or of every
// page when maxPages <= 0.
type Extractor interface {
	Name() string
	PageTexts(data []byte, maxPages int) ([]string, error)
}

// Result is the output of a Chain extraction.
type Result struct {
	Pages      []string
	TotalPages int
	Method     string
}

// Text joins all extracted pages.
func (r Result) Text() string { return Join(r.Pages) }

// ErrNoExtractor is returned by an empty Chain.
var ErrNoExtractor = errors.New("no pdf text extractor configured")

// Chain tries each extractor in order and returns the first success.
type Chain []Extractor

// Default returns the MuPDF-then-pure-Go chain.
func Default() Chain {
	return Chain{NewFitzExtractor(), NewPlainExtractor()}
}

func (c Chain) Name() string {
	names := make([]string, 0, len(c))
	for _, e := range c {
		names = append(names, e.Name())
	}
	return strings.Join(names, ",")
}

// PageTexts satisfies Extractor so a Chain can stand in for a single extractor.
func (c Chain) PageTexts(data []byte, maxPages int) ([]string, error) {
	res, err := c.Extract(data, maxPages)
	if err != nil {
		return nil, err
	}
	return res.Pages, nil
}

// Extract runs the chain and reports which extractor produced the text.
func (c Chain) Extract(data []byte, maxPages int) (Result, error) {
	if len(c) == 0 {
		return Result{}, ErrNoExtractor
	}
	var errs []error
	for _, e := range c {
		pages, err := e.PageTexts(data, maxPages)
		if err != nil {
			log.Debug().Err(err).Str("extractor", e.Name()).Msg("pdf text extraction failed, trying next")
			errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
			continue
		}
		res := Result{Pages: pages, TotalPages: len(pages), Method: e.Name()}
		if pc, ok := e.(PageCounter); ok {
			if n, err := pc.PageCount(data); err == nil {
				res.TotalPages = n
			}
		}
		return res, nil
	}
	return Result{}, errors.Join(errs...)
}

// PageCounter is implemented by extractors that can report the page count
// without extracting text.
type PageCounter interface {
	PageCount(data []byte) (int, error)
}

// Join concatenates page texts the same way for every extractor.
func Join(pages []string) string {
	return strings.Join(pages, "\n")
}

func pageLimit(total, maxPages int) int {
	if maxPages <= 0 || maxPages > total {
		return total
	}
	return maxPages
}
