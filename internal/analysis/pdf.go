package analysis

import (
	"strings"
	"unicode"

	"github.com/local/docorchestrator/internal/pdftext"
)

var tableKeywords = []string{"table", "figure", "chart", "graph"}

func (a *Analyzer) analyzePDF(data []byte) (findings, error) {
	pages, err := a.pdf.PageTexts(data, a.thresholds.SamplePages)
	if err != nil {
		return findings{}, err
	}
	text := pdftext.Join(pages)

	var f findings
	if visibleChars(text) < a.thresholds.ScannedTextChars {
		f.scanned = true
		f.add(3, StepOCRRequired)
	} else {
		f.add(1, StepTextExtraction)
	}

	// File size stands in for embedded images.
	if len(data) > a.thresholds.LargeFileBytes {
		f.images = true
		f.add(2, StepImageProcessing)
	}

	lower := strings.ToLower(text)
	for _, kw := range tableKeywords {
		if strings.Contains(lower, kw) {
			f.tables = true
			f.add(2, StepTableDetection)
			break
		}
	}
	return f, nil
}

// visibleChars counts runes that are not Unicode whitespace.
func visibleChars(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
