// Package doclingcore is the lightweight processing tier: text extraction by
// file extension, followed by chunking. OCR and layout analysis belong to
// docling-full.
package doclingcore

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/docorchestrator/internal/chunker"
	"github.com/local/docorchestrator/internal/pdftext"
)

// Service extracts text from simple documents.
type Service struct {
	pdf     pdftext.Chain
	chunker *chunker.Chunker
}

// New creates a Service. A nil chain uses pdftext.Default().
func New(pdf pdftext.Chain, ch *chunker.Chunker) *Service {
	if pdf == nil {
		pdf = pdftext.Default()
	}
	if ch == nil {
		ch = chunker.New(chunker.Config{})
	}
	return &Service{pdf: pdf, chunker: ch}
}

type extractFunc func(s *Service, data []byte, res *Result) error

var extractors = map[string]extractFunc{
	".pdf":  (*Service).extractPDF,
	".docx": (*Service).extractDocx,
	".doc":  (*Service).extractDocx,
	".pptx": (*Service).extractPptx,
	".xlsx": (*Service).extractXlsx,
	".txt":  (*Service).extractText,
	".md":   (*Service).extractText,
	".csv":  (*Service).extractText,
}

// Process extracts and chunks data. Extraction failures are reported in the
// result with Success=false, never as a Go error.
func (s *Service) Process(data []byte, filename, documentID string) (res *Result) {
	start := time.Now()
	ext := strings.ToLower(filepath.Ext(filename))
	res = &Result{
		Metadata:          map[string]any{},
		DocumentID:        documentID,
		Filename:          filename,
		FileExtension:     ext,
		ProcessingService: ServiceName,
	}
	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.Error = fmt.Sprintf("core processing failed: %v", r)
		}
		res.ProcessingTime = time.Since(start).Seconds()
	}()

	extract, ok := extractors[ext]
	if !ok {
		// Unknown extensions are tried as plain text.
		extract = (*Service).extractText
	}

	if err := extract(s, data, res); err != nil {
		res.Success = false
		res.Error = err.Error()
		log.Warn().
			Err(err).
			Str("document_id", documentID).
			Str("filename", filename).
			Msg("core extraction failed")
		return res
	}

	res.Success = true
	res.Metadata["total_text_length"] = len([]rune(res.Text))
	res.Chunks = s.chunker.Split(res.Text)
	res.Metadata["total_chunks"] = len(res.Chunks)

	log.Info().
		Str("document_id", documentID).
		Str("filename", filename).
		Str("method", res.MethodUsed).
		Int("chunks", len(res.Chunks)).
		Msg("core extraction complete")
	return res
}
