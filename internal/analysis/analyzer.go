// Package analysis scores how hard a document is to process and recommends
// the processing tier that should handle it.
package analysis

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/docorchestrator/internal/filetype"
	"github.com/local/docorchestrator/internal/pdftext"
)

// Analyzer is safe for concurrent use; it holds no per-document state.
type Analyzer struct {
	detector   *filetype.Detector
	pdf        pdftext.Extractor
	thresholds Thresholds
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithPDFExtractor replaces the default MuPDF-then-pure-Go text extractor.
func WithPDFExtractor(e pdftext.Extractor) Option {
	return func(a *Analyzer) { a.pdf = e }
}

// WithThresholds overrides the heuristic's tunables.
func WithThresholds(t Thresholds) Option {
	return func(a *Analyzer) { a.thresholds = t }
}

// New creates an Analyzer with the default thresholds and extractor chain.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		detector:   filetype.New(),
		pdf:        pdftext.Default(),
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze inspects data and returns its analysis. It never fails: a
// sub-analyzer error or panic yields the conservative default for the
// detected type, with the cause recorded in Error.
func (a *Analyzer) Analyze(data []byte, filename string) DocumentAnalysis {
	start := time.Now()
	info := a.detector.DetectBytes(data, filename)
	if !info.Sniffed {
		log.Info().
			Str("filename", filename).
			Str("file_type", info.MIMEType).
			Str("extension", info.Extension).
			Msg("content sniffing inconclusive, type taken from filename")
	}

	result := DocumentAnalysis{
		Filename: filename,
		FileType: info.MIMEType,
	}

	var f findings
	var err error
	switch info.Kind {
	case filetype.KindPDF:
		f, err = a.safely("pdf", func() (findings, error) { return a.analyzePDF(data) })
		if err != nil {
			f = fallback(2, StepBasicPDFProcessing)
		}
	case filetype.KindImage:
		f, err = a.safely("image", func() (findings, error) { return a.analyzeImage(data) })
		if err != nil {
			f = fallback(3, StepOCRRequired)
		}
	case filetype.KindWordProcessing:
		f, err = a.safely("docx", func() (findings, error) { return a.analyzeDocx(data) })
		if err != nil {
			f = fallback(2, StepBasicDocxProcessing)
		}
	default:
		log.Debug().
			Err(ErrUnsupportedFormat).
			Str("filename", filename).
			Str("file_type", info.MIMEType).
			Msg("no dedicated analyzer, using generic text extraction")
		f = fallback(1, StepBasicTextExtraction)
	}

	if err != nil {
		result.Error = err.Error()
		log.Warn().
			Err(err).
			Str("filename", filename).
			Str("file_type", info.MIMEType).
			Msg("document analysis degraded to default")
	}

	result.IsScanned = f.scanned
	result.HasTables = f.tables
	result.HasImages = f.images
	result.ComplexityScore = f.score
	result.ProcessingSteps = append([]string{}, f.steps...)
	result.RecommendedService = a.thresholds.Recommend(f.score)

	log.Debug().
		Str("filename", filename).
		Str("file_type", result.FileType).
		Bool("sniffed", info.Sniffed).
		Int("score", result.ComplexityScore).
		Str("service", string(result.RecommendedService)).
		Dur("elapsed", time.Since(start)).
		Msg("document analyzed")

	return result
}

// safely runs a sub-analyzer, turning errors and panics into *DetectionError.
func (a *Analyzer) safely(name string, fn func() (findings, error)) (f findings, err error) {
	defer func() {
		if r := recover(); r != nil {
			f = findings{}
			err = &DetectionError{Analyzer: name, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	f, err = fn()
	if err != nil {
		return findings{}, &DetectionError{Analyzer: name, Cause: err}
	}
	return f, nil
}
