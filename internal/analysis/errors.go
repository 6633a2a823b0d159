package analysis

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat marks content with no dedicated sub-analyzer.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrImageTooLarge is returned before decoding an image whose header declares
// more pixels than Thresholds.MaxImagePixels.
var ErrImageTooLarge = errors.New("image too large")

// DetectionError wraps a sub-analyzer failure. Analyze never returns it; the
// message is carried in DocumentAnalysis.Error after the conservative default
// has been applied.
type DetectionError struct {
	Analyzer string
	Cause    error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("%s analysis failed: %v", e.Analyzer, e.Cause)
}

func (e *DetectionError) Unwrap() error { return e.Cause }
