package analysis

// Thresholds holds every tunable of the complexity heuristic.
type Thresholds struct {
	// PDF
	SamplePages      int
	ScannedTextChars int
	LargeFileBytes   int

	// Images
	MaxImagePixels       int
	HighResolutionPixels int
	TableLineSegments    int
	CannyLow             float64
	CannyHigh            float64
	HoughVotes           int
	HoughMinLineLength   int
	HoughMaxLineGap      int

	// Word processing
	LargeDocumentParagraphs int

	// Routing
	FullServiceScore int
}

// DefaultThresholds returns the production heuristic.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SamplePages:             3,
		ScannedTextChars:        100,
		LargeFileBytes:          5 * 1024 * 1024,
		MaxImagePixels:          16_000_000,
		HighResolutionPixels:    2000,
		TableLineSegments:       20,
		CannyLow:                50,
		CannyHigh:               150,
		HoughVotes:              100,
		HoughMinLineLength:      100,
		HoughMaxLineGap:         10,
		LargeDocumentParagraphs: 50,
		FullServiceScore:        7,
	}
}

// Recommend maps a score onto a service. It is the only routing rule.
func (t Thresholds) Recommend(score int) Service {
	if score >= t.FullServiceScore {
		return ServiceFull
	}
	return ServiceCore
}
