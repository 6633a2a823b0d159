package analysis

// Service names a downstream processing tier.
type Service string

const (
	ServiceCore Service = "docling-core"
	ServiceFull Service = "docling-full"
)

// Processing steps recorded in DocumentAnalysis.ProcessingSteps.
const (
	StepOCRRequired         = "ocr_required"
	StepTextExtraction      = "text_extraction"
	StepImageProcessing     = "image_processing"
	StepTableDetection      = "table_detection"
	StepHighResolution      = "high_resolution_processing"
	StepTableExtraction     = "table_extraction"
	StepLargeDocument       = "large_document_processing"
	StepBasicTextExtraction = "basic_text_extraction"
	StepBasicPDFProcessing  = "basic_pdf_processing"
	StepBasicDocxProcessing = "basic_docx_processing"
)

// DocumentAnalysis is the per-document result of complexity analysis. It is
// built fresh for every call and never mutated afterwards.
type DocumentAnalysis struct {
	Filename           string   `json:"filename"`
	FileType           string   `json:"file_type"`
	IsScanned          bool     `json:"is_scanned"`
	HasTables          bool     `json:"has_tables"`
	HasImages          bool     `json:"has_images"`
	ComplexityScore    int      `json:"complexity_score"`
	RecommendedService Service  `json:"recommended_service"`
	ProcessingSteps    []string `json:"processing_steps"`
	Error              string   `json:"error,omitempty"`
}

// findings accumulates the signals of one sub-analyzer. It is merged into the
// DocumentAnalysis only when the sub-analyzer completes.
type findings struct {
	scanned bool
	tables  bool
	images  bool
	score   int
	steps   []string
}

func (f *findings) add(points int, step string) {
	f.score += points
	f.steps = append(f.steps, step)
}

func fallback(points int, step string) findings {
	return findings{score: points, steps: []string{step}}
}
