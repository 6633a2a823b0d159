package doclingcore

import "github.com/local/docorchestrator/internal/chunker"

// ServiceName identifies this tier in responses.
const ServiceName = "docling-core"

// Result is the docling-core response body.
type Result struct {
	Success           bool            `json:"success"`
	Error             string          `json:"error,omitempty"`
	Text              string          `json:"text"`
	Pages             []Page          `json:"pages,omitempty"`
	Paragraphs        []Paragraph     `json:"paragraphs,omitempty"`
	Tables            []Table         `json:"tables,omitempty"`
	Slides            []Slide         `json:"slides,omitempty"`
	Sheets            []Sheet         `json:"sheets,omitempty"`
	Chunks            []chunker.Chunk `json:"chunks,omitempty"`
	Metadata          map[string]any  `json:"metadata"`
	MethodUsed        string          `json:"method_used,omitempty"`
	DocumentID        string          `json:"document_id,omitempty"`
	Filename          string          `json:"filename"`
	FileExtension     string          `json:"file_extension"`
	ProcessingService string          `json:"processing_service"`
	ProcessingTime    float64         `json:"processing_time"`
}

type Page struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	CharCount  int    `json:"char_count"`
}

type Paragraph struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type Table struct {
	Index int        `json:"index"`
	Data  [][]string `json:"data"`
	Rows  int        `json:"rows"`
	Cols  int        `json:"cols"`
}

type Slide struct {
	SlideNumber int    `json:"slide_number"`
	Text        string `json:"text"`
	CharCount   int    `json:"char_count"`
}

type Sheet struct {
	Name string     `json:"name"`
	Rows int        `json:"rows"`
	Data [][]string `json:"data"`
}
