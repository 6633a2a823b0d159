package analysis

import "github.com/local/docorchestrator/internal/ooxml"

func (a *Analyzer) analyzeDocx(data []byte) (findings, error) {
	doc, err := ooxml.ParseDocx(data)
	if err != nil {
		return findings{}, err
	}

	var f findings
	f.add(1, StepTextExtraction)
	if len(doc.Tables) > 0 {
		f.tables = true
		f.add(2, StepTableExtraction)
	}
	if len(doc.Paragraphs) > a.thresholds.LargeDocumentParagraphs {
		f.add(1, StepLargeDocument)
	}
	return f, nil
}
