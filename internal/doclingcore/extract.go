package doclingcore

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/local/docorchestrator/internal/ooxml"
)

func (s *Service) extractPDF(data []byte, res *Result) error {
	out, err := s.pdf.Extract(data, 0)
	if err != nil {
		return fmt.Errorf("pdf text extraction failed: %w", err)
	}

	for i, p := range out.Pages {
		res.Pages = append(res.Pages, Page{PageNumber: i + 1, Text: p, CharCount: utf8.RuneCountInString(p)})
	}
	res.Text = out.Text()
	res.MethodUsed = out.Method
	res.Metadata["total_pages"] = pageCount(data, out.TotalPages)
	return nil
}

// pageCount prefers pdfcpu's count, which reads the page tree rather than
// relying on what the text extractor managed to open.
func pageCount(data []byte, fallback int) int {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		log.Debug().Err(err).Msg("pdfcpu page count failed, using extractor count")
		return fallback
	}
	return n
}

func (s *Service) extractDocx(data []byte, res *Result) error {
	doc, err := ooxml.ParseDocx(data)
	if err != nil {
		return fmt.Errorf("docx text extraction failed: %w", err)
	}

	for i, p := range doc.Paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		res.Paragraphs = append(res.Paragraphs, Paragraph{Index: i, Text: p})
	}
	for i, t := range doc.Tables {
		data := make([][]string, len(t.Rows))
		for r, row := range t.Rows {
			data[r] = make([]string, len(row))
			for c, cell := range row {
				data[r][c] = strings.TrimSpace(cell)
			}
		}
		cols := 0
		if len(data) > 0 {
			cols = len(data[0])
		}
		res.Tables = append(res.Tables, Table{Index: i, Data: data, Rows: len(data), Cols: cols})
	}

	res.Text = doc.Text()
	res.MethodUsed = "ooxml"
	res.Metadata["total_paragraphs"] = len(res.Paragraphs)
	res.Metadata["total_tables"] = len(res.Tables)
	return nil
}

func (s *Service) extractPptx(data []byte, res *Result) error {
	slides, err := ooxml.ParsePptx(data)
	if err != nil {
		return fmt.Errorf("pptx text extraction failed: %w", err)
	}

	var text strings.Builder
	for i, sl := range slides {
		t := sl.Text
		if t != "" {
			t += "\n"
		}
		res.Slides = append(res.Slides, Slide{SlideNumber: i + 1, Text: t, CharCount: utf8.RuneCountInString(t)})
		text.WriteString(t)
		text.WriteByte('\n')
	}
	res.Text = text.String()
	res.MethodUsed = "ooxml"
	res.Metadata["total_slides"] = len(slides)
	return nil
}

func (s *Service) extractXlsx(data []byte, res *Result) error {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("xlsx open failed: %w", err)
	}
	defer f.Close()

	var text strings.Builder
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return fmt.Errorf("xlsx sheet %q: %w", name, err)
		}
		res.Sheets = append(res.Sheets, Sheet{Name: name, Rows: len(rows), Data: rows})

		text.WriteString("## " + name + "\n")
		for _, row := range rows {
			text.WriteString(strings.Join(row, "\t"))
			text.WriteByte('\n')
		}
		text.WriteByte('\n')
	}
	res.Text = text.String()
	res.MethodUsed = "excelize"
	res.Metadata["total_sheets"] = len(res.Sheets)
	return nil
}

// extractText decodes UTF-8, falling back to Latin-1, which accepts any byte
// sequence.
func (s *Service) extractText(data []byte, res *Result) error {
	if utf8.Valid(data) {
		res.Text = string(data)
		res.Metadata["encoding"] = "utf-8"
	} else {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return fmt.Errorf("text decoding failed: %w", err)
		}
		res.Text = string(decoded)
		res.Metadata["encoding"] = "latin-1"
	}
	res.MethodUsed = "text"
	return nil
}
