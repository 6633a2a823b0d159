package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Document is the body-level structure of a word-processing document.
// Paragraphs and tables nested inside tables, text boxes or headers are not
// counted as body elements.
type Document struct {
	Paragraphs []string
	Tables     []Table
}

// Table holds the cell text of one body-level table, row by row.
type Table struct {
	Rows [][]string
}

// Text returns the trimmed non-empty paragraphs joined by newlines.
func (d *Document) Text() string {
	var b strings.Builder
	for _, p := range d.Paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p)
	}
	return b.String()
}

// ParseDocx reads word/document.xml from a DOCX package.
func ParseDocx(data []byte) (*Document, error) {
	zr, err := openPackage(data)
	if err != nil {
		return nil, err
	}
	part, err := findPart(zr, "word/document.xml")
	if err != nil {
		return nil, err
	}
	body, err := readPart(part)
	if err != nil {
		return nil, err
	}
	return parseDocumentXML(body)
}

func parseDocumentXML(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	doc := &Document{}

	var (
		stack     []string
		para      *strings.Builder
		tblDepth  int
		table     *Table
		row       []string
		cell      *strings.Builder
		cellParas int
		inText    bool
	)
	write := func(s string) {
		switch {
		case para != nil:
			para.WriteString(s)
		case cell != nil:
			cell.WriteString(s)
		}
	}
	parent := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			up := parent()
			stack = append(stack, t.Name.Local)
			switch t.Name.Local {
			case "p":
				if up == "body" {
					para = &strings.Builder{}
				} else if cell != nil && tblDepth == 1 && up == "tc" {
					if cellParas > 0 {
						cell.WriteByte('\n')
					}
					cellParas++
				}
			case "tbl":
				tblDepth++
				if tblDepth == 1 && up == "body" {
					table = &Table{}
				}
			case "tr":
				if table != nil && tblDepth == 1 {
					row = []string{}
				}
			case "tc":
				if table != nil && tblDepth == 1 {
					cell = &strings.Builder{}
					cellParas = 0
				}
			case "t":
				inText = true
			case "tab":
				if up == "r" {
					write("\t")
				}
			case "br", "cr":
				if up == "r" {
					write("\n")
				}
			}

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch t.Name.Local {
			case "p":
				if para != nil && parent() == "body" {
					doc.Paragraphs = append(doc.Paragraphs, para.String())
					para = nil
				}
			case "tbl":
				if tblDepth == 1 && table != nil {
					doc.Tables = append(doc.Tables, *table)
					table = nil
				}
				tblDepth--
			case "tr":
				if table != nil && tblDepth == 1 && row != nil {
					table.Rows = append(table.Rows, row)
					row = nil
				}
			case "tc":
				if cell != nil && tblDepth == 1 {
					row = append(row, cell.String())
					cell = nil
				}
			case "t":
				inText = false
			}

		case xml.CharData:
			if inText {
				write(string(t))
			}
		}
	}
	return doc, nil
}
