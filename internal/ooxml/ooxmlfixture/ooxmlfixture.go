// Package ooxmlfixture builds minimal DOCX and PPTX packages for tests.
package ooxmlfixture

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"strings"
)

const (
	wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	drawNS = "http://schemas.openxmlformats.org/drawingml/2006/main"
	presNS = "http://schemas.openxmlformats.org/presentationml/2006/main"
)

// Docx returns a DOCX whose body holds the given paragraphs followed by the
// given tables. Each table is a slice of rows of cell texts.
func Docx(paragraphs []string, tables ...[][]string) []byte {
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString(wordParagraph(p))
	}
	for _, tbl := range tables {
		body.WriteString("<w:tbl><w:tblPr/>")
		for _, row := range tbl {
			body.WriteString("<w:tr>")
			for _, c := range row {
				body.WriteString("<w:tc><w:tcPr/>" + wordParagraph(c) + "</w:tc>")
			}
			body.WriteString("</w:tr>")
		}
		body.WriteString("</w:tbl>")
	}
	doc := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<w:document xmlns:w="%s"><w:body>%s<w:sectPr/></w:body></w:document>`, wordNS, body.String())

	return pack(map[string]string{
		"[Content_Types].xml": contentTypes("word/document.xml",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"),
		"word/document.xml": doc,
	})
}

// Pptx returns a PPTX with one slide per entry; newlines split a slide's
// text into paragraphs.
func Pptx(slides ...string) []byte {
	parts := map[string]string{
		"[Content_Types].xml": contentTypes("ppt/presentation.xml",
			"application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"),
		"ppt/presentation.xml": fmt.Sprintf(`<p:presentation xmlns:p="%s"/>`, presNS),
	}
	for i, s := range slides {
		var paras strings.Builder
		for _, line := range strings.Split(s, "\n") {
			paras.WriteString("<a:p><a:r><a:t>" + html.EscapeString(line) + "</a:t></a:r></a:p>")
		}
		parts[fmt.Sprintf("ppt/slides/slide%d.xml", i+1)] = fmt.Sprintf(
			`<p:sld xmlns:p="%s" xmlns:a="%s"><p:cSld><p:spTree><p:sp><p:txBody>%s</p:txBody></p:sp></p:spTree></p:cSld></p:sld>`,
			presNS, drawNS, paras.String())
	}
	return pack(parts)
}

func wordParagraph(text string) string {
	return "<w:p><w:pPr><w:tabs><w:tab w:val=\"left\" w:pos=\"720\"/></w:tabs></w:pPr><w:r><w:t xml:space=\"preserve\">" +
		html.EscapeString(text) + "</w:t></w:r></w:p>"
}

func contentTypes(main, mainType string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		fmt.Sprintf(`<Override PartName="/%s" ContentType="%s"/>`, main, mainType) +
		`</Types>`
}

func pack(parts map[string]string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	// [Content_Types].xml first, as Office writes it.
	order := []string{"[Content_Types].xml"}
	for name := range parts {
		if name != "[Content_Types].xml" {
			order = append(order, name)
		}
	}
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
