package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Slide is the text of one presentation slide.
type Slide struct {
	Number int
	Text   string
}

// ParsePptx returns the slides of a PPTX package in slide-number order.
func ParsePptx(data []byte) ([]Slide, error) {
	zr, err := openPackage(data)
	if err != nil {
		return nil, err
	}

	var slides []Slide
	for _, f := range zr.File {
		m := slidePartRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		raw, err := readPart(f)
		if err != nil {
			return nil, err
		}
		text, err := slideText(raw)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", num, err)
		}
		slides = append(slides, Slide{Number: num, Text: text})
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("%w: ppt/slides", ErrMissingPart)
	}

	sort.Slice(slides, func(i, j int) bool { return slides[i].Number < slides[j].Number })
	return slides, nil
}

// slideText collects a:t runs, one line per non-empty a:p paragraph.
func slideText(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		lines  []string
		cur    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				cur.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if s := strings.TrimSpace(cur.String()); s != "" {
					lines = append(lines, s)
				}
				cur.Reset()
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
