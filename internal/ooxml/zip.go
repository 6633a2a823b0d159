// Package ooxml reads the text structure of Office Open XML packages (DOCX and
// PPTX) straight from their ZIP parts.
package ooxml

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrMissingPart is returned when a required package part is absent.
var ErrMissingPart = errors.New("ooxml: missing package part")

// maxPartSize bounds a single decompressed XML part.
const maxPartSize = 64 << 20

func openPackage(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening package: %w", err)
	}
	return zr, nil
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}

func findPart(zr *zip.Reader, name string) (*zip.File, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingPart, name)
}
