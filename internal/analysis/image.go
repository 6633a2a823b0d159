package analysis

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

func (a *Analyzer) analyzeImage(data []byte) (findings, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return findings{}, err
	}
	if limit := a.thresholds.MaxImagePixels; limit > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(limit) {
		return findings{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, limit)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return findings{}, err
	}

	var f findings
	f.add(3, StepOCRRequired)

	b := img.Bounds()
	if b.Dx() > a.thresholds.HighResolutionPixels || b.Dy() > a.thresholds.HighResolutionPixels {
		f.add(1, StepHighResolution)
	}

	edges := canny(toGrayscale(img), a.thresholds.CannyLow, a.thresholds.CannyHigh)
	segments := houghLinesP(edges, houghParams{
		threshold:     a.thresholds.HoughVotes,
		minLineLength: a.thresholds.HoughMinLineLength,
		maxLineGap:    a.thresholds.HoughMaxLineGap,
	})

	log.Debug().
		Str("format", format).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Int("line_segments", len(segments)).
		Msg("image line detection")

	if len(segments) > a.thresholds.TableLineSegments {
		f.tables = true
		f.add(2, StepTableDetection)
	}
	return f, nil
}

// toGrayscale converts an image to an origin-based grayscale image.
func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			gray.SetGray(x-bounds.Min.X, y-bounds.Min.Y, c)
		}
	}
	return gray
}
