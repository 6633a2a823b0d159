package analysis

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func horizontalEdge(w, h, y, x0, x1 int) *edgeMap {
	em := &edgeMap{width: w, height: h, pix: make([]bool, w*h)}
	for x := x0; x <= x1; x++ {
		em.pix[y*w+x] = true
	}
	return em
}

var defaultHough = houghParams{threshold: 100, minLineLength: 100, maxLineGap: 10}

func TestHoughFindsSingleLine(t *testing.T) {
	segs := houghLinesP(horizontalEdge(300, 100, 50, 10, 209), defaultHough)
	require.Len(t, segs, 1)

	s := segs[0]
	assert.Equal(t, 50, s.y1)
	assert.Equal(t, 50, s.y2)
	assert.ElementsMatch(t, []int{10, 209}, []int{s.x1, s.x2})
}

func TestHoughIgnoresShortLines(t *testing.T) {
	segs := houghLinesP(horizontalEdge(300, 100, 50, 10, 59), defaultHough)
	assert.Empty(t, segs)
}

func TestHoughBridgesSmallGaps(t *testing.T) {
	em := horizontalEdge(400, 50, 20, 10, 309)
	for x := 150; x < 158; x++ {
		em.pix[20*em.width+x] = false
	}
	segs := houghLinesP(em, defaultHough)
	require.Len(t, segs, 1)
	assert.Equal(t, 299, abs(segs[0].x2-segs[0].x1))
}

func TestHoughEmpty(t *testing.T) {
	assert.Empty(t, houghLinesP(&edgeMap{}, defaultHough))
	assert.Empty(t, houghLinesP(horizontalEdge(50, 50, 0, 0, 0), defaultHough))
}

func TestCanny(t *testing.T) {
	flat := image.NewGray(image.Rect(0, 0, 40, 40))
	for i := range flat.Pix {
		flat.Pix[i] = 200
	}
	assert.Zero(t, canny(flat, 50, 150).count())

	// A dark square yields a thin closed outline.
	sq := image.NewGray(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			c := color.Gray{Y: 255}
			if x >= 10 && x < 30 && y >= 10 && y < 30 {
				c.Y = 0
			}
			sq.SetGray(x, y, c)
		}
	}
	em := canny(sq, 50, 150)
	assert.Greater(t, em.count(), 60)
	assert.Less(t, em.count(), 200)
	assert.False(t, em.pix[20*40+20], "interior must not be an edge")
	assert.False(t, em.pix[2*40+2], "background must not be an edge")
}

func TestToGrayscaleRebasesBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 15, 10))
	img.Set(5, 5, color.White)
	g := toGrayscale(img)
	assert.Equal(t, image.Rect(0, 0, 10, 5), g.Bounds())
	assert.Equal(t, uint8(255), g.GrayAt(0, 0).Y)
}
