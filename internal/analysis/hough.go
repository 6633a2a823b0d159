package analysis

import (
	"image"
	"math"
	"math/rand"
)

// segment is a detected line segment in pixel coordinates.
type segment struct {
	x1, y1, x2, y2 int
}

type houghParams struct {
	threshold     int
	minLineLength int
	maxLineGap    int
}

const (
	houghAngles = 180 // 1 degree resolution
	houghShift  = 16  // fixed-point precision of the line walk
	houghSeed   = 0x5eed
)

// houghLinesP is the progressive probabilistic Hough transform with a
// distance resolution of 1 pixel and an angle resolution of 1 degree. Edge
// points are visited in a pseudo-random order from a fixed seed, so the
// result is deterministic for a given edge map.
func houghLinesP(em *edgeMap, p houghParams) []segment {
	w, h := em.width, em.height
	if w == 0 || h == 0 {
		return nil
	}

	numRho := (w+h)*2 + 1
	offset := (numRho - 1) / 2
	accum := make([]int, houghAngles*numRho)

	var cosTab, sinTab [houghAngles]float64
	for n := 0; n < houghAngles; n++ {
		theta := float64(n) * math.Pi / houghAngles
		cosTab[n] = math.Cos(theta)
		sinTab[n] = math.Sin(theta)
	}

	mask := make([]bool, w*h)
	var points []image.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if em.pix[y*w+x] {
				mask[y*w+x] = true
				points = append(points, image.Pt(x, y))
			}
		}
	}

	vote := func(x, y, delta int) (maxVal, maxN int) {
		maxVal = p.threshold - 1
		for n := 0; n < houghAngles; n++ {
			r := int(math.RoundToEven(float64(x)*cosTab[n]+float64(y)*sinTab[n])) + offset
			idx := n*numRho + r
			accum[idx] += delta
			if accum[idx] > maxVal {
				maxVal, maxN = accum[idx], n
			}
		}
		return maxVal, maxN
	}

	rng := rand.New(rand.NewSource(houghSeed))
	var lines []segment

	for count := len(points); count > 0; count-- {
		idx := rng.Intn(count)
		pt := points[idx]
		points[idx] = points[count-1]

		// Already consumed by an earlier segment.
		if !mask[pt.Y*w+pt.X] {
			continue
		}

		maxVal, maxN := vote(pt.X, pt.Y, 1)
		if maxVal < p.threshold {
			continue
		}

		// Walk from the point in both directions along the winning line.
		a, b := -sinTab[maxN], cosTab[maxN]
		x0, y0 := pt.X, pt.Y
		var dx0, dy0 int
		xflag := math.Abs(a) > math.Abs(b)
		if xflag {
			dx0 = sign(a)
			dy0 = int(math.RoundToEven(b * (1 << houghShift) / math.Abs(a)))
			y0 = y0<<houghShift + 1<<(houghShift-1)
		} else {
			dy0 = sign(b)
			dx0 = int(math.RoundToEven(a * (1 << houghShift) / math.Abs(b)))
			x0 = x0<<houghShift + 1<<(houghShift-1)
		}

		walk := func(k int, visit func(x, y int) bool) {
			dx, dy := dx0, dy0
			if k > 0 {
				dx, dy = -dx, -dy
			}
			for x, y := x0, y0; ; x, y = x+dx, y+dy {
				var px, py int
				if xflag {
					px, py = x, y>>houghShift
				} else {
					px, py = x>>houghShift, y
				}
				if px < 0 || px >= w || py < 0 || py >= h {
					return
				}
				if !visit(px, py) {
					return
				}
			}
		}

		var ends [2]image.Point
		for k := 0; k < 2; k++ {
			gap := 0
			walk(k, func(x, y int) bool {
				if mask[y*w+x] {
					gap = 0
					ends[k] = image.Pt(x, y)
					return true
				}
				gap++
				return gap <= p.maxLineGap
			})
		}

		good := abs(ends[1].X-ends[0].X) >= p.minLineLength ||
			abs(ends[1].Y-ends[0].Y) >= p.minLineLength

		for k := 0; k < 2; k++ {
			walk(k, func(x, y int) bool {
				if mask[y*w+x] {
					if good {
						vote(x, y, -1)
					}
					mask[y*w+x] = false
				}
				return x != ends[k].X || y != ends[k].Y
			})
		}

		if good {
			lines = append(lines, segment{ends[0].X, ends[0].Y, ends[1].X, ends[1].Y})
		}
	}
	return lines
}

func sign(v float64) int {
	if v > 0 {
		return 1
	}
	return -1
}
