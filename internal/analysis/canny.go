package analysis

import "image"

// edgeMap is a binary image of detected edge pixels.
type edgeMap struct {
	width, height int
	pix           []bool
}

func (e *edgeMap) count() int {
	n := 0
	for _, p := range e.pix {
		if p {
			n++
		}
	}
	return n
}

const (
	tan22_5 = 0.4142135623730950488016887242097
	tan67_5 = 2.4142135623730950488016887242097
)

// canny runs Canny edge detection: 3x3 Sobel gradients with replicated
// borders, L1 magnitude, non-maximum suppression along the quantised gradient
// direction, then hysteresis between low and high.
func canny(g *image.Gray, low, high float64) *edgeMap {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	em := &edgeMap{width: w, height: h, pix: make([]bool, w*h)}
	if w == 0 || h == 0 {
		return em
	}

	px := func(x, y int) int {
		x = clamp(x, 0, w-1)
		y = clamp(y, 0, h-1)
		return int(g.Pix[y*g.Stride+x])
	}

	// Sobel responses on 8-bit input stay within ±1020.
	gx := make([]int16, w*h)
	gy := make([]int16, w*h)
	mag := make([]int32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			dx := px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1)
			dy := px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1) -
				px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1)
			gx[i], gy[i] = int16(dx), int16(dy)
			mag[i] = int32(abs(dx) + abs(dy))
		}
	}

	magAt := func(x, y int) int {
		if x < 0 || x >= w || y < 0 || y >= h {
			return 0
		}
		return int(mag[y*w+x])
	}

	const (
		none = iota
		weak
		strong
	)
	state := make([]uint8, w*h)
	var stack []int

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := int(mag[i])
			if float64(m) <= low {
				continue
			}

			ax, ay := float64(abs(int(gx[i]))), float64(abs(int(gy[i])))
			var keep bool
			switch {
			case ay < ax*tan22_5:
				keep = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case ay > ax*tan67_5:
				keep = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				s := 1
				if (gx[i] < 0) != (gy[i] < 0) {
					s = -1
				}
				keep = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}
			if !keep {
				continue
			}

			if float64(m) > high {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	// Hysteresis: weak pixels survive only when 8-connected to a strong one.
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		em.pix[i] = true

		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				n := ny*w + nx
				if state[n] == weak {
					state[n] = strong
					stack = append(stack, n)
				}
			}
		}
	}
	return em
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
