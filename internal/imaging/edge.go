package imaging

import (
	"image"
	"math"
)

// EdgeMap is the result of Canny edge detection on a grayscale plane.
//
// GradX and GradY hold the Sobel derivatives on the 0–255 intensity scale,
// so a sharp step of height h has a peak magnitude of 4·h, and about 2·h
// after a sigma 1.5 pre-blur. Gradient-based Hough voting needs the direction at each
// edge pixel, which is why the derivatives are kept.
type EdgeMap struct {
	Width  int
	Height int
	Edges  [][]bool
	GradX  [][]float64
	GradY  [][]float64
}

// EdgePoint is a single edge pixel with its gradient.
type EdgePoint struct {
	X, Y   int
	GX, GY float64
}

// Canny runs Sobel gradients, non-maximum suppression and hysteresis
// thresholding over g. No smoothing is applied; blur first with
// GaussianBlur.
//
// Pixels with suppressed magnitude >= high are strong edges. Pixels with
// magnitude >= low are kept only when they connect, through other kept
// pixels, to a strong edge.
func Canny(g *image.Gray, low, high float64) *EdgeMap {
	b := g.Bounds()
	width, height := b.Dx(), b.Dy()
	src := Matrix(g)

	m := &EdgeMap{
		Width:  width,
		Height: height,
		Edges:  make([][]bool, height),
		GradX:  make([][]float64, height),
		GradY:  make([][]float64, height),
	}
	magnitude := make([][]float64, height)

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := 0; y < height; y++ {
		m.Edges[y] = make([]bool, width)
		m.GradX[y] = make([]float64, width)
		m.GradY[y] = make([]float64, width)
		magnitude[y] = make([]float64, width)

		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := src[clamp(y+ky, 0, height-1)][clamp(x+kx, 0, width-1)]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			m.GradX[y][x] = gx
			m.GradY[y][x] = gy
			magnitude[y][x] = math.Hypot(gx, gy)
		}
	}

	// Non-maximum suppression along the gradient direction. Y grows
	// downward, so a gradient angle in (π/8, 3π/8) points down-right.
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		if y == 0 || y == height-1 {
			continue
		}
		for x := 1; x < width-1; x++ {
			mag := magnitude[y][x]
			if mag < low {
				continue
			}
			angle := math.Atan2(m.GradY[y][x], m.GradX[y][x])
			if angle < 0 {
				angle += math.Pi
			}

			var n1, n2 float64
			switch {
			case angle < math.Pi/8 || angle >= 7*math.Pi/8:
				n1, n2 = magnitude[y][x-1], magnitude[y][x+1]
			case angle < 3*math.Pi/8:
				n1, n2 = magnitude[y-1][x-1], magnitude[y+1][x+1]
			case angle < 5*math.Pi/8:
				n1, n2 = magnitude[y-1][x], magnitude[y+1][x]
			default:
				n1, n2 = magnitude[y-1][x+1], magnitude[y+1][x-1]
			}
			if mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	// Hysteresis: grow from strong pixels through weak ones.
	var stack []image.Point
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if suppressed[y][x] >= high && !m.Edges[y][x] {
				m.Edges[y][x] = true
				stack = append(stack, image.Point{X: x, Y: y})
			}
		}
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				if !m.Edges[ny][nx] && suppressed[ny][nx] >= low && suppressed[ny][nx] > 0 {
					m.Edges[ny][nx] = true
					stack = append(stack, image.Point{X: nx, Y: ny})
				}
			}
		}
	}

	return m
}

// Points lists every edge pixel in raster order.
func (m *EdgeMap) Points() []EdgePoint {
	pts := make([]EdgePoint, 0, m.Count())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Edges[y][x] {
				pts = append(pts, EdgePoint{X: x, Y: y, GX: m.GradX[y][x], GY: m.GradY[y][x]})
			}
		}
	}
	return pts
}

// Count returns the number of edge pixels.
func (m *EdgeMap) Count() int {
	n := 0
	for _, row := range m.Edges {
		for _, e := range row {
			if e {
				n++
			}
		}
	}
	return n
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
