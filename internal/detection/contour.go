package detection

import (
	"image"

	"github.com/ironsheep/solar-grid-mcp/internal/geometry"
	"github.com/ironsheep/solar-grid-mcp/internal/imaging"
)

// ContourFitDetector finds the disk as the largest bright region.
//
// # Algorithm
//
//  1. Gaussian blur (BlurKernel, BlurSigma)
//  2. Binarize at the Otsu level (or FixedThreshold)
//  3. Morphological closing with a CloseKernel square to bridge limb gaps
//  4. Trace the outer boundary of every 8-connected bright region
//  5. Keep the boundary enclosing the largest area; the first one found
//     wins a tie
//  6. Return the minimal enclosing circle of that boundary
//
// This is robust against unrelated circular artifacts but assumes the disk
// is the dominant bright region on a darker sky. A flat image has no Otsu
// level and fails with ErrDetectionFailure.
type ContourFitDetector struct {
	Config ContourConfig
}

// NewContourFitDetector returns a detector with the given tuning.
func NewContourFitDetector(cfg ContourConfig) *ContourFitDetector {
	return &ContourFitDetector{Config: cfg}
}

// Name implements Detector.
func (d *ContourFitDetector) Name() string { return StrategyContourFit }

// Detect implements Detector.
func (d *ContourFitDetector) Detect(img *image.Gray) (geometry.Disk, error) {
	cfg := d.Config
	if err := cfg.Validate(); err != nil {
		return geometry.Disk{}, err
	}
	gray, origin, err := prepare(img)
	if err != nil {
		return geometry.Disk{}, err
	}

	blurred, err := imaging.GaussianBlur(gray, cfg.BlurKernel, cfg.BlurSigma)
	if err != nil {
		return geometry.Disk{}, invalid("%v", err)
	}

	var level uint8
	if cfg.FixedThreshold != nil {
		level = uint8(*cfg.FixedThreshold)
	} else {
		otsu, ok := imaging.OtsuThreshold(blurred)
		if !ok {
			return geometry.Disk{}, failure("image has no contrast to threshold")
		}
		level = otsu
	}

	mask, err := imaging.Close(imaging.Binarize(blurred, level), cfg.CloseKernel)
	if err != nil {
		return geometry.Disk{}, invalid("%v", err)
	}

	contours := ExternalContours(mask)
	if len(contours) == 0 {
		return geometry.Disk{}, failure("no bright region above level %d", level)
	}

	best := largestContour(contours)
	pts := make([]geometry.Point, len(contours[best]))
	for i, p := range contours[best] {
		pts[i] = geometry.Point{X: float64(p.X), Y: float64(p.Y)}
	}
	circle := geometry.MinimalEnclosingCircle(pts)
	disk, err := geometry.NewDisk(circle.Center.X, circle.Center.Y, circle.Radius)
	if err != nil {
		return geometry.Disk{}, failure("largest region is degenerate (%d boundary pixels)", len(pts))
	}
	return disk.Translate(float64(origin.X), float64(origin.Y)), nil
}

// ExternalContours traces the outer boundary of each 8-connected region of
// non-zero pixels in mask. Holes are ignored. Regions are returned in the
// raster order of their top-left-most pixel and each boundary is ordered
// clockwise starting from that pixel.
func ExternalContours(mask *image.Gray) [][]image.Point {
	b := mask.Bounds()
	width, height := b.Dx(), b.Dy()

	fg := make([][]bool, height)
	for y := 0; y < height; y++ {
		fg[y] = make([]bool, width)
		row := mask.Pix[mask.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < width; x++ {
			fg[y][x] = row[x] != 0
		}
	}

	labels := make([][]int, height)
	for y := range labels {
		labels[y] = make([]int, width)
	}

	var contours [][]image.Point
	next := 1
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !fg[y][x] || labels[y][x] != 0 {
				continue
			}
			labelRegion(fg, labels, x, y, next, width, height)
			contours = append(contours, traceBoundary(labels, next, image.Point{X: x, Y: y}, width, height))
			next++
		}
	}
	return contours
}

// labelRegion flood-fills the 8-connected region containing (startX,
// startY) with label. Iterative to stay safe on full-disk regions of
// millions of pixels.
func labelRegion(fg [][]bool, labels [][]int, startX, startY, label, width, height int) {
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if labels[p.Y][p.X] != 0 || !fg[p.Y][p.X] {
			continue
		}
		labels[p.Y][p.X] = label

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}

// mooreNeighbours lists the 8 neighbours clockwise on screen, starting west.
var mooreNeighbours = [8]image.Point{
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
}

// traceBoundary walks the outer boundary of the region with the given label
// using Moore-neighbour tracing. start must be the region's first pixel in
// raster order, so its west neighbour is outside the region.
//
// Tracing stops when the walk is back at start and about to repeat its
// first move.
func traceBoundary(labels [][]int, label int, start image.Point, width, height int) []image.Point {
	inside := func(p image.Point) bool {
		return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height && labels[p.Y][p.X] == label
	}

	contour := []image.Point{start}
	p, back := start, 0
	var first image.Point
	moved := false

	for limit := 4*width*height + 8; limit > 0; limit-- {
		var q image.Point
		qBack := -1
		for k := 1; k <= 8; k++ {
			idx := (back + k) % 8
			cand := p.Add(mooreNeighbours[idx])
			if inside(cand) {
				// The neighbour examined just before cand is outside the
				// region and becomes the backtrack for cand.
				prev := p.Add(mooreNeighbours[(idx+7)%8])
				q, qBack = cand, neighbourIndex(prev.Sub(cand))
				break
			}
		}
		if qBack < 0 {
			// Isolated pixel.
			return contour
		}
		if moved && p == start && q == first {
			break
		}
		if !moved {
			first, moved = q, true
		}
		p, back = q, qBack
		contour = append(contour, p)
	}

	if len(contour) > 1 && contour[len(contour)-1] == start {
		contour = contour[:len(contour)-1]
	}
	return contour
}

func neighbourIndex(d image.Point) int {
	for i, n := range mooreNeighbours {
		if n == d {
			return i
		}
	}
	return 0
}

// largestContour returns the index of the contour enclosing the largest
// area. Ties go to the earliest, which ExternalContours makes the region
// whose first pixel comes first in raster order. contours must not be empty.
func largestContour(contours [][]image.Point) int {
	best := 0
	bestArea := contourArea(contours[0])
	for i := 1; i < len(contours); i++ {
		if a := contourArea(contours[i]); a > bestArea {
			best, bestArea = i, a
		}
	}
	return best
}

// contourArea is the shoelace area of the closed polygon through the
// boundary pixel centers.
func contourArea(contour []image.Point) float64 {
	if len(contour) < 3 {
		return 0
	}
	var twice int
	for i, p := range contour {
		q := contour[(i+1)%len(contour)]
		twice += p.X*q.Y - q.X*p.Y
	}
	if twice < 0 {
		twice = -twice
	}
	return float64(twice) / 2
}
