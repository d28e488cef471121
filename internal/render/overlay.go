package render

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/solar-grid-mcp/internal/geometry"
	"github.com/ironsheep/solar-grid-mcp/internal/helio"
)

// Overlay draws the grid lines, the limb circle, the center dot and the
// optional label onto a copy of img. The source image is not modified.
//
// disk and lines are in the coordinate space of img rebased to (0, 0),
// which is what imaging.ToGray and helio produce. Grid lines are drawn in
// order, then the limb, then the center dot, then the label, so later
// strokes win where they overlap.
func Overlay(img image.Image, disk geometry.Disk, lines []helio.GridLine, style Style) (*image.NRGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", geometry.ErrInvalidInput)
	}
	if err := disk.Validate(); err != nil {
		return nil, err
	}
	style = style.Normalize()
	if err := style.Validate(); err != nil {
		return nil, err
	}
	pal, _ := style.palette()

	canvas := imaging.Clone(img)

	for _, line := range lines {
		s := newStroke()
		for _, seg := range line.Segments() {
			s.polyline(seg, style.GridWidth)
		}
		s.paint(canvas, pal.grid)
	}

	if !style.HideLimb {
		drawRing(canvas, disk, style.LimbWidth, pal.limb)
	}
	if !style.HideCenter {
		drawDot(canvas, disk.Center(), style.CenterRadius, pal.center)
	}
	if style.Label != "" {
		drawLabel(canvas, style.Label, pal.label, pal.shadow)
	}
	return canvas, nil
}

// stroke accumulates per-pixel coverage for one shape so that overlapping
// pieces of the same polyline do not blend twice.
type stroke struct {
	coverage map[image.Point]float64
}

func newStroke() *stroke {
	return &stroke{coverage: make(map[image.Point]float64)}
}

func (s *stroke) add(p image.Point, c float64) {
	if c > s.coverage[p] {
		s.coverage[p] = c
	}
}

// polyline adds a width-wide line through pts. A single point becomes a
// dot of the same width.
func (s *stroke) polyline(pts []image.Point, width float64) {
	if len(pts) == 1 {
		s.segment(pts[0], pts[0], width)
		return
	}
	for i := 1; i < len(pts); i++ {
		s.segment(pts[i-1], pts[i], width)
	}
}

// segment adds a capsule of the given width around a-b. Coverage falls off
// linearly over one pixel at the edge, which anti-aliases the stroke.
func (s *stroke) segment(a, b image.Point, width float64) {
	half := width / 2
	pad := int(math.Ceil(half)) + 1
	minX, maxX := min(a.X, b.X)-pad, max(a.X, b.X)+pad
	minY, maxY := min(a.Y, b.Y)-pad, max(a.Y, b.Y)+pad

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			d := distToSegment(float64(x), float64(y), a, b)
			if c := coverage(half, d); c > 0 {
				s.add(image.Point{X: x, Y: y}, c)
			}
		}
	}
}

func (s *stroke) paint(canvas *image.NRGBA, col colorful.Color) {
	for p, c := range s.coverage {
		blend(canvas, p.X, p.Y, col, c)
	}
}

// drawRing strokes the disk outline.
func drawRing(canvas *image.NRGBA, disk geometry.Disk, width float64, col colorful.Color) {
	half := width / 2
	outer := disk.Radius + half + 1
	b := canvas.Bounds()
	minX := max(b.Min.X, int(math.Floor(disk.CenterX-outer)))
	maxX := min(b.Max.X-1, int(math.Ceil(disk.CenterX+outer)))
	minY := max(b.Min.Y, int(math.Floor(disk.CenterY-outer)))
	maxY := min(b.Max.Y-1, int(math.Ceil(disk.CenterY+outer)))

	inner := math.Max(0, disk.Radius-half-1)
	for y := minY; y <= maxY; y++ {
		dy := float64(y) - disk.CenterY
		for x := minX; x <= maxX; x++ {
			r := math.Hypot(float64(x)-disk.CenterX, dy)
			if r < inner {
				continue
			}
			if c := coverage(half, math.Abs(r-disk.Radius)); c > 0 {
				blend(canvas, x, y, col, c)
			}
		}
	}
}

// drawDot fills a circle of the given radius around center.
func drawDot(canvas *image.NRGBA, center geometry.Point, radius float64, col colorful.Color) {
	pad := int(math.Ceil(radius)) + 1
	cx, cy := int(math.Round(center.X)), int(math.Round(center.Y))
	for y := cy - pad; y <= cy+pad; y++ {
		for x := cx - pad; x <= cx+pad; x++ {
			d := math.Hypot(float64(x)-center.X, float64(y)-center.Y)
			if c := coverage(radius, d); c > 0 {
				blend(canvas, x, y, col, c)
			}
		}
	}
}

// coverage is the fraction of a pixel at distance d from a shape's center
// line that falls within half of it.
func coverage(half, d float64) float64 {
	return math.Max(0, math.Min(1, half+0.5-d))
}

func distToSegment(px, py float64, a, b image.Point) float64 {
	ax, ay := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X)-ax, float64(b.Y)-ay
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

// blend mixes col into the pixel at (x, y) with weight alpha. Pixels
// outside the canvas are ignored.
func blend(canvas *image.NRGBA, x, y int, col colorful.Color, alpha float64) {
	if alpha <= 0 || !image.Pt(x, y).In(canvas.Bounds()) {
		return
	}
	i := canvas.PixOffset(x, y)
	px := canvas.Pix[i : i+4 : i+4]
	base := colorful.Color{
		R: float64(px[0]) / 255,
		G: float64(px[1]) / 255,
		B: float64(px[2]) / 255,
	}
	r, g, b := base.BlendRgb(col, alpha).Clamped().RGB255()
	px[0], px[1], px[2] = r, g, b
	if a := uint8(math.Round(alpha * 255)); a > px[3] {
		px[3] = a
	}
}
