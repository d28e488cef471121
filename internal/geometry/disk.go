package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned when a caller hands the core a value outside
// its documented domain: an empty image, a non-positive radius, a
// non-positive grid step, and so on. Test with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Point is a sub-pixel position in image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Circle is an unvalidated circle. Fits may return a zero radius; convert
// to a Disk with NewDisk before handing it to later stages.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Contains reports whether p lies on or inside c, allowing a small relative
// tolerance for floating point noise.
func (c Circle) Contains(p Point) bool {
	return c.Center.Dist(p) <= c.Radius+1e-7*math.Max(1, c.Radius)
}

// Disk is the detected solar disk in image-pixel units.
//
// Radius is always > 0. The center may lie outside the image bounds; partial
// disks are representable and are never clamped.
type Disk struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Radius  float64 `json:"radius"`
}

// NewDisk validates and returns a Disk.
func NewDisk(cx, cy, r float64) (Disk, error) {
	d := Disk{CenterX: cx, CenterY: cy, Radius: r}
	if err := d.Validate(); err != nil {
		return Disk{}, err
	}
	return d, nil
}

// Validate checks the Disk invariants.
func (d Disk) Validate() error {
	for _, v := range []float64{d.CenterX, d.CenterY, d.Radius} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: disk has non-finite component %v", ErrInvalidInput, d)
		}
	}
	if d.Radius <= 0 {
		return fmt.Errorf("%w: disk radius must be > 0, got %g", ErrInvalidInput, d.Radius)
	}
	return nil
}

// Center returns the disk center as a Point.
func (d Disk) Center() Point {
	return Point{X: d.CenterX, Y: d.CenterY}
}

// Translate returns the disk shifted by (dx, dy).
func (d Disk) Translate(dx, dy float64) Disk {
	return Disk{CenterX: d.CenterX + dx, CenterY: d.CenterY + dy, Radius: d.Radius}
}

func (d Disk) String() string {
	return fmt.Sprintf("center=(%.2f,%.2f) radius=%.2fpx", d.CenterX, d.CenterY, d.Radius)
}
