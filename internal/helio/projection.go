package helio

import (
	"fmt"
	"math"

	"github.com/ironsheep/solar-grid-mcp/internal/geometry"
)

// visibilityEpsilon keeps points exactly on the limb (z = 0) visible despite
// rounding in the rotation.
const visibilityEpsilon = 1e-9

// Coordinate is a heliographic position in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that both angles lie in [-90, 90]. Longitudes beyond ±90
// are on the far hemisphere and are excluded by construction.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be in [-90, 90], got %g", geometry.ErrInvalidInput, c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -90 || c.Longitude > 90 {
		return fmt.Errorf("%w: longitude must be in [-90, 90], got %g", geometry.ErrInvalidInput, c.Longitude)
	}
	return nil
}

// ObserverGeometry describes where the observer sits relative to the solar
// rotation axis. The zero value (B0 = P = 0) is the plain orthographic
// simplification where the rotation axis is vertical in the image and the
// observer looks at the equator.
type ObserverGeometry struct {
	// B0 is the heliographic latitude of the disk center, in degrees.
	B0 float64 `json:"b0"`

	// P is the position angle of the rotation axis, in degrees,
	// counter-clockwise from image up.
	P float64 `json:"p_angle"`
}

// Validate rejects non-finite angles and |B0| > 90.
func (o ObserverGeometry) Validate() error {
	if math.IsNaN(o.B0) || math.IsInf(o.B0, 0) || math.Abs(o.B0) > 90 {
		return fmt.Errorf("%w: b0 must be in [-90, 90], got %g", geometry.ErrInvalidInput, o.B0)
	}
	if math.IsNaN(o.P) || math.IsInf(o.P, 0) {
		return fmt.Errorf("%w: p_angle must be finite, got %g", geometry.ErrInvalidInput, o.P)
	}
	return nil
}

// IsZero reports whether o is the default no-tilt, no-rotation geometry.
func (o ObserverGeometry) IsZero() bool {
	return o.B0 == 0 && o.P == 0
}

// Project maps c onto disk under orthographic projection with B0 = P = 0:
//
//	x = cx + R·cos(φ)·sin(λ)
//	y = cy − R·sin(φ)
//
// Positive latitude is up in the image (smaller y) and positive longitude
// is to the right. Every coordinate in the [-90, 90] domain lands on or
// inside the disk, so the result is always visible.
func Project(c Coordinate, disk geometry.Disk) geometry.Point {
	phi := c.Latitude * math.Pi / 180
	lambda := c.Longitude * math.Pi / 180
	return geometry.Point{
		X: disk.CenterX + disk.Radius*math.Cos(phi)*math.Sin(lambda),
		Y: disk.CenterY - disk.Radius*math.Sin(phi),
	}
}

// Projector projects heliographic coordinates onto one disk for a given
// observer geometry.
type Projector struct {
	Disk     geometry.Disk
	Observer ObserverGeometry
}

// NewProjector validates disk and observer.
func NewProjector(disk geometry.Disk, observer ObserverGeometry) (*Projector, error) {
	if err := disk.Validate(); err != nil {
		return nil, err
	}
	if err := observer.Validate(); err != nil {
		return nil, err
	}
	return &Projector{Disk: disk, Observer: observer}, nil
}

// Project returns the image position of c and whether it lies on the
// hemisphere facing the observer.
//
// With the zero ObserverGeometry this is exactly the package-level Project
// and the point is always visible. Otherwise the sphere is tilted by B0
// toward the observer and rotated by P in the image plane; points behind
// the limb report visible = false but still carry their projected position.
func (p *Projector) Project(c Coordinate) (geometry.Point, bool) {
	if p.Observer.IsZero() {
		return Project(c, p.Disk), true
	}

	phi := c.Latitude * math.Pi / 180
	lambda := c.Longitude * math.Pi / 180
	b0 := p.Observer.B0 * math.Pi / 180
	pa := p.Observer.P * math.Pi / 180

	// Unit sphere, x right, y up, z toward the observer.
	x := math.Cos(phi) * math.Sin(lambda)
	y := math.Sin(phi)*math.Cos(b0) - math.Cos(phi)*math.Cos(lambda)*math.Sin(b0)
	z := math.Sin(phi)*math.Sin(b0) + math.Cos(phi)*math.Cos(lambda)*math.Cos(b0)

	xr := x*math.Cos(pa) - y*math.Sin(pa)
	yr := x*math.Sin(pa) + y*math.Cos(pa)

	pt := geometry.Point{
		X: p.Disk.CenterX + p.Disk.Radius*xr,
		Y: p.Disk.CenterY - p.Disk.Radius*yr,
	}
	return pt, z >= -visibilityEpsilon
}

// ProjectedPoint is a grid sample in whole image pixels. Visible is false
// when the sample is behind the limb or off the canvas; X and Y are still
// populated so callers can report where it would have landed.
type ProjectedPoint struct {
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Visible bool `json:"visible"`
}

// ToPixel rounds pt to the nearest pixel and marks it visible only when it
// is inside [0, width) × [0, height). Rounding rather than truncating keeps
// small negative offsets from folding onto row or column 0.
func ToPixel(pt geometry.Point, width, height int) ProjectedPoint {
	x := int(math.Round(pt.X))
	y := int(math.Round(pt.Y))
	return ProjectedPoint{
		X:       x,
		Y:       y,
		Visible: x >= 0 && x < width && y >= 0 && y < height,
	}
}

// Pixel projects c and converts it with ToPixel. Far-side points are never
// visible.
func (p *Projector) Pixel(c Coordinate, width, height int) ProjectedPoint {
	pt, front := p.Project(c)
	pp := ToPixel(pt, width, height)
	pp.Visible = pp.Visible && front
	return pp
}
