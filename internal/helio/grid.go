package helio

import (
	"fmt"
	"image"

	"github.com/ironsheep/solar-grid-mcp/internal/geometry"
)

// DefaultSamples gives one sample per degree across [-90, 90].
const DefaultSamples = 181

// LineKind tells parallels from meridians.
type LineKind string

const (
	// Latitude lines hold latitude constant and sweep longitude.
	Latitude LineKind = "latitude"
	// Longitude lines hold longitude constant and sweep latitude.
	Longitude LineKind = "longitude"
)

// GridLine is one projected parallel or meridian. Points keeps every sample
// in order, including invisible ones, so gaps stay where they occurred.
type GridLine struct {
	Kind    LineKind         `json:"kind"`
	Degrees float64          `json:"degrees"`
	Points  []ProjectedPoint `json:"points"`
}

// Segments splits the line into runs of consecutive visible samples.
// A single invisible sample ends the current run, so no segment ever joins
// points across a clipped gap. Repeated pixels within a run are collapsed.
func (l GridLine) Segments() [][]image.Point {
	var segments [][]image.Point
	var current []image.Point

	for _, p := range l.Points {
		if !p.Visible {
			if len(current) > 0 {
				segments = append(segments, current)
				current = nil
			}
			continue
		}
		pt := image.Point{X: p.X, Y: p.Y}
		if n := len(current); n > 0 && current[n-1] == pt {
			continue
		}
		current = append(current, pt)
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}
	return segments
}

// VisibleCount returns the number of visible samples.
func (l GridLine) VisibleCount() int {
	n := 0
	for _, p := range l.Points {
		if p.Visible {
			n++
		}
	}
	return n
}

// GridConfig controls grid construction.
type GridConfig struct {
	// StepDegrees is the spacing between parallels and between meridians.
	StepDegrees int `json:"step_degrees"`

	// Samples is the number of points per line, spread evenly over
	// [-90, 90] of the swept coordinate. It is independent of StepDegrees.
	Samples int `json:"samples"`

	// Observer defaults to B0 = P = 0.
	Observer ObserverGeometry `json:"observer"`
}

// DefaultGridConfig returns a 10° grid with DefaultSamples per line.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		StepDegrees: 10,
		Samples:     DefaultSamples,
	}
}

// Validate checks the step, the sample count and the observer geometry.
func (c GridConfig) Validate() error {
	if c.StepDegrees <= 0 {
		return fmt.Errorf("%w: step_degrees must be > 0, got %d", geometry.ErrInvalidInput, c.StepDegrees)
	}
	if c.Samples < 2 {
		return fmt.Errorf("%w: samples must be >= 2, got %d", geometry.ErrInvalidInput, c.Samples)
	}
	return c.Observer.Validate()
}

// BuildGrid rasterizes a grid with the default sample count and observer
// geometry. See GridConfig.Build.
func BuildGrid(disk geometry.Disk, stepDegrees, width, height int) ([]GridLine, error) {
	cfg := DefaultGridConfig()
	cfg.StepDegrees = stepDegrees
	return cfg.Build(disk, width, height)
}

// Build projects every parallel and meridian onto disk and clips the
// samples to a width × height canvas.
//
// Lines are generated at -90, -90+step, ... up to 90, latitudes first, then
// longitudes. Both sets cover the same symmetric range, so a step that
// divides 90 yields 180/step+1 lines of each kind including the equator,
// the central meridian, the poles and both limbs.
func (c GridConfig) Build(disk geometry.Disk, width, height int) ([]GridLine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: canvas must be non-empty, got %dx%d", geometry.ErrInvalidInput, width, height)
	}
	proj, err := NewProjector(disk, c.Observer)
	if err != nil {
		return nil, err
	}

	sweep := make([]float64, c.Samples)
	for i := range sweep {
		sweep[i] = -90 + 180*float64(i)/float64(c.Samples-1)
	}

	var lines []GridLine
	for lat := -90; lat <= 90; lat += c.StepDegrees {
		line := GridLine{Kind: Latitude, Degrees: float64(lat), Points: make([]ProjectedPoint, len(sweep))}
		for i, lon := range sweep {
			line.Points[i] = proj.Pixel(Coordinate{Latitude: float64(lat), Longitude: lon}, width, height)
		}
		lines = append(lines, line)
	}
	for lon := -90; lon <= 90; lon += c.StepDegrees {
		line := GridLine{Kind: Longitude, Degrees: float64(lon), Points: make([]ProjectedPoint, len(sweep))}
		for i, lat := range sweep {
			line.Points[i] = proj.Pixel(Coordinate{Latitude: lat, Longitude: float64(lon)}, width, height)
		}
		lines = append(lines, line)
	}
	return lines, nil
}
