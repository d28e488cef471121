package render

import (
	"fmt"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/solar-grid-mcp/internal/geometry"
)

// LabelLayout is the time layout used by TimestampLabel.
const LabelLayout = "2006-01-02 15:04:05 UTC"

// Style controls how the disk and grid are drawn. Colors are hex strings
// ("#RRGGBB"). Zero-valued fields are filled from DefaultStyle by Normalize.
type Style struct {
	GridColor   string `json:"grid_color"`
	LimbColor   string `json:"limb_color"`
	CenterColor string `json:"center_color"`
	LabelColor  string `json:"label_color"`
	ShadowColor string `json:"shadow_color"`

	// GridWidth and LimbWidth are stroke widths in pixels.
	GridWidth float64 `json:"grid_width"`
	LimbWidth float64 `json:"limb_width"`

	// CenterRadius is the radius of the filled center dot.
	CenterRadius float64 `json:"center_radius"`

	// HideLimb and HideCenter skip the disk annotations and draw only the
	// grid.
	HideLimb   bool `json:"hide_limb"`
	HideCenter bool `json:"hide_center"`

	// Label is drawn at the bottom-left corner when non-empty.
	Label string `json:"label"`
}

// DefaultStyle draws a green grid, a blue 2px limb and a red 3px center dot.
func DefaultStyle() Style {
	return Style{
		GridColor:    "#00FF00",
		LimbColor:    "#0000FF",
		CenterColor:  "#FF0000",
		LabelColor:   "#FFFFFF",
		ShadowColor:  "#000000",
		GridWidth:    1,
		LimbWidth:    2,
		CenterRadius: 3,
	}
}

// Normalize returns s with empty colors and zero sizes replaced by the
// defaults.
func (s Style) Normalize() Style {
	d := DefaultStyle()
	if s.GridColor == "" {
		s.GridColor = d.GridColor
	}
	if s.LimbColor == "" {
		s.LimbColor = d.LimbColor
	}
	if s.CenterColor == "" {
		s.CenterColor = d.CenterColor
	}
	if s.LabelColor == "" {
		s.LabelColor = d.LabelColor
	}
	if s.ShadowColor == "" {
		s.ShadowColor = d.ShadowColor
	}
	if s.GridWidth == 0 {
		s.GridWidth = d.GridWidth
	}
	if s.LimbWidth == 0 {
		s.LimbWidth = d.LimbWidth
	}
	if s.CenterRadius == 0 {
		s.CenterRadius = d.CenterRadius
	}
	return s
}

// palette is a Style with its colors parsed.
type palette struct {
	grid, limb, center, label, shadow colorful.Color
}

func (s Style) palette() (palette, error) {
	var p palette
	for _, c := range []struct {
		name string
		hex  string
		dst  *colorful.Color
	}{
		{"grid_color", s.GridColor, &p.grid},
		{"limb_color", s.LimbColor, &p.limb},
		{"center_color", s.CenterColor, &p.center},
		{"label_color", s.LabelColor, &p.label},
		{"shadow_color", s.ShadowColor, &p.shadow},
	} {
		parsed, err := colorful.Hex(c.hex)
		if err != nil {
			return palette{}, fmt.Errorf("%w: invalid %s %q", geometry.ErrInvalidInput, c.name, c.hex)
		}
		*c.dst = parsed
	}
	return p, nil
}

// Validate checks the colors and stroke sizes of a normalized style.
func (s Style) Validate() error {
	if _, err := s.palette(); err != nil {
		return err
	}
	if s.GridWidth <= 0 || s.LimbWidth <= 0 || s.CenterRadius <= 0 {
		return fmt.Errorf("%w: stroke sizes must be > 0 (grid %g, limb %g, center %g)",
			geometry.ErrInvalidInput, s.GridWidth, s.LimbWidth, s.CenterRadius)
	}
	return nil
}

// TimestampLabel formats the observation label drawn in the corner of an
// overlay, e.g. "Sun | WL | 2024-04-08 18:17:00 UTC".
func TimestampLabel(t time.Time) string {
	return "Sun | WL | " + t.UTC().Format(LabelLayout)
}
