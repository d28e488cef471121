package render

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Label geometry relative to the image height.
const (
	labelHeightFraction = 0.022
	labelMarginFraction = 0.015
)

// labelScale returns the integer magnification applied to the 7x13 bitmap
// font so the text is about 2.2% of the image height.
func labelScale(height int) int {
	glyph := basicfont.Face7x13.Metrics().Height.Ceil()
	return max(1, int(math.Round(labelHeightFraction*float64(height)/float64(glyph))))
}

// drawLabel writes text at the bottom-left corner of canvas with a drop
// shadow offset down and right.
func drawLabel(canvas *image.NRGBA, text string, fg, shadow colorful.Color) {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	w := font.MeasureString(face, text).Ceil()
	h := metrics.Height.Ceil()
	if w <= 0 {
		return
	}

	// Render once as an alpha mask at native size.
	mask := image.NewNRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: metrics.Ascent},
	}
	d.DrawString(text)

	b := canvas.Bounds()
	scale := labelScale(b.Dy())
	if scale > 1 {
		mask = imaging.Resize(mask, w*scale, h*scale, imaging.NearestNeighbor)
	}

	margin := int(math.Round(labelMarginFraction * float64(b.Dy())))
	origin := image.Pt(b.Min.X+margin, b.Max.Y-margin-mask.Bounds().Dy())
	offset := max(1, scale/2)

	shadowAt := mask.Bounds().Add(origin.Add(image.Pt(offset, offset)))
	draw.DrawMask(canvas, shadowAt, image.NewUniform(shadow), image.Point{}, mask, image.Point{}, draw.Over)

	textAt := mask.Bounds().Add(origin)
	draw.DrawMask(canvas, textAt, image.NewUniform(fg), image.Point{}, mask, image.Point{}, draw.Over)
}
