package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// createDiskImage renders a filled disk of value fg on a bg background.
func createDiskImage(width, height int, cx, cy, r float64, fg, bg uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := bg
			if math.Hypot(float64(x)-cx, float64(y)-cy) <= r {
				v = fg
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// createUniformGray creates a flat gray image.
func createUniformGray(width, height int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestCanny_UniformImageHasNoEdges(t *testing.T) {
	edges := Canny(createUniformGray(60, 40, 128), 50, 100)

	if edges.Width != 60 || edges.Height != 40 {
		t.Errorf("dimensions: got %dx%d, want 60x40", edges.Width, edges.Height)
	}
	if n := edges.Count(); n != 0 {
		t.Errorf("expected no edges on a flat image, got %d", n)
	}
}

func TestCanny_DiskLimb(t *testing.T) {
	img := createDiskImage(120, 120, 60, 60, 35, 220, 20)
	blurred, err := GaussianBlur(img, 9, 1.5)
	if err != nil {
		t.Fatalf("GaussianBlur failed: %v", err)
	}

	edges := Canny(blurred, 50, 100)
	pts := edges.Points()
	if len(pts) < 100 {
		t.Fatalf("expected a closed limb, got only %d edge pixels", len(pts))
	}

	for _, p := range pts {
		d := math.Hypot(float64(p.X)-60, float64(p.Y)-60)
		if math.Abs(d-35) > 2 {
			t.Fatalf("edge pixel (%d,%d) is %.1fpx from center, not on the limb", p.X, p.Y, d)
		}
		// The disk is bright, so the gradient points inward.
		toCenter := (60-float64(p.X))*p.GX + (60-float64(p.Y))*p.GY
		if toCenter <= 0 {
			t.Fatalf("gradient at (%d,%d) points away from the bright disk", p.X, p.Y)
		}
	}
}

func TestCanny_HighThresholdSuppressesWeakEdge(t *testing.T) {
	img := createDiskImage(80, 80, 40, 40, 20, 40, 30)
	edges := Canny(img, 200, 400)
	if n := edges.Count(); n != 0 {
		t.Errorf("a 10-level step should not pass a 400 threshold, got %d edges", n)
	}
}

func TestEdgeMap_PointsMatchCount(t *testing.T) {
	img := createDiskImage(50, 50, 25, 25, 12, 255, 0)
	edges := Canny(img, 50, 100)
	pts := edges.Points()

	if len(pts) == 0 {
		t.Fatal("expected limb edges")
	}
	if len(pts) != edges.Count() {
		t.Errorf("points %d != edge count %d", len(pts), edges.Count())
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if a.Y > b.Y || (a.Y == b.Y && a.X >= b.X) {
			t.Fatalf("points not in raster order at %d: %v then %v", i, a, b)
		}
	}
}
