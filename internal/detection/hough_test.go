package detection

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ironsheep/solar-grid-mcp/internal/geometry"
	"github.com/ironsheep/solar-grid-mcp/internal/imaging"
)

// limbEdges samples a circle at n angles and rounds each sample to a pixel,
// the way Canny reports a clean limb.
func limbEdges(cx, cy, r float64, n int) []imaging.EdgePoint {
	var edges []imaging.EdgePoint
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		edges = append(edges, imaging.EdgePoint{
			X:  int(math.Round(cx + r*math.Cos(a))),
			Y:  int(math.Round(cy + r*math.Sin(a))),
			GX: -math.Cos(a),
			GY: -math.Sin(a),
		})
	}
	return edges
}

func TestPoolVotes(t *testing.T) {
	acc := [][]int{
		{1, 0, 2, 0},
		{0, 3, 0, 1},
		{4, 0, 0, 5},
	}

	got := poolVotes(acc, 1)
	want := [][]int{
		{4, 6, 6, 3},
		{8, 10, 11, 8},
		{7, 7, 9, 6},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("poolVotes mismatch (-want +got):\n%s", diff)
	}
}

func TestFindPeaks_SubCellCenter(t *testing.T) {
	// A cone peaking between cells (10, 10) and (11, 10).
	acc := make([][]int, 21)
	for y := range acc {
		acc[y] = make([]int, 23)
		for x := range acc[y] {
			d := math.Hypot(float64(x)-10.5, float64(y)-10)
			acc[y][x] = max(0, 100-int(10*d))
		}
	}

	peaks := findPeaks(acc, poolVotes(acc, 2), 2, 30)
	if len(peaks) != 1 {
		t.Fatalf("expected one peak, got %d: %+v", len(peaks), peaks)
	}
	pk := peaks[0]
	if math.Abs(pk.cx-10.5) > 0.25 || math.Abs(pk.cy-10) > 0.25 {
		t.Errorf("peak center (%.2f, %.2f), want (10.5, 10)", pk.cx, pk.cy)
	}
	if pk.votes != acc[10][10] {
		t.Errorf("votes: got %d, want the top cell %d", pk.votes, acc[10][10])
	}

	if peaks := findPeaks(acc, poolVotes(acc, 2), 2, 100); len(peaks) != 0 {
		t.Errorf("threshold above every cell: got %d peaks", len(peaks))
	}
}

func TestRefineCircle_RecoversOffsetCenter(t *testing.T) {
	edges := limbEdges(500, 500, 400, 2400)
	// A coarse estimate about 8px off: a fixed narrow band would only see
	// part of the limb around it.
	coarse := geometry.Circle{Center: geometry.Point{X: 494, Y: 494}, Radius: 392}

	got, refined := refineCircle(edges, coarse, 2)
	if !refined {
		t.Fatal("refit rejected")
	}
	if d := got.Center.Dist(geometry.Point{X: 500, Y: 500}); d > 0.5 {
		t.Errorf("center %v is %.2fpx from (500, 500)", got.Center, d)
	}
	if math.Abs(got.Radius-400) > 0.5 {
		t.Errorf("radius: got %.2f, want 400", got.Radius)
	}
}

func TestRefineCircle_IgnoresUnrelatedEdges(t *testing.T) {
	edges := limbEdges(500, 500, 400, 2400)
	// A straight feature grazing the top of the limb.
	for x := 300; x <= 700; x++ {
		edges = append(edges, imaging.EdgePoint{X: x, Y: 101, GY: 1})
	}
	coarse := geometry.Circle{Center: geometry.Point{X: 501, Y: 499}, Radius: 401}

	got, _ := refineCircle(edges, coarse, 2)
	if d := got.Center.Dist(geometry.Point{X: 500, Y: 500}); d > 1 {
		t.Errorf("center %v pulled %.2fpx from (500, 500)", got.Center, d)
	}
	if math.Abs(got.Radius-400) > 1 {
		t.Errorf("radius: got %.2f, want 400", got.Radius)
	}
}

func TestRefineCircle_TooFewPoints(t *testing.T) {
	edges := limbEdges(50, 50, 20, 5)
	c := geometry.Circle{Center: geometry.Point{X: 50, Y: 50}, Radius: 20}

	got, refined := refineCircle(edges, c, 2)
	if refined {
		t.Error("refit applied to fewer than 8 pixels")
	}
	if got != c {
		t.Errorf("circle changed to %v", got)
	}
}
