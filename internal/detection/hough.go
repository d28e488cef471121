package detection

import (
	"image"
	"math"
	"sort"

	"github.com/ironsheep/solar-grid-mcp/internal/geometry"
	"github.com/ironsheep/solar-grid-mcp/internal/imaging"
)

// maxCenterCandidates bounds how many accumulator peaks get a radius
// estimate. Peaks are visited strongest first, so the dominant disk is
// always among them.
const maxCenterCandidates = 128

const (
	// peakWindowFraction sizes the window, relative to the largest searched
	// radius, over which accumulator votes are pooled before peak picking.
	// Rays from a large limb spread over several cells around the center,
	// so a single cell is a noisy estimate of where they meet.
	peakWindowFraction = 0.01

	// refineBandFraction is the starting refit band relative to the coarse
	// radius.
	refineBandFraction = 0.02

	// maxRefineRounds bounds the refit loop.
	maxRefineRounds = 8
)

// Candidate is one circle accepted by the Hough stage.
type Candidate struct {
	Disk geometry.Disk `json:"disk"`

	// Votes is the highest single-cell accumulator count in the pooling
	// window around the center.
	Votes int `json:"votes"`

	// Support is the number of edge pixels at the chosen radius (±1px).
	Support int `json:"support"`

	// Refined reports whether the least-squares refit replaced the coarse
	// accumulator estimate.
	Refined bool `json:"refined"`
}

// CircleFitDetector finds the disk with a gradient-based circular Hough
// transform.
//
// # Algorithm
//
//  1. Gaussian blur (BlurKernel, BlurSigma) to suppress granulation
//  2. Canny edges with EdgeThreshold as the high threshold
//  3. Every edge pixel votes along its gradient line, in both directions,
//     for centers at distances MinRadius..MaxRadius; the accumulator has
//     one cell per DP pixels
//  4. Votes are pooled over a square window of about 1% of MaxRadius; the
//     local maxima of the pooled field whose window holds a cell above
//     AccumulatorThreshold become center candidates, strongest first,
//     skipping any within MinDist of an accepted center. Each center is
//     placed at the sub-cell centroid of the pooled votes around it
//  5. Each center gets the radius with the most edge pixels at that
//     distance; centers whose best radius has fewer than
//     AccumulatorThreshold supporting pixels are dropped
//  6. Optionally, the circle is refit by least squares to the edge pixels
//     near it, starting from a band of 2% of the radius and narrowing it
//     to RefineBand; a refit is kept only while it lowers the residual
//
// Voting along the gradient instead of around a full circle keeps the cost
// linear in the radius range, which matters for 4k full-disk images.
type CircleFitDetector struct {
	Config HoughConfig
}

// NewCircleFitDetector returns a detector with the given tuning.
func NewCircleFitDetector(cfg HoughConfig) *CircleFitDetector {
	return &CircleFitDetector{Config: cfg}
}

// Name implements Detector.
func (d *CircleFitDetector) Name() string { return StrategyCircleFit }

// Detect implements Detector. It returns the strongest candidate.
func (d *CircleFitDetector) Detect(img *image.Gray) (geometry.Disk, error) {
	candidates, err := d.Candidates(img)
	if err != nil {
		return geometry.Disk{}, err
	}
	return candidates[0].Disk, nil
}

// Candidates returns every accepted circle sorted by pooled accumulator
// strength, strongest first. The slice is never empty when err is nil.
func (d *CircleFitDetector) Candidates(img *image.Gray) ([]Candidate, error) {
	cfg := d.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gray, origin, err := prepare(img)
	if err != nil {
		return nil, err
	}

	width, height := gray.Bounds().Dx(), gray.Bounds().Dy()
	blurred, err := imaging.GaussianBlur(gray, cfg.BlurKernel, cfg.BlurSigma)
	if err != nil {
		return nil, invalid("%v", err)
	}

	edges := imaging.Canny(blurred, cfg.EdgeThreshold/2, cfg.EdgeThreshold).Points()
	if len(edges) == 0 {
		return nil, failure("no edge pixels above threshold %g", cfg.EdgeThreshold)
	}

	minR, maxR := cfg.radiusRange(width, height)
	acc := accumulate(edges, width, height, minR, maxR, cfg.DP)
	half := max(1, int(math.Round(peakWindowFraction*float64(maxR)/cfg.DP)))
	peaks := findPeaks(acc, poolVotes(acc, half), half, cfg.AccumulatorThreshold)
	if len(peaks) == 0 {
		return nil, failure("no accumulator peak above %d votes", cfg.AccumulatorThreshold)
	}

	minDist := cfg.MinDistFraction * float64(height)
	var accepted []Candidate
	var centers []geometry.Point
	for i, pk := range peaks {
		if i >= maxCenterCandidates {
			break
		}
		center := geometry.Point{
			X: (pk.cx + 0.5) * cfg.DP,
			Y: (pk.cy + 0.5) * cfg.DP,
		}
		tooClose := false
		for _, a := range centers {
			if center.Dist(a) < minDist {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		radius, support := estimateRadius(edges, center, minR, maxR)
		if support < cfg.AccumulatorThreshold {
			continue
		}

		circle := geometry.Circle{Center: center, Radius: radius}
		refined := false
		if !cfg.DisableRefine {
			circle, refined = refineCircle(edges, circle, cfg.RefineBand)
		}

		disk, err := geometry.NewDisk(circle.Center.X, circle.Center.Y, circle.Radius)
		if err != nil {
			continue
		}
		centers = append(centers, circle.Center)
		accepted = append(accepted, Candidate{
			Disk:    disk.Translate(float64(origin.X), float64(origin.Y)),
			Votes:   pk.votes,
			Support: support,
			Refined: refined,
		})
	}

	if len(accepted) == 0 {
		return nil, failure("no center has %d edge pixels on a common radius", cfg.AccumulatorThreshold)
	}
	return accepted, nil
}

// accumulate casts center votes along each edge pixel's gradient line.
// A ray votes at most once per cell.
func accumulate(edges []imaging.EdgePoint, width, height, minR, maxR int, dp float64) [][]int {
	accW := int(math.Ceil(float64(width) / dp))
	accH := int(math.Ceil(float64(height) / dp))
	acc := make([][]int, accH)
	for y := range acc {
		acc[y] = make([]int, accW)
	}

	for _, p := range edges {
		mag := math.Hypot(p.GX, p.GY)
		if mag == 0 {
			continue
		}
		sx, sy := p.GX/mag, p.GY/mag
		for _, sign := range [2]float64{1, -1} {
			lastX, lastY := -1, -1
			for r := minR; r <= maxR; r++ {
				cx := float64(p.X) + sign*float64(r)*sx
				cy := float64(p.Y) + sign*float64(r)*sy
				if cx < 0 || cy < 0 {
					break
				}
				ax, ay := int(cx/dp), int(cy/dp)
				if ax >= accW || ay >= accH {
					break
				}
				if ax == lastX && ay == lastY {
					continue
				}
				acc[ay][ax]++
				lastX, lastY = ax, ay
			}
		}
	}
	return acc
}

type peak struct {
	x, y int

	// cx, cy is the sub-cell center in accumulator coordinates.
	cx, cy float64

	// pooled is the window sum used for ordering; votes is the highest
	// single cell in the window.
	pooled int
	votes  int
}

// poolVotes returns, for every cell, the sum of acc over the
// (2·half+1)² window around it, clipped to the accumulator.
func poolVotes(acc [][]int, half int) [][]int {
	h := len(acc)
	if h == 0 {
		return nil
	}
	w := len(acc[0])

	integral := make([][]int, h+1)
	integral[0] = make([]int, w+1)
	for y := 0; y < h; y++ {
		integral[y+1] = make([]int, w+1)
		for x := 0; x < w; x++ {
			integral[y+1][x+1] = acc[y][x] + integral[y][x+1] + integral[y+1][x] - integral[y][x]
		}
	}

	pooled := make([][]int, h)
	for y := 0; y < h; y++ {
		pooled[y] = make([]int, w)
		y0, y1 := max(0, y-half), min(h, y+half+1)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-half), min(w, x+half+1)
			pooled[y][x] = integral[y1][x1] - integral[y0][x1] - integral[y1][x0] + integral[y0][x0]
		}
	}
	return pooled
}

// findPeaks returns the local maxima of the pooled field among their
// 4-neighbours whose window holds a raw cell above threshold, sorted by
// pooled strength. Ties on a plateau resolve to its top-left-most cell.
func findPeaks(acc, pooled [][]int, half, threshold int) []peak {
	var peaks []peak
	for y := 1; y < len(pooled)-1; y++ {
		for x := 1; x < len(pooled[y])-1; x++ {
			v := pooled[y][x]
			if v == 0 ||
				v <= pooled[y][x-1] || v < pooled[y][x+1] ||
				v <= pooled[y-1][x] || v < pooled[y+1][x] {
				continue
			}
			votes := windowMax(acc, x, y, half)
			if votes <= threshold {
				continue
			}
			cx, cy := peakCentroid(pooled, x, y)
			peaks = append(peaks, peak{x: x, y: y, cx: cx, cy: cy, pooled: v, votes: votes})
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].pooled > peaks[j].pooled
	})
	return peaks
}

// windowMax returns the largest cell of acc in the window around (x, y).
func windowMax(acc [][]int, x, y, half int) int {
	best := 0
	for yy := max(0, y-half); yy <= min(len(acc)-1, y+half); yy++ {
		row := acc[yy]
		for xx := max(0, x-half); xx <= min(len(row)-1, x+half); xx++ {
			best = max(best, row[xx])
		}
	}
	return best
}

// peakCentroid places a pooled maximum at the centroid of its 3×3
// neighbourhood, weighted by height above the neighbourhood minimum.
// (x, y) must not lie on the border.
func peakCentroid(pooled [][]int, x, y int) (float64, float64) {
	lowest := pooled[y][x]
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			lowest = min(lowest, pooled[y+dy][x+dx])
		}
	}
	var sx, sy, sw float64
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			w := float64(pooled[y+dy][x+dx] - lowest)
			sx += w * float64(dx)
			sy += w * float64(dy)
			sw += w
		}
	}
	if sw == 0 {
		return float64(x), float64(y)
	}
	return float64(x) + sx/sw, float64(y) + sy/sw
}

// estimateRadius histograms edge distances from center in 1px bins and
// picks the 3-bin window with the most pixels. Ties prefer the larger
// radius: the limb is the outermost circle around the disk center.
func estimateRadius(edges []imaging.EdgePoint, center geometry.Point, minR, maxR int) (float64, int) {
	hist := make([]int, maxR-minR+1)
	for _, p := range edges {
		d := math.Hypot(float64(p.X)-center.X, float64(p.Y)-center.Y)
		bin := int(math.Round(d)) - minR
		if bin >= 0 && bin < len(hist) {
			hist[bin]++
		}
	}

	bestBin, bestSupport := -1, 0
	for b := range hist {
		s := hist[b]
		if b > 0 {
			s += hist[b-1]
		}
		if b < len(hist)-1 {
			s += hist[b+1]
		}
		if s >= bestSupport && s > 0 {
			bestBin, bestSupport = b, s
		}
	}
	if bestBin < 0 {
		return 0, 0
	}

	lo := float64(bestBin+minR) - 1.5
	hi := float64(bestBin+minR) + 1.5
	var sum float64
	var n int
	for _, p := range edges {
		d := math.Hypot(float64(p.X)-center.X, float64(p.Y)-center.Y)
		if d >= lo && d < hi {
			sum += d
			n++
		}
	}
	if n == 0 {
		return float64(bestBin + minR), bestSupport
	}
	return sum / float64(n), bestSupport
}

// bandFit holds the edge pixels within a band of a circle and their RMS
// distance to it.
type bandFit struct {
	points []geometry.Point
	rms    float64
}

func withinBand(edges []imaging.EdgePoint, c geometry.Circle, band float64) bandFit {
	var f bandFit
	for _, p := range edges {
		pt := geometry.Point{X: float64(p.X), Y: float64(p.Y)}
		if math.Abs(pt.Dist(c.Center)-c.Radius) <= band {
			f.points = append(f.points, pt)
		}
	}
	if len(f.points) > 0 {
		f.rms = rmsDistance(f.points, c)
	}
	return f
}

// refineCircle refits c by least squares to the edge pixels near it.
//
// The band starts at 2% of the radius, wide enough to take in most of the
// limb around a coarse center a few cells off, and halves towards minBand
// whenever a refit stops improving. A refit replaces the current circle
// only when it lies closer to the pixels it was fit to and keeps nearly all
// of the band's support, so edges from unrelated features cannot pull the
// circle away.
func refineCircle(edges []imaging.EdgePoint, c geometry.Circle, minBand float64) (geometry.Circle, bool) {
	band := max(minBand, refineBandFraction*c.Radius)
	cur := withinBand(edges, c, band)
	refined := false
	for round := 0; round < maxRefineRounds; round++ {
		if len(cur.points) < 8 {
			break
		}
		fit, err := geometry.FitCircle(cur.points)
		if err == nil && fit.Radius > 0 && rmsDistance(cur.points, fit) < cur.rms {
			next := withinBand(edges, fit, band)
			if 20*len(next.points) >= 19*len(cur.points) {
				c, cur, refined = fit, next, true
				continue
			}
		}
		if band <= minBand {
			break
		}
		band = max(minBand, band/2)
		cur = withinBand(edges, c, band)
	}
	return c, refined
}

func rmsDistance(pts []geometry.Point, c geometry.Circle) float64 {
	var sum float64
	for _, p := range pts {
		d := p.Dist(c.Center) - c.Radius
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(pts)))
}
