package geometry

import (
	"math"
	"math/rand/v2"
)

// MinimalEnclosingCircle returns the smallest circle such that every point
// lies on or inside it.
//
// The points are visited in a shuffled order (fixed seed, so results are
// reproducible) which gives the incremental algorithm its expected linear
// running time. Boundary traces arrive ordered around the shape, which is
// close to the worst case for an unshuffled pass.
//
// An empty input yields the zero Circle. A single point yields a circle of
// radius 0 centered on it.
func MinimalEnclosingCircle(points []Point) Circle {
	if len(points) == 0 {
		return Circle{}
	}

	pts := make([]Point, len(points))
	copy(pts, points)
	rng := rand.New(rand.NewPCG(0x50a1, 0xd15c))
	rng.Shuffle(len(pts), func(i, j int) {
		pts[i], pts[j] = pts[j], pts[i]
	})

	c := Circle{Center: pts[0]}
	for i := 1; i < len(pts); i++ {
		if c.Contains(pts[i]) {
			continue
		}
		c = Circle{Center: pts[i]}
		for j := 0; j < i; j++ {
			if c.Contains(pts[j]) {
				continue
			}
			c = circleFromDiameter(pts[i], pts[j])
			for k := 0; k < j; k++ {
				if c.Contains(pts[k]) {
					continue
				}
				c = circleThrough(pts[i], pts[j], pts[k])
			}
		}
	}
	return c
}

func circleFromDiameter(a, b Point) Circle {
	center := Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	return Circle{Center: center, Radius: center.Dist(a)}
}

// circleThrough returns the circumcircle of a, b, c. Collinear triples fall
// back to the circle spanned by their two farthest points.
func circleThrough(a, b, c Point) Circle {
	bx, by := b.X-a.X, b.Y-a.Y
	cx, cy := c.X-a.X, c.Y-a.Y
	d := 2 * (bx*cy - by*cx)
	if math.Abs(d) < 1e-12 {
		best := circleFromDiameter(a, b)
		for _, cand := range []Circle{circleFromDiameter(a, c), circleFromDiameter(b, c)} {
			if cand.Radius > best.Radius {
				best = cand
			}
		}
		return best
	}
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	return Circle{
		Center: Point{X: a.X + ux, Y: a.Y + uy},
		Radius: math.Hypot(ux, uy),
	}
}
