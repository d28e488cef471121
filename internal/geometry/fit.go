package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// FitCircle returns the algebraic least-squares circle through points.
//
// It solves x² + y² = D·x + E·y + F for (D, E, F) in the least-squares sense,
// with the points shifted to their centroid first to keep the system well
// conditioned. At least three non-collinear points are required.
func FitCircle(points []Point) (Circle, error) {
	if len(points) < 3 {
		return Circle{}, fmt.Errorf("%w: circle fit needs at least 3 points, got %d", ErrInvalidInput, len(points))
	}

	var mx, my float64
	for _, p := range points {
		mx += p.X
		my += p.Y
	}
	n := float64(len(points))
	mx /= n
	my /= n

	a := mat.NewDense(len(points), 3, nil)
	b := mat.NewVecDense(len(points), nil)
	for i, p := range points {
		x, y := p.X-mx, p.Y-my
		a.Set(i, 0, x)
		a.Set(i, 1, y)
		a.Set(i, 2, 1)
		b.SetVec(i, x*x+y*y)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return Circle{}, fmt.Errorf("%w: circle fit: %v", ErrInvalidInput, err)
	}

	ux := sol.AtVec(0) / 2
	uy := sol.AtVec(1) / 2
	r2 := sol.AtVec(2) + ux*ux + uy*uy
	if r2 <= 0 || math.IsNaN(r2) {
		return Circle{}, fmt.Errorf("%w: circle fit produced no real radius", ErrInvalidInput)
	}
	return Circle{
		Center: Point{X: ux + mx, Y: uy + my},
		Radius: math.Sqrt(r2),
	}, nil
}
