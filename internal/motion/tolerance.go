package motion

import (
	apperrors "go-motion-inspector/internal/errors"
)

// CurvePoints is the number of control points of a ToleranceCurve.
const CurvePoints = 4

// linearOffset keeps integer interpolation precise to a thousandth.
const linearOffset = 1000

// Point is one control point of a ToleranceCurve.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// ToleranceCurve is a piecewise linear function over four points.
// Inputs before the first point or at/after the last one evaluate to 0.
type ToleranceCurve struct {
	points [CurvePoints]Point
}

// NewToleranceCurve validates that x is strictly increasing.
func NewToleranceCurve(points [CurvePoints]Point) (ToleranceCurve, error) {
	for i := 1; i < CurvePoints; i++ {
		if points[i].X <= points[i-1].X {
			return ToleranceCurve{}, apperrors.NewBadConfigurationError("tolerance curve x must be strictly increasing", nil).
				WithDetails("point %d x=%d after x=%d", i, points[i].X, points[i-1].X)
		}
	}
	return ToleranceCurve{points: points}, nil
}

// CurveFromPairs builds a curve from [x, y] pairs.
func CurveFromPairs(pairs [][2]int) (ToleranceCurve, error) {
	if len(pairs) != CurvePoints {
		return ToleranceCurve{}, apperrors.NewBadConfigurationError("tolerance curve needs exactly four points", nil).
			WithDetails("got %d", len(pairs))
	}
	var pts [CurvePoints]Point
	for i, p := range pairs {
		pts[i] = Point{X: p[0], Y: p[1]}
	}
	return NewToleranceCurve(pts)
}

// Pairs returns the control points as [x, y] pairs.
func (c ToleranceCurve) Pairs() [][2]int {
	out := make([][2]int, CurvePoints)
	for i, p := range c.points {
		out[i] = [2]int{p.X, p.Y}
	}
	return out
}

// Evaluate interpolates the segment containing x.
func (c ToleranceCurve) Evaluate(x int) int {
	for i := 0; i < CurvePoints-1; i++ {
		p1, p2 := c.points[i], c.points[i+1]
		if x >= p1.X && x < p2.X {
			return Interpolate(p1, p2, x)
		}
	}
	return 0
}

// Interpolate evaluates the line through p1 and p2 at x using integer
// arithmetic with floor division.
func Interpolate(p1, p2 Point, x int) int {
	if p1.X == p2.X {
		return p1.Y
	}
	a := floorDiv((p1.Y-p2.Y)*linearOffset, p1.X-p2.X)
	b := p1.Y*linearOffset - a*p1.X
	return floorDiv(a*x+b, linearOffset)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
