// Package geom holds the 2D primitives and curve interpolators used to
// position scraps and to turn stroke control points into drawable paths.
package geom

import "math"

// Point is a position or displacement on the whiteboard plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p multiplied by s.
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Lerp linearly interpolates between p (t=0) and q (t=1).
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: (1-t)*p.X + t*q.X, Y: (1-t)*p.Y + t*q.Y}
}

// Distance returns the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// IsZero reports whether p is the origin.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}
