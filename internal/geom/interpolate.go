package geom

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned when an interpolation parameter lies outside [0,1].
	ErrOutOfRange = errors.New("interpolation parameter out of range")
	// ErrInvalidKind is returned by New for an unknown interpolator kind.
	ErrInvalidKind = errors.New("invalid interpolator kind")
	// ErrInvalidArgument is returned by New when the control points do not fit the kind.
	ErrInvalidArgument = errors.New("invalid interpolator argument")
)

// Kind selects a concrete Interpolator in New.
type Kind int

const (
	KindLinear Kind = iota
	KindHermite
	KindBezier
)

func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindHermite:
		return "hermite"
	case KindBezier:
		return "bezier"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Interpolator maps a parameter t in [0,1] onto a point of a curve.
type Interpolator interface {
	At(t float64) (Point, error)
	Start() Point
	End() Point
}

// New builds the interpolator for kind from its control points:
// linear takes (p0, p1), hermite takes (p0, m0, p1, m1) and bezier takes
// (p0, c1, c2, p1).
func New(kind Kind, points ...Point) (Interpolator, error) {
	want := 0
	switch kind {
	case KindLinear:
		want = 2
	case KindHermite, KindBezier:
		want = 4
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidKind, int(kind))
	}
	if len(points) != want {
		return nil, fmt.Errorf("%w: %s needs %d points, got %d", ErrInvalidArgument, kind, want, len(points))
	}

	switch kind {
	case KindLinear:
		return Linear{P0: points[0], P1: points[1]}, nil
	case KindHermite:
		return Hermite{P0: points[0], M0: points[1], P1: points[2], M1: points[3]}, nil
	default:
		return Bezier{P0: points[0], C1: points[1], C2: points[2], P1: points[3]}, nil
	}
}

func checkParam(t float64) error {
	// NaN fails both comparisons and is rejected too.
	if !(t >= 0 && t <= 1) {
		return fmt.Errorf("%w: t=%v", ErrOutOfRange, t)
	}
	return nil
}

// Linear is the straight segment from P0 to P1.
type Linear struct {
	P0, P1 Point
}

func (l Linear) At(t float64) (Point, error) {
	if err := checkParam(t); err != nil {
		return Point{}, err
	}
	switch t {
	case 0:
		return l.P0, nil
	case 1:
		return l.P1, nil
	}
	return l.P0.Lerp(l.P1, t), nil
}

func (l Linear) Start() Point { return l.P0 }
func (l Linear) End() Point   { return l.P1 }

// Hermite is a cubic Hermite spline from P0 to P1 with tangents M0 and M1.
type Hermite struct {
	P0, M0 Point
	P1, M1 Point
}

func (h Hermite) At(t float64) (Point, error) {
	if err := checkParam(t); err != nil {
		return Point{}, err
	}
	switch t {
	case 0:
		return h.P0, nil
	case 1:
		return h.P1, nil
	}

	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	return Point{
		X: h00*h.P0.X + h10*h.M0.X + h01*h.P1.X + h11*h.M1.X,
		Y: h00*h.P0.Y + h10*h.M0.Y + h01*h.P1.Y + h11*h.M1.Y,
	}, nil
}

func (h Hermite) Start() Point { return h.P0 }
func (h Hermite) End() Point   { return h.P1 }

// Bezier is a cubic Bézier curve from P0 to P1 with control points C1 and C2.
type Bezier struct {
	P0, C1, C2, P1 Point
}

func (b Bezier) At(t float64) (Point, error) {
	if err := checkParam(t); err != nil {
		return Point{}, err
	}
	switch t {
	case 0:
		return b.P0, nil
	case 1:
		return b.P1, nil
	}

	mt := 1 - t
	b1 := mt * mt * mt
	b2 := 3 * t * mt * mt
	b3 := 3 * mt * t * t
	b4 := t * t * t

	return Point{
		X: b1*b.P0.X + b2*b.C1.X + b3*b.C2.X + b4*b.P1.X,
		Y: b1*b.P0.Y + b2*b.C1.Y + b3*b.C2.Y + b4*b.P1.Y,
	}, nil
}

func (b Bezier) Start() Point { return b.P0 }
func (b Bezier) End() Point   { return b.P1 }
