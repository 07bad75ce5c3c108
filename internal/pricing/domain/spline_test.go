package domain

import (
	"errors"
	"math"
	"testing"
)

func TestClampedCubicSplineTwoPoints(t *testing.T) {
	// zero end slopes through (0,0),(1,1) gives S(x) = 3x² − 2x³
	s, err := NewClampedCubicSpline([]float64{0, 1}, []float64{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, x := range []float64{-1, -0.5, 0, 0.25, 0.5, 0.75, 1, 1.5, 2} {
		want := 3*x*x - 2*x*x*x
		if got := s.At(x); math.Abs(got-want) > 1e-12 {
			t.Fatalf("S(%g) = %g, want %g", x, got, want)
		}
	}
}

func TestClampedCubicSplineKnotsAndSlopes(t *testing.T) {
	xs := []float64{60, 72, 80, 91, 105}
	ys := []float64{0.31, 0.27, 0.25, 0.24, 0.26}

	s, err := NewClampedCubicSpline(xs, ys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, x := range xs {
		if got := s.At(x); math.Abs(got-ys[i]) > 1e-12 {
			t.Fatalf("S(%g) = %g, want %g", x, got, ys[i])
		}
	}
	if d := s.Derivative(xs[0]); math.Abs(d) > 1e-12 {
		t.Fatalf("left end slope = %g, want 0", d)
	}
	if d := s.Derivative(xs[len(xs)-1]); math.Abs(d) > 1e-12 {
		t.Fatalf("right end slope = %g, want 0", d)
	}

	// first and second derivative continuity at interior knots
	const eps = 1e-7
	for _, x := range xs[1 : len(xs)-1] {
		left := s.Derivative(x - eps)
		right := s.Derivative(x + eps)
		if math.Abs(left-right) > 1e-6 {
			t.Fatalf("slope jump at %g: %g vs %g", x, left, right)
		}
	}
}

func TestClampedCubicSplineExtrapolates(t *testing.T) {
	xs := []float64{60, 80, 100}
	ys := []float64{0.30, 0.25, 0.28}
	s, err := NewClampedCubicSpline(xs, ys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// outside the knots the end pieces keep curving, they are not flat-lined
	if got := s.At(130); got == ys[2] {
		t.Fatalf("expected curve continuation beyond last knot, got flat value %g", got)
	}
	if got := s.At(40); got == ys[0] {
		t.Fatalf("expected curve continuation before first knot, got flat value %g", got)
	}
	if math.IsNaN(s.At(1e6)) {
		t.Fatalf("extrapolation should stay a number")
	}
}

func TestClampedCubicSplineSymmetric(t *testing.T) {
	s, err := NewClampedCubicSpline([]float64{-1, 0, 1}, []float64{1, 0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, x := range []float64{0.1, 0.5, 0.9, 1.5} {
		if a, b := s.At(x), s.At(-x); math.Abs(a-b) > 1e-12 {
			t.Fatalf("S(%g)=%g but S(%g)=%g", x, a, -x, b)
		}
	}
}

func TestClampedCubicSplineErrors(t *testing.T) {
	tests := []struct {
		name   string
		xs, ys []float64
	}{
		{"single point", []float64{1}, []float64{1}},
		{"empty", nil, nil},
		{"length mismatch", []float64{1, 2}, []float64{1}},
		{"duplicate x", []float64{1, 1, 2}, []float64{1, 2, 3}},
		{"descending x", []float64{3, 2, 1}, []float64{1, 2, 3}},
		{"nan", []float64{1, math.NaN()}, []float64{1, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClampedCubicSpline(tc.xs, tc.ys)
			if !errors.Is(err, ErrInvalidSmile) {
				t.Fatalf("expected InvalidSmile, got %v", err)
			}
		})
	}
}
