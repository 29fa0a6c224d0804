package noise

import (
	"math"
	"testing"
)

func TestSimplex2DVanishesOnLatticeOrigin(t *testing.T) {
	if got := Simplex2D(0, 0); got != 0 {
		t.Errorf("Simplex2D(0, 0) = %v, want 0", got)
	}
	if got := FBM(0, 0); got != 0 {
		t.Errorf("FBM(0, 0) = %v, want 0", got)
	}
}

func TestSimplex2DRange(t *testing.T) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < 200; i++ {
		for j := 0; j < 200; j++ {
			x := float64(i)*0.173 - 17
			y := float64(j)*0.219 - 21
			n := Simplex2D(x, y)
			if math.IsNaN(n) || math.Abs(n) > 1.1 {
				t.Fatalf("Simplex2D(%v, %v) = %v, out of range", x, y, n)
			}
			lo = math.Min(lo, n)
			hi = math.Max(hi, n)
		}
	}
	// The field must actually vary in both directions.
	if lo > -0.3 || hi < 0.3 {
		t.Errorf("range [%v, %v] is suspiciously narrow", lo, hi)
	}
}

func TestSimplex2DIsContinuous(t *testing.T) {
	const step = 1e-4
	for i := 0; i < 1000; i++ {
		x := float64(i) * 0.0377
		y := float64(i) * 0.0213
		d := math.Abs(Simplex2D(x+step, y) - Simplex2D(x, y))
		if d > 0.01 {
			t.Fatalf("jump of %v at (%v, %v)", d, x, y)
		}
	}
}

func TestFBMIsDeterministic(t *testing.T) {
	points := [][2]float64{{0.25, 0.75}, {1.7, 9.2}, {-3.5, 12.125}, {100.01, -42}}
	for _, p := range points {
		a := FBM(p[0], p[1])
		b := FBM(p[0], p[1])
		if math.Float64bits(a) != math.Float64bits(b) {
			t.Errorf("FBM(%v) not reproducible: %v vs %v", p, a, b)
		}
	}
}

func TestFBMBoundedByAmplitudeSum(t *testing.T) {
	// 0.5 + 0.25 + ... over six octaves
	limit := 0.984375 * 1.1
	for i := 0; i < 5000; i++ {
		x := float64(i%71)*0.31 - 11
		y := float64(i/71)*0.27 - 9
		if n := FBM(x, y); math.Abs(n) > limit {
			t.Fatalf("FBM(%v, %v) = %v exceeds %v", x, y, n, limit)
		}
	}
}
