// Package noise implements the gradient noise used by the water background.
//
// The functions mirror the GLSL in pkg/wave operation for operation, so a
// CPU evaluation and a GPU evaluation follow the same formula order.
package noise

import (
	"math"

	"wavebg/internal/util"
)

// Skew and unskew factors of the 2D simplex lattice.
const (
	g2    = 0.211324865405187  // (3 - sqrt(3)) / 6
	f2    = 0.366025403784439  // (sqrt(3) - 1) / 2
	g2m1  = -0.577350269189626 // -1 + 2 * g2
	inv41 = 0.024390243902439  // 1 / 41
)

// Octaves is the number of simplex layers summed by FBM.
const Octaves = 6

// mod289 keeps permutation inputs in a range where the polynomial stays exact.
func mod289(x float64) float64 {
	return x - math.Floor(x*(1.0/289.0))*289.0
}

// permute is the (34x^2 + x) mod 289 permutation polynomial.
func permute(x float64) float64 {
	return mod289((x*34.0 + 1.0) * x)
}

// Simplex2D evaluates 2D simplex noise at (x, y). The result lies roughly in
// [-1, 1]. Gradients come from a permutation polynomial instead of a lookup
// table, so the function has no state and no seed.
func Simplex2D(x, y float64) float64 {
	// First corner
	s := (x + y) * f2
	ix := math.Floor(x + s)
	iy := math.Floor(y + s)
	t := (ix + iy) * g2
	x0 := x - ix + t
	y0 := y - iy + t

	// Other corners
	var i1x, i1y float64
	if x0 > y0 {
		i1x, i1y = 1, 0
	} else {
		i1x, i1y = 0, 1
	}
	x1 := x0 + g2 - i1x
	y1 := y0 + g2 - i1y
	x2 := x0 + g2m1
	y2 := y0 + g2m1

	// Permutations
	ix = mod289(ix)
	iy = mod289(iy)
	p := [3]float64{
		permute(permute(iy) + ix),
		permute(permute(iy+i1y) + ix + i1x),
		permute(permute(iy+1) + ix + 1),
	}

	m := [3]float64{
		math.Max(0.5-(x0*x0+y0*y0), 0),
		math.Max(0.5-(x1*x1+y1*y1), 0),
		math.Max(0.5-(x2*x2+y2*y2), 0),
	}

	// Gradients: 41 points uniformly over a line, mapped onto a diamond.
	dx := [3]float64{x0, x1, x2}
	dy := [3]float64{y0, y1, y2}
	sum := 0.0
	for k := 0; k < 3; k++ {
		mk := m[k] * m[k]
		mk *= mk

		gx := 2.0*util.Fract(p[k]*inv41) - 1.0
		h := math.Abs(gx) - 0.5
		ox := math.Floor(gx + 0.5)
		a0 := gx - ox

		// Normalise gradients implicitly by scaling m.
		mk *= 1.79284291400159 - 0.85373472095314*(a0*a0+h*h)

		sum += mk * (a0*dx[k] + h*dy[k])
	}

	return 130.0 * sum
}

// FBM sums Octaves layers of Simplex2D. Each layer doubles the input
// frequency and halves the amplitude, starting from 0.5.
func FBM(x, y float64) float64 {
	value := 0.0
	amplitude := 0.5
	for i := 0; i < Octaves; i++ {
		value += amplitude * Simplex2D(x, y)
		x *= 2.0
		y *= 2.0
		amplitude *= 0.5
	}
	return value
}
