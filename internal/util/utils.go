package util

import (
	"math"
	"os"
)

// Lerp performs linear interpolation between a and b with t in [0,1]
func Lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// Clamp restricts a value to be between min and max
func Clamp(value, min, max float64) float64 {
	return math.Min(math.Max(value, min), max)
}

// SmoothStep is the Hermite step between edge0 and edge1, matching GLSL:
// 0 below edge0, 1 above edge1, 3t² - 2t³ in between.
func SmoothStep(edge0, edge1, x float64) float64 {
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Fract returns the fractional part of x, always in [0,1)
func Fract(x float64) float64 {
	return x - math.Floor(x)
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
