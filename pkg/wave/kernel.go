package wave

import (
	"image/color"
	"math"

	"wavebg/internal/math/noise"
	"wavebg/internal/util"
)

// Colouring constants shared with FragmentShaderSource.
const (
	TimeScale = 0.1

	highlightLo, highlightHi = 0.4, 0.6
	baseLo, baseHi           = 0.3, 0.5
	highlightMix             = 0.3
	shadowMix                = 0.2
	shadowIntensity          = 0.8
)

// RGB is a linear colour with components in [0,1].
type RGB [3]float64

var (
	// GradientStart is purple-400, the colour along the bottom edge.
	GradientStart = RGB{192.0 / 255.0, 132.0 / 255.0, 252.0 / 255.0}
	// GradientEnd is violet-700, the colour along the top edge.
	GradientEnd = RGB{124.0 / 255.0, 58.0 / 255.0, 237.0 / 255.0}
)

var (
	warpOffsetX = [2]float64{1.7, 9.2}
	warpOffsetY = [2]float64{8.3, 2.8}
)

const (
	warpRateX = 0.15
	warpRateY = 0.126
)

func mixRGB(a, b RGB, t float64) RGB {
	return RGB{util.Lerp(a[0], b[0], t), util.Lerp(a[1], b[1], t), util.Lerp(a[2], b[2], t)}
}

func scaleRGB(c RGB, k float64) RGB {
	return RGB{c[0] * k, c[1] * k, c[2] * k}
}

// Gradient returns the undisturbed vertical gradient at normalised height y.
func Gradient(y float64) RGB {
	return mixRGB(GradientStart, GradientEnd, y)
}

// BaseNoise is the drifting first-level field at q for scaled time t.
// At t = 0 both samples coincide and the result equals noise.FBM(q).
func BaseNoise(qx, qy, t float64) float64 {
	n := noise.FBM(qx+t*0.5, qy+t*0.2)
	return (n + noise.FBM(qx-t*0.3, qy+t*0.4)) * 0.5
}

// WarpedNoise returns the twice domain-warped field at q for scaled time t.
func WarpedNoise(qx, qy, t float64) float64 {
	n := BaseNoise(qx, qy, t)
	rx := noise.FBM(qx+n+warpOffsetX[0]+warpRateX*t, qy+n+warpOffsetX[1]+warpRateX*t)
	ry := noise.FBM(qx+n+warpOffsetY[0]+warpRateY*t, qy+n+warpOffsetY[1]+warpRateY*t)
	return noise.FBM(qx+rx, qy+ry)
}

// WaterColor evaluates the background colour of the fragment whose centre is
// at (fragX, fragY), measured in pixels from the bottom-left corner of a
// width x height viewport, elapsed seconds after the renderer started.
func WaterColor(fragX, fragY, width, height, elapsed float64) RGB {
	stx := fragX / width
	sty := fragY / height
	stx *= width / height

	t := elapsed * TimeScale
	f := WarpedNoise(stx, sty, t)

	highlight := util.SmoothStep(highlightLo, highlightHi, f)
	base := util.SmoothStep(baseLo, baseHi, f)

	gradient := Gradient(sty)
	c := mixRGB(gradient, RGB{1, 1, 1}, highlight*highlightMix)
	return mixRGB(c, scaleRGB(gradient, shadowIntensity), (1.0-base)*shadowMix)
}

// Shade is WaterColor in the form the software backend consumes. The output
// is always fully opaque.
func Shade(fragX, fragY float64, resolution [2]float32, elapsed float32) color.NRGBA {
	c := WaterColor(fragX, fragY, float64(resolution[0]), float64(resolution[1]), float64(elapsed))
	return color.NRGBA{R: toByte(c[0]), G: toByte(c[1]), B: toByte(c[2]), A: 0xff}
}

func toByte(v float64) uint8 {
	return uint8(math.Round(util.Clamp(v, 0, 1) * 255))
}
