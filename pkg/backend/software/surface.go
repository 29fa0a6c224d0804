package software

import (
	"errors"
	"image"

	"wavebg/pkg/wave"
)

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

// Unavailable makes Acquire fail as if the surface had no acceleration
// context.
func Unavailable() SurfaceOption {
	return func(s *Surface) { s.unavailable = true }
}

// FailCompile makes compilation of stage fail with the given log.
func FailCompile(stage wave.Stage, log string) SurfaceOption {
	return func(s *Surface) {
		s.failStage = stage
		s.failLog = log
	}
}

// FailLink makes every program link fail with the given log.
func FailLink(log string) SurfaceOption {
	return func(s *Surface) { s.linkLog = log }
}

// Surface is an offscreen wave.Surface whose device rasterises on the CPU.
type Surface struct {
	width  int
	height int
	shade  FragmentFunc

	unavailable bool
	failStage   wave.Stage
	failLog     string
	linkLog     string

	device   *Device
	acquired bool
	releases int
}

// NewSurface creates a width x height surface. shade colours each fragment
// of a draw; a nil shade records draws without touching pixels.
func NewSurface(width, height int, shade FragmentFunc, opts ...SurfaceOption) *Surface {
	s := &Surface{width: width, height: height, shade: shade}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Size reports the current backing size.
func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

// Resize changes the backing size, as a host window resize would.
func (s *Surface) Resize(width, height int) {
	s.width, s.height = width, height
}

// Acquire returns a fresh device bound to s.
func (s *Surface) Acquire() (wave.Device, error) {
	if s.unavailable {
		return nil, errors.New("software: surface has no acceleration context")
	}
	if s.acquired {
		return nil, errors.New("software: context already acquired")
	}
	s.device = newDevice(s)
	s.acquired = true
	return s.device, nil
}

// Release drops the binding made by Acquire.
func (s *Surface) Release() {
	if s.acquired {
		s.acquired = false
		s.releases++
	}
}

// Acquired reports whether a context binding is held.
func (s *Surface) Acquired() bool {
	return s.acquired
}

// Releases counts completed Release calls.
func (s *Surface) Releases() int {
	return s.releases
}

// Device returns the most recently acquired device, or nil.
func (s *Surface) Device() *Device {
	return s.device
}

// Image returns the device's colour buffer, or nil before the first clear
// or draw.
func (s *Surface) Image() *image.NRGBA {
	if s.device == nil {
		return nil
	}
	return s.device.framebuffer
}
