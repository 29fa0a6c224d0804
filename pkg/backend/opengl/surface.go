package opengl

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"wavebg/pkg/wave"
)

// WindowSurface adapts a GLFW window to wave.Surface.
type WindowSurface struct {
	window *glfw.Window
	device *Device
}

// NewWindowSurface wraps win. The window must have been created on the
// main thread.
func NewWindowSurface(win *glfw.Window) *WindowSurface {
	return &WindowSurface{window: win}
}

// Size returns the framebuffer size in device pixels, which differs from the
// window size on high-DPI displays.
func (s *WindowSurface) Size() (int, int) {
	return s.window.GetFramebufferSize()
}

// Acquire makes the window's context current and loads the GL entry points.
func (s *WindowSurface) Acquire() (wave.Device, error) {
	if s.window.GetAttrib(glfw.ClientAPI) != glfw.OpenGLAPI {
		return nil, errors.New("window has no OpenGL context")
	}

	s.window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.DetachCurrentContext()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	s.device = newDevice()
	return s.device, nil
}

// Release detaches the context from the calling thread.
func (s *WindowSurface) Release() {
	if s.device == nil {
		return
	}
	s.device = nil
	glfw.DetachCurrentContext()
}

// Version reports the GL version string of the current context.
func Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}
