// Package host is the desktop shell of the water background: it owns the
// window and the display-thread frame loop, and mounts the renderer as the
// window's background layer.
package host

import (
	"errors"
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	"wavebg/internal/logger"
	"wavebg/pkg/backend/opengl"
	"wavebg/pkg/config"
	"wavebg/pkg/wave"
)

// Host represents the window the background is mounted in
type Host struct {
	window   *glfw.Window
	config   *config.Config
	logger   *logger.Logger
	loop     *Loop
	renderer *wave.Renderer
	hasGL    bool
}

// NewHost opens the window. It must be called on the main thread.
func NewHost(cfg *config.Config, log *logger.Logger) (*Host, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	window, hasGL, err := createWindow(cfg.Window, log)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}

	loop := &Loop{}
	surface := opengl.NewWindowSurface(window)

	return &Host{
		window:   window,
		config:   cfg,
		logger:   log,
		loop:     loop,
		renderer: wave.New(surface, loop, wave.WithLogger(log)),
		hasGL:    hasGL,
	}, nil
}

// createWindow asks for an OpenGL 4.1 core context. When the driver cannot
// provide one the window is opened without a client API, so the host still
// shows up and the renderer reports the missing capability itself.
func createWindow(cfg config.WindowConfig, log *logger.Logger) (*glfw.Window, bool, error) {
	var monitor *glfw.Monitor
	width, height := cfg.Width, cfg.Height
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		if monitor != nil {
			mode := monitor.GetVideoMode()
			width, height = mode.Width, mode.Height
		}
	}

	setCommonHints(cfg)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(width, height, cfg.Title, monitor, nil)
	if err == nil {
		return window, true, nil
	}
	log.Warnf("OpenGL 4.1 context unavailable: %v", err)

	glfw.DefaultWindowHints()
	setCommonHints(cfg)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	window, err = glfw.CreateWindow(width, height, cfg.Title, monitor, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	return window, false, nil
}

func setCommonHints(cfg config.WindowConfig) {
	glfw.WindowHint(glfw.Resizable, glfw.True)
	if cfg.Transparent {
		glfw.WindowHint(glfw.TransparentFramebuffer, glfw.True)
	}
}

// Run mounts the background and drives frames until the window closes, then
// tears everything down.
func (h *Host) Run() {
	if err := h.renderer.Mount(); err != nil {
		// Decorative only: keep the window up without a background.
		switch {
		case errors.Is(err, wave.ErrCapabilityUnavailable):
			h.logger.Warn("Running without animated background: no graphics acceleration")
		case errors.Is(err, wave.ErrPipelineBuildFailed):
			h.logger.Warn("Running without animated background: shader pipeline failed to build")
		}
	} else {
		h.logger.Infof("OpenGL %s", opengl.Version())
		if h.config.Window.VSync {
			glfw.SwapInterval(1)
		} else {
			glfw.SwapInterval(0)
		}
	}

	for !h.window.ShouldClose() {
		glfw.PollEvents()
		h.processInput()

		if h.loop.RunFrame() && h.hasGL {
			h.window.SwapBuffers()
		} else {
			// Nothing animates; sleep until the user does something.
			glfw.WaitEventsTimeout(0.25)
		}
	}

	h.cleanup()
}

// processInput handles user input
func (h *Host) processInput() {
	// Close the window when ESC is pressed
	if h.window.GetKey(glfw.KeyEscape) == glfw.Press {
		h.window.SetShouldClose(true)
	}
}

// cleanup unmounts the background before the window and GLFW go away
func (h *Host) cleanup() {
	h.logger.Info("Shutting down...")
	h.renderer.Unmount()
	h.window.Destroy()
	glfw.Terminate()
}
