// Package wave renders the animated water background: a full-screen quad
// shaded by a domain-warped fractal noise field, redrawn once per displayed
// frame.
package wave

import (
	"errors"
	"fmt"
	"time"

	"wavebg/internal/logger"
)

// quadVertices holds two triangles covering the viewport in NDC.
var quadVertices = []float32{
	-1, -1,
	1, -1,
	-1, 1,
	-1, 1,
	1, -1,
	1, 1,
}

const quadVertexCount = 6

type state int

const (
	stateIdle state = iota
	stateRunning
	stateFailed
	stateClosed
)

// Option customises the collaborators of a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for lifecycle and failure messages.
func WithLogger(l *logger.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithClock replaces the monotonic system clock.
func WithClock(c Clock) Option {
	return func(r *Renderer) { r.clock = c }
}

// Renderer owns a surface's graphics context, the water pipeline, the quad
// geometry and the self-rescheduling frame callback.
type Renderer struct {
	surface Surface
	frames  FrameScheduler
	clock   Clock
	logger  *logger.Logger

	state  state
	device Device

	vertexShader   Shader
	fragmentShader Shader
	program        Program
	quad           Buffer

	positionLoc   int32
	resolutionLoc int32
	timeLoc       int32

	start    time.Time
	lastTime float32
	width    int
	height   int

	frame   FrameHandle
	pending bool
}

// New creates a renderer for surface whose frames are driven by frames.
// Nothing is allocated until Mount.
func New(surface Surface, frames FrameScheduler, opts ...Option) *Renderer {
	r := &Renderer{
		surface: surface,
		frames:  frames,
		clock:   systemClock{},
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mount acquires the graphics context, builds the pipeline, uploads the quad
// and schedules the first frame. A failure is logged, leaves every resource
// released and the background blank; the returned error matches
// ErrCapabilityUnavailable or ErrPipelineBuildFailed.
func (r *Renderer) Mount() error {
	if r.state != stateIdle {
		return errors.New("wave: renderer already mounted")
	}

	device, err := r.surface.Acquire()
	if err != nil {
		r.state = stateFailed
		err = fmt.Errorf("%w: %v", ErrCapabilityUnavailable, err)
		r.logger.Errorf("Water background disabled: %v", err)
		return err
	}
	r.device = device

	if err := r.buildPipeline(); err != nil {
		r.releaseResources()
		r.surface.Release()
		r.device = nil
		r.state = stateFailed
		r.logger.Errorf("Water background disabled: %v", err)
		return err
	}

	r.quad, err = r.device.CreateStaticBuffer(quadVertices)
	if err != nil {
		r.releaseResources()
		r.surface.Release()
		r.device = nil
		r.state = stateFailed
		err = fmt.Errorf("wave: upload quad: %w", err)
		r.logger.Errorf("Water background disabled: %v", err)
		return err
	}

	r.positionLoc = r.device.AttribLocation(r.program, "a_position")
	r.resolutionLoc = r.device.UniformLocation(r.program, "u_resolution")
	r.timeLoc = r.device.UniformLocation(r.program, "u_time")

	r.start = r.clock.Now()
	r.lastTime = 0
	r.state = stateRunning
	r.schedule()

	r.logger.Info("Water background mounted")
	return nil
}

// buildPipeline compiles both stages and links them. Objects created before
// a failure stay recorded on r so the caller can release them.
func (r *Renderer) buildPipeline() error {
	var err error

	r.vertexShader, err = r.device.CompileShader(VertexStage, VertexShaderSource)
	if err != nil {
		return &PipelineError{Stage: VertexStage, Log: err.Error()}
	}

	r.fragmentShader, err = r.device.CompileShader(FragmentStage, FragmentShaderSource)
	if err != nil {
		return &PipelineError{Stage: FragmentStage, Log: err.Error()}
	}

	r.program, err = r.device.LinkProgram(r.vertexShader, r.fragmentShader)
	if err != nil {
		return &PipelineError{Log: err.Error()}
	}

	return nil
}

func (r *Renderer) schedule() {
	r.frame = r.frames.RequestFrame(r.tick)
	r.pending = true
}

// tick draws one frame and queues the next.
func (r *Renderer) tick() {
	r.pending = false
	if r.state != stateRunning {
		return
	}

	// The host may resize the surface at any time; sample it every frame.
	width, height := r.surface.Size()
	if width != r.width || height != r.height {
		r.device.Viewport(0, 0, width, height)
		r.width, r.height = width, height
		r.logger.Debugf("Water background viewport %dx%d", width, height)
	}

	if width > 0 && height > 0 {
		r.device.Clear(0, 0, 0, 0)

		r.device.UseProgram(r.program)
		r.device.BindVertexBuffer(r.quad, r.positionLoc, 2)

		r.device.Uniform1f(r.timeLoc, r.elapsed())
		r.device.Uniform2f(r.resolutionLoc, float32(width), float32(height))

		r.device.DrawTriangles(0, quadVertexCount)
	}

	r.schedule()
}

// elapsed returns seconds since Mount, never less than the previous frame's.
func (r *Renderer) elapsed() float32 {
	t := float32(r.clock.Now().Sub(r.start).Seconds())
	if t < r.lastTime {
		t = r.lastTime
	}
	r.lastTime = t
	return t
}

// Unmount cancels the pending frame and releases the pipeline, the quad
// buffer and the context binding, in that order. It is safe to call more
// than once and after a failed Mount.
func (r *Renderer) Unmount() {
	if r.state != stateRunning {
		r.state = stateClosed
		return
	}

	if r.pending {
		r.frames.CancelFrame(r.frame)
		r.pending = false
	}

	r.releaseResources()
	r.surface.Release()
	r.device = nil
	r.state = stateClosed

	r.logger.Info("Water background unmounted")
}

// releaseResources deletes whatever pipeline objects exist, in reverse
// order of creation.
func (r *Renderer) releaseResources() {
	if r.quad != 0 {
		r.device.DeleteBuffer(r.quad)
		r.quad = 0
	}
	if r.program != 0 {
		r.device.DeleteProgram(r.program)
		r.program = 0
	}
	if r.fragmentShader != 0 {
		r.device.DeleteShader(r.fragmentShader)
		r.fragmentShader = 0
	}
	if r.vertexShader != 0 {
		r.device.DeleteShader(r.vertexShader)
		r.vertexShader = 0
	}
}

// Running reports whether the frame loop is active.
func (r *Renderer) Running() bool {
	return r.state == stateRunning
}

// Viewport returns the viewport size configured by the most recent frame.
func (r *Renderer) Viewport() (width, height int) {
	return r.width, r.height
}
