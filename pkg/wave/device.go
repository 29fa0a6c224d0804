package wave

import "time"

// Stage identifies a programmable pipeline stage.
type Stage uint8

const (
	VertexStage Stage = iota + 1
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}

// Opaque object handles. Zero is never a live object.
type (
	Shader  uint32
	Program uint32
	Buffer  uint32
)

// Device is the slice of a graphics API the renderer needs. A Device is
// bound to exactly one Surface and is only called from the thread that
// drives the frame callbacks.
type Device interface {
	// CompileShader compiles source for stage. On failure the returned
	// error carries the compiler log and no shader is left behind.
	CompileShader(stage Stage, source string) (Shader, error)
	// LinkProgram links two compiled stages. On failure the returned error
	// carries the linker log and no program is left behind.
	LinkProgram(vertex, fragment Shader) (Program, error)
	DeleteShader(s Shader)
	DeleteProgram(p Program)

	AttribLocation(p Program, name string) int32
	UniformLocation(p Program, name string) int32

	// CreateStaticBuffer uploads data once for write-once, read-many use.
	CreateStaticBuffer(data []float32) (Buffer, error)
	DeleteBuffer(b Buffer)

	Viewport(x, y, width, height int)
	Clear(r, g, b, a float32)
	UseProgram(p Program)
	// BindVertexBuffer feeds b to attrib as tightly packed vectors of size floats.
	BindVertexBuffer(b Buffer, attrib int32, size int)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)
	DrawTriangles(first, count int)
}

// Surface is the drawing surface the host hands to the renderer.
type Surface interface {
	// Size reports the current backing size in device pixels. The host may
	// change it at any time.
	Size() (width, height int)
	// Acquire binds the surface's acceleration context. It fails when the
	// surface cannot provide one.
	Acquire() (Device, error)
	// Release drops the context binding obtained by Acquire.
	Release()
}

// FrameHandle identifies a scheduled frame callback.
type FrameHandle uint64

// FrameScheduler runs callbacks at display refresh cadence, one per frame.
type FrameScheduler interface {
	RequestFrame(fn func()) FrameHandle
	CancelFrame(h FrameHandle)
}

// Clock supplies monotonic timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
