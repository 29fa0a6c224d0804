package wave_test

import (
	"errors"
	"testing"
	"time"

	"wavebg/pkg/backend/software"
	"wavebg/pkg/wave"
)

type fixture struct {
	surface  *software.Surface
	frames   *software.Frames
	clock    *software.StepClock
	renderer *wave.Renderer
}

func newFixture(width, height int, shade software.FragmentFunc, opts ...software.SurfaceOption) *fixture {
	f := &fixture{
		surface: software.NewSurface(width, height, shade, opts...),
		frames:  software.NewFrames(),
		clock:   software.NewStepClock(time.Unix(1700000000, 0)),
	}
	f.renderer = wave.New(f.surface, f.frames, wave.WithClock(f.clock))
	return f
}

// step advances the clock by d and runs one frame.
func (f *fixture) step(t *testing.T, d time.Duration) {
	t.Helper()
	f.clock.Advance(d)
	if !f.frames.Step() {
		t.Fatal("no frame was scheduled")
	}
}

func (f *fixture) draws() []software.DrawCall {
	return f.surface.Device().Draws()
}

func TestMountSchedulesFirstFrame(t *testing.T) {
	f := newFixture(800, 600, nil)
	if err := f.renderer.Mount(); err != nil {
		t.Fatalf("Mount() error: %v", err)
	}
	if !f.renderer.Running() {
		t.Error("renderer not running after Mount")
	}
	if f.frames.Pending() != 1 {
		t.Errorf("pending frames = %d, want 1", f.frames.Pending())
	}
	if len(f.draws()) != 0 {
		t.Error("Mount drew before the first frame callback")
	}
}

func TestFrameDrawsFullScreenQuad(t *testing.T) {
	f := newFixture(800, 600, nil)
	if err := f.renderer.Mount(); err != nil {
		t.Fatal(err)
	}
	f.step(t, 16*time.Millisecond)

	draws := f.draws()
	if len(draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(draws))
	}
	d := draws[0]
	if d.Vertices != 6 {
		t.Errorf("vertices = %d, want 6", d.Vertices)
	}
	if d.Resolution != [2]float32{800, 600} {
		t.Errorf("resolution = %v, want [800 600]", d.Resolution)
	}
	if d.Viewport.Dx() != 800 || d.Viewport.Dy() != 600 {
		t.Errorf("viewport = %v, want 800x600", d.Viewport)
	}
	if d.Time != float32(0.016) {
		t.Errorf("time = %v, want 0.016", d.Time)
	}
	if f.frames.Pending() != 1 {
		t.Errorf("next frame not scheduled, pending = %d", f.frames.Pending())
	}
}

func TestTimeUniformNeverDecreases(t *testing.T) {
	f := newFixture(64, 64, nil)
	if err := f.renderer.Mount(); err != nil {
		t.Fatal(err)
	}

	steps := []time.Duration{
		16 * time.Millisecond,
		0,
		33 * time.Millisecond,
		-50 * time.Millisecond, // clock stepped backwards
		time.Second,
		0,
	}
	for _, d := range steps {
		f.step(t, d)
	}

	draws := f.draws()
	if len(draws) != len(steps) {
		t.Fatalf("draws = %d, want %d", len(draws), len(steps))
	}
	for i := 1; i < len(draws); i++ {
		if draws[i].Time < draws[i-1].Time {
			t.Errorf("frame %d time %v < previous %v", i, draws[i].Time, draws[i-1].Time)
		}
	}
	if draws[0].Time < 0 {
		t.Errorf("first frame time %v < 0", draws[0].Time)
	}
}

func TestResizeAppliesOnNextFrame(t *testing.T) {
	f := newFixture(800, 600, nil)
	if err := f.renderer.Mount(); err != nil {
		t.Fatal(err)
	}
	f.step(t, 16*time.Millisecond)
	f.step(t, 16*time.Millisecond)

	f.surface.Resize(1920, 1080)
	f.step(t, 16*time.Millisecond)
	f.step(t, 16*time.Millisecond)

	draws := f.draws()
	if len(draws) != 4 {
		t.Fatalf("draws = %d, want 4", len(draws))
	}

	for i, d := range draws[:2] {
		if got := d.Resolution[0] / d.Resolution[1]; got != float32(800)/600 {
			t.Errorf("frame %d aspect = %v, want 800/600", i, got)
		}
	}
	for i, d := range draws[2:] {
		if d.Viewport.Dx() != 1920 || d.Viewport.Dy() != 1080 {
			t.Errorf("frame %d viewport = %v, want 1920x1080", i+2, d.Viewport)
		}
		if got := d.Resolution[0] / d.Resolution[1]; got != float32(1920)/1080 {
			t.Errorf("frame %d aspect = %v, want 1920/1080", i+2, got)
		}
	}

	if w, h := f.renderer.Viewport(); w != 1920 || h != 1080 {
		t.Errorf("Viewport() = %dx%d, want 1920x1080", w, h)
	}
}

func TestZeroAreaSurfaceSkipsDrawButKeepsLooping(t *testing.T) {
	f := newFixture(320, 200, nil)
	if err := f.renderer.Mount(); err != nil {
		t.Fatal(err)
	}
	f.step(t, 16*time.Millisecond)

	f.surface.Resize(0, 0)
	f.step(t, 16*time.Millisecond)
	if len(f.draws()) != 1 {
		t.Errorf("draws = %d after minimise, want 1", len(f.draws()))
	}
	if f.frames.Pending() != 1 {
		t.Fatalf("loop stopped on zero-area frame")
	}

	f.surface.Resize(320, 200)
	f.step(t, 16*time.Millisecond)
	if len(f.draws()) != 2 {
		t.Errorf("draws = %d after restore, want 2", len(f.draws()))
	}
}

func TestUnmountCancelsFrameAndReleasesEverything(t *testing.T) {
	f := newFixture(800, 600, nil)
	if err := f.renderer.Mount(); err != nil {
		t.Fatal(err)
	}
	f.step(t, 16*time.Millisecond)
	device := f.surface.Device()

	f.renderer.Unmount()

	if f.frames.Pending() != 0 {
		t.Errorf("pending frames after Unmount = %d, want 0", f.frames.Pending())
	}
	if f.frames.Cancelled != 1 {
		t.Errorf("cancelled = %d, want 1", f.frames.Cancelled)
	}
	if device.Live() != 0 {
		t.Errorf("live GPU objects after Unmount = %d, want 0", device.Live())
	}
	if f.surface.Acquired() {
		t.Error("context still bound after Unmount")
	}
	if f.renderer.Running() {
		t.Error("renderer still running after Unmount")
	}

	if f.frames.Step() {
		t.Error("a frame ran after Unmount")
	}
	if len(device.Draws()) != 1 {
		t.Errorf("draws = %d, want 1", len(device.Draws()))
	}
}

func TestUnmountIsIdempotent(t *testing.T) {
	f := newFixture(100, 100, nil)
	if err := f.renderer.Mount(); err != nil {
		t.Fatal(err)
	}
	f.renderer.Unmount()
	f.renderer.Unmount()

	if f.surface.Releases() != 1 {
		t.Errorf("context released %d times, want 1", f.surface.Releases())
	}
	if err := f.renderer.Mount(); err == nil {
		t.Error("Mount after Unmount succeeded")
	}
}

func TestMountTwiceFails(t *testing.T) {
	f := newFixture(100, 100, nil)
	if err := f.renderer.Mount(); err != nil {
		t.Fatal(err)
	}
	if err := f.renderer.Mount(); err == nil {
		t.Error("second Mount succeeded")
	}
	if f.frames.Pending() != 1 {
		t.Errorf("pending frames = %d, want 1", f.frames.Pending())
	}
}

func TestMountWithoutCapability(t *testing.T) {
	f := newFixture(800, 600, nil, software.Unavailable())

	err := f.renderer.Mount()
	if !errors.Is(err, wave.ErrCapabilityUnavailable) {
		t.Fatalf("Mount() error = %v, want ErrCapabilityUnavailable", err)
	}
	if f.frames.Requested != 0 {
		t.Errorf("frames requested = %d, want 0", f.frames.Requested)
	}
	if f.renderer.Running() {
		t.Error("renderer running without a context")
	}

	f.renderer.Unmount()
	if f.surface.Releases() != 0 {
		t.Errorf("releases = %d, want 0", f.surface.Releases())
	}
}

func TestMountPipelineFailures(t *testing.T) {
	tests := []struct {
		name  string
		opt   software.SurfaceOption
		stage wave.Stage
		log   string
	}{
		{"vertex", software.FailCompile(wave.VertexStage, "0:3: error: syntax error"), wave.VertexStage, "0:3: error: syntax error"},
		{"fragment", software.FailCompile(wave.FragmentStage, "0:42: error: undeclared identifier"), wave.FragmentStage, "0:42: error: undeclared identifier"},
		{"link", software.FailLink("error: varying mismatch"), 0, "error: varying mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(800, 600, nil, tt.opt)

			err := f.renderer.Mount()
			if !errors.Is(err, wave.ErrPipelineBuildFailed) {
				t.Fatalf("Mount() error = %v, want ErrPipelineBuildFailed", err)
			}
			var perr *wave.PipelineError
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not a *PipelineError", err)
			}
			if perr.Stage != tt.stage {
				t.Errorf("stage = %v, want %v", perr.Stage, tt.stage)
			}
			if perr.Log != tt.log {
				t.Errorf("log = %q, want %q", perr.Log, tt.log)
			}

			if live := f.surface.Device().Live(); live != 0 {
				t.Errorf("live objects after failed build = %d, want 0", live)
			}
			if f.surface.Acquired() {
				t.Error("context still bound after failed build")
			}
			if f.frames.Requested != 0 {
				t.Errorf("frames requested = %d, want 0", f.frames.Requested)
			}

			f.renderer.Unmount()
			if f.surface.Releases() != 1 {
				t.Errorf("releases = %d, want 1", f.surface.Releases())
			}
		})
	}
}

// Rendering at t=0 on an 800x600 surface keeps every pixel between the
// darkened gradient and the highlighted gradient.
func TestRenderAtTimeZeroStaysNearGradient(t *testing.T) {
	if testing.Short() {
		t.Skip("full-frame render")
	}

	const width, height = 800, 600
	f := newFixture(width, height, wave.Shade)
	if err := f.renderer.Mount(); err != nil {
		t.Fatal(err)
	}
	f.step(t, 0)

	if d := f.draws(); len(d) != 1 || d[0].Time != 0 {
		t.Fatalf("draws = %+v, want one draw at t=0", d)
	}

	img := f.surface.Image()
	if img.Bounds().Dx() != width || img.Bounds().Dy() != height {
		t.Fatalf("image bounds = %v", img.Bounds())
	}

	for row := 0; row < height; row++ {
		fragY := float64(height-1-row) + 0.5
		g := wave.Gradient(fragY / height)
		for x := 0; x < width; x++ {
			c := img.NRGBAAt(x, row)
			if c.A != 0xff {
				t.Fatalf("pixel (%d,%d) alpha = %d, want 255", x, row, c.A)
			}
			for i, v := range []uint8{c.R, c.G, c.B} {
				lo := g[i]*0.8*255 - 1
				hi := (g[i]+0.3*(1-g[i]))*255 + 1
				if float64(v) < lo || float64(v) > hi {
					t.Fatalf("pixel (%d,%d) channel %d = %d outside [%.1f, %.1f]", x, row, i, v, lo, hi)
				}
			}
		}
	}
}

func TestRenderIsReproducible(t *testing.T) {
	render := func() []byte {
		f := newFixture(96, 54, wave.Shade)
		if err := f.renderer.Mount(); err != nil {
			t.Fatal(err)
		}
		f.step(t, 2500*time.Millisecond)
		return f.surface.Image().Pix
	}

	a, b := render(), render()
	if len(a) != len(b) {
		t.Fatalf("sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("byte %d differs: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestRenderMatchesKernel(t *testing.T) {
	const width, height = 40, 30
	f := newFixture(width, height, wave.Shade)
	if err := f.renderer.Mount(); err != nil {
		t.Fatal(err)
	}
	f.step(t, 750*time.Millisecond)

	img := f.surface.Image()
	elapsed := f.draws()[0].Time
	for _, p := range [][2]int{{0, 0}, {39, 0}, {0, 29}, {39, 29}, {20, 15}} {
		got := img.NRGBAAt(p[0], height-1-p[1])
		want := wave.Shade(float64(p[0])+0.5, float64(p[1])+0.5, [2]float32{width, height}, elapsed)
		if got != want {
			t.Errorf("pixel %v = %v, want %v", p, got, want)
		}
	}
}
