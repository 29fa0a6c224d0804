// Package software is a CPU implementation of the renderer's graphics
// surface. It rasterises triangles into an image and shades them with a Go
// fragment function, so the water background can be rendered headless.
package software

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"wavebg/pkg/wave"
)

// FragmentFunc colours the fragment centred at (fragX, fragY), in pixels
// from the bottom-left of the viewport. resolution and time are the current
// program's u_resolution and u_time uniforms.
type FragmentFunc func(fragX, fragY float64, resolution [2]float32, time float32) color.NRGBA

// DrawCall records the state one draw ran with.
type DrawCall struct {
	Viewport   image.Rectangle
	Resolution [2]float32
	Time       float32
	Vertices   int
}

var (
	entryPoint  = regexp.MustCompile(`\bvoid\s+main\s*\(\s*\)`)
	uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*;`)
	inputDecl   = regexp.MustCompile(`(?m)^\s*(?:layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*)?in\s+\w+\s+(\w+)\s*;`)
)

type shader struct {
	stage  wave.Stage
	source string
}

type program struct {
	uniforms map[string]int32
	attribs  map[string]int32
	values   map[int32][]float32
}

type binding struct {
	buffer wave.Buffer
	attrib int32
	size   int
}

// Device implements wave.Device on the CPU.
type Device struct {
	surface *Surface
	next    uint32

	shaders  map[wave.Shader]*shader
	programs map[wave.Program]*program
	buffers  map[wave.Buffer][]float32

	framebuffer *image.NRGBA
	viewport    image.Rectangle
	current     wave.Program
	bound       binding

	draws []DrawCall
}

func newDevice(s *Surface) *Device {
	return &Device{
		surface:  s,
		shaders:  make(map[wave.Shader]*shader),
		programs: make(map[wave.Program]*program),
		buffers:  make(map[wave.Buffer][]float32),
	}
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

// CompileShader checks that source declares an entry point.
func (d *Device) CompileShader(stage wave.Stage, source string) (wave.Shader, error) {
	if stage != wave.VertexStage && stage != wave.FragmentStage {
		return 0, fmt.Errorf("0:0: error: unknown shader stage %d", stage)
	}
	if d.surface.failLog != "" && d.surface.failStage == stage {
		return 0, errors.New(d.surface.failLog)
	}
	if strings.TrimSpace(source) == "" {
		return 0, errors.New("0:0: error: empty shader source")
	}
	if !entryPoint.MatchString(source) {
		return 0, errors.New("0:0: error: missing entry point 'void main()'")
	}

	h := wave.Shader(d.id())
	d.shaders[h] = &shader{stage: stage, source: source}
	return h, nil
}

// LinkProgram reflects the uniforms of both stages and the vertex inputs.
func (d *Device) LinkProgram(vertex, fragment wave.Shader) (wave.Program, error) {
	if d.surface.linkLog != "" {
		return 0, errors.New(d.surface.linkLog)
	}

	vs, ok := d.shaders[vertex]
	if !ok || vs.stage != wave.VertexStage {
		return 0, errors.New("error: no compiled vertex stage attached")
	}
	fs, ok := d.shaders[fragment]
	if !ok || fs.stage != wave.FragmentStage {
		return 0, errors.New("error: no compiled fragment stage attached")
	}

	p := &program{
		uniforms: make(map[string]int32),
		attribs:  make(map[string]int32),
		values:   make(map[int32][]float32),
	}
	for _, src := range []string{vs.source, fs.source} {
		for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
			if _, dup := p.uniforms[m[1]]; !dup {
				p.uniforms[m[1]] = int32(len(p.uniforms))
			}
		}
	}
	for i, m := range inputDecl.FindAllStringSubmatch(vs.source, -1) {
		loc := int32(i)
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, fmt.Errorf("error: bad location for %q: %v", m[2], err)
			}
			loc = int32(n)
		}
		p.attribs[m[2]] = loc
	}

	h := wave.Program(d.id())
	d.programs[h] = p
	return h, nil
}

func (d *Device) DeleteShader(s wave.Shader) {
	delete(d.shaders, s)
}

func (d *Device) DeleteProgram(p wave.Program) {
	delete(d.programs, p)
	if d.current == p {
		d.current = 0
	}
}

func (d *Device) AttribLocation(p wave.Program, name string) int32 {
	if prog, ok := d.programs[p]; ok {
		if loc, ok := prog.attribs[name]; ok {
			return loc
		}
	}
	return -1
}

func (d *Device) UniformLocation(p wave.Program, name string) int32 {
	if prog, ok := d.programs[p]; ok {
		if loc, ok := prog.uniforms[name]; ok {
			return loc
		}
	}
	return -1
}

// CreateStaticBuffer copies data into device memory.
func (d *Device) CreateStaticBuffer(data []float32) (wave.Buffer, error) {
	if len(data) == 0 {
		return 0, errors.New("software: empty buffer")
	}
	h := wave.Buffer(d.id())
	d.buffers[h] = append([]float32(nil), data...)
	return h, nil
}

func (d *Device) DeleteBuffer(b wave.Buffer) {
	delete(d.buffers, b)
	if d.bound.buffer == b {
		d.bound = binding{}
	}
}

func (d *Device) Viewport(x, y, width, height int) {
	d.viewport = image.Rect(x, y, x+width, y+height)
}

// Clear fills the whole colour buffer.
func (d *Device) Clear(r, g, b, a float32) {
	d.ensureFramebuffer()
	c := color.NRGBA{R: unit(r), G: unit(g), B: unit(b), A: unit(a)}
	pix := d.framebuffer.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
}

func (d *Device) UseProgram(p wave.Program) {
	d.current = p
}

func (d *Device) BindVertexBuffer(b wave.Buffer, attrib int32, size int) {
	d.bound = binding{buffer: b, attrib: attrib, size: size}
}

func (d *Device) Uniform1f(location int32, v float32) {
	d.setUniform(location, v)
}

func (d *Device) Uniform2f(location int32, x, y float32) {
	d.setUniform(location, x, y)
}

func (d *Device) setUniform(location int32, v ...float32) {
	prog, ok := d.programs[d.current]
	if !ok || location < 0 {
		return
	}
	prog.values[location] = v
}

// uniform returns the current program's value for name, zero-padded to n.
func (d *Device) uniform(name string, n int) []float32 {
	out := make([]float32, n)
	prog, ok := d.programs[d.current]
	if !ok {
		return out
	}
	if loc, ok := prog.uniforms[name]; ok {
		copy(out, prog.values[loc])
	}
	return out
}

// DrawTriangles rasterises count vertices from the bound buffer as a
// triangle list. Calls with nothing to draw are ignored, as GL does.
func (d *Device) DrawTriangles(first, count int) {
	if _, ok := d.programs[d.current]; !ok {
		return
	}
	data, ok := d.buffers[d.bound.buffer]
	if !ok || d.bound.attrib < 0 || d.bound.size < 2 {
		return
	}
	if first < 0 || count < 3 || (first+count)*d.bound.size > len(data) {
		return
	}

	d.ensureFramebuffer()
	res := d.uniform("u_resolution", 2)
	t := d.uniform("u_time", 1)[0]

	d.draws = append(d.draws, DrawCall{
		Viewport:   d.viewport,
		Resolution: [2]float32{res[0], res[1]},
		Time:       t,
		Vertices:   count,
	})

	if d.surface.shade == nil || d.viewport.Empty() {
		return
	}

	for v := first; v+3 <= first+count; v += 3 {
		var tri [3][2]float64
		for k := 0; k < 3; k++ {
			off := (v + k) * d.bound.size
			tri[k] = d.toWindow(data[off], data[off+1])
		}
		d.fillTriangle(tri, [2]float32{res[0], res[1]}, t)
	}
}

// toWindow maps NDC to window pixels, origin bottom-left.
func (d *Device) toWindow(x, y float32) [2]float64 {
	vp := d.viewport
	return [2]float64{
		float64(vp.Min.X) + (float64(x)+1)*0.5*float64(vp.Dx()),
		float64(vp.Min.Y) + (float64(y)+1)*0.5*float64(vp.Dy()),
	}
}

// coverageEpsilon keeps pixels centred on a shared edge from falling
// through both triangles.
const coverageEpsilon = 1e-9

func edge(a, b [2]float64, px, py float64) float64 {
	return (b[0]-a[0])*(py-a[1]) - (b[1]-a[1])*(px-a[0])
}

// fillTriangle shades the pixels whose centres lie inside tri, splitting
// rows across workers.
func (d *Device) fillTriangle(tri [3][2]float64, res [2]float32, t float32) {
	area := edge(tri[0], tri[1], tri[2][0], tri[2][1])
	if area == 0 {
		return
	}

	bounds := d.framebuffer.Bounds().Intersect(d.viewport)
	minX := max(bounds.Min.X, int(math.Floor(math.Min(tri[0][0], math.Min(tri[1][0], tri[2][0])))))
	maxX := min(bounds.Max.X, int(math.Ceil(math.Max(tri[0][0], math.Max(tri[1][0], tri[2][0])))))
	minY := max(bounds.Min.Y, int(math.Floor(math.Min(tri[0][1], math.Min(tri[1][1], tri[2][1])))))
	maxY := min(bounds.Max.Y, int(math.Ceil(math.Max(tri[0][1], math.Max(tri[1][1], tri[2][1])))))
	if minX >= maxX || minY >= maxY {
		return
	}

	workers := runtime.GOMAXPROCS(0)
	band := (maxY - minY + workers - 1) / workers

	var g errgroup.Group
	for y0 := minY; y0 < maxY; y0 += band {
		y1 := min(y0+band, maxY)
		g.Go(func() error {
			d.fillRows(tri, area, minX, maxX, y0, y1, res, t)
			return nil
		})
	}
	_ = g.Wait() // fillRows never fails
}

func (d *Device) fillRows(tri [3][2]float64, area float64, minX, maxX, y0, y1 int, res [2]float32, t float32) {
	fb := d.framebuffer
	height := fb.Bounds().Dy()
	ox := float64(d.viewport.Min.X)
	oy := float64(d.viewport.Min.Y)

	for y := y0; y < y1; y++ {
		py := float64(y) + 0.5
		row := fb.PixOffset(0, height-1-y)
		for x := minX; x < maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(tri[1], tri[2], px, py) / area
			w1 := edge(tri[2], tri[0], px, py) / area
			w2 := edge(tri[0], tri[1], px, py) / area
			if w0 < -coverageEpsilon || w1 < -coverageEpsilon || w2 < -coverageEpsilon {
				continue
			}

			c := d.surface.shade(px-ox, py-oy, res, t)
			i := row + x*4
			fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2], fb.Pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

// ensureFramebuffer keeps the colour buffer the size of the surface.
func (d *Device) ensureFramebuffer() {
	w, h := d.surface.Size()
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if d.framebuffer != nil && d.framebuffer.Rect.Dx() == w && d.framebuffer.Rect.Dy() == h {
		return
	}
	d.framebuffer = image.NewNRGBA(image.Rect(0, 0, w, h))
}

// Draws returns every draw call recorded so far.
func (d *Device) Draws() []DrawCall {
	return d.draws
}

// Live returns the number of shaders, programs and buffers not yet deleted.
func (d *Device) Live() int {
	return len(d.shaders) + len(d.programs) + len(d.buffers)
}

// ViewportRect returns the current viewport.
func (d *Device) ViewportRect() image.Rectangle {
	return d.viewport
}

func unit(v float32) uint8 {
	return uint8(math.Round(math.Min(math.Max(float64(v), 0), 1) * 255))
}
