// Package opengl provides the OpenGL 4.1 core backend for the water
// background, with a surface backed by a GLFW window.
package opengl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"wavebg/pkg/wave"
)

// Device implements wave.Device on the current OpenGL context.
type Device struct {
	// vertex array object owned by each buffer
	arrays map[wave.Buffer]uint32
}

func newDevice() *Device {
	return &Device{arrays: make(map[wave.Buffer]uint32)}
}

// CompileShader compiles a shader from source
func (d *Device) CompileShader(stage wave.Stage, source string) (wave.Shader, error) {
	var shaderType uint32
	switch stage {
	case wave.VertexStage:
		shaderType = gl.VERTEX_SHADER
	case wave.FragmentStage:
		shaderType = gl.FRAGMENT_SHADER
	default:
		return 0, fmt.Errorf("unknown shader stage %d", stage)
	}

	shader := gl.CreateShader(shaderType)
	if shader == 0 {
		return 0, errors.New("glCreateShader returned 0")
	}

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	// Check for compilation errors
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))

		gl.DeleteShader(shader)

		return 0, errors.New(strings.TrimRight(log, "\x00\n"))
	}

	return wave.Shader(shader), nil
}

// LinkProgram links the two stages. The stages stay attached until they are
// deleted, so the caller keeps ownership of them.
func (d *Device) LinkProgram(vertex, fragment wave.Shader) (wave.Program, error) {
	program := gl.CreateProgram()
	if program == 0 {
		return 0, errors.New("glCreateProgram returned 0")
	}
	gl.AttachShader(program, uint32(vertex))
	gl.AttachShader(program, uint32(fragment))
	gl.LinkProgram(program)

	// Check for linking errors
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))

		gl.DeleteProgram(program)

		return 0, errors.New(strings.TrimRight(log, "\x00\n"))
	}

	return wave.Program(program), nil
}

func (d *Device) DeleteShader(s wave.Shader) {
	gl.DeleteShader(uint32(s))
}

func (d *Device) DeleteProgram(p wave.Program) {
	gl.DeleteProgram(uint32(p))
}

func (d *Device) AttribLocation(p wave.Program, name string) int32 {
	return gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00"))
}

func (d *Device) UniformLocation(p wave.Program, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

// CreateStaticBuffer uploads data with STATIC_DRAW usage. Core profile needs
// a vertex array object bound for drawing, so each buffer gets its own.
func (d *Device) CreateStaticBuffer(data []float32) (wave.Buffer, error) {
	if len(data) == 0 {
		return 0, errors.New("empty vertex data")
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		gl.DeleteBuffers(1, &vbo)
		gl.DeleteVertexArrays(1, &vao)
		return 0, fmt.Errorf("buffer upload failed: GL error 0x%x", code)
	}

	d.arrays[wave.Buffer(vbo)] = vao
	return wave.Buffer(vbo), nil
}

func (d *Device) DeleteBuffer(b wave.Buffer) {
	if vao, ok := d.arrays[b]; ok {
		gl.DeleteVertexArrays(1, &vao)
		delete(d.arrays, b)
	}
	vbo := uint32(b)
	gl.DeleteBuffers(1, &vbo)
}

func (d *Device) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *Device) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) UseProgram(p wave.Program) {
	gl.UseProgram(uint32(p))
}

func (d *Device) BindVertexBuffer(b wave.Buffer, attrib int32, size int) {
	gl.BindVertexArray(d.arrays[b])
	if attrib < 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(b))
	gl.VertexAttribPointerWithOffset(uint32(attrib), int32(size), gl.FLOAT, false, 0, 0)
	gl.EnableVertexAttribArray(uint32(attrib))
}

func (d *Device) Uniform1f(location int32, v float32) {
	gl.Uniform1f(location, v)
}

func (d *Device) Uniform2f(location int32, x, y float32) {
	gl.Uniform2f(location, x, y)
}

func (d *Device) DrawTriangles(first, count int) {
	gl.DrawArrays(gl.TRIANGLES, int32(first), int32(count))
}
