//go:build !js

package glbackend

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/kjkrol/gokgl/pkg/gpu"
)

const defaultTarget = gpu.TargetDesktop

// device drives the OpenGL 3.3 core context current on the calling thread.
type device struct{}

func newDevice(_ any) (gpu.Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("glbackend: gl.Init: %w", err)
	}
	return &device{}, nil
}

func cstr(s string) *uint8 {
	return gl.Str(s + "\x00")
}

func bufferTarget(t gpu.BufferTarget) uint32 {
	if t == gpu.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func bufferUsage(u gpu.BufferUsage) uint32 {
	switch u {
	case gpu.StaticDraw:
		return gl.STATIC_DRAW
	case gpu.DynamicDraw:
		return gl.DYNAMIC_DRAW
	default:
		return gl.STREAM_DRAW
	}
}

func drawMode(m gpu.DrawMode) uint32 {
	switch m {
	case gpu.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case gpu.TriangleFan:
		return gl.TRIANGLE_FAN
	case gpu.Lines:
		return gl.LINES
	case gpu.LineStrip:
		return gl.LINE_STRIP
	case gpu.Points:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

func pixelFormat(f gpu.ColorFormat) uint32 {
	if f == gpu.RGB {
		return gl.RGB
	}
	return gl.RGBA
}

func (d *device) CreateVertexArray() (gpu.Object, error) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	if vao == 0 {
		return 0, errNoName
	}
	return gpu.Object(vao), nil
}

func (d *device) BindVertexArray(vao gpu.Object) {
	gl.BindVertexArray(uint32(vao))
}

func (d *device) DeleteVertexArray(vao gpu.Object) {
	id := uint32(vao)
	gl.DeleteVertexArrays(1, &id)
}

func (d *device) CreateShader(stage gpu.Stage) (gpu.Object, error) {
	typ := uint32(gl.VERTEX_SHADER)
	if stage == gpu.FragmentStage {
		typ = gl.FRAGMENT_SHADER
	}
	shader := gl.CreateShader(typ)
	if shader == 0 {
		return 0, errNoName
	}
	return gpu.Object(shader), nil
}

func (d *device) ShaderSource(shader gpu.Object, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(uint32(shader), 1, csources, nil)
	free()
}

func (d *device) CompileShader(shader gpu.Object) bool {
	gl.CompileShader(uint32(shader))
	var status int32
	gl.GetShaderiv(uint32(shader), gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (d *device) ShaderInfoLog(shader gpu.Object) string {
	var logLength int32
	gl.GetShaderiv(uint32(shader), gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(uint32(shader), logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (d *device) DeleteShader(shader gpu.Object) {
	gl.DeleteShader(uint32(shader))
}

func (d *device) CreateProgram() (gpu.Object, error) {
	program := gl.CreateProgram()
	if program == 0 {
		return 0, errNoName
	}
	return gpu.Object(program), nil
}

func (d *device) AttachShader(program, shader gpu.Object) {
	gl.AttachShader(uint32(program), uint32(shader))
}

func (d *device) BindFragDataLocation(program gpu.Object, color uint32, name string) {
	gl.BindFragDataLocation(uint32(program), color, cstr(name))
}

func (d *device) BindAttribLocation(program gpu.Object, index uint32, name string) {
	gl.BindAttribLocation(uint32(program), index, cstr(name))
}

func (d *device) LinkProgram(program gpu.Object) bool {
	gl.LinkProgram(uint32(program))
	var status int32
	gl.GetProgramiv(uint32(program), gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (d *device) ProgramInfoLog(program gpu.Object) string {
	var logLength int32
	gl.GetProgramiv(uint32(program), gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(uint32(program), logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (d *device) UseProgram(program gpu.Object) {
	gl.UseProgram(uint32(program))
}

func (d *device) DeleteProgram(program gpu.Object) {
	gl.DeleteProgram(uint32(program))
}

func (d *device) UniformLocation(program gpu.Object, name string) gpu.Location {
	return gpu.Location(gl.GetUniformLocation(uint32(program), cstr(name)))
}

func (d *device) CreateBuffer() (gpu.Object, error) {
	var buf uint32
	gl.GenBuffers(1, &buf)
	if buf == 0 {
		return 0, errNoName
	}
	return gpu.Object(buf), nil
}

func (d *device) BindBuffer(target gpu.BufferTarget, buffer gpu.Object) {
	gl.BindBuffer(bufferTarget(target), uint32(buffer))
}

func (d *device) BufferData(target gpu.BufferTarget, size int, usage gpu.BufferUsage) {
	gl.BufferData(bufferTarget(target), size, nil, bufferUsage(usage))
}

func (d *device) BufferSubData(target gpu.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(bufferTarget(target), offset, len(data), gl.Ptr(data))
}

func (d *device) DeleteBuffer(buffer gpu.Object) {
	id := uint32(buffer)
	gl.DeleteBuffers(1, &id)
}

func (d *device) CreateTexture() (gpu.Object, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0, errNoName
	}
	return gpu.Object(tex), nil
}

func (d *device) ActiveTexture(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
}

func (d *device) BindTexture(texture gpu.Object) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(texture))
}

func (d *device) TexParameter(param gpu.TextureParameter, value gpu.TextureValue) {
	var pname uint32
	switch param {
	case gpu.TextureWrapS:
		pname = gl.TEXTURE_WRAP_S
	case gpu.TextureWrapT:
		pname = gl.TEXTURE_WRAP_T
	case gpu.TextureMinFilter:
		pname = gl.TEXTURE_MIN_FILTER
	default:
		pname = gl.TEXTURE_MAG_FILTER
	}
	var v int32
	switch value {
	case gpu.ClampToEdge:
		v = gl.CLAMP_TO_EDGE
	case gpu.Nearest:
		v = gl.NEAREST
	default:
		v = gl.LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, pname, v)
}

// TexImage2D stores pixels as RGBA8. Rows are tightly packed, so RGB rows
// need a one byte unpack alignment.
func (d *device) TexImage2D(width, height int, format gpu.ColorFormat, pixels []byte) {
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0, pixelFormat(format), gl.UNSIGNED_BYTE, ptr)
}

func (d *device) DeleteTexture(texture gpu.Object) {
	id := uint32(texture)
	gl.DeleteTextures(1, &id)
}

func (d *device) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (d *device) DisableVertexAttribArray(index uint32) {
	gl.DisableVertexAttribArray(index)
}

func (d *device) VertexAttribPointer(index uint32, size, stride, offset int) {
	gl.VertexAttribPointer(index, int32(size), gl.FLOAT, false, int32(stride), gl.PtrOffset(offset))
}

func (d *device) DrawElements(mode gpu.DrawMode, count, offset int) {
	gl.DrawElements(drawMode(mode), int32(count), gl.UNSIGNED_INT, gl.PtrOffset(offset))
}

func (d *device) Clear(mask gpu.ClearMask) {
	var bits uint32
	if mask&gpu.ColorBufferBit != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gpu.DepthBufferBit != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (d *device) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *device) Uniform1i(loc gpu.Location, x int32) { gl.Uniform1i(int32(loc), x) }
func (d *device) Uniform2i(loc gpu.Location, x, y int32) {
	gl.Uniform2i(int32(loc), x, y)
}
func (d *device) Uniform3i(loc gpu.Location, x, y, z int32) {
	gl.Uniform3i(int32(loc), x, y, z)
}
func (d *device) Uniform4i(loc gpu.Location, x, y, z, w int32) {
	gl.Uniform4i(int32(loc), x, y, z, w)
}
func (d *device) Uniform1f(loc gpu.Location, x float32) { gl.Uniform1f(int32(loc), x) }
func (d *device) Uniform2f(loc gpu.Location, x, y float32) {
	gl.Uniform2f(int32(loc), x, y)
}
func (d *device) Uniform3f(loc gpu.Location, x, y, z float32) {
	gl.Uniform3f(int32(loc), x, y, z)
}
func (d *device) Uniform4f(loc gpu.Location, x, y, z, w float32) {
	gl.Uniform4f(int32(loc), x, y, z, w)
}

func (d *device) GetError() gpu.ErrorCode {
	return gpu.ErrorCode(gl.GetError())
}
