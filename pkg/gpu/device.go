package gpu

import "fmt"

// Object is an opaque device-assigned identity. Zero means "none".
type Object uint32

// Location identifies a uniform slot inside a linked program. -1 means the
// device does not know the name.
type Location int32

const NoLocation Location = -1

type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

type BufferUsage int

const (
	StreamDraw BufferUsage = iota
	StaticDraw
	DynamicDraw
)

type TextureParameter int

const (
	TextureWrapS TextureParameter = iota
	TextureWrapT
	TextureMinFilter
	TextureMagFilter
)

type TextureValue int

const (
	ClampToEdge TextureValue = iota
	Linear
	Nearest
)

// DrawMode selects the primitive assembled from the index range. The zero
// value is Triangles.
type DrawMode int

const (
	Triangles DrawMode = iota
	TriangleStrip
	TriangleFan
	Lines
	LineStrip
	Points
)

type ClearMask uint32

const (
	ColorBufferBit ClearMask = 1 << iota
	DepthBufferBit
)

type ErrorCode uint32

const (
	NoError                     ErrorCode = 0
	InvalidEnum                 ErrorCode = 0x0500
	InvalidValue                ErrorCode = 0x0501
	InvalidOperation            ErrorCode = 0x0502
	OutOfMemory                 ErrorCode = 0x0505
	InvalidFramebufferOperation ErrorCode = 0x0506
)

func (c ErrorCode) String() string {
	switch c {
	case NoError:
		return "no error"
	case InvalidEnum:
		return "invalid enum"
	case InvalidValue:
		return "invalid value"
	case InvalidOperation:
		return "invalid operation"
	case OutOfMemory:
		return "out of memory"
	case InvalidFramebufferOperation:
		return "invalid framebuffer operation"
	default:
		return fmt.Sprintf("unknown error 0x%04x", uint32(c))
	}
}

// Device is the raw immediate-mode graphics API driven by a Context. Every
// call is synchronous and must be made from the thread that owns the
// underlying graphics context.
//
// Implementations live in pkg/glbackend (desktop OpenGL, WebGL2) and
// pkg/gpu/gputest (in-memory recorder).
type Device interface {
	CreateVertexArray() (Object, error)
	BindVertexArray(vao Object)
	DeleteVertexArray(vao Object)

	CreateShader(stage Stage) (Object, error)
	ShaderSource(shader Object, source string)
	CompileShader(shader Object) bool
	ShaderInfoLog(shader Object) string
	DeleteShader(shader Object)

	CreateProgram() (Object, error)
	AttachShader(program, shader Object)
	BindFragDataLocation(program Object, color uint32, name string)
	BindAttribLocation(program Object, index uint32, name string)
	LinkProgram(program Object) bool
	ProgramInfoLog(program Object) string
	UseProgram(program Object)
	DeleteProgram(program Object)
	UniformLocation(program Object, name string) Location

	CreateBuffer() (Object, error)
	BindBuffer(target BufferTarget, buffer Object)
	BufferData(target BufferTarget, size int, usage BufferUsage)
	BufferSubData(target BufferTarget, offset int, data []byte)
	DeleteBuffer(buffer Object)

	CreateTexture() (Object, error)
	ActiveTexture(unit uint32)
	BindTexture(texture Object)
	TexParameter(param TextureParameter, value TextureValue)
	TexImage2D(width, height int, format ColorFormat, pixels []byte)
	DeleteTexture(texture Object)

	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size, stride, offset int)

	DrawElements(mode DrawMode, count, offset int)
	Clear(mask ClearMask)
	ClearColor(r, g, b, a float32)

	Uniform1i(loc Location, x int32)
	Uniform2i(loc Location, x, y int32)
	Uniform3i(loc Location, x, y, z int32)
	Uniform4i(loc Location, x, y, z, w int32)
	Uniform1f(loc Location, x float32)
	Uniform2f(loc Location, x, y float32)
	Uniform3f(loc Location, x, y, z float32)
	Uniform4f(loc Location, x, y, z, w float32)

	// GetError pops one pending error code, NoError when the queue is empty.
	GetError() ErrorCode
}
