// Package gputest provides an in-memory gpu.Device for tests.
//
// A Recorder keeps every call it receives, emulates enough device state to
// catch misuse (unbound targets, out of range writes, missing program) and
// queues the error codes a real device would report for it.
package gputest

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kjkrol/gokgl/pkg/gpu"
)

// Call is one recorded device call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprint(a)
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

type Shader struct {
	Stage    gpu.Stage
	Source   string
	Compiled bool
}

type Program struct {
	Shaders      []gpu.Object
	Attribs      map[string]uint32
	FragData     map[string]uint32
	Linked       bool
	Uniforms     map[string]gpu.Location
	uniformNames []string
}

type Texture struct {
	Width  int
	Height int
	Format gpu.ColorFormat
	Pixels []byte
	Params map[gpu.TextureParameter]gpu.TextureValue
}

// Recorder implements gpu.Device. The zero value is not usable; call New.
type Recorder struct {
	Calls []Call

	next     gpu.Object
	live     map[gpu.Object]string
	shaders  map[gpu.Object]*Shader
	programs map[gpu.Object]*Program
	buffers  map[gpu.Object][]byte
	textures map[gpu.Object]*Texture
	bound    map[gpu.BufferTarget]gpu.Object
	texture  gpu.Object
	unit     uint32
	program  gpu.Object
	vao      gpu.Object
	enabled  map[uint32]bool
	clear    [4]float32
	errors   []gpu.ErrorCode

	failCompile map[gpu.Stage]string
	failLink    *string
	failCreate  map[string]error
}

var _ gpu.Device = (*Recorder)(nil)

func New() *Recorder {
	return &Recorder{
		live:        make(map[gpu.Object]string),
		shaders:     make(map[gpu.Object]*Shader),
		programs:    make(map[gpu.Object]*Program),
		buffers:     make(map[gpu.Object][]byte),
		textures:    make(map[gpu.Object]*Texture),
		bound:       make(map[gpu.BufferTarget]gpu.Object),
		enabled:     make(map[uint32]bool),
		failCompile: make(map[gpu.Stage]string),
		failCreate:  make(map[string]error),
	}
}

// FailCompile makes every compile of the given stage fail with log.
func (r *Recorder) FailCompile(stage gpu.Stage, log string) {
	r.failCompile[stage] = log
}

// FailLink makes every link fail with log.
func (r *Recorder) FailLink(log string) {
	r.failLink = &log
}

// FailCreate makes creation of kind fail. Kinds are "vertex array",
// "shader", "program", "buffer" and "texture".
func (r *Recorder) FailCreate(kind string) {
	r.failCreate[kind] = errors.New("gputest: " + kind + " creation refused")
}

// PushError queues an error code as if the device had raised it.
func (r *Recorder) PushError(code gpu.ErrorCode) {
	r.errors = append(r.errors, code)
}

// PendingErrors returns the codes queued and not yet drained.
func (r *Recorder) PendingErrors() []gpu.ErrorCode {
	return append([]gpu.ErrorCode(nil), r.errors...)
}

// Names returns the names of the recorded calls in order.
func (r *Recorder) Names() []string {
	names := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		names[i] = c.Name
	}
	return names
}

// Find returns the recorded calls with the given name.
func (r *Recorder) Find(name string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) Count(name string) int {
	return len(r.Find(name))
}

// Reset forgets the recorded calls but keeps device state.
func (r *Recorder) Reset() {
	r.Calls = nil
}

// Live returns the number of objects created and not deleted.
func (r *Recorder) Live() int {
	return len(r.live)
}

func (r *Recorder) Shader(obj gpu.Object) *Shader { return r.shaders[obj] }
func (r *Recorder) Program(obj gpu.Object) *Program { return r.programs[obj] }
func (r *Recorder) Texture(obj gpu.Object) *Texture { return r.textures[obj] }
func (r *Recorder) Buffer(obj gpu.Object) []byte { return r.buffers[obj] }
func (r *Recorder) Bound(t gpu.BufferTarget) gpu.Object { return r.bound[t] }
func (r *Recorder) BoundTexture() gpu.Object { return r.texture }
func (r *Recorder) ActiveUnit() uint32 { return r.unit }
func (r *Recorder) CurrentProgram() gpu.Object { return r.program }
func (r *Recorder) VertexArray() gpu.Object { return r.vao }
func (r *Recorder) ClearValue() [4]float32 { return r.clear }

// EnabledAttribs returns the enabled vertex attribute indices in ascending order.
func (r *Recorder) EnabledAttribs() []uint32 {
	out := make([]uint32, 0, len(r.enabled))
	for i := range r.enabled {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

func (r *Recorder) record(name string, args ...any) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
}

func (r *Recorder) raise(code gpu.ErrorCode) {
	r.errors = append(r.errors, code)
}

func (r *Recorder) create(kind string) (gpu.Object, error) {
	if err := r.failCreate[kind]; err != nil {
		return 0, err
	}
	r.next++
	r.live[r.next] = kind
	return r.next, nil
}

func (r *Recorder) remove(obj gpu.Object, kind string) {
	if obj == 0 {
		return
	}
	if r.live[obj] != kind {
		r.raise(gpu.InvalidValue)
		return
	}
	delete(r.live, obj)
}

func (r *Recorder) CreateVertexArray() (gpu.Object, error) {
	r.record("CreateVertexArray")
	return r.create("vertex array")
}

func (r *Recorder) BindVertexArray(vao gpu.Object) {
	r.record("BindVertexArray", vao)
	r.vao = vao
}

func (r *Recorder) DeleteVertexArray(vao gpu.Object) {
	r.record("DeleteVertexArray", vao)
	r.remove(vao, "vertex array")
	if r.vao == vao {
		r.vao = 0
	}
}

func (r *Recorder) CreateShader(stage gpu.Stage) (gpu.Object, error) {
	r.record("CreateShader", stage)
	obj, err := r.create("shader")
	if err != nil {
		return 0, err
	}
	r.shaders[obj] = &Shader{Stage: stage}
	return obj, nil
}

func (r *Recorder) ShaderSource(shader gpu.Object, source string) {
	r.record("ShaderSource", shader, source)
	if sh := r.shaders[shader]; sh != nil {
		sh.Source = source
		return
	}
	r.raise(gpu.InvalidValue)
}

func (r *Recorder) CompileShader(shader gpu.Object) bool {
	r.record("CompileShader", shader)
	sh := r.shaders[shader]
	if sh == nil {
		r.raise(gpu.InvalidValue)
		return false
	}
	if _, fail := r.failCompile[sh.Stage]; fail {
		return false
	}
	sh.Compiled = true
	return true
}

func (r *Recorder) ShaderInfoLog(shader gpu.Object) string {
	r.record("ShaderInfoLog", shader)
	if sh := r.shaders[shader]; sh != nil {
		return r.failCompile[sh.Stage]
	}
	return ""
}

func (r *Recorder) DeleteShader(shader gpu.Object) {
	r.record("DeleteShader", shader)
	r.remove(shader, "shader")
	delete(r.shaders, shader)
}

func (r *Recorder) CreateProgram() (gpu.Object, error) {
	r.record("CreateProgram")
	obj, err := r.create("program")
	if err != nil {
		return 0, err
	}
	r.programs[obj] = &Program{
		Attribs:  make(map[string]uint32),
		FragData: make(map[string]uint32),
		Uniforms: make(map[string]gpu.Location),
	}
	return obj, nil
}

func (r *Recorder) AttachShader(program, shader gpu.Object) {
	r.record("AttachShader", program, shader)
	p := r.programs[program]
	if p == nil || r.shaders[shader] == nil {
		r.raise(gpu.InvalidValue)
		return
	}
	p.Shaders = append(p.Shaders, shader)
}

func (r *Recorder) BindFragDataLocation(program gpu.Object, color uint32, name string) {
	r.record("BindFragDataLocation", program, color, name)
	if p := r.programs[program]; p != nil {
		p.FragData[name] = color
	}
}

func (r *Recorder) BindAttribLocation(program gpu.Object, index uint32, name string) {
	r.record("BindAttribLocation", program, index, name)
	if p := r.programs[program]; p != nil {
		p.Attribs[name] = index
	}
}

// LinkProgram assigns sequential locations to the uniforms declared in the
// attached sources. A uniform whose name never appears outside its
// declaration is treated as inactive, as a real linker would.
func (r *Recorder) LinkProgram(program gpu.Object) bool {
	r.record("LinkProgram", program)
	p := r.programs[program]
	if p == nil {
		r.raise(gpu.InvalidValue)
		return false
	}
	if r.failLink != nil {
		return false
	}
	var sources []string
	for _, obj := range p.Shaders {
		if sh := r.shaders[obj]; sh != nil {
			sources = append(sources, sh.Source)
		}
	}
	all := strings.Join(sources, "\n")
	for _, line := range strings.Split(all, "\n") {
		fields := strings.Fields(strings.TrimSuffix(strings.TrimSpace(line), ";"))
		if len(fields) != 3 || fields[0] != "uniform" {
			continue
		}
		name := fields[2]
		if _, seen := p.Uniforms[name]; seen {
			continue
		}
		p.Uniforms[name] = gpu.NoLocation
		p.uniformNames = append(p.uniformNames, name)
	}
	next := gpu.Location(0)
	for _, name := range p.uniformNames {
		if uses(all, name) {
			p.Uniforms[name] = next
			next++
		}
	}
	p.Linked = true
	return true
}

// uses reports whether name occurs in src on a line that is not its
// uniform declaration.
func uses(src, name string) bool {
	for _, line := range strings.Split(src, "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "uniform ") {
			continue
		}
		if strings.Contains(t, name) {
			return true
		}
	}
	return false
}

func (r *Recorder) ProgramInfoLog(program gpu.Object) string {
	r.record("ProgramInfoLog", program)
	if r.failLink != nil {
		return *r.failLink
	}
	return ""
}

func (r *Recorder) UseProgram(program gpu.Object) {
	r.record("UseProgram", program)
	if p := r.programs[program]; program != 0 && (p == nil || !p.Linked) {
		r.raise(gpu.InvalidOperation)
		return
	}
	r.program = program
}

func (r *Recorder) DeleteProgram(program gpu.Object) {
	r.record("DeleteProgram", program)
	r.remove(program, "program")
	delete(r.programs, program)
	if r.program == program {
		r.program = 0
	}
}

func (r *Recorder) UniformLocation(program gpu.Object, name string) gpu.Location {
	r.record("UniformLocation", program, name)
	p := r.programs[program]
	if p == nil || !p.Linked {
		r.raise(gpu.InvalidOperation)
		return gpu.NoLocation
	}
	loc, ok := p.Uniforms[name]
	if !ok {
		return gpu.NoLocation
	}
	return loc
}

func (r *Recorder) CreateBuffer() (gpu.Object, error) {
	r.record("CreateBuffer")
	obj, err := r.create("buffer")
	if err != nil {
		return 0, err
	}
	r.buffers[obj] = nil
	return obj, nil
}

func (r *Recorder) BindBuffer(target gpu.BufferTarget, buffer gpu.Object) {
	r.record("BindBuffer", target, buffer)
	if _, ok := r.buffers[buffer]; buffer != 0 && !ok {
		r.raise(gpu.InvalidValue)
		return
	}
	r.bound[target] = buffer
}

// BufferData reallocates the bound buffer, discarding its contents.
func (r *Recorder) BufferData(target gpu.BufferTarget, size int, usage gpu.BufferUsage) {
	r.record("BufferData", target, size, usage)
	obj := r.bound[target]
	if obj == 0 {
		r.raise(gpu.InvalidOperation)
		return
	}
	if size < 0 {
		r.raise(gpu.InvalidValue)
		return
	}
	r.buffers[obj] = make([]byte, size)
}

func (r *Recorder) BufferSubData(target gpu.BufferTarget, offset int, data []byte) {
	r.record("BufferSubData", target, offset, len(data))
	obj := r.bound[target]
	if obj == 0 {
		r.raise(gpu.InvalidOperation)
		return
	}
	buf := r.buffers[obj]
	if offset < 0 || offset+len(data) > len(buf) {
		r.raise(gpu.InvalidValue)
		return
	}
	copy(buf[offset:], data)
}

func (r *Recorder) DeleteBuffer(buffer gpu.Object) {
	r.record("DeleteBuffer", buffer)
	r.remove(buffer, "buffer")
	delete(r.buffers, buffer)
	for t, b := range r.bound {
		if b == buffer {
			r.bound[t] = 0
		}
	}
}

func (r *Recorder) CreateTexture() (gpu.Object, error) {
	r.record("CreateTexture")
	obj, err := r.create("texture")
	if err != nil {
		return 0, err
	}
	r.textures[obj] = &Texture{Params: make(map[gpu.TextureParameter]gpu.TextureValue)}
	return obj, nil
}

func (r *Recorder) ActiveTexture(unit uint32) {
	r.record("ActiveTexture", unit)
	r.unit = unit
}

func (r *Recorder) BindTexture(texture gpu.Object) {
	r.record("BindTexture", texture)
	if _, ok := r.textures[texture]; texture != 0 && !ok {
		r.raise(gpu.InvalidValue)
		return
	}
	r.texture = texture
}

func (r *Recorder) TexParameter(param gpu.TextureParameter, value gpu.TextureValue) {
	r.record("TexParameter", param, value)
	tex := r.textures[r.texture]
	if tex == nil {
		r.raise(gpu.InvalidOperation)
		return
	}
	tex.Params[param] = value
}

func (r *Recorder) TexImage2D(width, height int, format gpu.ColorFormat, pixels []byte) {
	r.record("TexImage2D", width, height, format, len(pixels))
	tex := r.textures[r.texture]
	if tex == nil {
		r.raise(gpu.InvalidOperation)
		return
	}
	if len(pixels) < width*height*format.Channels() {
		r.raise(gpu.InvalidValue)
		return
	}
	tex.Width, tex.Height, tex.Format = width, height, format
	tex.Pixels = append([]byte(nil), pixels...)
}

func (r *Recorder) DeleteTexture(texture gpu.Object) {
	r.record("DeleteTexture", texture)
	r.remove(texture, "texture")
	delete(r.textures, texture)
	if r.texture == texture {
		r.texture = 0
	}
}

func (r *Recorder) EnableVertexAttribArray(index uint32) {
	r.record("EnableVertexAttribArray", index)
	r.enabled[index] = true
}

func (r *Recorder) DisableVertexAttribArray(index uint32) {
	r.record("DisableVertexAttribArray", index)
	delete(r.enabled, index)
}

func (r *Recorder) VertexAttribPointer(index uint32, size, stride, offset int) {
	r.record("VertexAttribPointer", index, size, stride, offset)
	if r.bound[gpu.ArrayBuffer] == 0 {
		r.raise(gpu.InvalidOperation)
	}
}

func (r *Recorder) DrawElements(mode gpu.DrawMode, count, offset int) {
	r.record("DrawElements", mode, count, offset)
	if r.program == 0 || r.bound[gpu.ElementArrayBuffer] == 0 {
		r.raise(gpu.InvalidOperation)
	}
}

func (r *Recorder) Clear(mask gpu.ClearMask) {
	r.record("Clear", mask)
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.record("ClearColor", red, green, blue, alpha)
	r.clear = [4]float32{red, green, blue, alpha}
}

func (r *Recorder) uniform(name string, loc gpu.Location, args ...any) {
	r.record(name, append([]any{loc}, args...)...)
	if r.program == 0 {
		r.raise(gpu.InvalidOperation)
	}
}

func (r *Recorder) Uniform1i(loc gpu.Location, x int32) { r.uniform("Uniform1i", loc, x) }
func (r *Recorder) Uniform2i(loc gpu.Location, x, y int32) {
	r.uniform("Uniform2i", loc, x, y)
}
func (r *Recorder) Uniform3i(loc gpu.Location, x, y, z int32) {
	r.uniform("Uniform3i", loc, x, y, z)
}
func (r *Recorder) Uniform4i(loc gpu.Location, x, y, z, w int32) {
	r.uniform("Uniform4i", loc, x, y, z, w)
}
func (r *Recorder) Uniform1f(loc gpu.Location, x float32) { r.uniform("Uniform1f", loc, x) }
func (r *Recorder) Uniform2f(loc gpu.Location, x, y float32) {
	r.uniform("Uniform2f", loc, x, y)
}
func (r *Recorder) Uniform3f(loc gpu.Location, x, y, z float32) {
	r.uniform("Uniform3f", loc, x, y, z)
}
func (r *Recorder) Uniform4f(loc gpu.Location, x, y, z, w float32) {
	r.uniform("Uniform4f", loc, x, y, z, w)
}

func (r *Recorder) GetError() gpu.ErrorCode {
	if len(r.errors) == 0 {
		return gpu.NoError
	}
	code := r.errors[0]
	r.errors = r.errors[1:]
	return code
}
