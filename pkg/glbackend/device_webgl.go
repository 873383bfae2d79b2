//go:build js && wasm

package glbackend

import (
	"errors"
	"syscall/js"

	"github.com/kjkrol/gokgl/pkg/gpu"
)

const defaultTarget = gpu.TargetWeb

// device drives a WebGL2 rendering context. WebGL hands out objects rather
// than integer names, so they are kept in a table keyed by gpu.Object.
type device struct {
	gl     js.Value
	consts glConsts

	next      gpu.Object
	objects   map[gpu.Object]js.Value
	locations []js.Value
	locIndex  map[locKey]gpu.Location
}

type locKey struct {
	program gpu.Object
	name    string
}

type glConsts struct {
	arrayBuffer        int
	elementArrayBuffer int
	streamDraw         int
	staticDraw         int
	dynamicDraw        int
	floatType          int
	unsignedInt        int
	unsignedByte       int
	triangles          int
	triangleStrip      int
	triangleFan        int
	lines              int
	lineStrip          int
	points             int
	texture2D          int
	texture0           int
	rgba               int
	textureMinFilter   int
	textureMagFilter   int
	textureWrapS       int
	textureWrapT       int
	linear             int
	nearest            int
	clampToEdge        int
	unpackAlignment    int
	colorBufferBit     int
	depthBufferBit     int
	compileStatus      int
	linkStatus         int
	vertexShader       int
	fragmentShader     int
}

func newDevice(glContext any) (gpu.Device, error) {
	gl, ok := glContext.(js.Value)
	if !ok || gl.IsUndefined() || gl.IsNull() {
		return nil, errors.New("glbackend: a webgl2 context is required")
	}
	d := &device{
		gl:       gl,
		objects:  make(map[gpu.Object]js.Value),
		locIndex: make(map[locKey]gpu.Location),
	}
	d.initConsts()
	return d, nil
}

func (d *device) initConsts() {
	d.consts = glConsts{
		arrayBuffer:        d.gl.Get("ARRAY_BUFFER").Int(),
		elementArrayBuffer: d.gl.Get("ELEMENT_ARRAY_BUFFER").Int(),
		streamDraw:         d.gl.Get("STREAM_DRAW").Int(),
		staticDraw:         d.gl.Get("STATIC_DRAW").Int(),
		dynamicDraw:        d.gl.Get("DYNAMIC_DRAW").Int(),
		floatType:          d.gl.Get("FLOAT").Int(),
		unsignedInt:        d.gl.Get("UNSIGNED_INT").Int(),
		unsignedByte:       d.gl.Get("UNSIGNED_BYTE").Int(),
		triangles:          d.gl.Get("TRIANGLES").Int(),
		triangleStrip:      d.gl.Get("TRIANGLE_STRIP").Int(),
		triangleFan:        d.gl.Get("TRIANGLE_FAN").Int(),
		lines:              d.gl.Get("LINES").Int(),
		lineStrip:          d.gl.Get("LINE_STRIP").Int(),
		points:             d.gl.Get("POINTS").Int(),
		texture2D:          d.gl.Get("TEXTURE_2D").Int(),
		texture0:           d.gl.Get("TEXTURE0").Int(),
		rgba:               d.gl.Get("RGBA").Int(),
		textureMinFilter:   d.gl.Get("TEXTURE_MIN_FILTER").Int(),
		textureMagFilter:   d.gl.Get("TEXTURE_MAG_FILTER").Int(),
		textureWrapS:       d.gl.Get("TEXTURE_WRAP_S").Int(),
		textureWrapT:       d.gl.Get("TEXTURE_WRAP_T").Int(),
		linear:             d.gl.Get("LINEAR").Int(),
		nearest:            d.gl.Get("NEAREST").Int(),
		clampToEdge:        d.gl.Get("CLAMP_TO_EDGE").Int(),
		unpackAlignment:    d.gl.Get("UNPACK_ALIGNMENT").Int(),
		colorBufferBit:     d.gl.Get("COLOR_BUFFER_BIT").Int(),
		depthBufferBit:     d.gl.Get("DEPTH_BUFFER_BIT").Int(),
		compileStatus:      d.gl.Get("COMPILE_STATUS").Int(),
		linkStatus:         d.gl.Get("LINK_STATUS").Int(),
		vertexShader:       d.gl.Get("VERTEX_SHADER").Int(),
		fragmentShader:     d.gl.Get("FRAGMENT_SHADER").Int(),
	}
}

func (d *device) put(v js.Value) (gpu.Object, error) {
	if v.IsNull() || v.IsUndefined() {
		return 0, errNoName
	}
	d.next++
	d.objects[d.next] = v
	return d.next, nil
}

// get returns null for the zero object, which unbinds.
func (d *device) get(obj gpu.Object) js.Value {
	if v, ok := d.objects[obj]; ok {
		return v
	}
	return js.Null()
}

func (d *device) drop(obj gpu.Object) js.Value {
	v := d.get(obj)
	delete(d.objects, obj)
	return v
}

func (d *device) bufferTarget(t gpu.BufferTarget) int {
	if t == gpu.ElementArrayBuffer {
		return d.consts.elementArrayBuffer
	}
	return d.consts.arrayBuffer
}

func uint8Array(data []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(data))
	if len(data) > 0 {
		js.CopyBytesToJS(arr, data)
	}
	return arr
}

func (d *device) CreateVertexArray() (gpu.Object, error) {
	return d.put(d.gl.Call("createVertexArray"))
}

func (d *device) BindVertexArray(vao gpu.Object) {
	d.gl.Call("bindVertexArray", d.get(vao))
}

func (d *device) DeleteVertexArray(vao gpu.Object) {
	d.gl.Call("deleteVertexArray", d.drop(vao))
}

func (d *device) CreateShader(stage gpu.Stage) (gpu.Object, error) {
	typ := d.consts.vertexShader
	if stage == gpu.FragmentStage {
		typ = d.consts.fragmentShader
	}
	return d.put(d.gl.Call("createShader", typ))
}

func (d *device) ShaderSource(shader gpu.Object, source string) {
	d.gl.Call("shaderSource", d.get(shader), source)
}

func (d *device) CompileShader(shader gpu.Object) bool {
	s := d.get(shader)
	d.gl.Call("compileShader", s)
	return d.gl.Call("getShaderParameter", s, d.consts.compileStatus).Truthy()
}

func (d *device) ShaderInfoLog(shader gpu.Object) string {
	return d.gl.Call("getShaderInfoLog", d.get(shader)).String()
}

func (d *device) DeleteShader(shader gpu.Object) {
	d.gl.Call("deleteShader", d.drop(shader))
}

func (d *device) CreateProgram() (gpu.Object, error) {
	return d.put(d.gl.Call("createProgram"))
}

func (d *device) AttachShader(program, shader gpu.Object) {
	d.gl.Call("attachShader", d.get(program), d.get(shader))
}

// BindFragDataLocation has no WebGL counterpart; web shaders write gl_FragColor.
func (d *device) BindFragDataLocation(program gpu.Object, color uint32, name string) {}

func (d *device) BindAttribLocation(program gpu.Object, index uint32, name string) {
	d.gl.Call("bindAttribLocation", d.get(program), index, name)
}

func (d *device) LinkProgram(program gpu.Object) bool {
	p := d.get(program)
	d.gl.Call("linkProgram", p)
	return d.gl.Call("getProgramParameter", p, d.consts.linkStatus).Truthy()
}

func (d *device) ProgramInfoLog(program gpu.Object) string {
	return d.gl.Call("getProgramInfoLog", d.get(program)).String()
}

func (d *device) UseProgram(program gpu.Object) {
	d.gl.Call("useProgram", d.get(program))
}

func (d *device) DeleteProgram(program gpu.Object) {
	d.gl.Call("deleteProgram", d.drop(program))
	for key := range d.locIndex {
		if key.program == program {
			d.locations[d.locIndex[key]] = js.Null()
			delete(d.locIndex, key)
		}
	}
}

func (d *device) UniformLocation(program gpu.Object, name string) gpu.Location {
	key := locKey{program: program, name: name}
	if loc, ok := d.locIndex[key]; ok {
		return loc
	}
	v := d.gl.Call("getUniformLocation", d.get(program), name)
	if v.IsNull() || v.IsUndefined() {
		return gpu.NoLocation
	}
	loc := gpu.Location(len(d.locations))
	d.locations = append(d.locations, v)
	d.locIndex[key] = loc
	return loc
}

func (d *device) location(loc gpu.Location) js.Value {
	if loc < 0 || int(loc) >= len(d.locations) {
		return js.Null()
	}
	return d.locations[loc]
}

func (d *device) CreateBuffer() (gpu.Object, error) {
	return d.put(d.gl.Call("createBuffer"))
}

func (d *device) BindBuffer(target gpu.BufferTarget, buffer gpu.Object) {
	d.gl.Call("bindBuffer", d.bufferTarget(target), d.get(buffer))
}

func (d *device) BufferData(target gpu.BufferTarget, size int, usage gpu.BufferUsage) {
	u := d.consts.streamDraw
	switch usage {
	case gpu.StaticDraw:
		u = d.consts.staticDraw
	case gpu.DynamicDraw:
		u = d.consts.dynamicDraw
	}
	d.gl.Call("bufferData", d.bufferTarget(target), size, u)
}

func (d *device) BufferSubData(target gpu.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	d.gl.Call("bufferSubData", d.bufferTarget(target), offset, uint8Array(data))
}

func (d *device) DeleteBuffer(buffer gpu.Object) {
	d.gl.Call("deleteBuffer", d.drop(buffer))
}

func (d *device) CreateTexture() (gpu.Object, error) {
	return d.put(d.gl.Call("createTexture"))
}

func (d *device) ActiveTexture(unit uint32) {
	d.gl.Call("activeTexture", d.consts.texture0+int(unit))
}

func (d *device) BindTexture(texture gpu.Object) {
	d.gl.Call("bindTexture", d.consts.texture2D, d.get(texture))
}

func (d *device) TexParameter(param gpu.TextureParameter, value gpu.TextureValue) {
	pname := d.consts.textureMagFilter
	switch param {
	case gpu.TextureWrapS:
		pname = d.consts.textureWrapS
	case gpu.TextureWrapT:
		pname = d.consts.textureWrapT
	case gpu.TextureMinFilter:
		pname = d.consts.textureMinFilter
	}
	v := d.consts.linear
	switch value {
	case gpu.ClampToEdge:
		v = d.consts.clampToEdge
	case gpu.Nearest:
		v = d.consts.nearest
	}
	d.gl.Call("texParameteri", d.consts.texture2D, pname, v)
}

// TexImage2D stores pixels as RGBA. WebGL2 rejects an RGBA internal format
// fed from RGB data, so RGB pixels are expanded with opaque alpha first.
func (d *device) TexImage2D(width, height int, format gpu.ColorFormat, pixels []byte) {
	if format == gpu.RGB {
		pixels = expandRGB(pixels)
	}
	d.gl.Call("pixelStorei", d.consts.unpackAlignment, 1)
	d.gl.Call("texImage2D", d.consts.texture2D, 0, d.consts.rgba, width, height, 0,
		d.consts.rgba, d.consts.unsignedByte, uint8Array(pixels))
}

func expandRGB(rgb []byte) []byte {
	n := len(rgb) / 3
	out := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		out = append(out, rgb[i*3], rgb[i*3+1], rgb[i*3+2], 0xff)
	}
	return out
}

func (d *device) DeleteTexture(texture gpu.Object) {
	d.gl.Call("deleteTexture", d.drop(texture))
}

func (d *device) EnableVertexAttribArray(index uint32) {
	d.gl.Call("enableVertexAttribArray", index)
}

func (d *device) DisableVertexAttribArray(index uint32) {
	d.gl.Call("disableVertexAttribArray", index)
}

func (d *device) VertexAttribPointer(index uint32, size, stride, offset int) {
	d.gl.Call("vertexAttribPointer", index, size, d.consts.floatType, false, stride, offset)
}

func (d *device) DrawElements(mode gpu.DrawMode, count, offset int) {
	m := d.consts.triangles
	switch mode {
	case gpu.TriangleStrip:
		m = d.consts.triangleStrip
	case gpu.TriangleFan:
		m = d.consts.triangleFan
	case gpu.Lines:
		m = d.consts.lines
	case gpu.LineStrip:
		m = d.consts.lineStrip
	case gpu.Points:
		m = d.consts.points
	}
	d.gl.Call("drawElements", m, count, d.consts.unsignedInt, offset)
}

func (d *device) Clear(mask gpu.ClearMask) {
	bits := 0
	if mask&gpu.ColorBufferBit != 0 {
		bits |= d.consts.colorBufferBit
	}
	if mask&gpu.DepthBufferBit != 0 {
		bits |= d.consts.depthBufferBit
	}
	d.gl.Call("clear", bits)
}

func (d *device) ClearColor(r, g, b, a float32) {
	d.gl.Call("clearColor", r, g, b, a)
}

func (d *device) Uniform1i(loc gpu.Location, x int32) {
	d.gl.Call("uniform1i", d.location(loc), x)
}

func (d *device) Uniform2i(loc gpu.Location, x, y int32) {
	d.gl.Call("uniform2i", d.location(loc), x, y)
}

func (d *device) Uniform3i(loc gpu.Location, x, y, z int32) {
	d.gl.Call("uniform3i", d.location(loc), x, y, z)
}

func (d *device) Uniform4i(loc gpu.Location, x, y, z, w int32) {
	d.gl.Call("uniform4i", d.location(loc), x, y, z, w)
}

func (d *device) Uniform1f(loc gpu.Location, x float32) {
	d.gl.Call("uniform1f", d.location(loc), x)
}

func (d *device) Uniform2f(loc gpu.Location, x, y float32) {
	d.gl.Call("uniform2f", d.location(loc), x, y)
}

func (d *device) Uniform3f(loc gpu.Location, x, y, z float32) {
	d.gl.Call("uniform3f", d.location(loc), x, y, z)
}

func (d *device) Uniform4f(loc gpu.Location, x, y, z, w float32) {
	d.gl.Call("uniform4f", d.location(loc), x, y, z, w)
}

func (d *device) GetError() gpu.ErrorCode {
	return gpu.ErrorCode(d.gl.Call("getError").Int())
}
