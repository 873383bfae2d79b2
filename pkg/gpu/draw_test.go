package gpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjkrol/gokgl/pkg/gpu"
)

var (
	quadVertices = []float32{
		-0.5, -0.5, 0, 0,
		0.5, -0.5, 1, 0,
		0.5, 0.5, 1, 1,
		-0.5, 0.5, 0, 1,
	}
	quadIndices = []uint32{0, 1, 2, 2, 3, 0}
)

type quad struct {
	shader *gpu.ShaderProgram
	vb     *gpu.VertexBuffer
	eb     *gpu.ElementBuffer
}

func newQuad(t *testing.T, ctx *gpu.Context, desc gpu.ShaderDescription) quad {
	t.Helper()
	shader, err := ctx.NewShader(desc)
	require.NoError(t, err)
	vb, err := ctx.NewVertexBuffer()
	require.NoError(t, err)
	eb, err := ctx.NewElementBuffer()
	require.NoError(t, err)
	require.NoError(t, vb.SetData(0, quadVertices))
	require.NoError(t, eb.SetData(0, quadIndices))
	return quad{shader: shader, vb: vb, eb: eb}
}

// offsetDescription declares an active vec2 and ivec2 uniform plus one that
// no stage reads.
func offsetDescription() gpu.ShaderDescription {
	return gpu.ShaderDescription{
		VertexInput: []gpu.Attribute{gpu.NewAttribute("vert_position", gpu.Vector(2))},
		Uniforms: []gpu.Uniform{
			gpu.NewUniform("offset", gpu.Vec2),
			gpu.NewUniform("cell", gpu.IVec2),
			gpu.NewUniform("unused", gpu.Float),
		},
		VertexShader: `void main() {
	gl_Position = vec4(vert_position + offset + vec2(cell), 0, 1);
}`,
		FragmentShader: `void main() {
	gl_FragColor = vec4(1);
}`,
	}
}

func TestDrawTexturedQuad(t *testing.T) {
	ctx, rec := newContext(t)
	texture, err := ctx.NewTexture([]byte{
		255, 255, 255, 0, 255, 0,
		255, 0, 0, 255, 255, 255,
	}, 2, 2, gpu.RGB)
	require.NoError(t, err)
	q := newQuad(t, ctx, quadDescription())
	require.NoError(t, ctx.BindTexture(texture, 0))
	rec.Reset()

	err = ctx.Draw(q.shader, q.vb, q.eb, []gpu.DrawList{{
		Range:    gpu.IndexRange{Start: 0, End: len(quadIndices)},
		Uniforms: []gpu.UniformBinding{{Name: "image", Value: gpu.IntValue(0)}},
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"UseProgram",
		"BindBuffer", "BindBuffer",
		"EnableVertexAttribArray", "VertexAttribPointer",
		"EnableVertexAttribArray", "VertexAttribPointer",
		"UniformLocation", "Uniform1i",
		"DrawElements",
	}, rec.Names())
	pointers := rec.Find("VertexAttribPointer")
	assert.Equal(t, []any{uint32(0), 2, 16, 0}, pointers[0].Args)
	assert.Equal(t, []any{uint32(1), 2, 16, 8}, pointers[1].Args)
	assert.Equal(t, []any{gpu.Triangles, 6, 0}, rec.Find("DrawElements")[0].Args)
	assert.Equal(t, q.vb.ID(), rec.Bound(gpu.ArrayBuffer))
	assert.Equal(t, q.eb.ID(), rec.Bound(gpu.ElementArrayBuffer))
	assert.Equal(t, q.shader.ID(), rec.CurrentProgram())
	assert.Empty(t, rec.PendingErrors())
}

func TestDrawAppliesUniformsBeforeEachEntry(t *testing.T) {
	ctx, rec := newContext(t)
	q := newQuad(t, ctx, offsetDescription())
	rec.Reset()

	list := []gpu.DrawList{
		{Range: gpu.IndexRange{Start: 0, End: 3}, Uniforms: []gpu.UniformBinding{{Name: "offset", Value: gpu.Vec2Value{1, 0}}}},
		{Range: gpu.IndexRange{Start: 3, End: 6}, Uniforms: []gpu.UniformBinding{{Name: "offset", Value: gpu.Vec2Value{0, 1}}}},
		{Range: gpu.IndexRange{Start: 0, End: 6}, Uniforms: []gpu.UniformBinding{
			{Name: "offset", Value: gpu.Vec2Value{2, 2}},
			{Name: "cell", Value: gpu.IVec2Value{3, 4}},
		}},
	}
	require.NoError(t, ctx.Draw(q.shader, q.vb, q.eb, list))

	var seq []string
	for _, name := range rec.Names() {
		switch name {
		case "Uniform2f", "Uniform2i", "DrawElements":
			seq = append(seq, name)
		}
	}
	assert.Equal(t, []string{
		"Uniform2f", "DrawElements",
		"Uniform2f", "DrawElements",
		"Uniform2f", "Uniform2i", "DrawElements",
	}, seq)

	draws := rec.Find("DrawElements")
	require.Len(t, draws, len(list))
	assert.Equal(t, []any{gpu.Triangles, 3, 0}, draws[0].Args)
	assert.Equal(t, []any{gpu.Triangles, 3, 12}, draws[1].Args)
	assert.Equal(t, []any{gpu.Triangles, 6, 0}, draws[2].Args)

	offsets := rec.Find("Uniform2f")
	assert.Equal(t, []any{gpu.Location(0), float32(1), float32(0)}, offsets[0].Args)
	assert.Equal(t, []any{gpu.Location(1), int32(3), int32(4)}, rec.Find("Uniform2i")[0].Args)
	assert.Equal(t, 2, rec.Count("UniformLocation"), "locations are cached per program")
}

func TestDrawMode(t *testing.T) {
	ctx, rec := newContext(t)
	q := newQuad(t, ctx, quadDescription())

	require.NoError(t, ctx.Draw(q.shader, q.vb, q.eb, []gpu.DrawList{
		{Range: gpu.IndexRange{Start: 0, End: 4}, Mode: gpu.LineStrip},
	}))

	assert.Equal(t, []any{gpu.LineStrip, 4, 0}, rec.Find("DrawElements")[0].Args)
}

func TestDrawEmptyList(t *testing.T) {
	ctx, rec := newContext(t)
	q := newQuad(t, ctx, quadDescription())
	rec.Reset()

	require.NoError(t, ctx.Draw(q.shader, q.vb, q.eb, nil))

	assert.Zero(t, rec.Count("DrawElements"))
	assert.Equal(t, 1, rec.Count("UseProgram"))
}

func TestDrawRejectsBeforeAnyDeviceCall(t *testing.T) {
	tests := map[string]struct {
		indices []uint32
		list    []gpu.DrawList
		check   func(t *testing.T, err error)
	}{
		"type mismatch": {
			list: []gpu.DrawList{{
				Range:    gpu.IndexRange{End: 3},
				Uniforms: []gpu.UniformBinding{{Name: "cell", Value: gpu.FloatValue(1)}},
			}},
			check: func(t *testing.T, err error) {
				var mismatch *gpu.UniformTypeMismatchError
				require.ErrorAs(t, err, &mismatch)
				assert.Equal(t, "cell", mismatch.Name)
				assert.Equal(t, gpu.IVec2, mismatch.Expected)
				assert.Equal(t, gpu.Float, mismatch.Got)
			},
		},
		"mismatch in a later entry": {
			list: []gpu.DrawList{
				{Range: gpu.IndexRange{End: 3}},
				{Range: gpu.IndexRange{End: 3}, Uniforms: []gpu.UniformBinding{{Name: "offset", Value: gpu.Vec3Value{}}}},
			},
			check: func(t *testing.T, err error) {
				var mismatch *gpu.UniformTypeMismatchError
				require.ErrorAs(t, err, &mismatch)
			},
		},
		"unknown uniform": {
			list: []gpu.DrawList{{
				Range:    gpu.IndexRange{End: 3},
				Uniforms: []gpu.UniformBinding{{Name: "scale", Value: gpu.FloatValue(1)}},
			}},
			check: func(t *testing.T, err error) {
				var unknown *gpu.UnknownUniformError
				require.ErrorAs(t, err, &unknown)
				assert.Equal(t, "scale", unknown.Name)
			},
		},
		"nil value": {
			list: []gpu.DrawList{{
				Range:    gpu.IndexRange{End: 3},
				Uniforms: []gpu.UniformBinding{{Name: "offset"}},
			}},
			check: func(t *testing.T, err error) {
				var unknown *gpu.UnknownUniformError
				require.ErrorAs(t, err, &unknown)
			},
		},
		"range past the indices": {
			list: []gpu.DrawList{{Range: gpu.IndexRange{Start: 3, End: 7}}},
			check: func(t *testing.T, err error) {
				var bounds *gpu.BufferBoundsError
				require.ErrorAs(t, err, &bounds)
				assert.Equal(t, 28, bounds.Need)
				assert.Equal(t, 24, bounds.Have)
			},
		},
		"index past the last vertex": {
			indices: []uint32{0, 1, 2, 1000, 2000, 3000},
			list:    []gpu.DrawList{{Range: gpu.IndexRange{Start: 0, End: 6}}},
			check: func(t *testing.T, err error) {
				var bounds *gpu.BufferBoundsError
				require.ErrorAs(t, err, &bounds)
				assert.Equal(t, "draw vertices", bounds.Op)
				assert.Equal(t, 3001*8, bounds.Need)
				assert.Equal(t, 64, bounds.Have)
			},
		},
		"bad index in a later entry only": {
			indices: []uint32{0, 1, 2, 0, 1, 8},
			list: []gpu.DrawList{
				{Range: gpu.IndexRange{Start: 0, End: 3}},
				{Range: gpu.IndexRange{Start: 3, End: 6}},
			},
			check: func(t *testing.T, err error) {
				var bounds *gpu.BufferBoundsError
				require.ErrorAs(t, err, &bounds)
				assert.Equal(t, 9*8, bounds.Need)
			},
		},
		"reversed range": {
			list: []gpu.DrawList{{Range: gpu.IndexRange{Start: 4, End: 2}}},
			check: func(t *testing.T, err error) {
				var bounds *gpu.BufferBoundsError
				require.ErrorAs(t, err, &bounds)
			},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx, rec := newContext(t)
			q := newQuad(t, ctx, offsetDescription())
			if tt.indices != nil {
				require.NoError(t, q.eb.SetData(0, tt.indices))
			}
			rec.Reset()

			err := ctx.Draw(q.shader, q.vb, q.eb, tt.list)

			tt.check(t, err)
			assert.Empty(t, rec.Calls)
		})
	}
}

func TestSetUniform(t *testing.T) {
	ctx, rec := newContext(t)
	q := newQuad(t, ctx, offsetDescription())
	rec.Reset()

	require.NoError(t, q.shader.SetUniform("offset", gpu.Vec2Value{0.5, -0.5}))

	assert.Equal(t, []string{"UseProgram", "UniformLocation", "Uniform2f"}, rec.Names())
	assert.Empty(t, rec.PendingErrors())
}

func TestSetUniformMismatchMakesNoDeviceCall(t *testing.T) {
	ctx, rec := newContext(t)
	q := newQuad(t, ctx, offsetDescription())
	rec.Reset()

	err := q.shader.SetUniform("cell", gpu.FloatValue(2))

	var mismatch *gpu.UniformTypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Empty(t, rec.Calls)
}

func TestSetUniformInactiveIsSkipped(t *testing.T) {
	ctx, rec := newContext(t)
	q := newQuad(t, ctx, offsetDescription())
	rec.Reset()

	require.NoError(t, q.shader.SetUniform("unused", gpu.FloatValue(1)))

	assert.Zero(t, rec.Count("Uniform1f"))
	assert.Equal(t, 1, rec.Count("UniformLocation"))

	require.NoError(t, q.shader.SetUniform("unused", gpu.FloatValue(2)))
	assert.Equal(t, 1, rec.Count("UniformLocation"))
}

func TestSetUniformSampler(t *testing.T) {
	ctx, rec := newContext(t)
	q := newQuad(t, ctx, quadDescription())
	rec.Reset()

	require.NoError(t, q.shader.SetUniform("image", gpu.IntValue(3)))
	assert.Equal(t, []any{gpu.Location(0), int32(3)}, rec.Find("Uniform1i")[0].Args)

	var mismatch *gpu.UniformTypeMismatchError
	require.ErrorAs(t, q.shader.SetUniform("image", gpu.FloatValue(3)), &mismatch)
	assert.Equal(t, gpu.Sampler2D, mismatch.Expected)
}

func TestUniformValueDispatch(t *testing.T) {
	tests := []struct {
		typ   gpu.UniformType
		value gpu.UniformValue
		call  string
		args  []any
	}{
		{gpu.Int, gpu.IntValue(7), "Uniform1i", []any{int32(7)}},
		{gpu.IVec2, gpu.IVec2Value{1, 2}, "Uniform2i", []any{int32(1), int32(2)}},
		{gpu.IVec3, gpu.IVec3Value{1, 2, 3}, "Uniform3i", []any{int32(1), int32(2), int32(3)}},
		{gpu.IVec4, gpu.IVec4Value{1, 2, 3, 4}, "Uniform4i", []any{int32(1), int32(2), int32(3), int32(4)}},
		{gpu.Float, gpu.FloatValue(0.5), "Uniform1f", []any{float32(0.5)}},
		{gpu.Vec2, gpu.Vec2Value{1, 2}, "Uniform2f", []any{float32(1), float32(2)}},
		{gpu.Vec3, gpu.Vec3Value{1, 2, 3}, "Uniform3f", []any{float32(1), float32(2), float32(3)}},
		{gpu.Vec4, gpu.Vec4Value{1, 2, 3, 4}, "Uniform4f", []any{float32(1), float32(2), float32(3), float32(4)}},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			ctx, rec := newContext(t)
			shader, err := ctx.NewShader(gpu.ShaderDescription{
				Uniforms:       []gpu.Uniform{gpu.NewUniform("u", tt.typ)},
				VertexShader:   "void main() { gl_Position = vec4(0); }",
				FragmentShader: "void main() { gl_FragColor = vec4(u); }",
			})
			require.NoError(t, err)

			require.NoError(t, shader.SetUniform("u", tt.value))

			calls := rec.Find(tt.call)
			require.Len(t, calls, 1)
			assert.Equal(t, append([]any{gpu.Location(0)}, tt.args...), calls[0].Args)
			assert.Equal(t, tt.typ, tt.value.Type())
		})
	}
}

func TestDrawReleasedResources(t *testing.T) {
	ctx, _ := newContext(t)
	q := newQuad(t, ctx, quadDescription())
	q.vb.Release()

	err := ctx.Draw(q.shader, q.vb, q.eb, []gpu.DrawList{{Range: gpu.IndexRange{End: 3}}})

	assert.ErrorIs(t, err, gpu.ErrReleased)
}

func TestDrawAcceptsLastVertex(t *testing.T) {
	ctx, rec := newContext(t)
	q := newQuad(t, ctx, offsetDescription())
	// offsetDescription packs one vec2 per vertex, so the 16 floats hold 8 vertices.
	require.NoError(t, q.eb.SetData(0, []uint32{5, 6, 7}))

	require.NoError(t, ctx.Draw(q.shader, q.vb, q.eb, []gpu.DrawList{{Range: gpu.IndexRange{End: 3}}}))

	assert.Equal(t, 1, rec.Count("DrawElements"))
}

func TestDrawDisablesAttributesOfPreviousShader(t *testing.T) {
	ctx, rec := newContext(t)
	wide := newQuad(t, ctx, quadDescription())
	narrow := newQuad(t, ctx, offsetDescription())
	list := []gpu.DrawList{{Range: gpu.IndexRange{End: 3}}}

	require.NoError(t, ctx.Draw(wide.shader, wide.vb, wide.eb, list))
	assert.Equal(t, []uint32{0, 1}, rec.EnabledAttribs())
	assert.Zero(t, rec.Count("DisableVertexAttribArray"))

	rec.Reset()
	require.NoError(t, ctx.Draw(narrow.shader, narrow.vb, narrow.eb, list))
	assert.Equal(t, []uint32{0}, rec.EnabledAttribs())
	assert.Equal(t, []any{uint32(1)}, rec.Find("DisableVertexAttribArray")[0].Args)

	rec.Reset()
	require.NoError(t, ctx.Draw(wide.shader, wide.vb, wide.eb, list))
	assert.Equal(t, []uint32{0, 1}, rec.EnabledAttribs())
	assert.Zero(t, rec.Count("DisableVertexAttribArray"))
}

func TestNilArgumentsAreRejected(t *testing.T) {
	ctx, rec := newContext(t)
	q := newQuad(t, ctx, quadDescription())
	list := []gpu.DrawList{{Range: gpu.IndexRange{End: 3}}}
	rec.Reset()

	assert.ErrorIs(t, ctx.Draw(nil, q.vb, q.eb, list), gpu.ErrReleased)
	assert.ErrorIs(t, ctx.Draw(q.shader, nil, q.eb, list), gpu.ErrReleased)
	assert.ErrorIs(t, ctx.Draw(q.shader, q.vb, nil, list), gpu.ErrReleased)
	assert.ErrorIs(t, ctx.Draw(q.shader, &gpu.VertexBuffer{}, q.eb, list), gpu.ErrReleased)
	assert.ErrorIs(t, ctx.BindTexture(nil, 0), gpu.ErrReleased)
	assert.ErrorIs(t, ctx.Upload(nil, 0, []byte{1}), gpu.ErrReleased)

	var vb *gpu.VertexBuffer
	assert.ErrorIs(t, vb.SetData(0, []float32{1}), gpu.ErrReleased)
	var eb *gpu.ElementBuffer
	assert.ErrorIs(t, eb.SetData(0, []uint32{1}), gpu.ErrReleased)
	var shader *gpu.ShaderProgram
	assert.ErrorIs(t, shader.SetUniform("image", gpu.IntValue(0)), gpu.ErrReleased)
	assert.NotPanics(t, shader.Release)

	assert.Empty(t, rec.Calls)
}
