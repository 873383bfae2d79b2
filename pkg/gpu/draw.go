package gpu

// IndexRange is a half-open range of positions in an ElementBuffer.
type IndexRange struct {
	Start int
	End   int
}

func (r IndexRange) Len() int { return r.End - r.Start }

// UniformBinding sets one uniform before a draw.
type UniformBinding struct {
	Name  string
	Value UniformValue
}

// DrawList is one indexed draw: an index range, the uniforms applied in order
// right before it, and the primitive mode (Triangles when zero).
type DrawList struct {
	Range    IndexRange
	Uniforms []UniformBinding
	Mode     DrawMode
}

// Draw binds shader, vb and eb once and issues one indexed draw per entry of
// list, applying each entry's uniforms before its draw. vb must hold vertices
// interleaved in the order of shader.Inputs().
//
// Every entry is checked before any device state changes: an out of range
// index span, an index past the last vertex of vb, an undeclared uniform or
// a value of the wrong type fails the whole call.
func (c *Context) Draw(shader *ShaderProgram, vb *VertexBuffer, eb *ElementBuffer, list []DrawList) error {
	if shader == nil || vb == nil || vb.Buffer == nil || eb == nil || eb.Buffer == nil {
		return ErrReleased
	}
	if c.closed || shader.released || vb.released || eb.released {
		return ErrReleased
	}
	stride := shader.Stride()
	for _, entry := range list {
		r := entry.Range
		if r.Start < 0 || r.End < r.Start {
			return &BufferBoundsError{Op: "draw range", Need: r.End * indexSize, Have: eb.Len()}
		}
		if need := r.End * indexSize; need > eb.Len() {
			return &BufferBoundsError{Op: "draw range", Need: need, Have: eb.Len()}
		}
		if hi, ok := eb.maxIndex(r); ok && stride > 0 {
			if need := (int(hi) + 1) * stride; need > vb.Len() {
				return &BufferBoundsError{Op: "draw vertices", Need: need, Have: vb.Len()}
			}
		}
		for _, u := range entry.Uniforms {
			if err := shader.checkUniform(u.Name, u.Value); err != nil {
				return err
			}
		}
	}

	c.dev.UseProgram(shader.id)
	c.dev.BindBuffer(ArrayBuffer, vb.id)
	c.dev.BindBuffer(ElementArrayBuffer, eb.id)
	c.CheckErrors("program and bind")

	offsets := shader.AttributeOffsets()
	for i, offset := range offsets {
		index := uint32(i)
		c.dev.EnableVertexAttribArray(index)
		c.dev.VertexAttribPointer(index, shader.inputs[i].Type.Components(), stride, offset)
	}
	// Arrays left on by a previous shader with more inputs would still
	// point at its buffer.
	for i := len(offsets); i < c.attribs; i++ {
		c.dev.DisableVertexAttribArray(uint32(i))
	}
	c.attribs = len(offsets)
	c.CheckErrors("attributes")

	for _, entry := range list {
		for _, u := range entry.Uniforms {
			shader.applyUniform(u.Name, u.Value)
		}
		c.dev.DrawElements(entry.Mode, entry.Range.Len(), entry.Range.Start*indexSize)
		c.CheckErrors("draw")
	}
	return nil
}
