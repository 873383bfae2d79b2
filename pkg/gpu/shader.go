package gpu

import (
	"fmt"
	"strings"
)

const (
	fragOutput      = "outputColor"
	legacyFragColor = "gl_FragColor"
	floatSize       = 4
)

// ShaderDescription declares a program. The bodies carry no version,
// precision or variable declarations: those are generated from the attribute
// and uniform lists. Fragment bodies write gl_FragColor on every target.
type ShaderDescription struct {
	VertexInput []Attribute
	// FragmentInput lists the vertex stage outputs, received by the fragment stage.
	FragmentInput  []Attribute
	Uniforms       []Uniform
	VertexShader   string
	FragmentShader string
}

func (d ShaderDescription) validate() error {
	for _, list := range [][]Attribute{d.VertexInput, d.FragmentInput} {
		for _, a := range list {
			if a.Name == "" {
				return fmt.Errorf("gpu: attribute with empty name")
			}
			if !a.Type.valid() {
				return fmt.Errorf("gpu: attribute %q has %d components", a.Name, a.Type.Components())
			}
		}
	}
	seen := make(map[string]struct{}, len(d.Uniforms))
	for _, u := range d.Uniforms {
		if u.Name == "" {
			return fmt.Errorf("gpu: uniform with empty name")
		}
		if u.Type.GLSL() == "" {
			return fmt.Errorf("gpu: uniform %q has invalid type %s", u.Name, u.Type)
		}
		if _, ok := seen[u.Name]; ok {
			return fmt.Errorf("gpu: uniform %q declared twice", u.Name)
		}
		seen[u.Name] = struct{}{}
	}
	return nil
}

// GenerateSource returns the complete source of one stage of desc for target.
// The output depends only on its arguments.
func GenerateSource(target Target, stage Stage, desc ShaderDescription) string {
	var inputs, outputs []Attribute
	body := desc.VertexShader
	if stage == VertexStage {
		inputs, outputs = desc.VertexInput, desc.FragmentInput
	} else {
		inputs = desc.FragmentInput
		body = desc.FragmentShader
		if target == TargetDesktop {
			outputs = []Attribute{NewAttribute(fragOutput, Vector(4))}
			body = strings.ReplaceAll(body, legacyFragColor, fragOutput)
		}
	}

	var sb strings.Builder
	if target == TargetDesktop {
		sb.WriteString("#version 150\n")
	}
	sb.WriteString("precision mediump float;\n")
	for _, attr := range inputs {
		attr.writeGLSL(&sb, target, stage, Input)
	}
	for _, attr := range outputs {
		attr.writeGLSL(&sb, target, stage, Output)
	}
	for _, u := range desc.Uniforms {
		u.writeGLSL(&sb)
	}
	sb.WriteString(body)
	return sb.String()
}

// ShaderProgram is a linked vertex+fragment pair. It keeps the ordered
// vertex inputs, which define the interleaved layout Draw expects.
type ShaderProgram struct {
	ctx      *Context
	id       Object
	vertex   Object
	fragment Object
	inputs   []Attribute
	uniforms []Uniform
	declared map[string]UniformType
	loc      map[string]Location
	released bool
}

// NewShader generates, compiles and links the program described by desc.
// Vertex input i is bound to attribute location i.
func (c *Context) NewShader(desc ShaderDescription) (*ShaderProgram, error) {
	if c.closed {
		return nil, ErrReleased
	}
	if err := desc.validate(); err != nil {
		return nil, err
	}

	vertex, err := c.compileShader(VertexStage, GenerateSource(c.target, VertexStage, desc))
	if err != nil {
		return nil, err
	}
	fragment, err := c.compileShader(FragmentStage, GenerateSource(c.target, FragmentStage, desc))
	if err != nil {
		c.dev.DeleteShader(vertex)
		return nil, err
	}

	program, err := c.dev.CreateProgram()
	if err != nil {
		c.dev.DeleteShader(vertex)
		c.dev.DeleteShader(fragment)
		return nil, allocErr("program", err)
	}
	c.dev.AttachShader(program, vertex)
	c.dev.AttachShader(program, fragment)
	if c.target == TargetDesktop {
		c.dev.BindFragDataLocation(program, 0, fragOutput)
	}
	for i, attr := range desc.VertexInput {
		c.dev.BindAttribLocation(program, uint32(i), attr.Name)
	}
	if !c.dev.LinkProgram(program) {
		log := c.dev.ProgramInfoLog(program)
		c.dev.DeleteProgram(program)
		c.dev.DeleteShader(vertex)
		c.dev.DeleteShader(fragment)
		return nil, &ShaderLinkError{Log: log}
	}

	sp := &ShaderProgram{
		ctx:      c,
		id:       program,
		vertex:   vertex,
		fragment: fragment,
		inputs:   append([]Attribute(nil), desc.VertexInput...),
		uniforms: append([]Uniform(nil), desc.Uniforms...),
		declared: make(map[string]UniformType, len(desc.Uniforms)),
		loc:      make(map[string]Location, len(desc.Uniforms)),
	}
	for _, u := range desc.Uniforms {
		sp.declared[u.Name] = u.Type
	}
	c.track(sp)
	c.CheckErrors("new_shader")
	return sp, nil
}

func (c *Context) compileShader(stage Stage, source string) (Object, error) {
	shader, err := c.dev.CreateShader(stage)
	if err != nil {
		return 0, allocErr(stage.String()+" shader", err)
	}
	c.log.Debug("compiling shader", "stage", stage.String(), "source", source)
	c.dev.ShaderSource(shader, source)
	if !c.dev.CompileShader(shader) {
		log := c.dev.ShaderInfoLog(shader)
		c.dev.DeleteShader(shader)
		return 0, &ShaderCompileError{Stage: stage, Log: log}
	}
	return shader, nil
}

func (s *ShaderProgram) ID() Object { return s.id }

func (s *ShaderProgram) Inputs() []Attribute {
	return append([]Attribute(nil), s.inputs...)
}

func (s *ShaderProgram) Uniforms() []Uniform {
	return append([]Uniform(nil), s.uniforms...)
}

// Stride returns the byte distance between consecutive vertices.
func (s *ShaderProgram) Stride() int {
	n := 0
	for _, attr := range s.inputs {
		n += attr.Type.Components()
	}
	return n * floatSize
}

// AttributeOffsets returns the byte offset of each vertex input within one vertex.
func (s *ShaderProgram) AttributeOffsets() []int {
	offsets := make([]int, len(s.inputs))
	offset := 0
	for i, attr := range s.inputs {
		offsets[i] = offset
		offset += attr.Type.Components() * floatSize
	}
	return offsets
}

// SetUniform binds the program and sets one uniform outside a draw list.
func (s *ShaderProgram) SetUniform(name string, v UniformValue) error {
	if s == nil || s.released || s.ctx.closed {
		return ErrReleased
	}
	if err := s.checkUniform(name, v); err != nil {
		return err
	}
	s.ctx.dev.UseProgram(s.id)
	s.applyUniform(name, v)
	return nil
}

func (s *ShaderProgram) checkUniform(name string, v UniformValue) error {
	want, ok := s.declared[name]
	if !ok || v == nil {
		return &UnknownUniformError{Name: name}
	}
	if !want.accepts(v.Type()) {
		return &UniformTypeMismatchError{Name: name, Expected: want, Got: v.Type()}
	}
	return nil
}

// applyUniform expects checkUniform to have passed and the program to be in use.
func (s *ShaderProgram) applyUniform(name string, v UniformValue) {
	loc, ok := s.loc[name]
	if !ok {
		loc = s.ctx.dev.UniformLocation(s.id, name)
		s.loc[name] = loc
	}
	if loc == NoLocation {
		// Declared but unused by either stage; the linker dropped it.
		s.ctx.log.Debug("uniform not active", "name", name)
		return
	}
	bindUniform(s.ctx.dev, loc, v)
}

// Release deletes the program and its stages. It is safe to call twice.
func (s *ShaderProgram) Release() {
	if s == nil || s.released || s.ctx.closed {
		return
	}
	s.release()
	s.ctx.untrack(s)
}

func (s *ShaderProgram) release() {
	s.ctx.dev.DeleteProgram(s.id)
	s.ctx.dev.DeleteShader(s.vertex)
	s.ctx.dev.DeleteShader(s.fragment)
	s.released = true
	s.ctx.log.Debug("released program", "id", uint32(s.id))
}
