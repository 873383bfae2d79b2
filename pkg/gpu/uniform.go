package gpu

import (
	"fmt"
	"strings"
)

type UniformType int

const (
	Int UniformType = iota
	IVec2
	IVec3
	IVec4
	Float
	Vec2
	Vec3
	Vec4
	Sampler2D

	numUniformTypes
)

var uniformGLSL = [numUniformTypes]string{
	Int:       "int",
	IVec2:     "ivec2",
	IVec3:     "ivec3",
	IVec4:     "ivec4",
	Float:     "float",
	Vec2:      "vec2",
	Vec3:      "vec3",
	Vec4:      "vec4",
	Sampler2D: "sampler2D",
}

func (t UniformType) GLSL() string {
	if t < 0 || t >= numUniformTypes {
		return ""
	}
	return uniformGLSL[t]
}

func (t UniformType) String() string {
	if s := t.GLSL(); s != "" {
		return s
	}
	return fmt.Sprintf("uniform(%d)", int(t))
}

// Uniform declares a value that is constant across one draw call. A uniform
// used by both stages is declared once in the ShaderDescription and emitted
// identically into both.
type Uniform struct {
	Name string
	Type UniformType
}

func NewUniform(name string, typ UniformType) Uniform {
	return Uniform{Name: name, Type: typ}
}

func (u Uniform) writeGLSL(sb *strings.Builder) {
	sb.WriteString("uniform ")
	sb.WriteString(u.Type.GLSL())
	sb.WriteByte(' ')
	sb.WriteString(u.Name)
	sb.WriteString(";\n")
}

// accepts reports whether a value of type got can be bound to a uniform of
// this type. Samplers take the texture unit as an Int.
func (t UniformType) accepts(got UniformType) bool {
	if t == Sampler2D {
		return got == Int
	}
	return t == got
}

// UniformValue is one of IntValue, IVec2Value, IVec3Value, IVec4Value,
// FloatValue, Vec2Value, Vec3Value or Vec4Value. The set is closed.
type UniformValue interface {
	Type() UniformType
	uniformValue()
}

type (
	IntValue   int32
	IVec2Value [2]int32
	IVec3Value [3]int32
	IVec4Value [4]int32
	FloatValue float32
	Vec2Value  [2]float32
	Vec3Value  [3]float32
	Vec4Value  [4]float32
)

func (IntValue) Type() UniformType   { return Int }
func (IVec2Value) Type() UniformType { return IVec2 }
func (IVec3Value) Type() UniformType { return IVec3 }
func (IVec4Value) Type() UniformType { return IVec4 }
func (FloatValue) Type() UniformType { return Float }
func (Vec2Value) Type() UniformType  { return Vec2 }
func (Vec3Value) Type() UniformType  { return Vec3 }
func (Vec4Value) Type() UniformType  { return Vec4 }

func (IntValue) uniformValue()   {}
func (IVec2Value) uniformValue() {}
func (IVec3Value) uniformValue() {}
func (IVec4Value) uniformValue() {}
func (FloatValue) uniformValue() {}
func (Vec2Value) uniformValue()  {}
func (Vec3Value) uniformValue()  {}
func (Vec4Value) uniformValue()  {}

// uniformVariants holds one value per non-sampler UniformType, indexed by
// that type. It must stay in step with the UniformType enumeration and with
// the switch in bindUniform; checkUniformVariants enforces both at startup.
var uniformVariants = [Sampler2D]UniformValue{
	Int:   IntValue(0),
	IVec2: IVec2Value{},
	IVec3: IVec3Value{},
	IVec4: IVec4Value{},
	Float: FloatValue(0),
	Vec2:  Vec2Value{},
	Vec3:  Vec3Value{},
	Vec4:  Vec4Value{},
}

func init() {
	if err := checkUniformVariants(); err != nil {
		panic(err)
	}
}

func checkUniformVariants() error {
	if int(numUniformTypes) != len(uniformVariants)+1 {
		return fmt.Errorf("gpu: %d uniform types but %d value variants", numUniformTypes, len(uniformVariants))
	}
	for i, v := range uniformVariants {
		if v == nil {
			return fmt.Errorf("gpu: no value variant for uniform type %s", UniformType(i))
		}
		if v.Type() != UniformType(i) {
			return fmt.Errorf("gpu: value variant %T reports %s, want %s", v, v.Type(), UniformType(i))
		}
		if !dispatchable(v) {
			return fmt.Errorf("gpu: value variant %T has no device call", v)
		}
	}
	return nil
}

// dispatchable mirrors the switch in bindUniform.
func dispatchable(v UniformValue) bool {
	switch v.(type) {
	case IntValue, IVec2Value, IVec3Value, IVec4Value,
		FloatValue, Vec2Value, Vec3Value, Vec4Value:
		return true
	default:
		return false
	}
}

// bindUniform is the single site where values reach the device.
func bindUniform(dev Device, loc Location, v UniformValue) {
	switch x := v.(type) {
	case IntValue:
		dev.Uniform1i(loc, int32(x))
	case IVec2Value:
		dev.Uniform2i(loc, x[0], x[1])
	case IVec3Value:
		dev.Uniform3i(loc, x[0], x[1], x[2])
	case IVec4Value:
		dev.Uniform4i(loc, x[0], x[1], x[2], x[3])
	case FloatValue:
		dev.Uniform1f(loc, float32(x))
	case Vec2Value:
		dev.Uniform2f(loc, x[0], x[1])
	case Vec3Value:
		dev.Uniform3f(loc, x[0], x[1], x[2])
	case Vec4Value:
		dev.Uniform4f(loc, x[0], x[1], x[2], x[3])
	}
}
