package gpu

import (
	"fmt"
	"strings"
)

// AttributeType is the number of float components of an attribute: a scalar
// or a 2, 3 or 4 component vector.
type AttributeType int

const Scalar AttributeType = 1

// Vector returns the attribute type of an n component float vector.
func Vector(n int) AttributeType {
	return AttributeType(n)
}

func (t AttributeType) Components() int {
	return int(t)
}

func (t AttributeType) valid() bool {
	return t >= 1 && t <= 4
}

func (t AttributeType) GLSL() string {
	switch t {
	case Scalar:
		return "float"
	case 2, 3, 4:
		return fmt.Sprintf("vec%d", int(t))
	default:
		return ""
	}
}

// Position is the direction of an attribute relative to a shader stage.
type Position int

const (
	Input Position = iota
	Output
)

// Attribute is a named per-vertex input or per-stage output. Its position in
// a program's vertex input list is both its binding index and the order in
// which it is packed into an interleaved vertex buffer.
type Attribute struct {
	Name string
	Type AttributeType
}

func NewAttribute(name string, typ AttributeType) Attribute {
	return Attribute{Name: name, Type: typ}
}

func (a Attribute) writeGLSL(sb *strings.Builder, target Target, stage Stage, pos Position) {
	sb.WriteString(qualifier(target, stage, pos))
	sb.WriteByte(' ')
	sb.WriteString(a.Type.GLSL())
	sb.WriteByte(' ')
	sb.WriteString(a.Name)
	sb.WriteString(";\n")
}

// qualifier maps a stage direction to the storage keyword of the target's
// dialect. GLSL ES 1.00 has no in/out and uses attribute/varying instead.
func qualifier(target Target, stage Stage, pos Position) string {
	if target == TargetWeb {
		if stage == VertexStage && pos == Input {
			return "attribute"
		}
		return "varying"
	}
	if pos == Input {
		return "in"
	}
	return "out"
}
