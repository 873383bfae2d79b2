package gpu

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformVariantsCoverEveryType(t *testing.T) {
	require.NoError(t, checkUniformVariants())

	for typ := UniformType(0); typ < numUniformTypes; typ++ {
		assert.NotEmpty(t, typ.GLSL(), "type %d", int(typ))
	}
}

type rogueValue struct{}

func (rogueValue) Type() UniformType { return Float }
func (rogueValue) uniformValue()     {}

func TestCheckUniformVariantsCatchesGaps(t *testing.T) {
	saved := uniformVariants
	defer func() { uniformVariants = saved }()

	uniformVariants[Vec3] = nil
	assert.ErrorContains(t, checkUniformVariants(), "no value variant for uniform type vec3")

	uniformVariants = saved
	uniformVariants[Vec3] = Vec4Value{}
	assert.ErrorContains(t, checkUniformVariants(), "reports vec4, want vec3")

	uniformVariants = saved
	uniformVariants[Float] = rogueValue{}
	assert.ErrorContains(t, checkUniformVariants(), "has no device call")
}

func TestSamplerAcceptsInt(t *testing.T) {
	assert.True(t, Sampler2D.accepts(Int))
	assert.False(t, Sampler2D.accepts(Float))
	assert.True(t, Vec2.accepts(Vec2))
	assert.False(t, Vec2.accepts(IVec2))
}

func TestQualifier(t *testing.T) {
	tests := []struct {
		target Target
		stage  Stage
		pos    Position
		want   string
	}{
		{TargetDesktop, VertexStage, Input, "in"},
		{TargetDesktop, VertexStage, Output, "out"},
		{TargetDesktop, FragmentStage, Input, "in"},
		{TargetDesktop, FragmentStage, Output, "out"},
		{TargetWeb, VertexStage, Input, "attribute"},
		{TargetWeb, VertexStage, Output, "varying"},
		{TargetWeb, FragmentStage, Input, "varying"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, qualifier(tt.target, tt.stage, tt.pos), "%s %s %d", tt.target, tt.stage, tt.pos)
	}
}

func TestAttributeGLSL(t *testing.T) {
	assert.Equal(t, "float", Scalar.GLSL())
	assert.Equal(t, "vec2", Vector(2).GLSL())
	assert.Equal(t, "vec4", Vector(4).GLSL())
	assert.Empty(t, Vector(5).GLSL())
	assert.Equal(t, 3, Vector(3).Components())
	assert.False(t, Vector(0).valid())
}

func TestColorToFloat(t *testing.T) {
	assert.Equal(t, [4]float32{}, colorToFloat(nil))
	got := colorToFloat(color.RGBA{G: 255, A: 255})
	assert.InDeltaSlice(t, []float32{0, 1, 0, 1}, got[:], 1e-6)
}
