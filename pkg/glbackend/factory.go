// Package glbackend provides the gpu.Device implementations: desktop OpenGL
// 3.3 core through go-gl on native builds and WebGL2 through syscall/js
// under js/wasm.
package glbackend

import (
	"errors"

	"github.com/kjkrol/gokgl/pkg/gpu"
)

var errNoName = errors.New("glbackend: device returned no object name")

// NewDevice wraps the graphics context of the current platform. Native
// builds ignore glContext and use the OpenGL context current on the calling
// thread; js/wasm builds expect the js.Value of a "webgl2" canvas context.
func NewDevice(glContext any) (gpu.Device, error) {
	return newDevice(glContext)
}

// DefaultTarget returns the shader target matching this build.
func DefaultTarget() gpu.Target {
	return defaultTarget
}

// NewContext is NewDevice followed by gpu.NewContext with DefaultTarget.
// Options given later override the target.
func NewContext(glContext any, opts ...gpu.Option) (*gpu.Context, error) {
	dev, err := newDevice(glContext)
	if err != nil {
		return nil, err
	}
	return gpu.NewContext(dev, append([]gpu.Option{gpu.WithTarget(defaultTarget)}, opts...)...)
}
