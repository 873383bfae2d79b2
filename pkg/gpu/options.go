package gpu

import (
	"fmt"
	"log/slog"
)

// Target selects the shader dialect and framebuffer conventions of the device.
type Target int

const (
	// TargetDesktop emits GLSL 150 with an explicit fragment output and binds
	// a default vertex array object.
	TargetDesktop Target = iota
	// TargetWeb emits GLSL ES 1.00 and relies on gl_FragColor.
	TargetWeb
)

func (t Target) String() string {
	switch t {
	case TargetDesktop:
		return "desktop"
	case TargetWeb:
		return "web"
	default:
		return fmt.Sprintf("target(%d)", int(t))
	}
}

// Option configures a Context during creation.
//
//	ctx, err := gpu.NewContext(dev,
//		gpu.WithTarget(gpu.TargetWeb),
//		gpu.WithLogger(slog.Default()))
type Option func(*options)

type options struct {
	target Target
	logger *slog.Logger
	usage  BufferUsage
}

func defaultOptions() options {
	return options{
		target: TargetDesktop,
		usage:  StreamDraw,
	}
}

func WithTarget(t Target) Option {
	return func(o *options) {
		o.target = t
	}
}

// WithLogger overrides the package logger for one Context.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithBufferUsage sets the usage hint passed to the device whenever a buffer
// is (re)allocated. Defaults to StreamDraw.
func WithBufferUsage(u BufferUsage) Option {
	return func(o *options) {
		o.usage = u
	}
}
