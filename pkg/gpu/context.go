package gpu

import (
	"image/color"
	"log/slog"
)

// Context owns a Device and is the factory for every resource drawn with it.
// A Context and the resources it creates must be used from a single thread.
type Context struct {
	dev    Device
	target Target
	usage  BufferUsage
	log    *slog.Logger
	vao    Object
	closed bool
	// attribs is the number of vertex attribute arrays left enabled by the
	// last Draw.
	attribs int

	resources map[releaser]struct{}
}

const maxDrainedErrors = 64

type releaser interface {
	release()
}

// NewContext wraps dev. On TargetDesktop it allocates and binds the default
// vertex array object that core profiles require.
func NewContext(dev Device, opts ...Option) (*Context, error) {
	if dev == nil {
		return nil, ErrNoDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	c := &Context{
		dev:       dev,
		target:    o.target,
		usage:     o.usage,
		log:       o.logger.With("target", o.target.String()),
		resources: make(map[releaser]struct{}),
	}
	if c.target == TargetDesktop {
		vao, err := dev.CreateVertexArray()
		if err != nil {
			return nil, allocErr("vertex array", err)
		}
		dev.BindVertexArray(vao)
		c.vao = vao
	}
	return c, nil
}

func (c *Context) Target() Target { return c.target }

func (c *Context) Device() Device { return c.dev }

func (c *Context) track(r releaser) {
	c.resources[r] = struct{}{}
}

func (c *Context) untrack(r releaser) {
	delete(c.resources, r)
}

// Close releases every resource still owned by the Context and the default
// vertex array. Further use of the Context or its resources returns
// ErrReleased.
func (c *Context) Close() {
	if c.closed {
		return
	}
	for r := range c.resources {
		r.release()
	}
	c.resources = nil
	if c.vao != 0 {
		c.dev.DeleteVertexArray(c.vao)
		c.vao = 0
	}
	c.closed = true
	c.log.Debug("context closed")
}

// Clear sets the clear colour and then clears the colour and depth buffers.
func (c *Context) Clear(r, g, b, a float32) error {
	if c.closed {
		return ErrReleased
	}
	c.dev.ClearColor(r, g, b, a)
	c.dev.Clear(ColorBufferBit | DepthBufferBit)
	return nil
}

// ClearColor is Clear with a color.Color.
func (c *Context) ClearColor(col color.Color) error {
	f := colorToFloat(col)
	return c.Clear(f[0], f[1], f[2], f[3])
}

// Surface is an offscreen render target.
type Surface struct{}

// SetTarget would redirect drawing to s. Render-to-texture is not
// implemented by this layer.
func (c *Context) SetTarget(s *Surface) error {
	return ErrUnsupported
}

// ResetTarget restores the default framebuffer. Since SetTarget never
// succeeds this has nothing to undo.
func (c *Context) ResetTarget() {}

// CheckErrors drains the device error queue, logging every code under
// label. It returns the number of codes drained; the codes are advisory and
// never turned into errors.
func (c *Context) CheckErrors(label string) int {
	n := 0
	// A lost context can report errors indefinitely.
	for n < maxDrainedErrors {
		code := c.dev.GetError()
		if code == NoError {
			break
		}
		n++
		c.log.Warn("device error", "label", label, "code", code.String())
	}
	if n > 0 {
		c.log.Warn("device errors drained", "label", label, "count", n)
	}
	return n
}

func colorToFloat(c color.Color) [4]float32 {
	if c == nil {
		return [4]float32{}
	}
	r, g, b, a := c.RGBA()
	const inv = 1.0 / 65535.0
	return [4]float32{
		float32(r) * inv,
		float32(g) * inv,
		float32(b) * inv,
		float32(a) * inv,
	}
}
