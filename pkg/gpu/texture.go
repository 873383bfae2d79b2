package gpu

import (
	"image"

	"golang.org/x/image/draw"
)

type ColorFormat int

const (
	RGB ColorFormat = iota
	RGBA
)

func (f ColorFormat) Channels() int {
	if f == RGB {
		return 3
	}
	return 4
}

func (f ColorFormat) String() string {
	if f == RGB {
		return "rgb"
	}
	return "rgba"
}

// Texture is a 2D image stored as RGBA on the device, sampled with linear
// filtering and clamped at the edges.
type Texture struct {
	ctx      *Context
	id       Object
	width    int
	height   int
	format   ColorFormat
	released bool
}

// NewTexture uploads pixels, tightly packed rows of width*channels bytes.
// pixels must hold exactly width*height*channels bytes.
func (c *Context) NewTexture(pixels []byte, width, height int, format ColorFormat) (*Texture, error) {
	if c.closed {
		return nil, ErrReleased
	}
	if width <= 0 || height <= 0 {
		return nil, &BufferBoundsError{Op: "texture upload", Need: width * height * format.Channels(), Have: len(pixels)}
	}
	if need := width * height * format.Channels(); len(pixels) != need {
		return nil, &BufferBoundsError{Op: "texture upload", Need: need, Have: len(pixels)}
	}
	id, err := c.dev.CreateTexture()
	if err != nil {
		return nil, allocErr("texture", err)
	}
	c.dev.BindTexture(id)
	c.dev.TexParameter(TextureWrapS, ClampToEdge)
	c.dev.TexParameter(TextureWrapT, ClampToEdge)
	c.dev.TexParameter(TextureMinFilter, Linear)
	c.dev.TexParameter(TextureMagFilter, Linear)
	c.dev.TexImage2D(width, height, format, pixels)
	c.dev.BindTexture(0)
	c.CheckErrors("new_texture")

	t := &Texture{ctx: c, id: id, width: width, height: height, format: format}
	c.track(t)
	return t, nil
}

// NewTextureFromImage converts img to RGBA and uploads it.
func (c *Context) NewTextureFromImage(img image.Image) (*Texture, error) {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	return c.NewTexture(rgba.Pix, b.Dx(), b.Dy(), RGBA)
}

// BindTexture makes t the texture of the given unit. The unit must be below
// the device's texture unit limit; this is not checked.
func (c *Context) BindTexture(t *Texture, unit uint32) error {
	if t == nil || c.closed || t.released {
		return ErrReleased
	}
	c.dev.ActiveTexture(unit)
	c.dev.BindTexture(t.id)
	return nil
}

func (t *Texture) ID() Object          { return t.id }
func (t *Texture) Width() int          { return t.width }
func (t *Texture) Height() int         { return t.height }
func (t *Texture) Format() ColorFormat { return t.format }

// Release deletes the device texture. It is safe to call twice.
func (t *Texture) Release() {
	if t == nil || t.released || t.ctx.closed {
		return
	}
	t.release()
	t.ctx.untrack(t)
}

func (t *Texture) release() {
	t.ctx.dev.DeleteTexture(t.id)
	t.released = true
	t.ctx.log.Debug("released texture", "id", uint32(t.id))
}
