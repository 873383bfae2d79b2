package gpu

import (
	"encoding/binary"
	"unsafe"
)

// Role decides the binding point of a Buffer.
type Role int

const (
	VertexRole Role = iota
	IndexRole
)

func (r Role) target() BufferTarget {
	if r == IndexRole {
		return ElementArrayBuffer
	}
	return ArrayBuffer
}

func (r Role) String() string {
	if r == IndexRole {
		return "index"
	}
	return "vertex"
}

// Buffer is a growable GPU byte region. Its capacity never shrinks. The
// bytes written so far are mirrored on the host so that growing the device
// storage keeps them.
type Buffer struct {
	ctx      *Context
	id       Object
	role     Role
	capacity int
	shadow   []byte
	released bool
}

// VertexBuffer holds interleaved float vertex data.
type VertexBuffer struct {
	*Buffer
}

// ElementBuffer holds uint32 indices into a VertexBuffer.
type ElementBuffer struct {
	*Buffer
}

func (c *Context) newBuffer(role Role) (*Buffer, error) {
	if c.closed {
		return nil, ErrReleased
	}
	id, err := c.dev.CreateBuffer()
	if err != nil {
		return nil, allocErr(role.String()+" buffer", err)
	}
	b := &Buffer{ctx: c, id: id, role: role}
	c.track(b)
	return b, nil
}

func (c *Context) NewVertexBuffer() (*VertexBuffer, error) {
	b, err := c.newBuffer(VertexRole)
	if err != nil {
		return nil, err
	}
	return &VertexBuffer{b}, nil
}

func (c *Context) NewElementBuffer() (*ElementBuffer, error) {
	b, err := c.newBuffer(IndexRole)
	if err != nil {
		return nil, err
	}
	return &ElementBuffer{b}, nil
}

func (b *Buffer) ID() Object { return b.id }

func (b *Buffer) Role() Role { return b.role }

// Capacity returns the size of the device allocation in bytes.
func (b *Buffer) Capacity() int { return b.capacity }

// Len returns the extent of the bytes written so far.
func (b *Buffer) Len() int { return len(b.shadow) }

// Upload writes data at byte offset start. A write past the current capacity
// first reallocates the buffer to twice the extent the write needs; the
// bytes written earlier are carried over. Bytes skipped between the end of
// the written data and start are zeroed.
func (c *Context) Upload(b *Buffer, start int, data []byte) error {
	if b == nil || c.closed || b.released {
		return ErrReleased
	}
	if start < 0 {
		return &BufferBoundsError{Op: "upload", Need: start, Have: b.capacity}
	}
	end := start + len(data)
	target := b.role.target()
	c.dev.BindBuffer(target, b.id)

	if end > b.capacity {
		newCap := 2 * end
		c.log.Debug("growing buffer", "role", b.role.String(), "id", uint32(b.id), "from", b.capacity, "to", newCap)
		c.dev.BufferData(target, newCap, c.usage)
		b.capacity = newCap
		c.CheckErrors("buffer_data")
		// The shadow never outgrows the old capacity, so only bytes below
		// start can survive the write.
		if keep := min(start, len(b.shadow)); keep > 0 {
			c.dev.BufferSubData(target, 0, b.shadow[:keep])
		}
	}
	// Len counts a skipped gap as written, so the device side of the gap
	// must hold the same zeros as the shadow.
	if gap := start - len(b.shadow); gap > 0 {
		c.dev.BufferSubData(target, len(b.shadow), make([]byte, gap))
	}
	if len(data) > 0 {
		c.dev.BufferSubData(target, start, data)
	}
	c.CheckErrors("buffer_sub_data")

	if end > len(b.shadow) {
		b.shadow = append(b.shadow, make([]byte, end-len(b.shadow))...)
	}
	copy(b.shadow[start:end], data)
	return nil
}

// SetData writes floats starting at float index start.
func (vb *VertexBuffer) SetData(start int, floats []float32) error {
	if vb == nil || vb.Buffer == nil {
		return ErrReleased
	}
	return vb.ctx.Upload(vb.Buffer, start*floatSize, Float32Bytes(floats))
}

// SetData writes indices starting at index position start.
func (eb *ElementBuffer) SetData(start int, indices []uint32) error {
	if eb == nil || eb.Buffer == nil {
		return ErrReleased
	}
	return eb.ctx.Upload(eb.Buffer, start*indexSize, Uint32Bytes(indices))
}

// Release deletes the device buffer. It is safe to call twice.
func (b *Buffer) Release() {
	if b == nil || b.released || b.ctx.closed {
		return
	}
	b.release()
	b.ctx.untrack(b)
}

func (b *Buffer) release() {
	b.ctx.dev.DeleteBuffer(b.id)
	b.released = true
	b.shadow = nil
	b.ctx.log.Debug("released buffer", "role", b.role.String(), "id", uint32(b.id))
}

const indexSize = 4

// maxIndex returns the largest index stored in r, read from the host copy.
// ok is false for an empty range.
func (eb *ElementBuffer) maxIndex(r IndexRange) (hi uint32, ok bool) {
	for off := r.Start * indexSize; off < r.End*indexSize; off += indexSize {
		if v := binary.NativeEndian.Uint32(eb.shadow[off:]); !ok || v > hi {
			hi, ok = v, true
		}
	}
	return hi, ok
}

// Float32Bytes reinterprets data as its in-memory bytes without copying.
func Float32Bytes(data []float32) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*floatSize)
}

// Uint32Bytes reinterprets data as its in-memory bytes without copying.
func Uint32Bytes(data []uint32) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*indexSize)
}
