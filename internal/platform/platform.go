// Package platform opens a window (desktop) or canvas (web) with a GL
// context for the demos. Library users bring their own context.
package platform

import "image"

type WindowConfig struct {
	PositionX int
	PositionY int
	Width     int
	Height    int
	Title     string
}

// Surface is a drawable with a current GL context.
type Surface interface {
	// GLContext is passed unchanged to glbackend.NewDevice.
	GLContext() any
	// Size is the drawable size in pixels.
	Size() image.Point
	// Present shows the frame drawn since the previous call.
	Present()
	// Poll processes pending input and reports whether the surface is still open.
	Poll() bool
	Close()
}

func (c WindowConfig) size() (int, int) {
	w, h := c.Width, c.Height
	if w <= 0 {
		w = 640
	}
	if h <= 0 {
		h = 480
	}
	return w, h
}
