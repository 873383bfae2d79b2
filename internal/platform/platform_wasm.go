//go:build js && wasm

package platform

import (
	"errors"
	"fmt"
	"image"
	"syscall/js"
)

type canvasSurface struct {
	canvas js.Value
	gl     js.Value
	frame  chan struct{}
	closed bool

	funcs   []js.Func
	removes []listener
}

type listener struct {
	target js.Value
	typ    string
	fn     js.Func
}

// Open appends a canvas to the document body and creates a WebGL2 context on it.
func Open(conf WindowConfig) (Surface, error) {
	doc := js.Global().Get("document")
	if conf.Title != "" {
		doc.Set("title", conf.Title)
	}

	w, h := conf.size()
	canvas := doc.Call("createElement", "canvas")
	canvas.Set("width", w)
	canvas.Set("height", h)
	style := canvas.Get("style")
	style.Set("position", "absolute")
	style.Set("left", fmt.Sprintf("%dpx", conf.PositionX))
	style.Set("top", fmt.Sprintf("%dpx", conf.PositionY))
	canvas.Call("setAttribute", "tabindex", "0")
	doc.Get("body").Call("appendChild", canvas)

	gl := canvas.Call("getContext", "webgl2")
	if gl.IsNull() || gl.IsUndefined() {
		canvas.Call("remove")
		return nil, errors.New("platform: webgl2 is not available")
	}

	s := &canvasSurface{
		canvas: canvas,
		gl:     gl,
		frame:  make(chan struct{}, 1),
	}
	s.addEventListener(doc, "keydown", func(e js.Value) {
		if e.Get("key").String() == "Escape" {
			s.Close()
		}
	})
	s.addEventListener(canvas, "contextmenu", func(e js.Value) {
		e.Call("preventDefault")
	})
	return s, nil
}

func (s *canvasSurface) addEventListener(target js.Value, event string, f func(js.Value)) {
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			f(args[0])
		}
		return nil
	})
	target.Call("addEventListener", event, fn)
	s.funcs = append(s.funcs, fn)
	s.removes = append(s.removes, listener{target: target, typ: event, fn: fn})
}

func (s *canvasSurface) GLContext() any { return s.gl }

func (s *canvasSurface) Size() image.Point {
	return image.Pt(s.canvas.Get("width").Int(), s.canvas.Get("height").Int())
}

// Present is a no-op: the browser composites the canvas after each frame callback.
func (s *canvasSurface) Present() {}

// Poll blocks until the next animation frame.
func (s *canvasSurface) Poll() bool {
	if s.closed {
		return false
	}
	var cb js.Func
	cb = js.FuncOf(func(this js.Value, args []js.Value) any {
		cb.Release()
		select {
		case s.frame <- struct{}{}:
		default:
		}
		return nil
	})
	js.Global().Call("requestAnimationFrame", cb)
	<-s.frame
	return !s.closed
}

func (s *canvasSurface) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, r := range s.removes {
		r.target.Call("removeEventListener", r.typ, r.fn)
	}
	for i := range s.funcs {
		s.funcs[i].Release()
	}
	s.funcs = nil
	s.removes = nil
	s.canvas.Call("remove")
}
