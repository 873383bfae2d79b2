//go:build !js

package platform

import (
	"fmt"
	"image"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

type glfwSurface struct {
	win    *glfw.Window
	closed bool
}

// Open creates a window with an OpenGL 3.3 core context and makes it current.
// Must be called from the main goroutine.
func Open(conf WindowConfig) (Surface, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("platform: glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	w, h := conf.size()
	win, err := glfw.CreateWindow(w, h, conf.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("platform: create window: %w", err)
	}
	if conf.PositionX != 0 || conf.PositionY != 0 {
		win.SetPos(conf.PositionX, conf.PositionY)
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)
	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
	return &glfwSurface{win: win}, nil
}

// GLContext returns nil; go-gl uses whichever context is current.
func (s *glfwSurface) GLContext() any { return nil }

func (s *glfwSurface) Size() image.Point {
	w, h := s.win.GetFramebufferSize()
	return image.Pt(w, h)
}

func (s *glfwSurface) Present() {
	s.win.SwapBuffers()
}

func (s *glfwSurface) Poll() bool {
	if s.closed {
		return false
	}
	glfw.PollEvents()
	return !s.win.ShouldClose()
}

func (s *glfwSurface) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.win.Destroy()
	glfw.Terminate()
}
