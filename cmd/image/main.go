// Command image draws a 2x2 RGB texture on a quad. It runs as a native
// window or, built with GOOS=js GOARCH=wasm, inside cmd/wasm-demo.
package main

import (
	"log/slog"
	"os"

	"github.com/kjkrol/gokgl/internal/platform"
	"github.com/kjkrol/gokgl/pkg/glbackend"
	"github.com/kjkrol/gokgl/pkg/gpu"
)

var pixels = []byte{
	255, 255, 255, 0, 255, 0,
	255, 0, 0, 255, 255, 255,
}

var vertices = []float32{
	// position   uv
	-0.5, -0.5, 0, 0,
	0.5, -0.5, 1, 0,
	0.5, 0.5, 1, 1,
	-0.5, 0.5, 0, 1,
}

var indices = []uint32{0, 1, 2, 2, 3, 0}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	gpu.SetLogger(logger)

	if err := run(logger); err != nil {
		logger.Error("image demo failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	surface, err := platform.Open(platform.WindowConfig{Width: 640, Height: 480, Title: "gokgl image"})
	if err != nil {
		return err
	}
	defer surface.Close()

	ctx, err := glbackend.NewContext(surface.GLContext(), gpu.WithBufferUsage(gpu.StaticDraw))
	if err != nil {
		return err
	}
	defer ctx.Close()

	texture, err := ctx.NewTexture(pixels, 2, 2, gpu.RGB)
	if err != nil {
		return err
	}

	shader, err := ctx.NewShader(gpu.ShaderDescription{
		VertexInput: []gpu.Attribute{
			gpu.NewAttribute("vert_position", gpu.Vector(2)),
			gpu.NewAttribute("vert_uv", gpu.Vector(2)),
		},
		FragmentInput: []gpu.Attribute{
			gpu.NewAttribute("frag_uv", gpu.Vector(2)),
		},
		Uniforms: []gpu.Uniform{gpu.NewUniform("image", gpu.Sampler2D)},
		VertexShader: `void main() {
	gl_Position = vec4(vert_position, 0, 1);
	frag_uv = vert_uv;
}`,
		FragmentShader: `void main() {
	gl_FragColor = ` + sampler(ctx.Target()) + `(image, frag_uv);
}`,
	})
	if err != nil {
		return err
	}

	vb, err := ctx.NewVertexBuffer()
	if err != nil {
		return err
	}
	eb, err := ctx.NewElementBuffer()
	if err != nil {
		return err
	}
	if err := vb.SetData(0, vertices); err != nil {
		return err
	}
	if err := eb.SetData(0, indices); err != nil {
		return err
	}
	if err := ctx.BindTexture(texture, 0); err != nil {
		return err
	}

	list := []gpu.DrawList{{
		Range:    gpu.IndexRange{Start: 0, End: len(indices)},
		Uniforms: []gpu.UniformBinding{{Name: "image", Value: gpu.IntValue(0)}},
	}}

	logger.Info("drawing", "target", ctx.Target().String(), "stride", shader.Stride())
	for surface.Poll() {
		if err := ctx.Clear(0, 0, 0, 1); err != nil {
			return err
		}
		if err := ctx.Draw(shader, vb, eb, list); err != nil {
			return err
		}
		surface.Present()
	}
	return nil
}

// sampler names the 2D texture lookup for the target's GLSL dialect.
func sampler(t gpu.Target) string {
	if t == gpu.TargetWeb {
		return "texture2D"
	}
	return "texture"
}
