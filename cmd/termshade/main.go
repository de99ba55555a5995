// termshade - Terminal Software Rasterizer
// Render a textured, normal-mapped, shadowed mesh straight to your terminal.
//
// Usage:
//
//	termshade [flags] [scene.toml]
//
// Without a scene file the demo head scene is loaded from the working
// directory. Press Ctrl+C to quit.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/taigrr/termshade/pkg/render"
	"github.com/taigrr/termshade/pkg/scene"
)

// options holds the command line flags.
type options struct {
	scene scene.Flags

	logLevel string
	snapshot string
	width    int
	height   int
	scale    int
}

func main() {
	if err := fang.Execute(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "termshade [scene.toml]",
		Short: "Render a shaded 3D mesh in the terminal",
		Long: "termshade rasterizes a textured, normal-mapped mesh with shadows and ambient\n" +
			"occlusion in software and draws it with truecolor half blocks.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.scene.Mesh, "mesh", "", "mesh to render (OBJ, glTF or GLB); overrides the scene")
	f.StringVar(&opts.scene.Texture, "texture", "", "diffuse texture (TGA, PNG or JPEG)")
	f.StringVar(&opts.scene.NormalMap, "normal-map", "", "tangent-space normal map (TGA, PNG or JPEG)")
	f.IntVar(&opts.scene.FPS, "fps", 0, "frame rate cap (default from the scene)")
	f.Float64Var(&opts.scene.Spin, "spin", 0, "spin the model about Y, radians per second")
	f.BoolVar(&opts.scene.Static, "static", false, "keep the camera still")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	f.StringVar(&opts.snapshot, "snapshot", "", "render one frame to a .png or .webp file and exit")
	f.IntVar(&opts.width, "width", 120, "snapshot width in terminal columns")
	f.IntVar(&opts.height, "height", 40, "snapshot height in terminal rows")
	f.IntVar(&opts.scale, "scale", 4, "snapshot upscale factor")

	return cmd
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func run(ctx context.Context, opts options, args []string) error {
	logger, err := newLogger(opts.logLevel)
	if err != nil {
		return err
	}

	s := scene.Default()
	if len(args) == 1 {
		if s, err = scene.Load(args[0]); err != nil {
			logger.Error("load scene", "err", err)
			return err
		}
	}
	s.Resolve(opts.scene)
	if err := s.Validate(); err != nil {
		logger.Error("invalid scene", "err", err)
		return err
	}

	assets, err := s.LoadAssets()
	if err != nil {
		logger.Error("load assets", "err", err)
		return err
	}
	logger.Info("loaded mesh",
		"name", assets.Mesh.Name,
		"triangles", assets.Mesh.TriangleCount(),
		"vertices", assets.Mesh.VertexCount(),
		"texture", fmt.Sprintf("%dx%d", assets.Texture.Width, assets.Texture.Height),
		"normal_map", fmt.Sprintf("%dx%d", assets.NormalMap.Width, assets.NormalMap.Height),
	)

	if opts.snapshot != "" {
		return snapshot(logger, s, assets, opts)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loop(ctx, logger, s, assets); err != nil {
		logger.Error("render loop", "err", err)
		return err
	}
	return nil
}

func newRenderer(comp *render.Compositor, s scene.Scene) *render.Renderer {
	return render.New(comp,
		render.WithCamera(s.Camera.Eye.V3(), s.Camera.Center.V3(), s.Camera.Up.V3()),
		render.WithLight(s.Light.V3()),
	)
}

// snapshot renders a single frame headless and saves it.
func snapshot(logger *slog.Logger, s scene.Scene, assets *scene.Assets, opts options) error {
	comp, err := render.NewCompositor(io.Discard, render.FixedSize(opts.width, opts.height))
	if err != nil {
		return err
	}
	r := newRenderer(comp, s)

	if err := r.Refresh(s.BackgroundColor()); err != nil {
		return err
	}
	r.DrawModel(assets.Mesh, assets.Texture, assets.NormalMap, s.Position.V3())

	start := time.Now()
	r.Render()
	logger.Debug("frame", "stats", r.Stats(), "elapsed", time.Since(start))

	if err := render.SaveSnapshot(opts.snapshot, comp.Image(), opts.scale); err != nil {
		logger.Error("save snapshot", "err", err)
		return err
	}
	w, h := comp.PlaneSize()
	logger.Info("saved snapshot", "path", opts.snapshot, "width", w*opts.scale, "height", h*opts.scale)
	return nil
}

// loop draws frames until ctx is cancelled or the terminal write fails.
func loop(ctx context.Context, logger *slog.Logger, s scene.Scene, assets *scene.Assets) error {
	out := bufio.NewWriterSize(os.Stdout, 1<<20)
	comp, err := render.NewCompositor(out, render.TerminalSize(os.Stdout))
	if err != nil {
		return err
	}
	r := newRenderer(comp, s)

	if err := comp.Enter(); err != nil {
		return err
	}
	defer func() {
		if err := comp.Leave(); err != nil {
			logger.Warn("restore terminal", "err", err)
		}
	}()

	path := NewCameraPath(s.FPS, s.Camera)
	spinner := NewSpinner(s.FPS, s.Spin)
	up := s.Camera.Up.V3()
	pos := s.Position.V3()

	var tick <-chan time.Time
	if s.FPS > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(s.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	// Frame stats would scribble over the picture if stderr is the same tty
	meter := newFrameMeter(logger, !term.IsTerminal(os.Stderr.Fd()))

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if s.Animate {
			eye, center := path.Step()
			r.Camera(eye, center, up)
		}

		if err := r.Refresh(s.BackgroundColor()); err != nil {
			return err
		}
		r.DrawInstance(render.Instance{
			Mesh:      assets.Mesh,
			Texture:   assets.Texture,
			NormalMap: assets.NormalMap,
			Transform: spinner.Transform(pos),
		})
		if err := r.Display(); err != nil {
			return err
		}
		meter.frame(r.Stats())

		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}
	}
}

// frameMeter logs the frame rate and the last frame's counters once a
// second at debug level.
type frameMeter struct {
	logger  *slog.Logger
	enabled bool
	frames  int
	since   time.Time
}

func newFrameMeter(logger *slog.Logger, enabled bool) *frameMeter {
	return &frameMeter{logger: logger, enabled: enabled, since: time.Now()}
}

func (m *frameMeter) frame(stats render.Stats) {
	if !m.enabled {
		return
	}
	m.frames++
	elapsed := time.Since(m.since)
	if elapsed < time.Second {
		return
	}
	m.logger.Debug("frames",
		"fps", float64(m.frames)/elapsed.Seconds(),
		"triangles", stats.Triangles,
		"fragments", stats.Fragments,
		"degenerate", stats.Degenerate,
	)
	m.frames = 0
	m.since = time.Now()
}
