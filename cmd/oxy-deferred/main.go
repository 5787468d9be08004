package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-deferred/engine"
	"github.com/Carmen-Shannon/oxy-deferred/engine/logger"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/window"
	"github.com/urfave/cli"
)

var log = logger.New("main")

// The platform window and the GPU device must stay on the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	app := newApp()

	known, unknown := filterArgs(os.Args[1:], app.Flags)
	for _, arg := range unknown {
		fmt.Fprintf(os.Stderr, "Unknown argument %q\n", arg)
	}

	if err := app.Run(append([]string{os.Args[0]}, known...)); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "oxy-deferred"
	app.Usage = "view glTF scenes with a deferred renderer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "validate",
			Usage: "audit every draw against the bound program's declared inputs",
		},
		cli.StringFlag{
			Name:   "data",
			Value:  "data",
			Usage:  "directory scene files are listed from",
			EnvVar: "OXY_DATA_DIR",
		},
		cli.StringFlag{
			Name:  "scene",
			Usage: "scene file to open instead of the default scene",
		},
		cli.IntFlag{
			Name:  "width",
			Value: 1600,
			Usage: "window width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 900,
			Usage: "window height",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 1.0,
			Usage: "initial tone-map exposure",
		},
		cli.StringFlag{
			Name:  "backend",
			Value: "wgpu",
			Usage: "render backend: wgpu or headless",
		},
		cli.BoolTFlag{
			Name:  "vsync",
			Usage: "wait for vertical blank before presenting",
		},
		cli.BoolFlag{
			Name:  "software",
			Usage: "use the software fallback adapter",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "exit after rendering this many frames; 0 runs until the window closes",
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "scene loader workers; 0 uses one per CPU",
		},
		cli.BoolFlag{
			Name:  "profile",
			Usage: "print per-pass timings periodically",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
	}
	app.Action = run
	return app
}

func run(c *cli.Context) error {
	if c.Bool("v") {
		logger.SetLevel(logger.Debug)
	}

	backendType, err := renderer.ParseBackendType(c.String("backend"))
	if err != nil {
		return err
	}
	validate := c.Bool("validate")
	maxFrames := c.Int("frames")

	windowOptions := []window.WindowBuilderOption{
		window.WithTitle("oxy-deferred"),
		window.WithWidth(c.Int("width")),
		window.WithHeight(c.Int("height")),
	}

	var (
		win window.Window
		ctx renderer.RenderContext
	)
	switch backendType {
	case renderer.BackendTypeHeadless:
		// Nothing closes a headless window.
		if maxFrames == 0 {
			maxFrames = 1
		}
		win = window.NewHeadlessWindow(windowOptions...)
		ctx = renderer.NewHeadlessContext(renderer.WithValidation(validate))
	default:
		presentMode := renderer.PresentModeVSync
		if !c.BoolT("vsync") {
			presentMode = renderer.PresentModeUncapped
		}
		if win, err = window.NewWindow(windowOptions...); err != nil {
			return err
		}
		ctx, err = renderer.NewRenderContext(
			renderer.WithBackendType(backendType),
			renderer.WithSurfaceDescriptor(win.SurfaceDescriptor()),
			renderer.WithPresentMode(presentMode),
			renderer.WithForceSoftwareRenderer(c.Bool("software")),
			renderer.WithValidation(validate),
		)
		if err != nil {
			_ = win.Close()
			return fmt.Errorf("failed to create render context: %w", err)
		}
	}
	defer func() {
		if err := win.Close(); err != nil {
			log.Warningf("failed to close window: %v", err)
		}
	}()
	defer ctx.Release()

	if validate {
		log.Infof("draw validation enabled")
	}

	e, err := engine.NewEngine(ctx, win,
		engine.WithDataDir(c.String("data")),
		engine.WithInitialScene(c.String("scene")),
		engine.WithExposure(float32(c.Float64("exposure"))),
		engine.WithMaxFrames(maxFrames),
		engine.WithLoaderWorkers(c.Int("workers")),
		engine.WithProfiling(c.Bool("profile")),
	)
	if err != nil {
		return err
	}
	defer e.Release()

	return e.Run()
}
