package engine

import (
	"errors"
	"fmt"

	"github.com/vecglyph/vecglyph/engine/camera"
	"github.com/vecglyph/vecglyph/engine/config"
	"github.com/vecglyph/vecglyph/engine/core"
	"github.com/vecglyph/vecglyph/engine/fontsource"
	"github.com/vecglyph/vecglyph/engine/math"
	"github.com/vecglyph/vecglyph/engine/platform"
	"github.com/vecglyph/vecglyph/engine/renderer"
	"github.com/vecglyph/vecglyph/engine/renderer/soft"
	"github.com/vecglyph/vecglyph/engine/renderer/vulkan"
	"github.com/vecglyph/vecglyph/engine/theme"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Engine wires the platform window, the render path, the camera and the
// game into a frame loop.
type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool
	isSuspended  bool

	platform *platform.Platform
	cfg      config.Config
	watcher  *config.Watcher
	fonts    *fontsource.Registry

	camera     *camera.Camera
	controller *camera.Controller

	width  uint32
	height uint32

	clock *core.Clock
}

func New(g *Game) (*Engine, error) {
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		core.LogWarn("%s, using defaults", err)
	}
	core.SetLogLevel(cfg.Log.Level)

	p, err := platform.New()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		clock:        core.NewClock(),
		platform:     p,
		cfg:          cfg,
		fonts:        fontsource.NewRegistry(),
		isRunning:    true,
		isSuspended:  false,
		width:        cfg.Window.Width,
		height:       cfg.Window.Height,
	}, nil
}

// Fonts exposes the font registry so the game can register faces during
// its initialize callback.
func (e *Engine) Fonts() *fontsource.Registry {
	return e.fonts
}

// Config returns the configuration the engine was started with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	if err := e.platform.Startup(e.cfg.Window.Title, 100, 100, e.width, e.height); err != nil {
		return err
	}

	// The framebuffer can differ from the requested window size on
	// high-DPI displays.
	fbWidth, fbHeight := e.platform.FramebufferSize()
	if fbWidth > 0 && fbHeight > 0 {
		e.width, e.height = fbWidth, fbHeight
	}

	backend, err := e.makeBackend()
	if err != nil {
		return err
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			return err
		}
	}

	mode := theme.ByName(e.cfg.Theme.Name)
	if err := renderer.Initialize(backend, e.fonts, mode, e.cfg.Renderer.GlyphCacheCapacity, e.width, e.height); err != nil {
		return err
	}

	e.camera = camera.New(math.NewVec3(0, 0, 30), math.NewVec3Zero(), float32(e.width)/float32(e.height))
	e.controller = camera.NewController(1.0)

	e.platform.OnOperation(e.controller.Process)
	e.platform.OnResize(e.onResized)

	// Live edits to the config file retheme and relevel without a
	// restart; structural settings still need one.
	if e.gameInstance.ConfigPath != "" {
		w, err := config.Watch(e.gameInstance.ConfigPath, e.onConfigChange)
		if err != nil {
			core.LogWarn("config watch disabled: %s", err)
		} else {
			e.watcher = w
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) makeBackend() (renderer.Backend, error) {
	switch e.cfg.Renderer.Backend {
	case "vulkan":
		return vulkan.New(e.platform, vulkan.Config{
			AppName:        e.cfg.Window.Title,
			TemporalFrames: uint32(e.cfg.Renderer.TemporalFrames),
			VSync:          e.cfg.Renderer.VSync,
		}), nil
	case "soft":
		return soft.New(e.cfg.Renderer.TemporalFrames), nil
	default:
		return nil, fmt.Errorf("unknown renderer backend %q", e.cfg.Renderer.Backend)
	}
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	lastTime := e.clock.Elapsed()

	for e.isRunning {
		e.platform.PumpMessages()
		if e.platform.ShouldClose() {
			e.isRunning = false
			break
		}

		if e.isSuspended {
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		now := core.Ticks()

		e.controller.Update(e.camera, now)
		e.controller.Reset()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(now); err != nil {
				core.LogError("game update failed, shutting down: %s", err)
				e.isRunning = false
				return err
			}
		}

		snapshot := e.gameInstance.FnSnapshot(now)

		err := renderer.DrawFrame(snapshot, e.camera.ViewProjection(now), now)
		switch {
		case err == nil:
		case errors.Is(err, core.ErrSwapchainOutOfDate):
			// The backend skipped the frame while catching up with a
			// resize; nothing to do.
		case errors.Is(err, core.ErrDeviceLost):
			e.isRunning = false
			return err
		default:
			core.LogError("frame render failed, shutting down: %s", err)
			e.isRunning = false
			return err
		}

		core.MetricsUpdate(currentTime - lastTime)
		lastTime = currentTime
	}

	fps, avgMS := core.MetricsFrame()
	core.LogInfo("session ended: %.1f fps, %.3f ms avg frame", fps, avgMS)
	return nil
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			core.LogWarn("closing config watcher: %s", err)
		}
	}
	if err := renderer.Shutdown(); err != nil {
		core.LogError("renderer shutdown: %s", err)
	}
	return e.platform.Shutdown()
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onResized(width, height uint32) {
	if width == e.width && height == e.height {
		return
	}
	e.width, e.height = width, height

	// A minimized window reports zero; suspend until it comes back.
	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending")
		e.isSuspended = true
		return
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming")
		e.isSuspended = false
	}

	e.camera.SetAspect(width, height)
	if err := renderer.OnResize(width, height); err != nil {
		core.LogError("resize failed: %s", err)
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError("game resize callback failed: %s", err)
		}
	}
}

func (e *Engine) onConfigChange(cfg config.Config) {
	core.SetLogLevel(cfg.Log.Level)
	if cfg.Theme.Name != e.cfg.Theme.Name {
		core.LogInfo("theme changed to %s", cfg.Theme.Name)
		renderer.SetMode(theme.ByName(cfg.Theme.Name))
	}
	if cfg.Renderer.Backend != e.cfg.Renderer.Backend {
		core.LogWarn("renderer backend change requires a restart")
	}
	e.cfg = cfg
}
