package engine

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spaghettifunk/archview/engine/assets"
	"github.com/spaghettifunk/archview/engine/config"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/platform"
	"github.com/spaghettifunk/archview/engine/renderer/opengl"
	"github.com/spaghettifunk/archview/engine/shaders"
	"github.com/spaghettifunk/archview/engine/systems"
	"github.com/spaghettifunk/archview/engine/viewer"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Engine is a preview session: one window, one GL context, one render cache.
type Engine struct {
	currentStage Stage
	config       *config.Config
	isRunning    atomic.Bool
	isSuspended  bool

	events   *core.EventBus
	input    *core.InputState
	platform *platform.Platform

	source      *assets.ChainSource
	directories []*assets.DirectorySource
	viewer      *viewer.Viewer

	width   uint32
	height  uint32
	clock   *core.Clock
	metrics *core.FrameMetrics
}

func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	core.SetLogLevel(cfg.Log.Level)

	source, dirs, err := openSources(cfg.Assets)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	events := core.NewEventBus()
	input := core.NewInputState(events)
	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		events:       events,
		input:        input,
		platform:     platform.New(input, events),
		source:       source,
		directories:  dirs,
		width:        cfg.Window.Width,
		height:       cfg.Window.Height,
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
	}, nil
}

// Initialize opens the window and creates the GL backend and render cache.
// It must run on the main thread.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized: %w", core.ErrUnsupportedOperation)
	}
	w := e.config.Window
	if err := e.platform.Startup(w.Title, w.X, w.Y, w.Width, w.Height); err != nil {
		return err
	}

	backend, err := opengl.New()
	if err != nil {
		return err
	}
	cache, err := systems.NewRenderCache(systems.RenderCacheConfig{DecodeWorkers: 4}, backend, shaders.Embedded())
	if err != nil {
		return err
	}
	v, err := viewer.New(e.config.Viewer, backend, e.source, cache)
	if err != nil {
		cache.Dispose()
		return err
	}
	e.viewer = v
	e.width, e.height = e.platform.FramebufferSize()
	e.viewer.SetViewport(e.width, e.height)

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.events.Register(core.EVENT_CODE_FILES_DROPPED, e, e.onFilesDropped)

	e.currentStage = EngineStageInitialized
	core.LogInfo("render cache %s ready", cache.ID)
	return nil
}

// Preview queues path in the playlist and shows it.
func (e *Engine) Preview(path string) error {
	if e.viewer == nil {
		return fmt.Errorf("engine not initialized: %w", core.ErrUnsupportedOperation)
	}
	if err := e.viewer.Preview(path); err != nil {
		return err
	}
	e.viewer.Enqueue(e.viewer.CurrentPath())
	e.platform.SetTitle(fmt.Sprintf("%s - %s", e.config.Window.Title, e.viewer.CurrentPath()))
	return nil
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine not initialized: %w", core.ErrUnsupportedOperation)
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	var lastReport float64

	for e.isRunning.Load() {
		if !e.platform.PumpMessages() {
			e.isRunning.Store(false)
			break
		}
		if e.isSuspended {
			e.platform.Sleep(50)
			continue
		}

		delta := e.clock.Tick()
		currentTime := e.clock.Elapsed()
		frameStartTime := platform.GetAbsoluteTime()

		if err := e.viewer.Update(e.input, delta); err != nil {
			core.LogError(err.Error())
		}
		if err := e.viewer.Render(); err != nil {
			core.LogError("render failed, shutting down: %s", err.Error())
			e.isRunning.Store(false)
			break
		}
		e.platform.SwapBuffers()

		e.metrics.Update(platform.GetAbsoluteTime() - frameStartTime)
		if currentTime-lastReport >= 5 {
			fps, ms := e.metrics.Frame()
			core.LogDebug("%.0f fps, %.2f ms/frame", fps, ms)
			lastReport = currentTime
		}

		// Input state copying must come after everything that reads input
		// this frame.
		e.input.Update()
	}
	return nil
}

// Stop asks the frame loop to exit. Safe to call from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

// Shutdown releases the session. GPU objects are freed on the calling
// thread, which must be the one that ran Initialize.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return fmt.Errorf("engine: %w", core.ErrObjectDisposed)
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	var err error
	if e.viewer != nil {
		err = e.viewer.Dispose()
	}
	err = errors.Join(err, closeSources(e.directories))
	if e.platform.Window != nil {
		err = errors.Join(err, e.platform.Shutdown())
	}
	return err
}

// GetFramebufferSize returns the width and height (in this order) of the
// application framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(code core.EventCode, sender, listener interface{}, data core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onKey(code core.EventCode, sender, listener interface{}, data core.EventContext) bool {
	if data.Key == core.KEY_ESCAPE {
		// NOTE: firing an event to itself, but there may be other listeners.
		e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
		return true
	}
	return false
}

func (e *Engine) onResized(code core.EventCode, sender, listener interface{}, data core.EventContext) bool {
	if data.Width == e.width && data.Height == e.height {
		return false
	}
	e.width, e.height = data.Width, data.Height
	core.LogDebug("Window resize: %d, %d", e.width, e.height)

	// Handle minimization
	if e.width == 0 || e.height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	e.viewer.SetViewport(e.width, e.height)
	return true
}

func (e *Engine) onFilesDropped(code core.EventCode, sender, listener interface{}, data core.EventContext) bool {
	shown := false
	for _, file := range data.Paths {
		p, ok := archivePath(e.config.Assets, file)
		if !ok {
			core.LogWarn("'%s' is outside the asset directories", file)
			continue
		}
		// the first usable file is shown, the rest wait in the playlist
		if !shown {
			shown = e.Preview(p) == nil
			continue
		}
		e.viewer.Enqueue(p)
	}
	return true
}
