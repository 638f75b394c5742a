package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/capture"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/simulation"
	golog "github.com/tochemey/goakt/v3/log"
)

// App runs a World in the terminal. Ticks arrive as interrupt events so the
// world is only ever touched from the event loop.
//
// Keys: Escape, Ctrl-C or q quits, space pauses, m switches the update mode.
type App struct {
	screen   tcell.Screen
	world    *simulation.World
	renderer *Renderer
	frame    time.Duration
	logger   golog.Logger
	paused   bool

	recorder   *capture.Recorder
	recordPath string
	width      int
	height     int
}

// NewApp builds the world described by cfg. The screen must already be initialised.
func NewApp(screen tcell.Screen, cfg *simulation.Config, logger golog.Logger) (*App, error) {
	if logger == nil {
		logger = golog.DiscardLogger
	}
	world, err := simulation.NewWorld(cfg, logger)
	if err != nil {
		return nil, err
	}
	app := &App{
		screen:   screen,
		world:    world,
		renderer: NewRenderer(screen, cfg.Bounds()),
		frame:    time.Second / time.Duration(cfg.FrameRate),
		logger:   logger,
		width:    int(cfg.WorldWidth),
		height:   int(cfg.WorldHeight),
	}
	if cfg.RecordPath != "" {
		rec, err := capture.NewRecorder(cfg.RecordFrames, cfg.FrameRate)
		if err != nil {
			return nil, err
		}
		app.recorder = rec
		app.recordPath = cfg.RecordPath
	}
	return app, nil
}

// World exposes the simulated world, mostly for tests.
func (a *App) World() *simulation.World { return a.world }

// Run processes events until the user quits, the screen closes or a
// recording completes.
func (a *App) Run() error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(a.frame)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()

	a.draw()
	for {
		switch ev := a.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			finished, err := a.step()
			if err != nil || finished {
				return err
			}
		case *tcell.EventKey:
			if a.handleKey(ev) {
				return a.flushRecording()
			}
		case *tcell.EventResize:
			a.screen.Sync()
			a.draw()
		}
	}
}

// step advances the world once and reports whether a recording just filled up.
func (a *App) step() (bool, error) {
	if !a.paused {
		a.world.Tick()
	}
	snap := a.draw()
	if a.recorder == nil {
		return false, nil
	}
	a.recorder.Add(capture.Render(snap, a.width, a.height))
	if !a.recorder.Full() {
		return false, nil
	}
	return true, a.flushRecording()
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return true
		case ' ':
			a.paused = !a.paused
			a.logger.Infof("Simulation paused: %t", a.paused)
		case 'm', 'M':
			next := flock.Snapshot
			if a.world.Mode() == flock.Snapshot {
				next = flock.Sequential
			}
			if err := a.world.Tune(a.world.Params(), next); err != nil {
				a.logger.Warnf("Mode switch rejected: %v", err)
			}
		}
	}
	a.draw()
	return false
}

func (a *App) draw() *simulation.Snapshot {
	snap := a.world.Snapshot()
	snap.Paused = a.paused
	a.renderer.Draw(snap)
	return snap
}

func (a *App) flushRecording() error {
	if a.recorder == nil || a.recorder.Len() == 0 {
		return nil
	}
	if err := a.recorder.Save(a.recordPath); err != nil {
		return fmt.Errorf("failed to save recording: %w", err)
	}
	a.logger.Infof("Saved %d frames to %s", a.recorder.Len(), a.recordPath)
	a.recorder = nil
	return nil
}
