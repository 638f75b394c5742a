package tui

import (
	"image/gif"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/simulation"
)

func testConfig() *simulation.Config {
	cfg := simulation.DefaultConfig()
	cfg.Seed = 7
	cfg.NumBirds = 20
	return cfg
}

func runWithTimeout(t *testing.T, app *App) error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- app.Run() }()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestApp_QuitKey(t *testing.T) {
	screen := newScreen(t)
	app, err := NewApp(screen, testConfig(), nil)
	if err != nil {
		t.Fatalf("NewApp() = %v", err)
	}
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	if err := runWithTimeout(t, app); err != nil {
		t.Errorf("Run() = %v", err)
	}
}

func TestApp_HandleKey(t *testing.T) {
	screen := newScreen(t)
	app, err := NewApp(screen, testConfig(), nil)
	if err != nil {
		t.Fatalf("NewApp() = %v", err)
	}

	if app.handleKey(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)) {
		t.Fatal("space should not quit")
	}
	if !app.paused {
		t.Error("space should pause")
	}
	if _, err := app.step(); err != nil {
		t.Fatalf("step() = %v", err)
	}
	if got := app.World().TickCount(); got != 0 {
		t.Errorf("paused app ticked to %d", got)
	}

	app.handleKey(tcell.NewEventKey(tcell.KeyRune, 'm', tcell.ModNone))
	if app.World().Mode() != flock.Snapshot {
		t.Errorf("Mode = %v; want snapshot after m", app.World().Mode())
	}
	app.handleKey(tcell.NewEventKey(tcell.KeyRune, 'm', tcell.ModNone))
	if app.World().Mode() != flock.Sequential {
		t.Errorf("Mode = %v; want sequential after a second m", app.World().Mode())
	}

	for _, key := range []tcell.Key{tcell.KeyEscape, tcell.KeyCtrlC} {
		if !app.handleKey(tcell.NewEventKey(key, 0, tcell.ModNone)) {
			t.Errorf("key %v should quit", key)
		}
	}
}

func TestApp_RecordsUntilFull(t *testing.T) {
	screen := newScreen(t)
	cfg := testConfig()
	cfg.RecordPath = filepath.Join(t.TempDir(), "flock.gif")
	cfg.RecordFrames = 3
	app, err := NewApp(screen, cfg, nil)
	if err != nil {
		t.Fatalf("NewApp() = %v", err)
	}

	if err := runWithTimeout(t, app); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if got := app.World().TickCount(); got != 3 {
		t.Errorf("TickCount = %d; want 3", got)
	}

	f, err := os.Open(cfg.RecordPath)
	if err != nil {
		t.Fatalf("recording not written: %v", err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("DecodeAll() = %v", err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("recorded %d frames; want 3", len(anim.Image))
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.NumBirds = -1
	if _, err := NewApp(newScreen(t), cfg, nil); err == nil {
		t.Error("NewApp() = nil; want an error")
	}
}
