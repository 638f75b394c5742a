package ui

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/capture"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/simulation"
	golog "github.com/tochemey/goakt/v3/log"
)

var (
	whiteImage = ebiten.NewImage(3, 3)
	background = color.RGBA{R: 10, G: 10, B: 30, A: 255}
)

func init() {
	whiteImage.Fill(color.White)
}

// Game is the ebiten front end of an Engine. Every Update sends pending
// tuning and one tick, then picks up the newest snapshot.
//
// Escape quits, Tab hides the control panel.
type Game struct {
	ctx       context.Context
	engine    *simulation.Engine
	cfg       *simulation.Config
	logger    golog.Logger
	lastState *simulation.Snapshot
	sent      simulation.Tuning

	panel            *Panel
	widgetMaxSpeed   *Slider
	widgetMaxForce   *Slider
	widgetPerception *Slider
	widgetSeparation *Slider
	widgetAlignment  *Slider
	widgetCohesion   *Slider
	widgetAvoidance  *Slider
	widgetPaused     *Checkbox
	widgetSnapshot   *Checkbox

	recorder *capture.Recorder
	vertices []ebiten.Vertex
	indices  []uint16

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64
}

// NewGame builds the control panel from cfg. When cfg.RecordPath is set the
// game records cfg.RecordFrames frames and quits.
func NewGame(ctx context.Context, engine *simulation.Engine, cfg *simulation.Config, logger golog.Logger) (*Game, error) {
	if logger == nil {
		logger = golog.DiscardLogger
	}
	g := &Game{
		ctx:    ctx,
		engine: engine,
		cfg:    cfg,
		logger: logger,
		sent:   simulation.Tuning{Params: cfg.Bird, Mode: cfg.Mode()},
	}
	if cfg.RecordPath != "" {
		rec, err := capture.NewRecorder(cfg.RecordFrames, cfg.FrameRate)
		if err != nil {
			return nil, err
		}
		g.recorder = rec
	}

	p := cfg.Bird
	panel := NewPanel("Flocking (Tab to hide)", 10, 10, 220, cfg.WorldHeight-20)
	panel.AddSection("Limits")
	g.widgetMaxSpeed = panel.AddSlider("Max speed", 0.5, 10, p.MaxSpeed)
	g.widgetMaxForce = panel.AddSlider("Max steering", 0.01, 1, p.MaxSteeringForce)
	panel.AddSection("Radii")
	g.widgetPerception = panel.AddSlider("Perception", 5, 200, p.PerceptionRadius)
	g.widgetSeparation = panel.AddSlider("Separation", 0, 200, p.SeparationRadius)
	panel.AddSection("Weights")
	g.widgetAlignment = panel.AddSlider("Alignment", 0, 3, p.AlignmentWeight)
	g.widgetCohesion = panel.AddSlider("Cohesion", 0, 3, p.CohesionWeight)
	g.widgetAvoidance = panel.AddSlider("Separation", 0, 3, p.SeparationWeight)
	panel.AddSection("Simulation")
	g.widgetPaused = panel.AddCheckbox("Paused", false)
	g.widgetSnapshot = panel.AddCheckbox("Snapshot updates", cfg.Mode() == flock.Snapshot)
	panel.AddButton("Reset parameters", g.resetParams)
	g.panel = panel

	return g, nil
}

// tuning reads the widgets. Separation is held within perception so a
// slider drag never produces parameters the world would reject.
func (g *Game) tuning() simulation.Tuning {
	p := flock.Params{
		MaxSpeed:         g.widgetMaxSpeed.Value,
		MaxSteeringForce: g.widgetMaxForce.Value,
		PerceptionRadius: g.widgetPerception.Value,
		SeparationRadius: min(g.widgetSeparation.Value, g.widgetPerception.Value),
		AlignmentWeight:  g.widgetAlignment.Value,
		CohesionWeight:   g.widgetCohesion.Value,
		SeparationWeight: g.widgetAvoidance.Value,
	}
	mode := flock.Sequential
	if g.widgetSnapshot.Value {
		mode = flock.Snapshot
	}
	return simulation.Tuning{Params: p, Mode: mode, Paused: g.widgetPaused.Value}
}

func (g *Game) resetParams() {
	p := g.cfg.Bird
	g.widgetMaxSpeed.Set(p.MaxSpeed)
	g.widgetMaxForce.Set(p.MaxSteeringForce)
	g.widgetPerception.Set(p.PerceptionRadius)
	g.widgetSeparation.Set(p.SeparationRadius)
	g.widgetAlignment.Set(p.AlignmentWeight)
	g.widgetCohesion.Set(p.CohesionWeight)
	g.widgetAvoidance.Set(p.SeparationWeight)
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return g.finish()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.panel.Hidden = !g.panel.Hidden
	}
	g.panel.Update()

	if t := g.tuning(); t != g.sent {
		if err := g.engine.Tune(g.ctx, t); err != nil {
			return err
		}
		g.sent = t
	}
	if err := g.engine.Tick(g.ctx); err != nil {
		return err
	}

	snap := g.engine.Latest()
	if snap == nil {
		return nil
	}
	fresh := g.lastState == nil || snap.Tick != g.lastState.Tick
	g.lastState = snap
	if g.recorder != nil && fresh {
		g.recorder.Add(capture.Render(snap, int(g.cfg.WorldWidth), int(g.cfg.WorldHeight)))
		if g.recorder.Full() {
			return g.finish()
		}
	}
	return nil
}

// finish saves a pending recording and ends the game loop.
func (g *Game) finish() error {
	if g.recorder != nil && g.recorder.Len() > 0 {
		if err := g.recorder.Save(g.cfg.RecordPath); err != nil {
			return err
		}
		g.logger.Infof("Saved %d frames to %s", g.recorder.Len(), g.cfg.RecordPath)
		g.recorder = nil
	}
	return ebiten.Termination
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(background)
	if g.lastState != nil {
		g.drawBirds(screen, g.lastState.Birds)
	}
	g.panel.Draw(screen)
	g.drawStats(screen)
}

// drawBirds batches every bird triangle into one DrawTriangles call.
func (g *Game) drawBirds(screen *ebiten.Image, birds []simulation.BirdState) {
	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
	for i, b := range birds {
		for _, p := range geometry.Triangle(b.Position, b.Heading, capture.BirdSize) {
			g.vertices = append(g.vertices, ebiten.Vertex{
				DstX: float32(p.X), DstY: float32(p.Y),
				SrcX: 1, SrcY: 1,
				ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
			})
		}
		base := uint16(3 * i)
		g.indices = append(g.indices, base, base+1, base+2)
	}
	if len(g.vertices) > 0 {
		screen.DrawTriangles(g.vertices, g.indices, whiteImage, &ebiten.DrawTrianglesOptions{})
	}
}

func (g *Game) drawStats(screen *ebiten.Image) {
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(), ebiten.ActualTPS(), g.updateAvg, g.drawAvg)
	if s := g.lastState; s != nil {
		msg += fmt.Sprintf("\n\nTick: %d\nBirds: %d\nMode: %s\nSpeed: %.2f\nPolarization: %.2f\nNeighbors: %.1f",
			s.Tick, len(s.Birds), s.Mode, s.MeanSpeed, s.Polarization, s.MeanNeighbors)
		if s.Paused {
			msg += "\nPAUSED"
		}
	}
	if g.recorder != nil {
		msg += fmt.Sprintf("\nRecording %d/%d", g.recorder.Len(), g.cfg.RecordFrames)
	}
	ebitenutil.DebugPrintAt(screen, msg, int(g.cfg.WorldWidth)-170, 10)
}

func (g *Game) Layout(_, _ int) (int, int) { return int(g.cfg.WorldWidth), int(g.cfg.WorldHeight) }
