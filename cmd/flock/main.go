package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/ui"
)

func main() {
	cfg, err := simulation.ParseArgs(os.Args[0], os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		Fatal(err)
	}

	ctx := context.Background()
	logger := simulation.NewLogger(cfg.LogLevel, os.Stderr)

	engine, err := simulation.NewEngine(ctx, cfg, logger)
	if err != nil {
		Fatal(err)
	}
	defer engine.Stop(ctx)

	game, err := ui.NewGame(ctx, engine, cfg, logger)
	if err != nil {
		Fatal(err)
	}

	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Flocking Simulation with Orientation")
	ebiten.SetTPS(cfg.FrameRate)

	if err := ebiten.RunGame(game); err != nil {
		engine.Stop(ctx)
		Fatal(err)
	}
}

// Fatal prints err and exits with status 1.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}
