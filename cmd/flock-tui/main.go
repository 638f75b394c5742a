package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flocking-birds/pkg/tui"
)

func main() {
	cfg, err := simulation.ParseArgs(os.Args[0], os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		Fatal(err)
	}

	// The screen owns stdout, so logs go to stderr at warning level unless asked otherwise.
	level := cfg.LogLevel
	if level == "" || level == "info" {
		level = "warn"
	}
	logger := simulation.NewLogger(level, os.Stderr)

	screen, err := tcell.NewScreen()
	if err != nil {
		Fatal(err)
	}
	if err := screen.Init(); err != nil {
		Fatal(err)
	}

	app, err := tui.NewApp(screen, cfg, logger)
	if err != nil {
		screen.Fini()
		Fatal(err)
	}
	err = app.Run()
	screen.Fini()
	if err != nil {
		Fatal(err)
	}
}

// Fatal prints err and exits with status 1.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}
