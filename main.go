package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/halo/internal/capture"
	"github.com/olivier-w/halo/internal/config"
	"github.com/olivier-w/halo/internal/ring"
	"github.com/olivier-w/halo/internal/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	path, cancelled, err := chooseAudio(opts)
	if err != nil {
		return err
	}
	if cancelled {
		return nil
	}

	field, err := ring.New(cfg.Ring.Segments, cfg.Ring.Radius, ring.WithAudioAmplitude(cfg.Ring.AudioAmplitude))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := capture.Acquire(ctx, newOpener(path, cfg))
	defer c.Close()

	if opts.tracePath != "" {
		return runTrace(ctx, field, c, cfg, opts, path != "")
	}

	program := tea.NewProgram(ui.New(field, c, cfg), tea.WithAltScreen())
	_, err = program.Run()
	return err
}
