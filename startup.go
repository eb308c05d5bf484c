package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ncruces/zenity"
	"github.com/olivier-w/halo/internal/analyser"
	"github.com/olivier-w/halo/internal/capture"
	"github.com/olivier-w/halo/internal/config"
	"github.com/olivier-w/halo/internal/export"
	"github.com/olivier-w/halo/internal/media"
	"github.com/olivier-w/halo/internal/ring"
	"github.com/olivier-w/halo/internal/ui"
)

const defaultTraceFrames = 600

var errNoAudio = errors.New("no audio file")

type options struct {
	configPath string
	pick       bool
	idle       bool
	tracePath  string
	frames     int
	logPath    string
	arg        string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("halo", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: halo [flags] [audio-file | playlist]\n\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.configPath, "config", "", "YAML file overriding the built-in settings")
	fs.BoolVar(&opts.pick, "pick", false, "choose the audio file with a native file dialog")
	fs.BoolVar(&opts.idle, "idle", false, "skip audio and run the idle ring")
	fs.StringVar(&opts.tracePath, "trace", "", "write a CSV frame trace to this file (- for stdout) instead of drawing")
	fs.IntVar(&opts.frames, "frames", defaultTraceFrames, "number of frames to trace")
	fs.StringVar(&opts.logPath, "log", "", "append debug logs to this file")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		opts.arg = fs.Arg(0)
	default:
		return opts, fmt.Errorf("expected at most one audio file, got %d arguments", fs.NArg())
	}
	if opts.frames < 1 {
		return opts, fmt.Errorf("-frames must be positive, got %d", opts.frames)
	}
	if opts.idle && (opts.pick || opts.arg != "") {
		return opts, errors.New("-idle cannot be combined with an audio file")
	}
	return opts, nil
}

// setupLogging routes the standard logger. The TUI owns the terminal, so
// without -log, logs are discarded unless a headless trace is running.
func setupLogging(opts options) (func(), error) {
	if opts.logPath != "" {
		f, err := tea.LogToFile(opts.logPath, "halo")
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		return func() { f.Close() }, nil
	}
	if opts.tracePath != "" && opts.tracePath != "-" {
		log.SetOutput(os.Stderr)
		return func() {}, nil
	}
	log.SetOutput(io.Discard)
	return func() {}, nil
}

// chooseAudio decides which file, if any, drives the ring. An empty path
// means idle; cancelled means the user backed out before anything started.
func chooseAudio(opts options) (path string, cancelled bool, err error) {
	switch {
	case opts.idle:
		return "", false, nil
	case opts.arg != "":
		return opts.arg, false, nil
	case opts.pick:
		return pickFile()
	case opts.tracePath != "":
		return "", false, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", false, err
	}
	finalModel, err := tea.NewProgram(ui.NewBrowser(dir), tea.WithAltScreen()).Run()
	if err != nil {
		return "", false, err
	}
	bm, ok := finalModel.(ui.BrowserModel)
	if !ok {
		return "", false, errors.New("unexpected model type from browser")
	}
	if bm.HasError() {
		return "", false, bm.Error()
	}
	result := bm.Result()
	return result.Path, result.Cancelled, nil
}

func pickFile() (string, bool, error) {
	path, err := zenity.SelectFile(
		zenity.Title("halo: choose an audio file"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: media.Patterns(),
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", true, nil
		}
		return "", false, err
	}
	return path, false, nil
}

// newOpener builds the acquisition for arg. Every problem with the file is
// left to acquisition, which turns it into idle mode rather than an exit.
func newOpener(arg string, cfg *config.Config) capture.Opener {
	if arg == "" {
		return capture.Unavailable(errNoAudio)
	}

	a := cfg.Analyser
	aopts := []analyser.Option{
		analyser.WithSmoothing(a.Smoothing),
		analyser.WithDecibels(a.MinDecibels, a.MaxDecibels),
	}
	if !media.IsPlaylistExt(filepath.Ext(arg)) {
		return capture.OpenFile(arg, a.FFTSize, aopts...)
	}
	return func(ctx context.Context) (capture.Source, error) {
		path, err := media.FirstPlayable(arg)
		if err != nil {
			return nil, err
		}
		log.Printf("playlist %s: playing %s", filepath.Base(arg), filepath.Base(path))
		return capture.OpenFile(path, a.FFTSize, aopts...)(ctx)
	}
}

// runTrace writes frames as CSV instead of drawing them. A real file is
// traced in real time so the readings match what is heard.
func runTrace(ctx context.Context, field *ring.Field, c *capture.Capability, cfg *config.Config, opts options, live bool) (err error) {
	var out io.Writer = os.Stdout
	if opts.tracePath != "-" {
		f, err := os.Create(opts.tracePath)
		if err != nil {
			return fmt.Errorf("creating trace file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		out = f
	}

	err = export.Trace(ctx, field, c.Energy, export.TraceOptions{
		Frames:        opts.frames,
		FPS:           cfg.Render.TraceFPS,
		RotationSpeed: cfg.Ring.RotationSpeed,
		Pace:          live,
	}, export.NewWriter(out))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
