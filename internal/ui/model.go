package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/halo/internal/capture"
	"github.com/olivier-w/halo/internal/config"
	"github.com/olivier-w/halo/internal/render"
	"github.com/olivier-w/halo/internal/ring"
)

const (
	rotationStep = 0.05
	maxRotation  = 3.0
	volumeStep   = 0.05

	// chromeRows is what the header, status, progress and help lines take
	// from the terminal height.
	chromeRows = 4

	defaultWidth  = 60
	defaultHeight = 24
)

// Optional behaviour of an acquired source.
type (
	transportSource interface {
		Transport() capture.Transport
	}
	labelledSource interface {
		Label() string
	}
	finiteSource interface {
		Done() <-chan struct{}
	}
)

// Model is the Bubbletea model driving the ring one frame per tick.
type Model struct {
	field      *ring.Field
	capability *capture.Capability
	painter    *render.Painter
	interval   time.Duration

	rotation     float64
	baseRotation float64

	start    time.Time
	pausedAt time.Time
	running  bool
	gen      int
	energy   []byte
	frame    string

	state     capture.State
	label     string
	transport capture.Transport
	elapsed   time.Duration
	duration  time.Duration
	volume    float64
	ended     bool

	spinner  spinner.Model
	progress progress.Model
	help     help.Model
	keys     keyMap

	width    int
	height   int
	quitting bool

	now func() time.Time
}

// New creates the frame loop model. The capability may still be pending;
// the ring idles until it resolves.
func New(field *ring.Field, c *capture.Capability, cfg *config.Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentColor)

	p := progress.New(
		progress.WithScaledGradient("#7B5CD6", "#FF5FD2"),
		progress.WithoutPercentage(),
	)

	return Model{
		field:        field,
		capability:   c,
		painter:      render.NewPainter(cfg.Frame.FPS, cfg.Render.GlowThreshold, render.DetectProfile()),
		interval:     cfg.FrameInterval(),
		rotation:     cfg.Ring.RotationSpeed,
		baseRotation: cfg.Ring.RotationSpeed,
		running:      true,
		state:        c.State(),
		spinner:      s,
		progress:     p,
		help:         help.New(),
		keys:         newKeyMap(false),
		width:        defaultWidth,
		height:       defaultHeight,
		now:          time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		frameCmd(m.gen, m.interval),
		waitCapability(m.capability),
		m.spinner.Tick,
		tea.SetWindowTitle("halo"),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		if msg.gen != m.gen || !m.running {
			return m, nil
		}
		if m.start.IsZero() {
			m.start = msg.at
		}
		m.advance(msg.at)
		return m, frameCmd(m.gen, m.interval)

	case capabilityResolvedMsg:
		return m.resolve()

	case playbackEndedMsg:
		m.ended = true
		m.elapsed = m.duration
		return m, nil

	case spinner.TickMsg:
		if m.state != capture.StatePending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-20, 10), 60)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.capability.Close()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case key.Matches(msg, m.keys.Pause):
		return m, m.togglePause()

	case key.Matches(msg, m.keys.Faster):
		m.rotation = min(m.rotation+rotationStep, maxRotation)

	case key.Matches(msg, m.keys.Slower):
		m.rotation = max(m.rotation-rotationStep, -maxRotation)

	case key.Matches(msg, m.keys.VolUp):
		m.transport.AdjustVolume(volumeStep)
		m.volume = m.transport.Volume()

	case key.Matches(msg, m.keys.VolDown):
		m.transport.AdjustVolume(-volumeStep)
		m.volume = m.transport.Volume()

	case key.Matches(msg, m.keys.Reset):
		m.field.Reset()
		m.rotation = m.baseRotation
	}
	return m, nil
}

// togglePause stops or restarts the frame loop. Time spent paused is
// skipped so the harmonics pick up where they stopped.
func (m *Model) togglePause() tea.Cmd {
	if m.transport != nil {
		m.transport.TogglePause()
	}
	now := m.now()
	m.gen++
	if m.running {
		m.running = false
		m.pausedAt = now
		return nil
	}
	m.running = true
	if !m.start.IsZero() {
		m.start = m.start.Add(now.Sub(m.pausedAt))
	}
	return frameCmd(m.gen, m.interval)
}

func (m *Model) advance(at time.Time) {
	t := max(at.Sub(m.start).Seconds(), 0)

	reading := m.capability.Energy(m.energy)
	if reading != nil {
		m.energy = reading
	}
	points := m.field.Advance(t, reading, m.rotation)

	cols, rows := m.canvasSize()
	m.frame = m.painter.Paint(points, cols, rows, m.field.Extent(), m.label)

	if m.transport != nil && !m.ended {
		m.elapsed = m.transport.Position()
		m.volume = m.transport.Volume()
	}
}

func (m Model) resolve() (Model, tea.Cmd) {
	m.state = m.capability.State()
	src := m.capability.Source()
	if src == nil {
		return m, nil
	}

	var cmds []tea.Cmd
	if ls, ok := src.(labelledSource); ok {
		m.label = ls.Label()
		cmds = append(cmds, tea.SetWindowTitle(m.label+" · halo"))
	}
	if ts, ok := src.(transportSource); ok {
		m.transport = ts.Transport()
		m.duration = m.transport.Duration()
		m.volume = m.transport.Volume()
		m.keys = newKeyMap(true)
		if !m.running && !m.transport.Paused() {
			m.transport.TogglePause()
		}
	}
	if fs, ok := src.(finiteSource); ok {
		cmds = append(cmds, waitPlayback(fs.Done()))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) canvasSize() (cols, rows int) {
	return max(m.width, 1), max(m.height-chromeRows, 1)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := max(m.width, 30)
	var b strings.Builder

	b.WriteString("  " + headerStyle.Render("halo"))
	if m.label != "" {
		b.WriteString("  " + titleStyle.Render(m.label))
	}
	b.WriteString("\n")

	if m.frame != "" {
		b.WriteString(m.frame)
	} else {
		_, rows := m.canvasSize()
		b.WriteString(strings.Repeat("\n", rows-1))
	}
	b.WriteString("\n")

	b.WriteString("  " + m.statusLine(w-4) + "\n")
	b.WriteString("  " + m.progressLine() + "\n")
	b.WriteString("  " + m.help.View(m.keys))

	return b.String()
}

func (m Model) statusLine(width int) string {
	var left string
	switch {
	case m.state == capture.StatePending:
		left = m.spinner.View() + " " + statusStyle.Render("listening for audio...")
	case !m.running:
		left = statusStyle.Render("❚❚  paused")
	default:
		left = modeStyle.Render(m.field.Mode().String())
		if m.ended {
			left += statusStyle.Render("  finished")
		}
	}

	right := renderRotation(m.rotation)
	if m.transport != nil {
		right = renderVolumePercent(m.volume) + "  " + right
	}
	return spread(left, statusStyle.Render(right), lipgloss.Width(left), lipgloss.Width(right), width)
}

func (m Model) progressLine() string {
	if m.transport == nil {
		return ""
	}
	return timeStyle.Render(formatDuration(m.elapsed)) + " " +
		m.progress.ViewAs(progressRatio(m.elapsed, m.duration)) + " " +
		timeStyle.Render(formatDuration(m.duration))
}
