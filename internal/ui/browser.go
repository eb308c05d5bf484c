package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/halo/internal/media"
)

// BrowserResult holds the outcome of the file browser. An empty Path with
// Cancelled false means the idle ring was chosen.
type BrowserResult struct {
	Path      string
	Cancelled bool
}

type audioItem struct {
	name string
	ext  string
	path string
}

func (i audioItem) Title() string       { return i.name }
func (i audioItem) Description() string { return i.ext }
func (i audioItem) FilterValue() string { return i.name }

type idleItem struct{}

func (idleItem) Title() string       { return "No audio" }
func (idleItem) Description() string { return "idle ring, synthetic waves only" }
func (idleItem) FilterValue() string { return "idle" }

// BrowserModel lets the user pick an audio file from a directory.
type BrowserModel struct {
	list   list.Model
	result *BrowserResult
	err    error
}

// NewBrowser lists the playable files in dir.
func NewBrowser(dir string) BrowserModel {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return BrowserModel{err: fmt.Errorf("cannot read directory: %w", err)}
	}

	items := []list.Item{idleItem{}}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !media.IsSupportedExt(ext) {
			continue
		}
		items = append(items, audioItem{
			name: strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			ext:  ext,
			path: filepath.Join(dir, e.Name()),
		})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
		BorderLeftForeground(accentColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(accentColor)

	l := list.New(items, delegate, 80, 20)
	l.Title = "halo"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = headerStyle

	return BrowserModel{list: l}
}

// HasError returns true if the browser could not be initialized.
func (m BrowserModel) HasError() bool {
	return m.err != nil
}

// Error returns the initialization error, if any.
func (m BrowserModel) Error() error {
	return m.err
}

// Result returns the browser result after the program finishes.
func (m BrowserModel) Result() BrowserResult {
	if m.result != nil {
		return *m.result
	}
	return BrowserResult{Cancelled: true}
}

func (m BrowserModel) Init() tea.Cmd {
	return tea.SetWindowTitle("halo")
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.result = &BrowserResult{Cancelled: true}
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			switch item := m.list.SelectedItem().(type) {
			case idleItem:
				m.result = &BrowserResult{}
				return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
			case audioItem:
				m.result = &BrowserResult{Path: item.path}
				return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
			}
		case "q", "esc", "ctrl+c":
			m.result = &BrowserResult{Cancelled: true}
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) View() string {
	if m.err != nil {
		return "\n  " + headerStyle.Render("halo") + "\n\n  " + m.err.Error() + "\n\n  " + helpStyle.Render("press any key") + "\n"
	}
	return m.list.View()
}
