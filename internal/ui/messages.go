package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/halo/internal/capture"
)

// frameMsg is one display refresh. gen ties it to the loop that scheduled
// it, so a stopped loop's in-flight tick is dropped.
type frameMsg struct {
	gen int
	at  time.Time
}

type capabilityResolvedMsg struct{}

type playbackEndedMsg struct{}

func frameCmd(gen int, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg{gen: gen, at: t}
	})
}

func waitCapability(c *capture.Capability) tea.Cmd {
	return func() tea.Msg {
		<-c.Done()
		return capabilityResolvedMsg{}
	}
}

func waitPlayback(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return playbackEndedMsg{}
	}
}
