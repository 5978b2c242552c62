package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// browseTick is how often the browse progress bar advances
const browseTick = 100 * time.Millisecond

type browseTickMsg time.Time

// BrowseModel shows a progress bar while a timed browse collects devices
type BrowseModel struct {
	source   WatchSource
	started  time.Time
	duration time.Duration
	now      time.Time
	devices  int
	bar      progress.Model
	done     bool
}

// NewBrowseModel creates a progress view for a browse of the given length
func NewBrowseModel(source WatchSource, duration time.Duration) BrowseModel {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
	)
	now := time.Now()
	return BrowseModel{
		source:   source,
		started:  now,
		duration: duration,
		now:      now,
		bar:      bar,
	}
}

func browseTickCmd() tea.Cmd {
	return tea.Tick(browseTick, func(t time.Time) tea.Msg { return browseTickMsg(t) })
}

// Init implements tea.Model
func (m BrowseModel) Init() tea.Cmd {
	return browseTickCmd()
}

// Update implements tea.Model
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.done = true
			return m, tea.Quit
		}
	case browseTickMsg:
		m.now = time.Time(msg)
		m.devices = m.source.Status().Devices
		if m.Percent() >= 1 {
			m.done = true
			return m, tea.Quit
		}
		return m, browseTickCmd()
	}
	return m, nil
}

// View implements tea.Model
func (m BrowseModel) View() string {
	if m.done {
		return ""
	}
	remaining := m.duration - m.now.Sub(m.started)
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("  %s  %s\n",
		m.bar.ViewAs(m.Percent()),
		MutedStyle.Render(fmt.Sprintf("%d device(s), %s left", m.devices, remaining.Round(time.Second))),
	)
}

// Percent returns the elapsed fraction of the browse, 0 to 1
func (m BrowseModel) Percent() float64 {
	if m.duration <= 0 {
		return 1
	}
	p := float64(m.now.Sub(m.started)) / float64(m.duration)
	if p > 1 {
		return 1
	}
	return p
}

// RunBrowseProgress shows the progress bar on out until the duration has
// elapsed or the user interrupts. It reports whether the browse ran to
// completion.
func RunBrowseProgress(source WatchSource, duration time.Duration, out io.Writer) (bool, error) {
	p := tea.NewProgram(NewBrowseModel(source, duration), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(BrowseModel)
	return ok && m.Percent() >= 1, nil
}
