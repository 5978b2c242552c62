package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/netscope/internal/discovery"
	"github.com/muurk/netscope/internal/txtrecord"
)

// maxEvents is how many recent changes the watch view lists
const maxEvents = 5

// WatchSource is the coordinator state the watch view reads
type WatchSource interface {
	Devices() []discovery.Device
	Status() discovery.Status
}

// changeMsg delivers one coordinator change to the model
type changeMsg discovery.Change

// subscriptionClosedMsg reports that the change feed ended
type subscriptionClosedMsg struct{}

// WatchModel is a Bubble Tea model showing the live device registry
type WatchModel struct {
	source  WatchSource
	changes <-chan discovery.Change
	interp  *txtrecord.Interpreter
	domain  string

	table   table.Model
	spinner spinner.Model

	devices []discovery.Device
	status  discovery.Status
	events  []string

	detail   bool
	width    int
	height   int
	quitting bool
}

// NewWatchModel creates a watch view over a source and its change feed
func NewWatchModel(source WatchSource, changes <-chan discovery.Change, interp *txtrecord.Interpreter, domain string) WatchModel {
	if interp == nil {
		interp = txtrecord.New()
	}
	width, height := GetTerminalSize()

	t := table.New(
		table.WithColumns(deviceColumns(width)),
		table.WithFocused(true),
		table.WithHeight(tableHeight(height)),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(MutedColor).
		BorderBottom(true).
		Foreground(PrimaryColor).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(TextColor).
		Background(PrimaryColor).
		Bold(false)
	t.SetStyles(styles)

	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(PrimaryColor)),
	)

	m := WatchModel{
		source:  source,
		changes: changes,
		interp:  interp,
		domain:  domain,
		table:   t,
		spinner: s,
		width:   width,
		height:  height,
	}
	m.refresh()
	return m
}

// waitForChange blocks on the change feed and delivers the next change
func waitForChange(changes <-chan discovery.Change) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-changes
		if !ok {
			return subscriptionClosedMsg{}
		}
		return changeMsg(change)
	}
}

// Init implements tea.Model
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForChange(m.changes))
}

// Update implements tea.Model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			if m.detail {
				m.detail = false
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case "enter", "d":
			if len(m.devices) > 0 {
				m.detail = !m.detail
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = clampWidth(msg.Width), msg.Height
		m.table.SetColumns(deviceColumns(m.width))
		m.table.SetHeight(tableHeight(m.height))
		return m, nil

	case changeMsg:
		m.addEvent(discovery.Change(msg))
		m.refresh()
		return m, waitForChange(m.changes)

	case subscriptionClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	state := "Idle"
	if m.status.Browsing {
		state = m.spinner.View() + " Browsing " + m.domain
	}
	b.WriteString(HeaderTitleStyle.Render("NETSCOPE") + "  " + state + "\n")
	b.WriteString(MutedStyle.Render(fmt.Sprintf("  %d device(s) · %d service type(s) · %d browser(s)",
		len(m.devices), len(m.status.Categories), len(m.status.ActiveBrowsers))) + "\n\n")

	if m.detail {
		if d, ok := m.Selected(); ok {
			b.WriteString(RenderDeviceDetail(d, m.interp.Describe(d.Metadata)))
			b.WriteString("\n\n")
			b.WriteString(MutedStyle.Render("  esc: back · q: quit"))
			return b.String()
		}
	}

	b.WriteString(m.table.View())
	b.WriteString("\n\n")

	for _, ev := range m.events {
		b.WriteString(MutedStyle.Render("  "+ev) + "\n")
	}
	b.WriteString(MutedStyle.Render("  ↑/↓: select · enter: details · q: quit"))
	return b.String()
}

// Selected returns the device under the cursor
func (m WatchModel) Selected() (discovery.Device, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.devices) {
		return discovery.Device{}, false
	}
	return m.devices[i], true
}

// Devices returns the devices currently shown
func (m WatchModel) Devices() []discovery.Device {
	return m.devices
}

// Events returns the recent change lines, oldest first
func (m WatchModel) Events() []string {
	return m.events
}

// refresh reloads devices and status from the source
func (m *WatchModel) refresh() {
	m.devices = m.source.Devices()
	m.status = m.source.Status()

	rows := make([]table.Row, 0, len(m.devices))
	for _, d := range m.devices {
		rows = append(rows, watchRow(d))
	}
	m.table.SetRows(rows)
	if len(m.devices) == 0 {
		m.detail = false
	} else if m.table.Cursor() >= len(m.devices) {
		m.table.SetCursor(len(m.devices) - 1)
	}
}

// addEvent appends a one-line description of a change
func (m *WatchModel) addEvent(c discovery.Change) {
	line := fmt.Sprintf("%s %s", c.Time.Format(time.TimeOnly), describeChange(c))
	m.events = append(m.events, line)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

func describeChange(c discovery.Change) string {
	switch {
	case c.IsDevice():
		return fmt.Sprintf("%s %s", c.Kind, c.Identity.Name)
	case c.Err != nil:
		return fmt.Sprintf("%s %s: %v", c.Kind, c.Category, c.Err)
	case c.Category != "":
		return fmt.Sprintf("%s %s", c.Kind, c.Category)
	default:
		return c.Kind.String()
	}
}

// watchRow is the table row for a device: type, name, service, address, vendor
func watchRow(d discovery.Device) table.Row {
	cells := DeviceRow(d)
	endpoint := d.Endpoint()
	return table.Row{cells[0], cells[1], cells[2], endpoint, cells[7]}
}

// deviceColumns sizes the watch columns to the terminal width. The name
// column takes whatever the fixed columns leave.
func deviceColumns(width int) []table.Column {
	fixed := []table.Column{
		{Title: "TYPE", Width: 8},
		{Title: "NAME"},
		{Title: "SERVICE", Width: 18},
		{Title: "ENDPOINT", Width: 22},
		{Title: "VENDOR", Width: 14},
	}
	used := 0
	for _, c := range fixed {
		used += c.Width + 2 // cell padding
	}
	name := width - used - 2
	if name < 16 {
		name = 16
	}
	fixed[1].Width = name
	return fixed
}

func tableHeight(height int) int {
	h := height - 6 - maxEvents - 2 // header, events and help lines
	if h < 5 {
		h = 5
	}
	return h
}

func clampWidth(width int) int {
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// RunWatch runs the watch view full screen until the user quits or the
// change feed closes
func RunWatch(source WatchSource, changes <-chan discovery.Change, interp *txtrecord.Interpreter, domain string) error {
	p := tea.NewProgram(NewWatchModel(source, changes, interp, domain), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
