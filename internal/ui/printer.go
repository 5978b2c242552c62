package ui

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/muurk/netscope/internal/discovery"
	"github.com/muurk/netscope/internal/neighbor"
	"github.com/muurk/netscope/internal/txtrecord"
)

// Printer provides methods for printing UI components to a writer.
// This is the primary way commands should output styled content.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
}

// PrintResult prints a result box
func (p *Printer) PrintResult(r *Result) {
	p.Println(r.SetWidth(p.width).Render())
}

// PrintDevices prints the device table followed by a count line
func (p *Printer) PrintDevices(devices []discovery.Device) {
	if len(devices) == 0 {
		p.Println(MutedStyle.Render("  No devices found."))
		return
	}
	p.Println(RenderDeviceTable(devices, p.width))
	p.Println(MutedStyle.Render(fmt.Sprintf("  %d device(s)", len(devices))))
}

// PrintDeviceDetail prints one device and its interpreted TXT metadata
func (p *Printer) PrintDeviceDetail(d discovery.Device, fields []txtrecord.Field) {
	p.Println(RenderDeviceDetail(d, fields))
}

// PrintFields prints interpreted TXT entries grouped by category
func (p *Printer) PrintFields(fields []txtrecord.Field) {
	p.Println(RenderFields(fields))
}

// PrintNeighbors prints a neighbor table snapshot
func (p *Printer) PrintNeighbors(entries []neighbor.Entry, vendorFor func(string) string) {
	if len(entries) == 0 {
		p.Println(MutedStyle.Render("  Neighbor table is empty."))
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		vendor := ""
		if vendorFor != nil {
			vendor = vendorFor(e.HardwareAddress)
		}
		rows = append(rows, []string{e.Address, e.HardwareAddress, vendor, e.Interface})
	}
	p.Println(renderTable([]string{"ADDRESS", "HARDWARE ADDRESS", "VENDOR", "INTERFACE"}, rows, p.width))
}

// DeviceRow returns the table cells for a device, in DeviceColumns order
func DeviceRow(d discovery.Device) []string {
	name := d.DisplayName
	if name == "" {
		name = d.Identity.Name
	}
	port := ""
	if d.Port > 0 {
		port = strconv.Itoa(d.Port)
	}
	return []string{
		string(d.Icon),
		name,
		d.Identity.Category,
		strings.TrimSuffix(d.HostName, "."),
		d.PrimaryAddress(),
		port,
		d.HardwareAddress,
		d.Vendor,
	}
}

// DeviceColumns are the device table headings
var DeviceColumns = []string{"TYPE", "NAME", "SERVICE", "HOST", "ADDRESS", "PORT", "HARDWARE ADDRESS", "VENDOR"}

// RenderDeviceTable renders devices as a bordered table
func RenderDeviceTable(devices []discovery.Device, width int) string {
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, DeviceRow(d))
	}
	return renderTable(DeviceColumns, rows, width)
}

func renderTable(headers []string, rows [][]string, width int) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(MutedColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
	if width > 0 {
		t = t.Width(width)
	}
	return t.Render()
}

// RenderDeviceDetail renders a device summary followed by its fields
func RenderDeviceDetail(d discovery.Device, fields []txtrecord.Field) string {
	name := d.DisplayName
	if name == "" {
		name = d.Identity.Name
	}

	lines := []string{
		SectionTitleStyle.Render(IconGlyph(d.Icon) + "  " + name),
		MutedStyle.Render(d.Identity.String()),
		"",
	}

	summary := [][2]string{
		{"Host", strings.TrimSuffix(d.HostName, ".")},
		{"Addresses", strings.Join(d.Addresses, ", ")},
		{"Endpoint", d.Endpoint()},
		{"URL", d.BaseURL()},
		{"Hardware Address", d.HardwareAddress},
		{"Vendor", d.Vendor},
	}
	for _, kv := range summary {
		if kv[1] == "" {
			continue
		}
		lines = append(lines, ResultKeyStyle.Render(kv[0]+":")+" "+ResultValueStyle.Render(kv[1]))
	}

	if len(fields) > 0 {
		lines = append(lines, "", RenderFields(fields))
	}
	return strings.Join(lines, "\n")
}

// RenderFields renders interpreted TXT entries grouped by category. Fields
// are expected in txtrecord.Describe order.
func RenderFields(fields []txtrecord.Field) string {
	if len(fields) == 0 {
		return MutedStyle.Render("No TXT metadata.")
	}

	var lines []string
	for i, f := range fields {
		if i == 0 || fields[i-1].Category != f.Category {
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, SectionTitleStyle.Render(f.Category.String()))
		}
		key := FieldKeyStyle.Render("  " + f.Key + ":")
		value := ResultValueStyle.Render(f.Value)
		if f.Value != f.RawValue && f.RawValue != "" {
			value += MutedStyle.Render(fmt.Sprintf("  (%s=%s)", f.RawKey, f.RawValue))
		}
		lines = append(lines, key+" "+value)
	}
	return strings.Join(lines, "\n")
}
