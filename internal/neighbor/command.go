package neighbor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Command reads the neighbor table from the output of an external command
type Command struct {
	Name  string
	Args  []string
	Parse func(io.Reader) ([]Entry, error)
}

// NewARPCommand runs "arp -an", available on macOS, the BSDs and most Linux
// installs
func NewARPCommand() *Command {
	return &Command{Name: "arp", Args: []string{"-an"}, Parse: ParseARPOutput}
}

// NewIPNeighCommand runs "ip neigh show" from iproute2
func NewIPNeighCommand() *Command {
	return &Command{Name: "ip", Args: []string{"neigh", "show"}, Parse: ParseIPNeigh}
}

// Snapshot runs the command and parses its standard output
func (c *Command) Snapshot(ctx context.Context) ([]Entry, error) {
	path, err := exec.LookPath(c.Name)
	if err != nil {
		return nil, fmt.Errorf("%s not found: %w", c.Name, ErrUnavailable)
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", c.Name, err)
	}

	return c.Parse(&stdout)
}

// ParseARPOutput parses "arp -an" output in both the BSD and Linux styles:
//
//	? (192.168.1.1) at 3c:52:82:aa:bb:cc on en0 ifscope [ethernet]
//	? (192.168.1.42) at (incomplete) on en0 ifscope [ethernet]
//	? (10.0.0.1) at 00:11:22:33:44:55 [ether] on eth0
func ParseARPOutput(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		open := strings.IndexByte(line, '(')
		closeIdx := strings.IndexByte(line, ')')
		if open < 0 || closeIdx <= open+1 {
			continue
		}
		ip := line[open+1 : closeIdx]

		rest := line[closeIdx+1:]
		at := strings.Index(rest, " at ")
		if at < 0 {
			continue
		}
		fields := strings.Fields(rest[at+len(" at "):])
		if len(fields) == 0 || !validHardwareAddress(fields[0]) {
			continue
		}

		entry := Entry{Address: ip, HardwareAddress: strings.ToLower(fields[0])}
		for i := 1; i < len(fields)-1; i++ {
			if fields[i] == "on" {
				entry.Interface = fields[i+1]
				break
			}
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read arp output: %w", err)
	}
	return entries, nil
}

// ParseIPNeigh parses "ip neigh show" output:
//
//	192.168.1.1 dev eth0 lladdr 3c:52:82:aa:bb:cc REACHABLE
//	fe80::1 dev eth0 lladdr 3c:52:82:aa:bb:cc router STALE
//	192.168.1.9 dev eth0 FAILED
func ParseIPNeigh(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}

		entry := Entry{Address: fields[0]}
		for i := 1; i < len(fields)-1; i++ {
			switch fields[i] {
			case "dev":
				entry.Interface = fields[i+1]
			case "lladdr":
				entry.HardwareAddress = strings.ToLower(fields[i+1])
			}
		}
		if !validHardwareAddress(entry.HardwareAddress) {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read ip neigh output: %w", err)
	}
	return entries, nil
}
