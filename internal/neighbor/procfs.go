package neighbor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultProcPath is the Linux kernel's ARP table
const DefaultProcPath = "/proc/net/arp"

// atfComplete is the ATF_COM flag marking a resolved entry
const atfComplete = 0x2

// ProcFile reads the neighbor table from /proc/net/arp
type ProcFile struct {
	Path string
}

// NewProcFile creates a provider reading the default proc path
func NewProcFile() *ProcFile {
	return &ProcFile{Path: DefaultProcPath}
}

// Snapshot reads and parses the proc file
func (p *ProcFile) Snapshot(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := p.Path
	if path == "" {
		path = DefaultProcPath
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return ParseProcARP(f)
}

// ParseProcARP parses the /proc/net/arp format:
//
//	IP address       HW type     Flags       HW address            Mask     Device
//	192.168.1.1      0x1         0x2         3c:52:82:aa:bb:cc     *        eth0
func ParseProcARP(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if strings.HasPrefix(strings.TrimSpace(line), "IP address") {
				continue
			}
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		var flags uint64
		if _, err := fmt.Sscanf(fields[2], "0x%x", &flags); err == nil && flags&atfComplete == 0 {
			continue
		}

		hw := fields[3]
		if !validHardwareAddress(hw) {
			continue
		}

		entry := Entry{Address: fields[0], HardwareAddress: strings.ToLower(hw)}
		if len(fields) >= 6 {
			entry.Interface = fields[5]
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read neighbor table: %w", err)
	}
	return entries, nil
}
