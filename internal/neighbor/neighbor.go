// Package neighbor reads the operating system's neighbor (ARP) table.
//
// The table maps IP addresses to hardware addresses for hosts this machine
// has recently talked to. Providers are best-effort: a table that cannot be
// read yields an error or an empty snapshot, and callers are expected to treat
// both as "no data".
package neighbor

import (
	"context"
	"errors"
	"runtime"
	"strings"
)

// Entry is one row of the neighbor table
type Entry struct {
	Address         string `json:"address" yaml:"address"`
	HardwareAddress string `json:"hardware_address" yaml:"hardware_address"`
	Interface       string `json:"interface,omitempty" yaml:"interface,omitempty"`
}

// Provider returns a full snapshot of the neighbor table
type Provider interface {
	Snapshot(ctx context.Context) ([]Entry, error)
}

// ErrUnavailable is returned by providers with no table to read
var ErrUnavailable = errors.New("neighbor table unavailable")

// Static is a fixed neighbor table
type Static []Entry

// Snapshot returns a copy of the static entries
func (s Static) Snapshot(ctx context.Context) ([]Entry, error) {
	out := make([]Entry, len(s))
	copy(out, s)
	return out, nil
}

// None is a provider that never has entries
type None struct{}

// Snapshot always returns ErrUnavailable
func (None) Snapshot(ctx context.Context) ([]Entry, error) {
	return nil, ErrUnavailable
}

// Chain tries each provider in order and returns the first non-empty snapshot
type Chain []Provider

// Snapshot returns the first non-empty snapshot. If every provider fails the
// last error is returned.
func (c Chain) Snapshot(ctx context.Context) ([]Entry, error) {
	var lastErr error
	for _, p := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := p.Snapshot(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}
	return nil, lastErr
}

// Default returns the provider appropriate for the running platform
func Default() Provider {
	switch runtime.GOOS {
	case "linux":
		return Chain{NewProcFile(), NewIPNeighCommand(), NewARPCommand()}
	case "darwin", "freebsd", "openbsd", "netbsd":
		return NewARPCommand()
	case "windows":
		return None{}
	default:
		return NewARPCommand()
	}
}

// ForSource returns the provider named by a configuration source
// ("auto", "proc", "command", "none"). Unknown names fall back to auto.
func ForSource(source string) Provider {
	switch strings.ToLower(source) {
	case "proc":
		return NewProcFile()
	case "command":
		if runtime.GOOS == "linux" {
			return Chain{NewIPNeighCommand(), NewARPCommand()}
		}
		return NewARPCommand()
	case "none", "off", "disabled":
		return None{}
	default:
		return Default()
	}
}

// validHardwareAddress rejects incomplete and all-zero hardware addresses
func validHardwareAddress(hw string) bool {
	if hw == "" || strings.EqualFold(hw, "(incomplete)") || strings.EqualFold(hw, "incomplete") {
		return false
	}
	for _, r := range hw {
		switch r {
		case '0', ':', '-', '.':
			continue
		default:
			return true
		}
	}
	return false
}
