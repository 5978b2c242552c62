package config

import (
	"time"

	"github.com/muurk/netscope/internal/discovery"
	"github.com/muurk/netscope/internal/txtrecord"
)

// CurrentVersion is the config file format written by this build
const CurrentVersion = 1

// Neighbor table sources accepted by Correlation.NeighborSource
const (
	NeighborSourceAuto    = "auto"
	NeighborSourceProc    = "proc"
	NeighborSourceCommand = "command"
	NeighborSourceNone    = "none"
)

// Config represents the entire user configuration file.
type Config struct {
	Version     int         `yaml:"version"`
	LogLevel    string      `yaml:"log_level,omitempty"` // Overridden by NETSCOPE_LOG_LEVEL
	Discovery   Discovery   `yaml:"discovery"`
	Correlation Correlation `yaml:"correlation"`
	Interpreter Interpreter `yaml:"interpreter,omitempty"`
	Server      Server      `yaml:"server"`
}

// Discovery configures the mDNS session.
type Discovery struct {
	Domain             string        `yaml:"domain"`                        // Browse domain, normally "local."
	Interface          string        `yaml:"interface,omitempty"`           // Restrict multicast to one interface
	FallbackDelay      time.Duration `yaml:"fallback_delay"`                // Wait before browsing the fallback list
	ResolveTimeout     time.Duration `yaml:"resolve_timeout"`               // Upper bound on a single resolution
	FallbackCategories []string      `yaml:"fallback_categories,omitempty"` // Empty means the built-in list
}

// Correlation configures hardware address and vendor lookup.
type Correlation struct {
	Enabled        bool              `yaml:"enabled"`
	NeighborSource string            `yaml:"neighbor_source"`   // auto, proc, command or none
	Vendors        map[string]string `yaml:"vendors,omitempty"` // Extra OUI prefixes, e.g. "3C:52:82": "HP"
}

// Interpreter configures TXT record rendering.
type Interpreter struct {
	FlagBits []txtrecord.FlagBit `yaml:"flag_bits,omitempty"` // Empty means the built-in table
}

// Server configures "netscope serve".
type Server struct {
	Listen string `yaml:"listen"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Version:  CurrentVersion,
		Discovery: Discovery{
			Domain:         discovery.DefaultDomain,
			FallbackDelay:  discovery.DefaultFallbackDelay,
			ResolveTimeout: discovery.DefaultResolveTimeout,
		},
		Correlation: Correlation{
			Enabled:        true,
			NeighborSource: NeighborSourceAuto,
		},
		Server: Server{
			Listen: ":8080",
		},
	}
}

// EffectiveFallbackCategories returns the configured fallback list, or the
// built-in one when none is set.
func (c *Config) EffectiveFallbackCategories() []string {
	if len(c.Discovery.FallbackCategories) > 0 {
		return c.Discovery.FallbackCategories
	}
	return discovery.FallbackCategories
}

// EffectiveNeighborSource returns the neighbor source to use, or "none" when
// correlation is disabled.
func (c *Config) EffectiveNeighborSource() string {
	if !c.Correlation.Enabled {
		return NeighborSourceNone
	}
	if c.Correlation.NeighborSource == "" {
		return NeighborSourceAuto
	}
	return c.Correlation.NeighborSource
}
