package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/muurk/netscope/internal/correlate"
)

const (
	appName    = "netscope"
	configFile = "config.yaml"
)

// Mutex for thread-safe file operations
var fileMutex sync.Mutex

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/netscope or $HOME/.config/netscope
//   - macOS: $HOME/.config/netscope (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\netscope
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			// Fallback to USERPROFILE\AppData\Local if LOCALAPPDATA not set
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// resolvePath returns path, or the default config path when path is empty.
func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return GetConfigPath()
}

// Load reads the configuration file at path (the default location when path
// is empty). A missing file yields Default(). Values absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	configPath, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// An empty document leaves Version at its default
	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", cfg.Version, CurrentVersion)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path (the default location when path is
// empty). Performs an atomic write to prevent corruption on crash.
func (c *Config) Save(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := c.Validate(); err != nil {
		return err
	}

	configPath, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Create directory with user-only permissions (0700)
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# netscope configuration file
#
# Durations use Go syntax ("4s", "1m30s"). NETSCOPE_LOG_LEVEL overrides
# log_level when set.
#
# Location: ` + configPath + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

// Validate checks every section and returns the first problem found as a
// *ValidationError.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Field: "log_level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}

	d := c.Discovery
	if strings.TrimSpace(d.Domain) == "" {
		return &ValidationError{Field: "discovery.domain", Message: "must not be empty"}
	}
	if strings.ContainsAny(d.Domain, " \t") {
		return &ValidationError{Field: "discovery.domain", Message: fmt.Sprintf("%q contains whitespace", d.Domain)}
	}
	if d.FallbackDelay < 0 {
		return &ValidationError{Field: "discovery.fallback_delay", Message: "must not be negative"}
	}
	if d.ResolveTimeout <= 0 {
		return &ValidationError{Field: "discovery.resolve_timeout", Message: "must be positive"}
	}
	for i, category := range d.FallbackCategories {
		if !strings.HasPrefix(category, "_") || !strings.Contains(category, "._") {
			return &ValidationError{
				Field:   fmt.Sprintf("discovery.fallback_categories[%d]", i),
				Message: fmt.Sprintf("%q is not a service type like \"_http._tcp\"", category),
			}
		}
	}

	switch c.Correlation.NeighborSource {
	case "", NeighborSourceAuto, NeighborSourceProc, NeighborSourceCommand, NeighborSourceNone:
	default:
		return &ValidationError{
			Field:   "correlation.neighbor_source",
			Message: fmt.Sprintf("unknown source %q (expected auto, proc, command or none)", c.Correlation.NeighborSource),
		}
	}
	for prefix := range c.Correlation.Vendors {
		oui := correlate.NormalizeHardwareAddress(prefix)
		if len(oui) != 6 {
			return &ValidationError{Field: "correlation.vendors", Message: fmt.Sprintf("prefix %q must be three octets", prefix)}
		}
		if _, err := hex.DecodeString(oui); err != nil {
			return &ValidationError{Field: "correlation.vendors", Message: fmt.Sprintf("prefix %q is not hex", prefix), Err: err}
		}
	}

	seen := make(map[uint]bool, len(c.Interpreter.FlagBits))
	for i, fb := range c.Interpreter.FlagBits {
		field := fmt.Sprintf("interpreter.flag_bits[%d]", i)
		if fb.Bit > 63 {
			return &ValidationError{Field: field, Message: fmt.Sprintf("bit %d out of range 0-63", fb.Bit)}
		}
		if strings.TrimSpace(fb.Label) == "" {
			return &ValidationError{Field: field, Message: "label must not be empty"}
		}
		if seen[fb.Bit] {
			return &ValidationError{Field: field, Message: fmt.Sprintf("bit %d listed twice", fb.Bit)}
		}
		seen[fb.Bit] = true
	}

	if c.Server.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
			return &ValidationError{Field: "server.listen", Message: fmt.Sprintf("%q is not host:port", c.Server.Listen), Err: err}
		}
	}

	return nil
}
