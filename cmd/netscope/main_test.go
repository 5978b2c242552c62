package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/muurk/netscope/internal/config"
	"github.com/muurk/netscope/internal/discovery"
	"github.com/muurk/netscope/internal/logging"
)

// execute runs the root command with args and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NETSCOPE_LOG_LEVEL", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configPath, interfaceName, domainName = "", "", ""
	configForce = false
	cfg = config.Default()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(bytes.NewReader(nil))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "netscope ")
	assert.Contains(t, out, "commit:")
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netscope.yaml")

	_, err := execute(t, "config", "init", "--config", path, "--domain", "home.arpa.")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "domain: home.arpa.")

	out, err := execute(t, "config", "show", "--config", path, "--interface", "eth9")
	require.NoError(t, err)
	assert.Contains(t, out, "domain: home.arpa.")
	assert.Contains(t, out, "interface: eth9")
}

func TestConfigInit_DeclinesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0600))

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(data))
}

func TestLoadConfig_RejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\nlog_level: loud\n"), 0600))

	_, err := execute(t, "config", "show", "--config", path)
	assert.Error(t, err)
}

func TestInterpretCommand_RejectsEmptyKey(t *testing.T) {
	_, err := execute(t, "interpret", "=value")
	assert.Error(t, err)
}

func TestVendorCommand_RejectsShortAddress(t *testing.T) {
	_, err := execute(t, "vendor", "ab:cd")
	assert.Error(t, err)
}

func TestLogChanges(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(nil) })

	deviceID := uuid.New()
	lookup := func(id uuid.UUID) (discovery.Device, bool) {
		if id != deviceID {
			return discovery.Device{}, false
		}
		return discovery.Device{DisplayName: "LaserJet 400"}, true
	}

	changes := make(chan discovery.Change, 4)
	changes <- discovery.Change{
		Kind:     discovery.ChangeAdded,
		Identity: discovery.Identity{Name: "Office", Category: "_ipp._tcp", Domain: "local."},
		DeviceID: deviceID,
	}
	changes <- discovery.Change{Kind: discovery.ChangeCategoryAdded, Category: "_ipp._tcp"}
	changes <- discovery.Change{Kind: discovery.ChangeBrowseFailed, Category: "_smb._tcp", Err: errors.New("no route")}
	changes <- discovery.Change{Kind: discovery.ChangeStarted}
	close(changes)

	logChanges(changes, lookup)

	entries := logs.All()
	require.Len(t, entries, 3)

	device := entries[0].ContextMap()
	assert.Equal(t, "Device change", entries[0].Message)
	assert.Equal(t, "added", device["kind"])
	assert.Equal(t, "LaserJet 400", device["display_name"])

	assert.Equal(t, "Browse event", entries[1].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "category_added", entries[1].ContextMap()["event"])

	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "_smb._tcp", entries[2].ContextMap()["category"])
}
