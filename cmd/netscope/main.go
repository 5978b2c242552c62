// Netscope discovers devices advertised on the local network via mDNS / DNS-SD.
//
// It browses every advertised service type, resolves each instance, correlates
// addresses to hardware addresses through the neighbor table and classifies
// devices into a friendly name and icon.
//
// Usage:
//
//	netscope browse [flags]
//	netscope watch
//	netscope serve [flags]
//
// See 'netscope --help' for all commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/netscope/internal/config"
	"github.com/muurk/netscope/internal/logging"
	"github.com/muurk/netscope/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath    string
	interfaceName string
	domainName    string
)

// cfg is the configuration loaded before every command runs
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "netscope",
	Short: "Local network device discovery",
	Long: `Discover devices on the local network using mDNS/DNS-SD.

Netscope browses every advertised service type, resolves each instance to a
host, port and addresses, decodes TXT metadata, looks up hardware addresses
in the neighbor table and classifies each device (printer, speaker, NAS...).

Logging goes to stderr and is off by default. Set NETSCOPE_LOG_LEVEL or
log_level in the configuration file to enable it.`,
	Version: version.Version,
	Example: `  # Browse for 10 seconds and print a table
  netscope browse

  # Live view that updates as devices come and go
  netscope watch

  # Serve the registry over HTTP and websocket
  netscope serve --listen :8080

  # Decode a TXT record by hand
  netscope interpret rp=ipp/print Color=T`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (default: per-user config directory)")
	rootCmd.PersistentFlags().StringVar(&interfaceName, "interface", "", "Network interface to browse on (default: all multicast interfaces)")
	rootCmd.PersistentFlags().StringVar(&domainName, "domain", "", "DNS-SD browse domain (default: local.)")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration file, starts logging and applies flag
// overrides
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg = loaded

	level := os.Getenv(logging.LogLevelEnvVar)
	if level == "" {
		level = cfg.LogLevel
	}
	if err := logging.Initialize(level); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	if interfaceName != "" {
		cfg.Discovery.Interface = interfaceName
	}
	if domainName != "" {
		cfg.Discovery.Domain = domainName
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.Debug("Configuration loaded",
		zap.String("path", configPath),
		zap.String("domain", cfg.Discovery.Domain),
		zap.String("interface", cfg.Discovery.Interface),
		zap.String("neighbor_source", cfg.EffectiveNeighborSource()),
	)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "netscope %s\n", version.Full())
	},
}
