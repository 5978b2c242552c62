package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/netscope/internal/config"
	"github.com/muurk/netscope/internal/ui"
)

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Create or inspect the netscope configuration file.

The file lives in the per-user configuration directory unless --config is
given:
  Linux:   $XDG_CONFIG_HOME/netscope/config.yaml (~/.config/netscope/config.yaml)
  macOS:   ~/.config/netscope/config.yaml
  Windows: %LOCALAPPDATA%\netscope\config.yaml`,
}

// configInitCmd writes a default configuration file
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Example: `  # Write to the default location
  netscope config init

  # Overwrite without asking
  netscope config init --force

  # Write a file pinned to one interface
  netscope config init --config ./netscope.yaml --interface en0`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file without asking")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if !configForce && !ui.ConfirmOverwrite(cmd.InOrStdin(), cmd.OutOrStdout(), path) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to check %s: %w", path, err)
	}

	c := config.Default()
	c.Discovery.Interface = interfaceName
	if domainName != "" {
		c.Discovery.Domain = domainName
	}

	if err := c.Save(path); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	newPrinter().PrintResult(ui.NewSuccessResult("Configuration written", map[string]string{
		"Path":   path,
		"Domain": c.Discovery.Domain,
	}))
	return nil
}

// configShowCmd prints the effective configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration in effect after defaults, the configuration file
and command line flags have been applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		return enc.Close()
	},
}
