// Package config provides user configuration management for netscope.
//
// This package manages a YAML configuration file holding discovery,
// correlation, interpreter and server settings. The configuration follows
// OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/netscope/config.yaml or $HOME/.config/netscope/config.yaml
//   - macOS: $HOME/.config/netscope/config.yaml
//   - Windows: %LOCALAPPDATA%\netscope\config.yaml
//
// A missing file is not an error: Load returns Default().
//
// # Example File
//
//	version: 1
//	log_level: info
//	discovery:
//	  domain: local.
//	  interface: en0
//	  fallback_delay: 4s
//	  resolve_timeout: 10s
//	correlation:
//	  enabled: true
//	  neighbor_source: auto
//	  vendors:
//	    "00:1B:63": Apple
//	interpreter:
//	  flag_bits:
//	    - {bit: 0, label: Ready}
//	server:
//	  listen: ":8080"
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.Discovery.FallbackDelay = 2 * time.Second
//	if err := cfg.Save(""); err != nil {
//	    log.Fatal(err)
//	}
//
// Invalid values are reported as *ValidationError naming the YAML field.
package config
