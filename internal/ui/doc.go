// Package ui provides terminal UI components for the netscope CLI.
//
// This package uses Bubble Tea, Bubbles and Lipgloss. Most output follows a
// "print once and exit" pattern through Printer; the watch command is the
// one interactive view.
//
// # Components
//
//   - Header: command banner showing the operation and its parameters
//   - Result: success/failure/warning boxes, with troubleshooting tips
//   - Printer: device, neighbor and TXT field tables (lipgloss/table)
//   - BrowseModel: progress bar shown while a timed browse runs
//   - WatchModel: live device table (bubbles/table) driven by coordinator
//     changes, with a detail pane for the selected device
//
// # Logging Integration
//
// This package expects logging to be controlled via the NETSCOPE_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly. Logs go to stderr so they
// never mix with tables or exported snapshots on stdout.
package ui
