package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/netscope/internal/codec"
	"github.com/muurk/netscope/internal/correlate"
	"github.com/muurk/netscope/internal/discovery"
	"github.com/muurk/netscope/internal/logging"
	"github.com/muurk/netscope/internal/neighbor"
	"github.com/muurk/netscope/internal/server"
	"github.com/muurk/netscope/internal/txtrecord"
	"github.com/muurk/netscope/internal/ui"
)

// formatTable is the human readable output format
const formatTable = "table"

// neighborTimeout bounds a neighbor table read
const neighborTimeout = 5 * time.Second

// Command flags
var (
	browseDuration  time.Duration
	browseFormat    string
	browseDetail    bool
	serveListen     string
	neighborsFormat string
	configForce     bool
)

func init() {
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(interpretCmd)
	rootCmd.AddCommand(vendorCmd)
	rootCmd.AddCommand(neighborsCmd)
}

// browseCmd runs one timed discovery session
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the network and print discovered devices",
	Long: `Run a discovery session for a fixed duration and print every device found.

All advertised service types are browsed. If nothing answers the DNS-SD
meta query within the fallback delay, a list of common service types is
browsed instead. Press Ctrl+C to stop early and print what was found so far.

Formats other than "table" write a snapshot of the registry that can be
read back by other tools.`,
	Example: `  # Browse for 10 seconds (default)
  netscope browse

  # Quick 3-second browse
  netscope browse --duration 3s

  # Include decoded TXT metadata for every device
  netscope browse --detail

  # JSON snapshot for scripting
  netscope browse --format json > devices.json

  # Compact binary snapshot
  netscope browse --format cbor > devices.cbor`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().DurationVar(&browseDuration, "duration", 10*time.Second, "How long to browse")
	browseCmd.Flags().StringVar(&browseFormat, "format", formatTable,
		fmt.Sprintf("Output format (%s, %s)", formatTable, strings.Join(codec.Formats(), ", ")))
	browseCmd.Flags().BoolVar(&browseDetail, "detail", false, "Print decoded TXT metadata for each device (table format only)")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if browseDuration <= 0 {
		return fmt.Errorf("--duration must be positive, got %s", browseDuration)
	}

	var exporter codec.Exporter
	if browseFormat != formatTable {
		c, err := codec.ForFormat(browseFormat)
		if err != nil {
			return err
		}
		exporter = c
	}

	coord, err := newCoordinator()
	if err != nil {
		return err
	}
	defer func() { _ = coord.Close() }()

	out := cmd.OutOrStdout()
	printer := newPrinter()
	if exporter == nil {
		printer.PrintHeader("Network Discovery", "netscope browse", map[string]string{
			"Domain":   cfg.Discovery.Domain,
			"Duration": browseDuration.String(),
		})
	}

	changes, unsubscribe := coord.Subscribe()
	defer unsubscribe()
	go logChanges(changes, coord.Device)

	if err := coord.Start(); err != nil {
		return fmt.Errorf("failed to start discovery: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if ui.IsTerminal(os.Stderr) {
		if _, err := ui.RunBrowseProgress(coord, browseDuration, os.Stderr); err != nil {
			logging.Warn("Progress display failed", zap.Error(err))
		}
	} else {
		select {
		case <-ctx.Done():
		case <-time.After(browseDuration):
		}
	}
	coord.Stop()

	snapshot := codec.Take(coord)
	if exporter != nil {
		if err := exporter.Export(snapshot, out); err != nil {
			return fmt.Errorf("failed to write %s snapshot: %w", exporter.Format(), err)
		}
		return nil
	}

	if len(snapshot.Devices) == 0 {
		result := ui.NewWarningResult("No devices found", map[string]string{
			"Service types": fmt.Sprintf("%d", len(snapshot.Status.Categories)),
		})
		result.Troubleshooting = append(result.Troubleshooting, ui.MulticastTroubleshooting...)
		result.Troubleshooting = append(result.Troubleshooting, "Try increasing --duration for slower networks")
		printer.PrintResult(result)
		return nil
	}

	printer.Println(ui.SectionTitleStyle.Render(fmt.Sprintf("Found %d device(s) across %d service type(s)",
		len(snapshot.Devices), len(snapshot.Status.Categories))))
	printer.PrintDevices(snapshot.Devices)

	if browseDetail {
		interp := newInterpreter()
		for _, d := range snapshot.Devices {
			printer.Newline()
			printer.PrintDeviceDetail(d, interp.Describe(d.Metadata))
		}
	}
	return nil
}

// watchCmd runs the live terminal view
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of devices as they appear and disappear",
	Long: `Run discovery continuously and show a live table of devices.

Use the arrow keys to select a device and Enter to show its decoded TXT
metadata. Press q to quit.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal(os.Stdout) {
		return fmt.Errorf("watch needs an interactive terminal; use 'netscope browse --format json' instead")
	}

	coord, err := newCoordinator()
	if err != nil {
		return err
	}
	defer func() { _ = coord.Close() }()

	changes, cancel := coord.Subscribe()
	defer cancel()

	if err := coord.Start(); err != nil {
		return fmt.Errorf("failed to start discovery: %w", err)
	}

	return ui.RunWatch(coord, changes, newInterpreter(), cfg.Discovery.Domain)
}

// serveCmd exposes the registry over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve discovered devices over HTTP and websocket",
	Long: `Run discovery continuously and serve the registry.

Endpoints:
  GET /api/devices          all devices
  GET /api/devices/{id}     one device with decoded TXT metadata
  GET /api/categories       service types seen on the network
  GET /api/status           session status
  GET /api/snapshot         registry snapshot (?format=json|yaml|cbor)
  GET /ws                   websocket feed, a message after every change`,
	Example: `  # Serve on the configured address (default :8080)
  netscope serve

  # Serve on localhost only
  netscope serve --listen 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	listen := cfg.Server.Listen
	if serveListen != "" {
		listen = serveListen
	}

	coord, err := newCoordinator()
	if err != nil {
		return err
	}
	defer func() { _ = coord.Close() }()

	srv, err := server.New(&server.Config{Listen: listen}, coord, newInterpreter())
	if err != nil {
		return err
	}

	changes, unsubscribe := coord.Subscribe()
	defer unsubscribe()
	go logChanges(changes, coord.Device)

	if err := coord.Start(); err != nil {
		return fmt.Errorf("failed to start discovery: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving devices on %s (Ctrl+C to stop)\n", listen)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// logChanges logs registry changes until the subscription is closed
func logChanges(changes <-chan discovery.Change, lookup func(uuid.UUID) (discovery.Device, bool)) {
	for change := range changes {
		logChange(change, lookup)
	}
}

func logChange(change discovery.Change, lookup func(uuid.UUID) (discovery.Device, bool)) {
	switch change.Kind {
	case discovery.ChangeAdded, discovery.ChangeUpdated, discovery.ChangeRemoved:
		var name string
		if d, ok := lookup(change.DeviceID); ok {
			name = d.DisplayName
		}
		logging.LogDeviceChange(change.Kind.String(), change.Identity.String(), name)
	case discovery.ChangeCategoryAdded, discovery.ChangeCategoryRemoved, discovery.ChangeBrowseFailed:
		logging.LogBrowseEvent(change.Category, change.Kind.String(), change.Err)
	}
}

// interpretCmd decodes TXT key/value pairs without touching the network
var interpretCmd = &cobra.Command{
	Use:   "interpret key=value...",
	Short: "Decode TXT record entries",
	Long: `Decode DNS-SD TXT record entries into readable labels and values.

A key without "=" is treated as a boolean attribute with an empty value.`,
	Example: `  # Printer record
  netscope interpret rp=ipp/print Color=T Duplex=F pdl=application/pdf,image/urf

  # AirPlay flags
  netscope interpret model=AppleTV6,2 flags=0x244`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInterpret,
}

func runInterpret(cmd *cobra.Command, args []string) error {
	metadata := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, _ := strings.Cut(arg, "=")
		if key == "" {
			return fmt.Errorf("invalid entry %q: key is empty", arg)
		}
		metadata[key] = value
	}

	newPrinter().PrintFields(newInterpreter().Describe(metadata))
	return nil
}

// vendorCmd looks up hardware address vendors
var vendorCmd = &cobra.Command{
	Use:   "vendor <hardware-address>...",
	Short: "Look up the vendor of hardware addresses",
	Long: `Look up the vendor of one or more hardware addresses from the built-in
OUI table plus any entries under correlation.vendors in the configuration.`,
	Example: `  netscope vendor b8:27:eb:01:02:03
  netscope vendor 3C-52-82-AA-BB-CC 0011.2233.4455`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVendor,
}

func runVendor(cmd *cobra.Command, args []string) error {
	corr := newCorrelator(neighbor.None{})

	result := ui.NewSuccessResult("Vendor lookup", nil)
	unknown := 0
	for _, arg := range args {
		if correlate.OUI(arg) == "" {
			return fmt.Errorf("invalid hardware address %q", arg)
		}
		vendor := corr.Vendor(arg)
		if vendor == "" {
			vendor = "Unknown"
			unknown++
		}
		result.AddDetail(correlate.FormatHardwareAddress(arg), vendor)
	}
	if unknown == len(args) {
		result.Type = ui.ResultWarning
		result.Title = "No vendor found"
	}

	newPrinter().PrintResult(result)
	return nil
}

// neighborsCmd dumps the neighbor table
var neighborsCmd = &cobra.Command{
	Use:   "neighbors",
	Short: "Show the neighbor (ARP) table",
	Long: `Show the operating system's neighbor table as used for hardware address
correlation. The source is chosen by correlation.neighbor_source.`,
	Example: `  netscope neighbors
  netscope neighbors --format json`,
	Args: cobra.NoArgs,
	RunE: runNeighbors,
}

func init() {
	neighborsCmd.Flags().StringVar(&neighborsFormat, "format", formatTable, "Output format (table, json, yaml)")
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	provider := neighbor.ForSource(cfg.EffectiveNeighborSource())

	ctx, cancel := context.WithTimeout(cmd.Context(), neighborTimeout)
	defer cancel()

	entries, err := provider.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read neighbor table: %w", err)
	}
	if entries == nil {
		entries = []neighbor.Entry{}
	}

	out := cmd.OutOrStdout()
	switch neighborsFormat {
	case formatTable:
		newPrinter().PrintNeighbors(entries, newCorrelator(neighbor.None{}).Vendor)
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (expected one of table, json, yaml)", neighborsFormat)
	}
}

// newCoordinator builds a coordinator from the loaded configuration
func newCoordinator() (*discovery.Coordinator, error) {
	logger := logging.GetLogger()

	interfaces, err := discovery.InterfacesByName(cfg.Discovery.Interface)
	if err != nil {
		return nil, err
	}

	substrate := discovery.NewZeroconfSubstrate(cfg.Discovery.Domain, interfaces, logger.Named("mdns"))
	provider := neighbor.ForSource(cfg.EffectiveNeighborSource())

	return discovery.New(substrate,
		discovery.WithLogger(logger.Named("discovery")),
		discovery.WithDomain(cfg.Discovery.Domain),
		discovery.WithFallbackDelay(cfg.Discovery.FallbackDelay),
		discovery.WithFallbackCategories(cfg.EffectiveFallbackCategories()),
		discovery.WithResolveTimeout(cfg.Discovery.ResolveTimeout),
		discovery.WithCorrelator(newCorrelator(provider)),
	), nil
}

func newCorrelator(provider neighbor.Provider) *correlate.Correlator {
	return correlate.New(provider,
		correlate.WithVendors(cfg.Correlation.Vendors),
		correlate.WithLogger(logging.GetLogger().Named("correlate")),
	)
}

func newInterpreter() *txtrecord.Interpreter {
	return txtrecord.New(txtrecord.WithFlagBits(cfg.Interpreter.FlagBits))
}

// newPrinter returns a stdout printer sized to the terminal, or unbounded
// when stdout is redirected
func newPrinter() *ui.Printer {
	p := ui.NewPrinter(os.Stdout)
	if ui.IsTerminal(os.Stdout) {
		p.SetWidth(ui.GetTerminalWidth())
	} else {
		p.SetWidth(0)
	}
	return p
}
