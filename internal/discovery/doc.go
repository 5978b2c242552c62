// Package discovery finds devices advertised on the local network via mDNS /
// DNS-SD and keeps a registry of what is known about each one.
//
// # Discovery Process
//
// A Coordinator drives a Substrate (normally ZeroconfSubstrate, backed by
// github.com/enbility/zeroconf/v3 and github.com/grandcat/zeroconf) through
// one session:
//  1. Browses the DNS-SD meta category "_services._dns-sd._udp" to learn
//     which service types are advertised
//  2. Starts one browser per discovered service type
//  3. Resolves every instance found into host, port, addresses and TXT metadata
//  4. Correlates resolved addresses to a hardware address and vendor
//  5. Classifies each device into a display name and icon after every change
//
// If meta-discovery has found nothing after the fallback delay (4 seconds by
// default), a fixed list of common service types is browsed instead.
//
// # Usage Example
//
//	substrate := discovery.NewZeroconfSubstrate("local.", nil, logger)
//	coord := discovery.New(substrate,
//	    discovery.WithCorrelator(correlate.New(neighbor.Default())),
//	)
//	defer coord.Close()
//
//	changes, cancel := coord.Subscribe()
//	defer cancel()
//
//	if err := coord.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	for change := range changes {
//	    fmt.Println(change.Kind, change.Identity)
//	}
//
// # Device Information
//
// Each device is keyed by its Identity (instance name, service type, domain)
// and includes:
//   - HostName and Port from resolution
//   - Addresses, IPv4 first, without duplicates
//   - Metadata from TXT records, merged key by key
//   - HardwareAddress and Vendor from neighbor table correlation
//   - DisplayName and Icon from classification
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// Coordinator methods are safe for concurrent use. One goroutine owns the
// registry; every read returns a deep copy.
package discovery
