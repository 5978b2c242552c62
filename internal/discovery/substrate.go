package discovery

import (
	"context"
	"strings"
	"time"
)

const (
	// MetaCategory is the DNS-SD service type enumeration query
	MetaCategory = "_services._dns-sd._udp"

	// DefaultDomain is the mDNS domain
	DefaultDomain = "local."

	// DefaultFallbackDelay is how long meta-discovery may stay unproductive
	// before the fallback categories are browsed
	DefaultFallbackDelay = 4 * time.Second

	// DefaultResolveTimeout bounds a single instance resolution
	DefaultResolveTimeout = 10 * time.Second
)

// FallbackCategories are browsed when meta-discovery finds nothing in time
var FallbackCategories = []string{
	"_http._tcp",
	"_https._tcp",
	"_ipp._tcp",
	"_printer._tcp",
	"_raop._tcp",
	"_airplay._tcp",
	"_workstation._tcp",
	"_smb._tcp",
	"_afpovertcp._tcp",
	"_ssh._tcp",
	"_sftp-ssh._tcp",
	"_rfb._tcp",
	"_ftp._tcp",
}

// Sink receives substrate events. Implementations only enqueue, so calling a
// sink never blocks on coordinator work.
type Sink func(Event)

// Substrate performs the multicast wire protocol on behalf of the coordinator
type Substrate interface {
	// Browse reports events for the category until ctx is cancelled.
	// Browsing MetaCategory reports CategoryFound and CategoryRemoved; any
	// other category reports InstanceFound, InstanceRemoved and
	// MetadataUpdated. Browse returns nil when ctx is cancelled and an error
	// when the browser could not run.
	Browse(ctx context.Context, category string, sink Sink) error

	// Resolve looks up host, port, addresses and metadata for an instance
	Resolve(ctx context.Context, id Identity) (*Resolution, error)
}

// NormalizeCategory strips the domain and surrounding dots from a service
// type ("_http._tcp.local." → "_http._tcp")
func NormalizeCategory(category string) string {
	category = strings.Trim(strings.TrimSpace(category), ".")
	lower := strings.ToLower(category)
	for _, suffix := range []string{"._tcp.", "._udp."} {
		if i := strings.Index(lower, suffix); i >= 0 {
			return category[:i+len(suffix)-1]
		}
	}
	return category
}

// NormalizeDomain returns the domain with exactly one trailing dot
func NormalizeDomain(domain string) string {
	domain = strings.Trim(strings.TrimSpace(domain), ".")
	if domain == "" {
		return DefaultDomain
	}
	return domain + "."
}
