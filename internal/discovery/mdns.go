package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	zcbrowse "github.com/enbility/zeroconf/v3"
	"github.com/grandcat/zeroconf"
	"github.com/muurk/netscope/internal/logging"
	"go.uber.org/zap"
)

// ZeroconfSubstrate implements Substrate over mDNS. Browsing uses
// github.com/enbility/zeroconf/v3, which reports withdrawn services on a
// separate channel; single-instance lookups use github.com/grandcat/zeroconf.
type ZeroconfSubstrate struct {
	domain     string
	interfaces []net.Interface
	logger     *zap.Logger

	mu   sync.Mutex
	seen map[Identity]*advert
}

// advert is one service entry as reported by either mDNS client
type advert struct {
	Instance string
	HostName string
	Port     int
	Text     []string
	AddrIPv4 []net.IP
	AddrIPv6 []net.IP
}

func browseAdvert(entry *zcbrowse.ServiceEntry) *advert {
	return &advert{
		Instance: entry.Instance,
		HostName: entry.HostName,
		Port:     int(entry.Port),
		Text:     entry.Text,
		AddrIPv4: entry.AddrIPv4,
		AddrIPv6: entry.AddrIPv6,
	}
}

func lookupAdvert(entry *zeroconf.ServiceEntry) *advert {
	return &advert{
		Instance: entry.Instance,
		HostName: entry.HostName,
		Port:     entry.Port,
		Text:     entry.Text,
		AddrIPv4: entry.AddrIPv4,
		AddrIPv6: entry.AddrIPv6,
	}
}

// NewZeroconfSubstrate creates a substrate browsing the given domain. When
// interfaces is empty every multicast-capable interface is used.
func NewZeroconfSubstrate(domain string, interfaces []net.Interface, logger *zap.Logger) *ZeroconfSubstrate {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &ZeroconfSubstrate{
		domain:     NormalizeDomain(domain),
		interfaces: interfaces,
		logger:     logger,
		seen:       make(map[Identity]*advert),
	}
}

// InterfacesByName resolves an interface name for NewZeroconfSubstrate. An
// empty name selects all interfaces.
func InterfacesByName(name string) ([]net.Interface, error) {
	if name == "" {
		return nil, nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to find interface %q: %w", name, err)
	}
	return []net.Interface{*iface}, nil
}

func (s *ZeroconfSubstrate) newResolver() (*zeroconf.Resolver, error) {
	var opts []zeroconf.ClientOption
	if len(s.interfaces) > 0 {
		opts = append(opts, zeroconf.SelectIfaces(s.interfaces))
	}
	resolver, err := zeroconf.NewResolver(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}
	return resolver, nil
}

func (s *ZeroconfSubstrate) browseOptions() []zcbrowse.ClientOption {
	var opts []zcbrowse.ClientOption
	if len(s.interfaces) > 0 {
		opts = append(opts, zcbrowse.SelectIfaces(s.interfaces))
	}
	return opts
}

// Browse runs an mDNS browser for the category until ctx is cancelled.
// Results are read until the browser returns, also after cancellation.
func (s *ZeroconfSubstrate) Browse(ctx context.Context, category string, sink Sink) error {
	entries := make(chan *zcbrowse.ServiceEntry)
	removed := make(chan *zcbrowse.ServiceEntry)

	done := make(chan error, 1)
	go func() {
		done <- zcbrowse.Browse(ctx, category, s.domain, entries, removed, s.browseOptions()...)
	}()

	s.logger.Debug("mDNS browser started",
		zap.String("category", category),
		zap.String("domain", s.domain),
	)

	return s.consume(ctx, category, entries, removed, done, sink)
}

// consume turns browser results into events until the browser returns
func (s *ZeroconfSubstrate) consume(ctx context.Context, category string,
	entries, removed <-chan *zcbrowse.ServiceEntry, done <-chan error, sink Sink) error {
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				entries = nil
				continue
			}
			if entry != nil && ctx.Err() == nil {
				emit(sink, s.foundEvents(category, browseAdvert(entry)))
			}
		case entry, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			if entry != nil && ctx.Err() == nil {
				emit(sink, s.removedEvents(category, browseAdvert(entry)))
			}
		case err := <-done:
			if ctx.Err() != nil {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to browse for %s: %w", category, err)
			}
			return fmt.Errorf("mDNS browser for %s stopped", category)
		}
	}
}

func emit(sink Sink, events []Event) {
	for _, ev := range events {
		sink(ev)
	}
}

// Resolve returns the data seen for the instance while browsing, or performs
// an mDNS lookup when the instance has not been seen with addresses yet
func (s *ZeroconfSubstrate) Resolve(ctx context.Context, id Identity) (*Resolution, error) {
	s.mu.Lock()
	cached, ok := s.seen[id]
	s.mu.Unlock()
	if ok && hasAddresses(cached) {
		res := s.advertResolution(cached)
		return &res, nil
	}

	resolver, err := s.newResolver()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	entries := make(chan *zeroconf.ServiceEntry)
	// The lookup loop closes entries once ctx is done and blocks on every
	// send until then.
	defer func() {
		cancel()
		for range entries {
		}
	}()

	if err := resolver.Lookup(ctx, escapeInstance(id.Name), id.Category, s.domain, entries); err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", id, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to resolve %s: %w", id, ctx.Err())
		case entry, ok := <-entries:
			if !ok {
				if err := ctx.Err(); err != nil {
					return nil, fmt.Errorf("failed to resolve %s: %w", id, err)
				}
				return nil, fmt.Errorf("failed to resolve %s: lookup ended", id)
			}
			if entry == nil || unescapeInstance(entry.Instance) != id.Name {
				continue
			}
			a := lookupAdvert(entry)
			s.remember(id, a)
			res := s.advertResolution(a)
			return &res, nil
		}
	}
}

// foundEvents converts an announced browse result into substrate events
func (s *ZeroconfSubstrate) foundEvents(category string, a *advert) []Event {
	if NormalizeCategory(category) == MetaCategory {
		found := NormalizeCategory(a.Instance)
		if found == "" {
			return nil
		}
		return []Event{CategoryFound{Category: found}}
	}

	id := advertIdentity(category, s.domain, a)
	if id.Name == "" {
		return nil
	}

	s.remember(id, a)
	events := []Event{InstanceFound{Identity: id}}
	if md := parseText(a.Text); len(md) > 0 {
		events = append(events, MetadataUpdated{Identity: id, Metadata: md})
	}
	return events
}

// removedEvents converts a withdrawn browse result into substrate events. An
// instance announced on several interfaces is removed once the last of its
// addresses is withdrawn.
func (s *ZeroconfSubstrate) removedEvents(category string, a *advert) []Event {
	if NormalizeCategory(category) == MetaCategory {
		gone := NormalizeCategory(a.Instance)
		if gone == "" {
			return nil
		}
		return []Event{CategoryRemoved{Category: gone}}
	}

	id := advertIdentity(category, s.domain, a)
	if id.Name == "" || !s.forget(id, a) {
		return nil
	}
	return []Event{InstanceRemoved{Identity: id}}
}

// remember records an advert, keeping addresses announced on other interfaces
func (s *ZeroconfSubstrate) remember(id Identity, a *advert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.seen[id]; ok {
		merged := *a
		merged.AddrIPv4 = unionIPs(prev.AddrIPv4, a.AddrIPv4)
		merged.AddrIPv6 = unionIPs(prev.AddrIPv6, a.AddrIPv6)
		a = &merged
	}
	s.seen[id] = a
}

// forget drops the withdrawn advert's addresses and reports whether nothing
// is left of the instance
func (s *ZeroconfSubstrate) forget(id Identity, a *advert) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.seen[id]
	if !ok || !hasAddresses(a) {
		delete(s.seen, id)
		return true
	}

	rest := *prev
	rest.AddrIPv4 = subtractIPs(prev.AddrIPv4, a.AddrIPv4)
	rest.AddrIPv6 = subtractIPs(prev.AddrIPv6, a.AddrIPv6)
	if !hasAddresses(&rest) {
		delete(s.seen, id)
		return true
	}
	s.seen[id] = &rest
	return false
}

func unionIPs(a, b []net.IP) []net.IP {
	out := make([]net.IP, 0, len(a)+len(b))
	out = append(out, a...)
	for _, ip := range b {
		if !containsIP(out, ip) {
			out = append(out, ip)
		}
	}
	return out
}

func subtractIPs(a, b []net.IP) []net.IP {
	out := make([]net.IP, 0, len(a))
	for _, ip := range a {
		if !containsIP(b, ip) {
			out = append(out, ip)
		}
	}
	return out
}

func containsIP(list []net.IP, ip net.IP) bool {
	for _, other := range list {
		if other.Equal(ip) {
			return true
		}
	}
	return false
}

// zone returns the interface name used to qualify link-local addresses, or
// "" when the substrate is not bound to a single interface
func (s *ZeroconfSubstrate) zone() string {
	if len(s.interfaces) == 1 {
		return s.interfaces[0].Name
	}
	return ""
}

func (s *ZeroconfSubstrate) advertResolution(a *advert) Resolution {
	res := Resolution{
		HostName:  a.HostName,
		Addresses: formatAddresses(a.AddrIPv4, a.AddrIPv6, s.zone()),
		Metadata:  parseText(a.Text),
	}
	if a.Port > 0 {
		res.Port = a.Port
	}
	return res
}

func advertIdentity(category, domain string, a *advert) Identity {
	return Identity{
		Name:     unescapeInstance(a.Instance),
		Category: NormalizeCategory(category),
		Domain:   NormalizeDomain(domain),
	}
}

func hasAddresses(a *advert) bool {
	return len(a.AddrIPv4) > 0 || len(a.AddrIPv6) > 0
}

// parseText converts TXT records into metadata
func parseText(records []string) map[string]string {
	metadata := make(map[string]string, len(records))
	for _, txt := range records {
		if txt == "" {
			continue
		}
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if parts[0] == "" {
			continue
		}
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}
	return metadata
}

// formatAddresses lists IPv4 addresses first, then IPv6, without duplicates.
// Link-local IPv6 addresses are qualified with zone when one is given.
func formatAddresses(v4, v6 []net.IP, zone string) []string {
	seen := make(map[string]struct{}, len(v4)+len(v6))
	out := make([]string, 0, len(v4)+len(v6))
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, ip := range v4 {
		if ip == nil {
			continue
		}
		add(ip.String())
	}
	for _, ip := range v6 {
		if ip == nil {
			continue
		}
		s := ip.String()
		if zone != "" && ip.IsLinkLocalUnicast() {
			s += "%" + zone
		}
		add(s)
	}
	return out
}

// unescapeInstance decodes DNS presentation escapes ("Office\ Printer",
// "\226\128\153") in an instance name
func unescapeInstance(name string) string {
	if !strings.Contains(name, `\`) {
		return name
	}

	var b strings.Builder
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if ch != '\\' || i+1 >= len(name) {
			b.WriteByte(ch)
			continue
		}
		if i+3 < len(name) && isDigit(name[i+1]) && isDigit(name[i+2]) && isDigit(name[i+3]) {
			if v, err := strconv.Atoi(name[i+1 : i+4]); err == nil && v < 256 {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(name[i+1])
		i++
	}
	return b.String()
}

// escapeInstance escapes the characters that separate labels in a service
// instance name
func escapeInstance(name string) string {
	r := strings.NewReplacer(`\`, `\\`, ".", `\.`)
	return r.Replace(name)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
