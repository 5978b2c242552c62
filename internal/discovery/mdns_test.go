package discovery

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	zcbrowse "github.com/enbility/zeroconf/v3"
)

func newTestAdvert(instance string, addrs ...string) *advert {
	a := &advert{Instance: instance}
	for _, addr := range addrs {
		ip := net.ParseIP(addr)
		if ip.To4() != nil {
			a.AddrIPv4 = append(a.AddrIPv4, ip)
		} else {
			a.AddrIPv6 = append(a.AddrIPv6, ip)
		}
	}
	return a
}

func newBrowseEntry(instance string, addrs ...string) *zcbrowse.ServiceEntry {
	entry := &zcbrowse.ServiceEntry{}
	entry.Instance = instance
	for _, addr := range addrs {
		entry.AddrIPv4 = append(entry.AddrIPv4, net.ParseIP(addr))
	}
	return entry
}

func TestZeroconfSubstrate_MetaEvents(t *testing.T) {
	s := NewZeroconfSubstrate("local.", nil, nil)

	events := s.foundEvents(MetaCategory, newTestAdvert("_ipp._tcp.local"))
	if len(events) != 1 {
		t.Fatalf("foundEvents() returned %d events, want 1", len(events))
	}
	found, ok := events[0].(CategoryFound)
	if !ok || found.Category != "_ipp._tcp" {
		t.Errorf("foundEvents() = %#v, want CategoryFound{_ipp._tcp}", events[0])
	}

	events = s.removedEvents(MetaCategory, newTestAdvert("_ipp._tcp.local"))
	if len(events) != 1 {
		t.Fatalf("removedEvents() returned %d events, want 1", len(events))
	}
	if removed, ok := events[0].(CategoryRemoved); !ok || removed.Category != "_ipp._tcp" {
		t.Errorf("removedEvents() = %#v, want CategoryRemoved{_ipp._tcp}", events[0])
	}
}

func TestZeroconfSubstrate_InstanceEvents(t *testing.T) {
	s := NewZeroconfSubstrate("local.", nil, nil)

	a := newTestAdvert(`Office\ Printer`, "192.168.1.50")
	a.HostName = "printer.local."
	a.Port = 631
	a.Text = []string{"ty=LaserJet", "pdl=application/pdf"}

	events := s.foundEvents("_ipp._tcp", a)
	if len(events) != 2 {
		t.Fatalf("foundEvents() returned %d events, want 2", len(events))
	}

	wantID := Identity{Name: "Office Printer", Category: "_ipp._tcp", Domain: "local."}
	found, ok := events[0].(InstanceFound)
	if !ok || found.Identity != wantID {
		t.Errorf("events[0] = %#v, want InstanceFound{%v}", events[0], wantID)
	}
	md, ok := events[1].(MetadataUpdated)
	if !ok || md.Metadata["ty"] != "LaserJet" {
		t.Errorf("events[1] = %#v, want MetadataUpdated", events[1])
	}

	// The browse result is reused by Resolve
	res, err := s.Resolve(context.Background(), wantID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.HostName != "printer.local." || res.Port != 631 {
		t.Errorf("Resolve() = %+v", res)
	}

	events = s.removedEvents("_ipp._tcp", newTestAdvert(`Office\ Printer`, "192.168.1.50"))
	if len(events) != 1 {
		t.Fatalf("removedEvents() returned %d events, want 1", len(events))
	}
	if removed, ok := events[0].(InstanceRemoved); !ok || removed.Identity != wantID {
		t.Errorf("removedEvents() = %#v, want InstanceRemoved", events[0])
	}
	s.mu.Lock()
	_, cached := s.seen[wantID]
	s.mu.Unlock()
	if cached {
		t.Error("removed instance still cached")
	}
}

func TestZeroconfSubstrate_RemovedFromEveryInterface(t *testing.T) {
	s := NewZeroconfSubstrate("local.", nil, nil)
	id := Identity{Name: "nas", Category: "_smb._tcp", Domain: "local."}

	s.foundEvents("_smb._tcp", newTestAdvert("nas", "192.168.1.10"))
	s.foundEvents("_smb._tcp", newTestAdvert("nas", "10.0.0.10", "fe80::10"))

	if events := s.removedEvents("_smb._tcp", newTestAdvert("nas", "192.168.1.10")); len(events) != 0 {
		t.Errorf("removal on one interface = %v, want no events", events)
	}
	s.mu.Lock()
	rest := s.seen[id]
	s.mu.Unlock()
	if rest == nil || len(rest.AddrIPv4) != 1 || len(rest.AddrIPv6) != 1 {
		t.Fatalf("remaining advert = %+v", rest)
	}

	events := s.removedEvents("_smb._tcp", newTestAdvert("nas", "10.0.0.10", "fe80::10"))
	if len(events) != 1 {
		t.Fatalf("removal on last interface returned %d events, want 1", len(events))
	}
	if _, ok := events[0].(InstanceRemoved); !ok {
		t.Errorf("events[0] = %#v, want InstanceRemoved", events[0])
	}
}

func TestZeroconfSubstrate_RemovalWithoutAddresses(t *testing.T) {
	s := NewZeroconfSubstrate("local.", nil, nil)
	s.foundEvents("_ssh._tcp", newTestAdvert("router", "192.168.1.1"))

	events := s.removedEvents("_ssh._tcp", newTestAdvert("router"))
	if len(events) != 1 {
		t.Fatalf("removedEvents() returned %d events, want 1", len(events))
	}
}

// eventRecorder is a Sink collecting events from another goroutine
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) sink(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *eventRecorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestZeroconfSubstrate_ConsumeMapsRemovals(t *testing.T) {
	s := NewZeroconfSubstrate("local.", nil, nil)
	entries := make(chan *zcbrowse.ServiceEntry)
	removed := make(chan *zcbrowse.ServiceEntry)
	done := make(chan error, 1)
	rec := &eventRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := make(chan error, 1)
	go func() { result <- s.consume(ctx, "_ipp._tcp", entries, removed, done, rec.sink) }()

	entries <- newBrowseEntry("printer", "192.168.1.20")
	removed <- newBrowseEntry("printer", "192.168.1.20")
	close(entries)
	close(removed)
	done <- nil

	if err := <-result; err == nil {
		t.Error("consume() should report a browser that stopped on its own")
	}

	events := rec.all()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(events), events)
	}
	if _, ok := events[0].(InstanceFound); !ok {
		t.Errorf("events[0] = %#v, want InstanceFound", events[0])
	}
	if _, ok := events[1].(InstanceRemoved); !ok {
		t.Errorf("events[1] = %#v, want InstanceRemoved", events[1])
	}
}

func TestZeroconfSubstrate_ConsumeDrainsAfterCancel(t *testing.T) {
	s := NewZeroconfSubstrate("local.", nil, nil)
	entries := make(chan *zcbrowse.ServiceEntry)
	removed := make(chan *zcbrowse.ServiceEntry)
	done := make(chan error, 1)
	rec := &eventRecorder{}

	ctx, cancel := context.WithCancel(context.Background())

	result := make(chan error, 1)
	go func() { result <- s.consume(ctx, "_ipp._tcp", entries, removed, done, rec.sink) }()

	cancel()

	// A browser still delivering after cancellation must not block
	for _, ch := range []chan *zcbrowse.ServiceEntry{entries, removed} {
		select {
		case ch <- newBrowseEntry("late", "192.168.1.30"):
		case <-time.After(time.Second):
			t.Fatal("send after cancellation blocked")
		}
	}

	select {
	case err := <-result:
		t.Fatalf("consume() returned %v before the browser finished", err)
	default:
	}

	close(entries)
	close(removed)
	done <- errors.New("context canceled")

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("consume() error = %v, want nil after cancellation", err)
		}
	case <-time.After(time.Second):
		t.Fatal("consume() did not return after the browser finished")
	}

	if events := rec.all(); len(events) != 0 {
		t.Errorf("events after cancellation = %v, want none", events)
	}
}

func TestZeroconfSubstrate_advertResolution(t *testing.T) {
	iface := net.Interface{Index: 2, Name: "en0"}
	s := NewZeroconfSubstrate("local.", []net.Interface{iface}, nil)

	a := newTestAdvert("nas", "192.168.1.10", "fe80::1", "2001:db8::1")
	a.HostName = "nas.local."
	a.Port = 445
	a.Text = []string{"model=DS918"}

	res := s.advertResolution(a)
	if res.HostName != "nas.local." || res.Port != 445 {
		t.Errorf("advertResolution() host/port = %q/%d", res.HostName, res.Port)
	}

	want := []string{"192.168.1.10", "fe80::1%en0", "2001:db8::1"}
	if len(res.Addresses) != len(want) {
		t.Fatalf("Addresses = %v, want %v", res.Addresses, want)
	}
	for i := range want {
		if res.Addresses[i] != want[i] {
			t.Errorf("Addresses[%d] = %q, want %q", i, res.Addresses[i], want[i])
		}
	}
	if res.Metadata["model"] != "DS918" {
		t.Errorf("Metadata = %v", res.Metadata)
	}
}

func TestParseText(t *testing.T) {
	metadata := parseText([]string{"path=/", "srcvers=1D90645", "flag", "version=1.0", "", "=orphan", "url=http://x/?a=b"})

	// Check metadata parsing
	expectedMetadata := map[string]string{
		"path":    "/",
		"srcvers": "1D90645",
		"flag":    "", // Key without value
		"version": "1.0",
		"url":     "http://x/?a=b",
	}

	if len(metadata) != len(expectedMetadata) {
		t.Errorf("metadata has %d entries, want %d", len(metadata), len(expectedMetadata))
	}

	for key, expectedValue := range expectedMetadata {
		if actualValue, ok := metadata[key]; !ok {
			t.Errorf("metadata missing key %q", key)
		} else if actualValue != expectedValue {
			t.Errorf("metadata[%q] = %q, want %q", key, actualValue, expectedValue)
		}
	}
}

func TestFormatAddresses(t *testing.T) {
	tests := []struct {
		name string
		v4   []net.IP
		v6   []net.IP
		zone string
		want []string
	}{
		{
			name: "ipv4 before ipv6",
			v4:   []net.IP{net.ParseIP("10.0.0.1")},
			v6:   []net.IP{net.ParseIP("2001:db8::1")},
			want: []string{"10.0.0.1", "2001:db8::1"},
		},
		{
			name: "duplicates removed",
			v4:   []net.IP{net.ParseIP("10.0.0.1"), net.ParseIP("10.0.0.1")},
			want: []string{"10.0.0.1"},
		},
		{
			name: "link-local without zone",
			v6:   []net.IP{net.ParseIP("fe80::1")},
			want: []string{"fe80::1"},
		},
		{
			name: "link-local with zone",
			v6:   []net.IP{net.ParseIP("fe80::1")},
			zone: "eth0",
			want: []string{"fe80::1%eth0"},
		},
		{
			name: "nil addresses skipped",
			v4:   []net.IP{nil},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatAddresses(tt.v4, tt.v6, tt.zone)
			if len(got) != len(tt.want) {
				t.Fatalf("formatAddresses() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("formatAddresses()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestUnescapeInstance(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{`Office\ Printer`, "Office Printer"},
		{`My\.Device`, "My.Device"},
		{`Bob\226\128\153s Mac`, "Bob’s Mac"},
		{`trailing\`, `trailing\`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := unescapeInstance(tt.in); got != tt.want {
				t.Errorf("unescapeInstance(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeInstance(t *testing.T) {
	if got := escapeInstance("My.Device"); got != `My\.Device` {
		t.Errorf("escapeInstance() = %q", got)
	}
	if got := unescapeInstance(escapeInstance(`a.b\c`)); got != `a.b\c` {
		t.Errorf("escape round trip = %q", got)
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"_http._tcp", "_http._tcp"},
		{"_http._tcp.", "_http._tcp"},
		{"_http._tcp.local.", "_http._tcp"},
		{"_ipp._tcp.local", "_ipp._tcp"},
		{"._airplay._tcp.local.", "_airplay._tcp"},
		{"_services._dns-sd._udp.local.", MetaCategory},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeCategory(tt.in); got != tt.want {
				t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "local."},
		{"local", "local."},
		{"local.", "local."},
		{"example.com.", "example.com."},
	}

	for _, tt := range tests {
		if got := NormalizeDomain(tt.in); got != tt.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
