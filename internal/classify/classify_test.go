package classify

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		wantName string
		wantIcon Icon
	}{
		{
			name: "friendly name outranks printer category",
			input: Input{
				Name:     "HP LaserJet 400",
				Category: "_ipp._tcp",
				Metadata: map[string]string{"fn": "Office Printer", "ty": "HP LaserJet 400"},
			},
			wantName: "Office Printer",
			wantIcon: IconPrinter,
		},
		{
			name:     "product name",
			input:    Input{Category: "_http._tcp", Metadata: map[string]string{"product": "(Bonjour Sleep Proxy)"}},
			wantName: "(Bonjour Sleep Proxy)",
			wantIcon: IconServer,
		},
		{
			name:     "printer category uses vendor without model",
			input:    Input{Name: "lp", Category: "_ipp._tcp", Vendor: "Brother"},
			wantName: "Brother",
			wantIcon: IconPrinter,
		},
		{
			name:     "printer category with nothing else",
			input:    Input{Name: "lp", Category: "_printer._tcp"},
			wantName: "Network Printer",
			wantIcon: IconPrinter,
		},
		{
			name:     "printer metadata on a web category",
			input:    Input{Name: "canon", Category: "_http._tcp", Metadata: map[string]string{"ty": "Canon MX920"}},
			wantName: "Canon MX920",
			wantIcon: IconPrinter,
		},
		{
			name:     "airplay tv from model",
			input:    Input{Name: "Living Room", Category: "_airplay._tcp", Metadata: map[string]string{"model": "AppleTV6,2"}},
			wantName: "AppleTV6,2",
			wantIcon: IconTV,
		},
		{
			name:     "raop speaker",
			input:    Input{Name: "Kitchen", Category: "_raop._tcp", Metadata: map[string]string{"am": "AudioAccessory5,1"}},
			wantName: "AudioAccessory5,1",
			wantIcon: IconSpeaker,
		},
		{
			name:     "airplay tv from name",
			input:    Input{Name: "Bedroom TV", Category: "_airplay._tcp"},
			wantName: "Bedroom TV",
			wantIcon: IconTV,
		},
		{
			name:     "workstation category",
			input:    Input{Name: "desk [aa:bb]", Category: "_workstation._tcp", HostName: "desk.local."},
			wantName: "desk",
			wantIcon: IconDesktop,
		},
		{
			name:     "workstation note",
			input:    Input{Name: "desk", Category: "_workstation._tcp", Metadata: map[string]string{"note": "Build Box"}},
			wantName: "Build Box",
			wantIcon: IconDesktop,
		},
		{
			name:     "desktop vendor outranks file sharing",
			input:    Input{Name: "studio", Category: "_smb._tcp", HostName: "studio.local", Vendor: "Apple"},
			wantName: "studio",
			wantIcon: IconDesktop,
		},
		{
			name:     "storage vendor file share",
			input:    Input{Name: "ds918", Category: "_smb._tcp", HostName: "ds918.local", Vendor: "Synology"},
			wantName: "Synology - ds918",
			wantIcon: IconDisk,
		},
		{
			name:     "plain file share",
			input:    Input{Name: "files", Category: "_afpovertcp._tcp", HostName: "files.local"},
			wantName: "files",
			wantIcon: IconDisk,
		},
		{
			name:     "networking hint in advertised name",
			input:    Input{Name: "Cisco SSH", Category: "_ssh._tcp", HostName: "router1.local"},
			wantName: "Cisco - router1",
			wantIcon: IconRouter,
		},
		{
			name:     "router keyword in host name",
			input:    Input{Name: "ssh", Category: "_ssh._tcp", HostName: "router1.local"},
			wantName: "Router - router1",
			wantIcon: IconRouter,
		},
		{
			name:     "networking vendor over ssh",
			input:    Input{Name: "usg", Category: "_ssh._tcp", HostName: "usg.local", Vendor: "Ubiquiti"},
			wantName: "Ubiquiti - usg",
			wantIcon: IconRouter,
		},
		{
			name:     "plain ssh server",
			input:    Input{Name: "pi", Category: "_sftp-ssh._tcp", HostName: "pi.local"},
			wantName: "SSH Server - pi",
			wantIcon: IconServer,
		},
		{
			name:     "screen sharing",
			input:    Input{Name: "Screen", Category: "_rfb._tcp", HostName: "studio.local"},
			wantName: "Screen Sharing - studio",
			wantIcon: IconDesktop,
		},
		{
			name:     "camera by name",
			input:    Input{Name: "Front Door Cam", Category: "_http._tcp", HostName: "frontdoor.local"},
			wantName: "IP Camera - frontdoor",
			wantIcon: IconCamera,
		},
		{
			name: "camera by vendor with model",
			input: Input{
				Name:     "web",
				Category: "_http._tcp",
				Vendor:   "Hikvision",
				Metadata: map[string]string{"md": "DS-2CD2042"},
			},
			wantName: "DS-2CD2042",
			wantIcon: IconCamera,
		},
		{
			name:     "networking vendor web interface",
			input:    Input{Name: "admin", Category: "_http._tcp", HostName: "orbi.local", Vendor: "Netgear"},
			wantName: "Netgear - orbi",
			wantIcon: IconRouter,
		},
		{
			name:     "storage vendor web interface",
			input:    Input{Name: "nas", Category: "_https._tcp", HostName: "nas.local", Vendor: "QNAP"},
			wantName: "QNAP - nas",
			wantIcon: IconDisk,
		},
		{
			name:     "generic web server",
			input:    Input{Name: "grafana", Category: "_http._tcp", HostName: "metrics.local"},
			wantName: "Web Server - metrics",
			wantIcon: IconServer,
		},
		{
			name:     "homekit accessory",
			input:    Input{Name: "Bridge", Category: "_hap._tcp", Metadata: map[string]string{"name": "Hue Bridge"}},
			wantName: "Hue Bridge",
			wantIcon: IconHome,
		},
		{
			name:     "homekit without name",
			input:    Input{Name: "Bridge", Category: "_hap._tcp"},
			wantName: "Bridge",
			wantIcon: IconHome,
		},
		{
			name:     "plex",
			input:    Input{Name: "plex", Category: "_plex._tcp"},
			wantName: "Plex Media Server",
			wantIcon: IconTV,
		},
		{
			name:     "printer vendor fallback",
			input:    Input{Name: "x", Category: "_ftp._tcp", Vendor: "Epson"},
			wantName: "Epson",
			wantIcon: IconPrinter,
		},
		{
			name:     "networking vendor fallback",
			input:    Input{Name: "x", Category: "_ftp._tcp", HostName: "switch.local", Vendor: "TP-Link"},
			wantName: "TP-Link - switch",
			wantIcon: IconRouter,
		},
		{
			name:     "last resort",
			input:    Input{Name: "files", Category: "_ftp._tcp", HostName: "nas2.local"},
			wantName: "Ftp - nas2",
			wantIcon: IconUnknown,
		},
		{
			name:     "last resort without category",
			input:    Input{Name: "thing"},
			wantName: "thing",
			wantIcon: IconUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.input)
			if got.DisplayName != tt.wantName {
				t.Errorf("DisplayName = %q, want %q", got.DisplayName, tt.wantName)
			}
			if got.Icon != tt.wantIcon {
				t.Errorf("Icon = %q, want %q", got.Icon, tt.wantIcon)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	in := Input{
		Name:     "Cisco SSH",
		Category: "_ssh._tcp",
		HostName: "router1.local",
		Metadata: map[string]string{"a": "1", "b": "2"},
	}
	first := Classify(in)
	for i := 0; i < 20; i++ {
		if got := Classify(in); got != first {
			t.Fatalf("iteration %d: %+v != %+v", i, got, first)
		}
	}
}

func TestClassify_MetadataKeysAreCaseInsensitive(t *testing.T) {
	got := Classify(Input{Category: "_ipp._tcp", Metadata: map[string]string{"FN": "  Upstairs  "}})
	if got.DisplayName != "Upstairs" {
		t.Errorf("DisplayName = %q, want Upstairs", got.DisplayName)
	}
}

func TestEngine_Fallback(t *testing.T) {
	calls := 0
	engine := &Engine{
		Fallback: FallbackFunc(func(in Input) (Result, bool) {
			calls++
			return Result{Icon: IconServer}, true
		}),
	}

	got := engine.Classify(Input{Name: "files", Category: "_ftp._tcp", HostName: "nas2.local"})
	if got.Icon != IconServer || got.DisplayName != "Ftp - nas2" {
		t.Errorf("Classify() = %+v, want fallback icon with rule display name", got)
	}
	if calls != 1 {
		t.Errorf("fallback called %d times, want 1", calls)
	}

	// A conclusive rule never consults the fallback
	engine.Classify(Input{Name: "plex", Category: "_plex._tcp"})
	if calls != 1 {
		t.Errorf("fallback called for conclusive rule")
	}
}

func TestEngine_FallbackDeclines(t *testing.T) {
	engine := &Engine{
		Fallback: FallbackFunc(func(in Input) (Result, bool) { return Result{}, false }),
	}
	got := engine.Classify(Input{Name: "thing"})
	if got.DisplayName != "thing" || got.Icon != IconUnknown {
		t.Errorf("Classify() = %+v", got)
	}
}

func TestEngine_CustomRules(t *testing.T) {
	engine := &Engine{Rules: []Rule{{
		Name:    "everything",
		Match:   func(f *Facts) bool { return true },
		Produce: func(f *Facts) Result { return Result{DisplayName: "X", Icon: IconHome} },
	}}}
	if got := engine.Classify(Input{Category: "_ipp._tcp"}); got.DisplayName != "X" {
		t.Errorf("custom rules not used: %+v", got)
	}
}

func TestDefaultRules_Order(t *testing.T) {
	want := []string{
		"friendly-name", "product-name", "printer", "streaming", "workstation",
		"file-sharing", "remote-shell", "screen-sharing", "web", "home-automation",
		"media-server", "desktop-vendor", "printer-vendor", "networking-vendor", "last-resort",
	}
	if len(DefaultRules) != len(want) {
		t.Fatalf("len(DefaultRules) = %d, want %d", len(DefaultRules), len(want))
	}
	for i, name := range want {
		if DefaultRules[i].Name != name {
			t.Errorf("DefaultRules[%d] = %q, want %q", i, DefaultRules[i].Name, name)
		}
	}
}

func TestRule_DesktopVendor(t *testing.T) {
	rule, ok := RuleNamed("desktop-vendor")
	if !ok {
		t.Fatal("desktop-vendor rule missing")
	}

	f := newFacts(Input{Name: "x", HostName: "box.local", Vendor: "Apple"})
	if !rule.Match(f) {
		t.Fatal("rule should match Apple vendor")
	}
	if got := rule.Produce(f); got.DisplayName != "Apple Device - box" || got.Icon != IconDesktop {
		t.Errorf("Produce() = %+v", got)
	}

	f = newFacts(Input{Vendor: "Apple", Metadata: map[string]string{"model": "Macmini9,1"}})
	if got := rule.Produce(f); got.DisplayName != "Macmini9,1" {
		t.Errorf("Produce() with model = %+v", got)
	}
}

func TestGuessIcon(t *testing.T) {
	tests := []struct {
		category, vendor, name, model string
		want                          Icon
	}{
		{"_ipps._tcp", "", "", "", IconPrinter},
		{"_raop._tcp", "", "Lounge", "", IconSpeaker},
		{"_raop._tcp", "", "Lounge", "Samsung TV", IconTV},
		{"_workstation._tcp", "", "", "", IconDesktop},
		{"_nfs._tcp", "", "", "", IconDisk},
		{"_ssh._tcp", "", "", "", IconServer},
		{"_rfb._tcp", "", "", "", IconDesktop},
		{"_http._tcp", "", "porch cam", "", IconCamera},
		{"_http._tcp", "Wyze Labs", "", "", IconCamera},
		{"_http._tcp", "Nest Labs", "", "", IconServer},
		{"_http._tcp", "Synology", "", "", IconDisk},
		{"_http._tcp", "", "", "", IconServer},
		{"_hap._tcp", "", "", "", IconHome},
		{"_plexmediasvr._tcp", "", "", "", IconTV},
		{"_ftp._tcp", "Apple", "", "", IconDesktop},
		{"_ftp._tcp", "MikroTik", "", "", IconRouter},
		{"_ftp._tcp", "QNAP", "", "", IconDisk},
		{"_ftp._tcp", "", "", "", IconUnknown},
	}

	for _, tt := range tests {
		if got := GuessIcon(tt.category, tt.vendor, tt.name, tt.model); got != tt.want {
			t.Errorf("GuessIcon(%q, %q, %q, %q) = %q, want %q", tt.category, tt.vendor, tt.name, tt.model, got, tt.want)
		}
	}
}

func TestHostLabel(t *testing.T) {
	tests := []struct {
		host, fallback, want string
	}{
		{"router1.local.", "x", "router1"},
		{"router1", "x", "router1"},
		{"", "advertised", "advertised"},
		{".", "advertised", "advertised"},
	}
	for _, tt := range tests {
		if got := HostLabel(tt.host, tt.fallback); got != tt.want {
			t.Errorf("HostLabel(%q, %q) = %q, want %q", tt.host, tt.fallback, got, tt.want)
		}
	}
}

func TestCategoryWords(t *testing.T) {
	tests := []struct {
		category, want string
	}{
		{"_ftp._tcp", "Ftp"},
		{"_googlecast._tcp", "Googlecast"},
		{"_home_assistant._udp", "Home Assistant"},
		{"_IPP._tcp", "Ipp"},
		{"", ""},
		{"._tcp", ""},
	}
	for _, tt := range tests {
		if got := CategoryWords(tt.category); got != tt.want {
			t.Errorf("CategoryWords(%q) = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestIcon_String(t *testing.T) {
	if Icon("").String() != "unknown" {
		t.Errorf("empty icon String() = %q", Icon("").String())
	}
	if IconRouter.String() != "router" {
		t.Errorf("IconRouter.String() = %q", IconRouter.String())
	}
}
