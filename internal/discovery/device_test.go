package discovery

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/muurk/netscope/internal/classify"
)

func TestIdentity_String(t *testing.T) {
	id := Identity{Name: "Office Printer", Category: "_ipp._tcp", Domain: "local."}

	expected := "Office Printer._ipp._tcp.local."
	if id.String() != expected {
		t.Errorf("Identity.String() = %v, want %v", id.String(), expected)
	}
}

func TestDevice_String(t *testing.T) {
	device := &Device{
		Identity:    Identity{Name: "router1", Category: "_ssh._tcp", Domain: "local."},
		DisplayName: "Cisco - router1",
		Addresses:   []string{"192.168.1.1"},
		Port:        22,
	}

	expected := "Cisco - router1 (_ssh._tcp) at 192.168.1.1:22"
	if device.String() != expected {
		t.Errorf("Device.String() = %v, want %v", device.String(), expected)
	}

	unresolved := &Device{Identity: Identity{Name: "pending", Category: "_http._tcp"}}
	if got := unresolved.String(); got != "pending (_http._tcp)" {
		t.Errorf("Device.String() unresolved = %v", got)
	}
}

func TestDevice_Endpoint(t *testing.T) {
	tests := []struct {
		name     string
		device   *Device
		expected string
	}{
		{
			name:     "ipv4 with port",
			device:   &Device{Addresses: []string{"192.168.4.16"}, Port: 80},
			expected: "192.168.4.16:80",
		},
		{
			name:     "ipv6 with port",
			device:   &Device{Addresses: []string{"fe80::1%en0"}, Port: 8080},
			expected: "[fe80::1%en0]:8080",
		},
		{
			name:     "no port",
			device:   &Device{Addresses: []string{"10.0.0.5"}},
			expected: "10.0.0.5",
		},
		{
			name:     "no address",
			device:   &Device{Port: 80},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.Endpoint(); got != tt.expected {
				t.Errorf("Device.Endpoint() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDevice_BaseURL(t *testing.T) {
	tests := []struct {
		name     string
		device   *Device
		expected string
	}{
		{
			name: "standard HTTP port",
			device: &Device{
				Identity:  Identity{Category: "_http._tcp"},
				Addresses: []string{"192.168.4.16"},
				Port:      80,
			},
			expected: "http://192.168.4.16:80",
		},
		{
			name: "https",
			device: &Device{
				Identity:  Identity{Category: "_https._tcp"},
				Addresses: []string{"10.0.0.5"},
				Port:      8443,
			},
			expected: "https://10.0.0.5:8443",
		},
		{
			name: "not a web category",
			device: &Device{
				Identity:  Identity{Category: "_ssh._tcp"},
				Addresses: []string{"10.0.0.5"},
				Port:      22,
			},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.BaseURL(); got != tt.expected {
				t.Errorf("Device.BaseURL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDevice_GetMetadata(t *testing.T) {
	device := &Device{
		Metadata: map[string]string{
			"path":    "/",
			"srcvers": "1D90645",
		},
	}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "existing key",
			key:      "path",
			expected: "/",
		},
		{
			name:     "another existing key",
			key:      "srcvers",
			expected: "1D90645",
		},
		{
			name:     "non-existent key",
			key:      "missing",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := device.GetMetadata(tt.key); got != tt.expected {
				t.Errorf("Device.GetMetadata(%v) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestDevice_GetMetadata_NilMap(t *testing.T) {
	device := &Device{
		Metadata: nil,
	}

	if got := device.GetMetadata("anything"); got != "" {
		t.Errorf("Device.GetMetadata() with nil map = %v, want empty string", got)
	}
}

func TestDevice_Clone(t *testing.T) {
	original := &Device{
		ID:        uuid.New(),
		Addresses: []string{"10.0.0.1"},
		Metadata:  map[string]string{"fn": "Printer"},
		Icon:      classify.IconPrinter,
		FirstSeen: time.Now(),
	}

	clone := original.Clone()
	clone.Addresses[0] = "10.0.0.2"
	clone.Metadata["fn"] = "Changed"

	if original.Addresses[0] != "10.0.0.1" {
		t.Errorf("Clone shares address slice with original")
	}
	if original.Metadata["fn"] != "Printer" {
		t.Errorf("Clone shares metadata map with original")
	}
	if clone.ID != original.ID || clone.Icon != original.Icon {
		t.Errorf("Clone lost scalar fields: %+v", clone)
	}
}

func TestSortDevices(t *testing.T) {
	devices := []Device{
		{DisplayName: "b", Identity: Identity{Name: "x"}},
		{DisplayName: "a", Identity: Identity{Name: "z"}},
		{DisplayName: "a", Identity: Identity{Name: "y", Category: "_ssh._tcp"}},
		{DisplayName: "a", Identity: Identity{Name: "y", Category: "_http._tcp"}},
	}

	SortDevices(devices)

	want := []Identity{
		{Name: "y", Category: "_http._tcp"},
		{Name: "y", Category: "_ssh._tcp"},
		{Name: "z"},
		{Name: "x"},
	}
	for i, id := range want {
		if devices[i].Identity != id {
			t.Errorf("devices[%d].Identity = %+v, want %+v", i, devices[i].Identity, id)
		}
	}
}
