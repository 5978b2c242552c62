package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/muurk/netscope/internal/classify"
)

// Identity is the stable key of an advertised service instance within one
// discovery session. Two advertisements are the same device iff their
// identities are equal.
type Identity struct {
	// Name is the advertised instance name (e.g., "Office Printer")
	Name string `json:"name" yaml:"name"`

	// Category is the service type (e.g., "_ipp._tcp")
	Category string `json:"category" yaml:"category"`

	// Domain is the administrative domain (typically "local.")
	Domain string `json:"domain" yaml:"domain"`
}

// String returns the full service instance name
// (e.g., "Office Printer._ipp._tcp.local.")
func (id Identity) String() string {
	return fmt.Sprintf("%s.%s.%s", id.Name, id.Category, id.Domain)
}

// Less orders identities by name, then category, then domain
func (id Identity) Less(other Identity) bool {
	if id.Name != other.Name {
		return id.Name < other.Name
	}
	if id.Category != other.Category {
		return id.Category < other.Category
	}
	return id.Domain < other.Domain
}

// Device is one discovered service instance together with everything learned
// about it so far
type Device struct {
	// ID is assigned when the device is first seen and is only meaningful
	// within the current session
	ID uuid.UUID `json:"id" yaml:"id"`

	Identity Identity `json:"identity" yaml:"identity"`

	// HostName is the advertised target host (e.g., "router1.local.")
	HostName string `json:"host_name,omitempty" yaml:"host_name,omitempty"`

	// Port is the service port, 0 when not reported
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Addresses are unique, IPv4 first
	Addresses []string `json:"addresses,omitempty" yaml:"addresses,omitempty"`

	// Metadata holds the TXT record key/value pairs
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// HardwareAddress and Vendor come from neighbor table correlation
	HardwareAddress string `json:"hardware_address,omitempty" yaml:"hardware_address,omitempty"`
	Vendor          string `json:"vendor,omitempty" yaml:"vendor,omitempty"`

	// DisplayName and Icon are derived by classification after every change
	DisplayName string        `json:"display_name" yaml:"display_name"`
	Icon        classify.Icon `json:"icon" yaml:"icon"`

	FirstSeen   time.Time `json:"first_seen" yaml:"first_seen"`
	LastUpdated time.Time `json:"last_updated" yaml:"last_updated"`
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	name := d.DisplayName
	if name == "" {
		name = d.Identity.Name
	}
	if endpoint := d.Endpoint(); endpoint != "" {
		return fmt.Sprintf("%s (%s) at %s", name, d.Identity.Category, endpoint)
	}
	return fmt.Sprintf("%s (%s)", name, d.Identity.Category)
}

// PrimaryAddress returns the first known address, or "" when unresolved
func (d *Device) PrimaryAddress() string {
	if len(d.Addresses) == 0 {
		return ""
	}
	return d.Addresses[0]
}

// Endpoint returns "address:port" for the primary address, or just the
// address when no port is known
func (d *Device) Endpoint() string {
	addr := d.PrimaryAddress()
	if addr == "" {
		return ""
	}
	if d.Port <= 0 {
		return addr
	}
	return net.JoinHostPort(addr, strconv.Itoa(d.Port))
}

// BaseURL returns the HTTP base URL for web categories, or "" for anything
// else
func (d *Device) BaseURL() string {
	endpoint := d.Endpoint()
	if endpoint == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(d.Identity.Category, "_https."):
		return "https://" + endpoint
	case strings.HasPrefix(d.Identity.Category, "_http."):
		return "http://" + endpoint
	}
	return ""
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}

// Clone returns a deep copy of the device
func (d *Device) Clone() Device {
	out := *d
	if d.Addresses != nil {
		out.Addresses = append([]string(nil), d.Addresses...)
	}
	if d.Metadata != nil {
		out.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// classifyInput builds the classification input for the device
func (d *Device) classifyInput() classify.Input {
	return classify.Input{
		Name:            d.Identity.Name,
		Category:        d.Identity.Category,
		HostName:        d.HostName,
		Port:            d.Port,
		Addresses:       d.Addresses,
		Metadata:        d.Metadata,
		HardwareAddress: d.HardwareAddress,
		Vendor:          d.Vendor,
	}
}
