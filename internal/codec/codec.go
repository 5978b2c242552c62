// Package codec encodes discovery snapshots for export.
//
// Every codec writes the same Snapshot shape: the coordinator status and a
// sorted copy of the device registry. JSON and YAML are meant for people and
// scripts; CBOR is a compact binary form for storage or transport.
package codec

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/muurk/netscope/internal/discovery"
)

// Snapshot is a point-in-time export of a discovery session
type Snapshot struct {
	GeneratedAt time.Time          `json:"generated_at" yaml:"generated_at"`
	Status      discovery.Status   `json:"status" yaml:"status"`
	Devices     []discovery.Device `json:"devices" yaml:"devices"`
}

// NewSnapshot builds a snapshot from coordinator state
func NewSnapshot(status discovery.Status, devices []discovery.Device) *Snapshot {
	if devices == nil {
		devices = []discovery.Device{}
	}
	return &Snapshot{
		GeneratedAt: time.Now().UTC(),
		Status:      status,
		Devices:     devices,
	}
}

// Source is the part of the coordinator a snapshot is taken from
type Source interface {
	Status() discovery.Status
	Devices() []discovery.Device
}

// Take builds a snapshot from a live source
func Take(src Source) *Snapshot {
	return NewSnapshot(src.Status(), src.Devices())
}

// Exporter writes snapshots in one format
type Exporter interface {
	Export(snapshot *Snapshot, w io.Writer) error
	Format() string
}

// Importer reads snapshots in one format
type Importer interface {
	Parse(r io.Reader) (*Snapshot, error)
	Format() string
}

// Codec both reads and writes a format
type Codec interface {
	Exporter
	Importer
}

var codecs = map[string]Codec{
	"json": NewJSONCodec(),
	"yaml": NewYAMLCodec(),
	"cbor": NewCBORCodec(),
}

// ForFormat returns the codec registered for a format name ("json", "yaml",
// "yml" or "cbor")
func ForFormat(format string) (Codec, error) {
	name := strings.ToLower(strings.TrimSpace(format))
	if name == "yml" {
		name = "yaml"
	}
	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (expected one of %s)", format, strings.Join(Formats(), ", "))
	}
	return c, nil
}

// Formats lists the registered format names
func Formats() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
