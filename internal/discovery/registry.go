package discovery

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// entry is a registry slot. seq changes every time the slot is created, so
// asynchronous work started for an earlier incarnation can be recognised.
type entry struct {
	device *Device
	seq    uint64
}

// registry holds the known devices. It is owned by the coordinator loop and
// is not safe for concurrent use.
type registry struct {
	devices map[Identity]*entry
	nextSeq uint64
	now     func() time.Time
}

func newRegistry() *registry {
	return &registry{
		devices: make(map[Identity]*entry),
		now:     time.Now,
	}
}

// get returns the entry for an identity
func (r *registry) get(id Identity) (*entry, bool) {
	e, ok := r.devices[id]
	return e, ok
}

// upsert returns the entry for id, creating an empty device when absent
func (r *registry) upsert(id Identity) (*entry, bool) {
	if e, ok := r.devices[id]; ok {
		return e, false
	}

	now := r.now()
	r.nextSeq++
	e := &entry{
		device: &Device{
			ID:          uuid.New(),
			Identity:    id,
			Metadata:    make(map[string]string),
			FirstSeen:   now,
			LastUpdated: now,
		},
		seq: r.nextSeq,
	}
	r.devices[id] = e
	return e, true
}

// remove deletes a device, reporting whether it existed
func (r *registry) remove(id Identity) (*Device, bool) {
	e, ok := r.devices[id]
	if !ok {
		return nil, false
	}
	delete(r.devices, id)
	return e.device, true
}

func (r *registry) clear() {
	r.devices = make(map[Identity]*entry)
}

func (r *registry) len() int {
	return len(r.devices)
}

// touch marks a device as updated now
func (r *registry) touch(d *Device) {
	d.LastUpdated = r.now()
}

// snapshot returns deep copies of all devices sorted by display name, then
// identity
func (r *registry) snapshot() []Device {
	out := make([]Device, 0, len(r.devices))
	for _, e := range r.devices {
		out = append(out, e.device.Clone())
	}
	SortDevices(out)
	return out
}

// find returns a copy of the device with the given ID
func (r *registry) find(id uuid.UUID) (Device, bool) {
	for _, e := range r.devices {
		if e.device.ID == id {
			return e.device.Clone(), true
		}
	}
	return Device{}, false
}

// SortDevices orders devices by display name, then identity
func SortDevices(devices []Device) {
	sort.SliceStable(devices, func(i, j int) bool {
		a, b := devices[i], devices[j]
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.Identity.Less(b.Identity)
	})
}

// mergeResolution applies a resolution to a device. Empty fields leave the
// existing value in place; a non-empty address list replaces the old one.
func mergeResolution(d *Device, res Resolution) {
	if res.HostName != "" {
		d.HostName = res.HostName
	}
	if res.Port > 0 {
		d.Port = res.Port
	}
	if addrs := uniqueAddresses(res.Addresses); len(addrs) > 0 {
		d.Addresses = addrs
	}
	mergeMetadata(d, res.Metadata)
}

// mergeMetadata sets each incoming key, keeping keys the update does not name
func mergeMetadata(d *Device, md map[string]string) {
	if len(md) == 0 {
		return
	}
	if d.Metadata == nil {
		d.Metadata = make(map[string]string, len(md))
	}
	for k, v := range md {
		d.Metadata[k] = v
	}
}

// uniqueAddresses drops empty and repeated addresses, keeping first occurrence order
func uniqueAddresses(addrs []string) []string {
	if len(addrs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
