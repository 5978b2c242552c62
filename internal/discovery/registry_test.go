package discovery

import (
	"testing"
)

func TestRegistry_UpsertDeduplicates(t *testing.T) {
	r := newRegistry()
	id := Identity{Name: "printer", Category: "_ipp._tcp", Domain: "local."}

	first, created := r.upsert(id)
	if !created {
		t.Fatal("first upsert should create")
	}
	second, created := r.upsert(id)
	if created {
		t.Error("second upsert should not create")
	}
	if first != second || r.len() != 1 {
		t.Errorf("upsert created a duplicate: len=%d", r.len())
	}
}

func TestRegistry_SeqChangesOnRecreate(t *testing.T) {
	r := newRegistry()
	id := Identity{Name: "printer", Category: "_ipp._tcp", Domain: "local."}

	first, _ := r.upsert(id)
	r.remove(id)
	second, _ := r.upsert(id)

	if first.seq == second.seq {
		t.Error("recreated entry kept its sequence number")
	}
	if first.device.ID == second.device.ID {
		t.Error("recreated device kept its ID")
	}
}

func TestMergeResolution(t *testing.T) {
	d := &Device{
		HostName:  "old.local.",
		Port:      80,
		Addresses: []string{"10.0.0.1"},
		Metadata:  map[string]string{"a": "1", "b": "2"},
	}

	mergeResolution(d, Resolution{
		Port:      -1,
		Addresses: nil,
		Metadata:  map[string]string{"b": "3", "c": "4"},
	})

	if d.HostName != "old.local." {
		t.Errorf("empty host name overwrote HostName: %q", d.HostName)
	}
	if d.Port != 80 {
		t.Errorf("sentinel port overwrote Port: %d", d.Port)
	}
	if len(d.Addresses) != 1 || d.Addresses[0] != "10.0.0.1" {
		t.Errorf("empty address list replaced Addresses: %v", d.Addresses)
	}

	want := map[string]string{"a": "1", "b": "3", "c": "4"}
	for k, v := range want {
		if d.Metadata[k] != v {
			t.Errorf("Metadata[%q] = %q, want %q", k, d.Metadata[k], v)
		}
	}

	mergeResolution(d, Resolution{
		HostName:  "new.local.",
		Port:      8080,
		Addresses: []string{"10.0.0.2", "", "10.0.0.2", "fe80::1"},
	})

	if d.HostName != "new.local." || d.Port != 8080 {
		t.Errorf("host/port = %q/%d", d.HostName, d.Port)
	}
	if len(d.Addresses) != 2 || d.Addresses[0] != "10.0.0.2" || d.Addresses[1] != "fe80::1" {
		t.Errorf("Addresses = %v, want [10.0.0.2 fe80::1]", d.Addresses)
	}
}

func TestMergeMetadata_NilMap(t *testing.T) {
	d := &Device{}
	mergeMetadata(d, map[string]string{"k": "v"})
	if d.Metadata["k"] != "v" {
		t.Errorf("Metadata = %v", d.Metadata)
	}
}

func TestRegistry_SnapshotIsDeepCopy(t *testing.T) {
	r := newRegistry()
	e, _ := r.upsert(Identity{Name: "a"})
	e.device.Addresses = []string{"10.0.0.1"}

	snap := r.snapshot()
	snap[0].Addresses[0] = "changed"
	snap[0].Metadata["x"] = "y"

	if e.device.Addresses[0] != "10.0.0.1" {
		t.Error("snapshot shares addresses with registry")
	}
	if _, ok := e.device.Metadata["x"]; ok {
		t.Error("snapshot shares metadata with registry")
	}
}
