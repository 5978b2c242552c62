package discovery

import (
	"time"

	"github.com/google/uuid"
)

// ChangeKind classifies a Change
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeUpdated
	ChangeRemoved
	ChangeCategoryAdded
	ChangeCategoryRemoved
	ChangeBrowseFailed
	ChangeStarted
	ChangeStopped
)

var changeKindNames = map[ChangeKind]string{
	ChangeAdded:           "added",
	ChangeUpdated:         "updated",
	ChangeRemoved:         "removed",
	ChangeCategoryAdded:   "category_added",
	ChangeCategoryRemoved: "category_removed",
	ChangeBrowseFailed:    "browse_failed",
	ChangeStarted:         "started",
	ChangeStopped:         "stopped",
}

func (k ChangeKind) String() string {
	if name, ok := changeKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the kind by name
func (k ChangeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Change is published to subscribers after every registry mutation, catalog
// change, session transition and browse failure
type Change struct {
	Kind ChangeKind `json:"kind"`

	// Identity and DeviceID are set for device changes
	Identity Identity  `json:"identity,omitempty"`
	DeviceID uuid.UUID `json:"device_id,omitempty"`

	// Category is set for catalog changes and browse failures
	Category string `json:"category,omitempty"`

	Err  error     `json:"-"`
	Time time.Time `json:"time"`
}

// IsDevice reports whether the change concerns a single device
func (c Change) IsDevice() bool {
	return c.Kind == ChangeAdded || c.Kind == ChangeUpdated || c.Kind == ChangeRemoved
}
