package discovery

import "fmt"

// Event is a notification from a Substrate. The concrete types below are the
// only implementations.
type Event interface {
	event()
}

// Resolution is what resolving an instance yields
type Resolution struct {
	HostName  string
	Port      int
	Addresses []string
	Metadata  map[string]string
}

// CategoryFound reports a service type seen by meta-discovery
type CategoryFound struct {
	Category string
}

// CategoryRemoved reports a service type that is no longer advertised
type CategoryRemoved struct {
	Category string
}

// InstanceFound reports a new service instance within a browsed category
type InstanceFound struct {
	Identity Identity
}

// InstanceRemoved reports that a service instance went away
type InstanceRemoved struct {
	Identity Identity
}

// InstanceResolved carries a completed resolution
type InstanceResolved struct {
	Identity   Identity
	Resolution Resolution
}

// MetadataUpdated carries TXT record changes for a known instance
type MetadataUpdated struct {
	Identity Identity
	Metadata map[string]string
}

// ResolveFailed reports a resolution that failed or timed out
type ResolveFailed struct {
	Identity Identity
	Err      error
}

// BrowseFailed reports a browser that stopped with an error
type BrowseFailed struct {
	Category string
	Err      error
}

func (CategoryFound) event()    {}
func (CategoryRemoved) event()  {}
func (InstanceFound) event()    {}
func (InstanceRemoved) event()  {}
func (InstanceResolved) event() {}
func (MetadataUpdated) event()  {}
func (ResolveFailed) event()    {}
func (BrowseFailed) event()     {}

func (e CategoryFound) String() string   { return "category found: " + e.Category }
func (e CategoryRemoved) String() string { return "category removed: " + e.Category }
func (e InstanceFound) String() string   { return "instance found: " + e.Identity.String() }
func (e InstanceRemoved) String() string { return "instance removed: " + e.Identity.String() }

func (e InstanceResolved) String() string {
	return fmt.Sprintf("instance resolved: %s (%s:%d)", e.Identity, e.Resolution.HostName, e.Resolution.Port)
}

func (e MetadataUpdated) String() string {
	return fmt.Sprintf("metadata updated: %s (%d keys)", e.Identity, len(e.Metadata))
}

func (e ResolveFailed) String() string {
	return fmt.Sprintf("resolve failed: %s: %v", e.Identity, e.Err)
}

func (e BrowseFailed) String() string {
	return fmt.Sprintf("browse failed: %s: %v", e.Category, e.Err)
}
