// Package correlate maps discovered network addresses to hardware addresses
// using the operating system's neighbor table, and hardware addresses to
// vendor names using a static OUI table.
//
// Correlation is best-effort. A missing or unreadable neighbor table never
// produces an error for callers; the device simply stays uncorrelated until a
// later attempt succeeds.
package correlate

import (
	"context"
	"strings"
	"sync"

	"github.com/muurk/netscope/internal/neighbor"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Result is a successful correlation
type Result struct {
	HardwareAddress string `json:"hardware_address" yaml:"hardware_address"`
	Vendor          string `json:"vendor,omitempty" yaml:"vendor,omitempty"`
}

// Correlator resolves addresses against a cached neighbor table.
// It is safe for concurrent use.
type Correlator struct {
	provider neighbor.Provider
	logger   *zap.Logger
	vendors  map[string]string

	mu    sync.RWMutex
	cache map[string]string

	refresh singleflight.Group
}

// Option configures a Correlator
type Option func(*Correlator)

// WithLogger sets the logger used for refresh failures
func WithLogger(logger *zap.Logger) Option {
	return func(c *Correlator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithVendors adds OUI→vendor entries on top of the built-in table.
// Keys may be written in any hardware address notation.
func WithVendors(extra map[string]string) Option {
	return func(c *Correlator) {
		for prefix, vendor := range extra {
			hex := NormalizeHardwareAddress(prefix)
			if len(hex) < ouiLength || vendor == "" {
				continue
			}
			c.vendors[hex[:ouiLength]] = vendor
		}
	}
}

// New creates a correlator reading from the given provider. A nil provider
// behaves like neighbor.None.
func New(provider neighbor.Provider, opts ...Option) *Correlator {
	if provider == nil {
		provider = neighbor.None{}
	}

	c := &Correlator{
		provider: provider,
		logger:   zap.NewNop(),
		vendors:  make(map[string]string, len(vendors)),
		cache:    make(map[string]string),
	}
	for k, v := range vendors {
		c.vendors[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Correlate returns the hardware address and vendor for the first address
// found in the neighbor table. On a cache miss for every candidate the table
// is refreshed once and the lookup retried.
func (c *Correlator) Correlate(ctx context.Context, addresses []string) (Result, bool) {
	if len(addresses) == 0 {
		return Result{}, false
	}

	if hw, ok := c.lookup(addresses); ok {
		return c.result(hw), true
	}

	if err := c.Refresh(ctx); err != nil {
		c.logger.Debug("Neighbor table refresh failed", zap.Error(err))
		return Result{}, false
	}

	if hw, ok := c.lookup(addresses); ok {
		return c.result(hw), true
	}
	return Result{}, false
}

// Refresh replaces the cache with a fresh neighbor table snapshot.
// Concurrent callers share one snapshot.
func (c *Correlator) Refresh(ctx context.Context) error {
	_, err, _ := c.refresh.Do("snapshot", func() (interface{}, error) {
		entries, err := c.provider.Snapshot(ctx)
		if err != nil {
			return nil, err
		}

		cache := make(map[string]string, len(entries))
		for _, e := range entries {
			cache[stripZone(e.Address)] = e.HardwareAddress
		}

		c.mu.Lock()
		c.cache = cache
		c.mu.Unlock()

		c.logger.Debug("Neighbor table refreshed", zap.Int("entries", len(cache)))
		return nil, nil
	})
	return err
}

// Vendor returns the vendor for a hardware address using this correlator's
// table, including any extra entries
func (c *Correlator) Vendor(hw string) string {
	return vendorFrom(c.vendors, hw)
}

// CacheSize returns the number of cached neighbor entries
func (c *Correlator) CacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *Correlator) lookup(addresses []string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, addr := range addresses {
		if hw, ok := c.cache[stripZone(addr)]; ok && hw != "" {
			return hw, true
		}
	}
	return "", false
}

func (c *Correlator) result(hw string) Result {
	return Result{
		HardwareAddress: FormatHardwareAddress(hw),
		Vendor:          c.Vendor(hw),
	}
}

// stripZone removes an IPv6 zone suffix ("fe80::1%en0" → "fe80::1")
func stripZone(addr string) string {
	if i := strings.IndexByte(addr, '%'); i >= 0 {
		return addr[:i]
	}
	return addr
}
