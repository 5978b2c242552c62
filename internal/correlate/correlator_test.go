package correlate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/muurk/netscope/internal/neighbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// countingProvider records how many snapshots were requested
type countingProvider struct {
	entries []neighbor.Entry
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (p *countingProvider) Snapshot(ctx context.Context) ([]neighbor.Entry, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.entries, nil
}

func TestCorrelate_RefreshesOnMiss(t *testing.T) {
	provider := &countingProvider{entries: []neighbor.Entry{
		{Address: "192.168.1.20", HardwareAddress: "b8:27:eb:01:02:03"},
	}}
	c := New(provider, WithLogger(zaptest.NewLogger(t)))

	result, ok := c.Correlate(context.Background(), []string{"192.168.1.20"})
	require.True(t, ok)
	assert.Equal(t, "b8:27:eb:01:02:03", result.HardwareAddress)
	assert.Equal(t, "Raspberry Pi Foundation", result.Vendor)
	assert.Equal(t, int32(1), provider.calls.Load())

	// Second lookup is served from the cache
	_, ok = c.Correlate(context.Background(), []string{"192.168.1.20"})
	require.True(t, ok)
	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestCorrelate_FirstMatchingAddressWins(t *testing.T) {
	c := New(neighbor.Static{
		{Address: "10.0.0.2", HardwareAddress: "00:0c:29:aa:bb:cc"},
		{Address: "10.0.0.3", HardwareAddress: "00:15:5d:aa:bb:cc"},
	})

	result, ok := c.Correlate(context.Background(), []string{"10.0.0.9", "10.0.0.3", "10.0.0.2"})
	require.True(t, ok)
	assert.Equal(t, "Microsoft", result.Vendor)
}

func TestCorrelate_IgnoresIPv6Zone(t *testing.T) {
	c := New(neighbor.Static{
		{Address: "fe80::1", HardwareAddress: "f0:d1:a9:00:00:01"},
	})

	result, ok := c.Correlate(context.Background(), []string{"fe80::1%en0"})
	require.True(t, ok)
	assert.Equal(t, "Cisco", result.Vendor)
}

func TestCorrelate_NoMatch(t *testing.T) {
	provider := &countingProvider{entries: []neighbor.Entry{
		{Address: "10.0.0.2", HardwareAddress: "aa:bb:cc:dd:ee:ff"},
	}}
	c := New(provider)

	_, ok := c.Correlate(context.Background(), []string{"10.0.0.99"})
	assert.False(t, ok)

	// A miss retries lazily on the next call
	_, ok = c.Correlate(context.Background(), []string{"10.0.0.99"})
	assert.False(t, ok)
	assert.Equal(t, int32(2), provider.calls.Load())
}

func TestCorrelate_ProviderFailureIsSilent(t *testing.T) {
	provider := &countingProvider{err: errors.New("permission denied")}
	c := New(provider, WithLogger(zaptest.NewLogger(t)))

	result, ok := c.Correlate(context.Background(), []string{"10.0.0.1"})
	assert.False(t, ok)
	assert.Equal(t, Result{}, result)
}

func TestCorrelate_EmptyAddresses(t *testing.T) {
	provider := &countingProvider{}
	c := New(provider)

	_, ok := c.Correlate(context.Background(), nil)
	assert.False(t, ok)
	assert.Equal(t, int32(0), provider.calls.Load())
}

func TestCorrelate_UnknownVendor(t *testing.T) {
	c := New(neighbor.Static{{Address: "10.0.0.5", HardwareAddress: "02:00:00:00:00:01"}})

	result, ok := c.Correlate(context.Background(), []string{"10.0.0.5"})
	require.True(t, ok)
	assert.Equal(t, "02:00:00:00:00:01", result.HardwareAddress)
	assert.Empty(t, result.Vendor)
}

func TestCorrelate_NilProvider(t *testing.T) {
	c := New(nil)
	_, ok := c.Correlate(context.Background(), []string{"10.0.0.1"})
	assert.False(t, ok)
}

func TestRefresh_CollapsesConcurrentCalls(t *testing.T) {
	provider := &countingProvider{
		entries: []neighbor.Entry{{Address: "10.0.0.1", HardwareAddress: "aa:bb:cc:dd:ee:ff"}},
		delay:   50 * time.Millisecond,
	}
	c := New(provider)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Refresh(context.Background())
		}()
	}
	wg.Wait()

	assert.Less(t, provider.calls.Load(), int32(8))
	assert.Equal(t, 1, c.CacheSize())
}

func TestWithVendors(t *testing.T) {
	c := New(neighbor.None{}, WithVendors(map[string]string{
		"02-00-00":          "Lab Device",
		"b8:27:eb":          "Override",
		"short":             "Ignored",
		"aa:bb:cc:dd:ee:ff": "",
	}))

	assert.Equal(t, "Lab Device", c.Vendor("02:00:00:12:34:56"))
	assert.Equal(t, "Override", c.Vendor("B8:27:EB:00:00:01"))
	assert.Empty(t, c.Vendor("aa:bb:cc:00:00:00"))

	// The package table is untouched
	assert.Equal(t, "Raspberry Pi Foundation", VendorFor("B8:27:EB:00:00:01"))
}
