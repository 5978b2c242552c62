package discovery

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/muurk/netscope/internal/classify"
	"github.com/muurk/netscope/internal/correlate"
	"github.com/muurk/netscope/internal/logging"
	"go.uber.org/zap"
)

// ErrClosed is returned by a coordinator after Close
var ErrClosed = errors.New("discovery coordinator closed")

const (
	inboxSize        = 256
	subscriberBuffer = 64
)

// Correlator maps addresses to a hardware address and vendor
type Correlator interface {
	Correlate(ctx context.Context, addresses []string) (correlate.Result, bool)
}

// Classifier derives a display name and icon from what is known about a device
type Classifier interface {
	Classify(in classify.Input) classify.Result
}

type options struct {
	logger             *zap.Logger
	domain             string
	fallbackDelay      time.Duration
	fallbackCategories []string
	resolveTimeout     time.Duration
	correlator         Correlator
	classifier         Classifier
}

// Option configures a Coordinator
type Option func(*options)

// WithLogger sets the coordinator's logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDomain sets the browse domain
func WithDomain(domain string) Option {
	return func(o *options) { o.domain = NormalizeDomain(domain) }
}

// WithFallbackDelay sets how long meta-discovery may stay unproductive
// before FallbackCategories are browsed
func WithFallbackDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fallbackDelay = d
		}
	}
}

// WithFallbackCategories replaces the fallback category list
func WithFallbackCategories(categories []string) Option {
	return func(o *options) {
		if len(categories) > 0 {
			o.fallbackCategories = append([]string(nil), categories...)
		}
	}
}

// WithResolveTimeout bounds each instance resolution
func WithResolveTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.resolveTimeout = d
		}
	}
}

// WithCorrelator enables hardware address correlation
func WithCorrelator(c Correlator) Option {
	return func(o *options) { o.correlator = c }
}

// WithClassifier replaces the default classification engine
func WithClassifier(c Classifier) Option {
	return func(o *options) {
		if c != nil {
			o.classifier = c
		}
	}
}

// Status summarizes the coordinator state
type Status struct {
	SessionID      uuid.UUID `json:"session_id" yaml:"session_id"`
	Browsing       bool      `json:"browsing" yaml:"browsing"`
	Devices        int       `json:"devices" yaml:"devices"`
	Categories     []string  `json:"categories" yaml:"categories"`
	ActiveBrowsers []string  `json:"active_browsers" yaml:"active_browsers"`
	StartedAt      time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
}

// Coordinator owns the browsing lifecycle and the device registry.
//
// A single goroutine owns all state. Substrate events, commands, queries and
// asynchronous results reach it as messages on one inbox, so handlers never
// need locks and every read is a consistent snapshot.
type Coordinator struct {
	substrate Substrate
	opts      options
	logger    *zap.Logger

	inbox  chan interface{}
	done   chan struct{}
	closed atomic.Bool

	// Everything below is owned by the loop goroutine

	gen       uint64
	browsing  bool
	sessionID uuid.UUID
	startedAt time.Time

	sessionCtx    context.Context
	sessionCancel context.CancelFunc

	metaCancel context.CancelFunc
	browsers   map[string]context.CancelFunc
	catalog    map[string]struct{}
	fallback   *time.Timer

	reg         *registry
	resolves    map[Identity]resolveHandle
	nextToken   uint64
	subscribers map[uint64]chan Change
	nextSub     uint64
}

type resolveHandle struct {
	token  uint64
	cancel context.CancelFunc
}

type eventMsg struct {
	gen uint64
	ev  Event
}

type resolveMsg struct {
	gen   uint64
	token uint64
	id    Identity
	res   *Resolution
	err   error
}

type correlationMsg struct {
	gen    uint64
	seq    uint64
	id     Identity
	result correlate.Result
}

type fallbackMsg struct {
	gen uint64
}

type callMsg struct {
	fn   func()
	done chan struct{}
}

type closeMsg struct{}

// New creates a coordinator over the given substrate. The coordinator is idle
// until Start is called.
func New(substrate Substrate, opts ...Option) *Coordinator {
	o := options{
		logger:             logging.GetLogger(),
		domain:             DefaultDomain,
		fallbackDelay:      DefaultFallbackDelay,
		fallbackCategories: FallbackCategories,
		resolveTimeout:     DefaultResolveTimeout,
		classifier:         &classify.Engine{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Coordinator{
		substrate:   substrate,
		opts:        o,
		logger:      o.logger,
		inbox:       make(chan interface{}, inboxSize),
		done:        make(chan struct{}),
		browsers:    make(map[string]context.CancelFunc),
		catalog:     make(map[string]struct{}),
		reg:         newRegistry(),
		resolves:    make(map[Identity]resolveHandle),
		subscribers: make(map[uint64]chan Change),
	}
	go c.run()
	return c
}

// Start begins a discovery session: the registry and catalog are cleared,
// meta-discovery starts and the fallback timer is armed. Start is a no-op
// while a session is running.
func (c *Coordinator) Start() error {
	return c.call(c.start)
}

// Stop ends the session, tearing down every browser, pending resolution and
// the fallback timer. The registry keeps its last known contents. Stop is
// idempotent.
func (c *Coordinator) Stop() {
	_ = c.call(c.stop)
}

// Close stops the session and terminates the coordinator. Subscriber channels
// are closed. Calls after the first return ErrClosed.
func (c *Coordinator) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	c.post(closeMsg{})
	<-c.done
	return nil
}

// Devices returns a snapshot of all devices sorted by display name, then
// identity
func (c *Coordinator) Devices() []Device {
	var out []Device
	if err := c.call(func() { out = c.reg.snapshot() }); err != nil {
		return nil
	}
	return out
}

// Device returns a snapshot of one device
func (c *Coordinator) Device(id uuid.UUID) (Device, bool) {
	var (
		d  Device
		ok bool
	)
	if err := c.call(func() { d, ok = c.reg.find(id) }); err != nil {
		return Device{}, false
	}
	return d, ok
}

// Browsing reports whether a session is running
func (c *Coordinator) Browsing() bool {
	var browsing bool
	_ = c.call(func() { browsing = c.browsing })
	return browsing
}

// Categories returns the sorted category catalog
func (c *Coordinator) Categories() []string {
	var out []string
	_ = c.call(func() { out = c.categories() })
	return out
}

// ActiveBrowsers returns the sorted categories currently being browsed,
// including fallback categories
func (c *Coordinator) ActiveBrowsers() []string {
	var out []string
	_ = c.call(func() { out = c.activeBrowsers() })
	return out
}

// Status returns a summary of the coordinator state
func (c *Coordinator) Status() Status {
	var s Status
	_ = c.call(func() {
		s = Status{
			SessionID:      c.sessionID,
			Browsing:       c.browsing,
			Devices:        c.reg.len(),
			Categories:     c.categories(),
			ActiveBrowsers: c.activeBrowsers(),
			StartedAt:      c.startedAt,
		}
	})
	return s
}

// Subscribe returns a channel of changes and a function that cancels the
// subscription. A subscriber that falls behind misses changes rather than
// stalling the coordinator.
func (c *Coordinator) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, subscriberBuffer)
	var id uint64
	err := c.call(func() {
		c.nextSub++
		id = c.nextSub
		c.subscribers[id] = ch
	})
	if err != nil {
		close(ch)
		return ch, func() {}
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			_ = c.call(func() {
				if sub, ok := c.subscribers[id]; ok {
					delete(c.subscribers, id)
					close(sub)
				}
			})
		})
	}
}

// post delivers a message to the loop, giving up once the loop has exited
func (c *Coordinator) post(msg interface{}) bool {
	select {
	case c.inbox <- msg:
		return true
	case <-c.done:
		return false
	}
}

// call runs fn on the loop goroutine and waits for it
func (c *Coordinator) call(fn func()) error {
	done := make(chan struct{})
	if !c.post(callMsg{fn: fn, done: done}) {
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

func (c *Coordinator) sinkFor(gen uint64) Sink {
	return func(ev Event) {
		c.post(eventMsg{gen: gen, ev: ev})
	}
}

func (c *Coordinator) run() {
	defer close(c.done)

	for msg := range c.inbox {
		switch m := msg.(type) {
		case callMsg:
			m.fn()
			close(m.done)
		case eventMsg:
			if m.gen != c.gen {
				continue
			}
			c.handleEvent(m.ev)
		case resolveMsg:
			c.handleResolve(m)
		case correlationMsg:
			c.handleCorrelation(m)
		case fallbackMsg:
			c.handleFallback(m)
		case closeMsg:
			c.stop()
			for id, ch := range c.subscribers {
				close(ch)
				delete(c.subscribers, id)
			}
			c.logger.Debug("Discovery coordinator closed")
			return
		}
	}
}

func (c *Coordinator) start() {
	if c.browsing {
		return
	}

	c.gen++
	c.browsing = true
	c.sessionID = uuid.New()
	c.startedAt = time.Now()
	c.sessionCtx, c.sessionCancel = context.WithCancel(context.Background())
	c.reg.clear()
	c.catalog = make(map[string]struct{})
	c.browsers = make(map[string]context.CancelFunc)
	c.resolves = make(map[Identity]resolveHandle)

	c.logger.Info("Discovery started",
		zap.String("session_id", c.sessionID.String()),
		zap.String("domain", c.opts.domain),
		zap.Duration("fallback_delay", c.opts.fallbackDelay),
	)

	metaCtx, cancel := context.WithCancel(c.sessionCtx)
	c.metaCancel = cancel
	go c.runBrowser(metaCtx, c.gen, MetaCategory)

	gen := c.gen
	c.fallback = time.AfterFunc(c.opts.fallbackDelay, func() {
		c.post(fallbackMsg{gen: gen})
	})

	c.publish(Change{Kind: ChangeStarted})
}

func (c *Coordinator) stop() {
	if !c.browsing {
		return
	}

	c.disarmFallback()
	if c.metaCancel != nil {
		c.metaCancel()
	}
	c.sessionCancel()
	c.browsing = false
	c.metaCancel = nil
	c.browsers = make(map[string]context.CancelFunc)
	c.resolves = make(map[Identity]resolveHandle)
	c.gen++

	c.logger.Info("Discovery stopped",
		zap.String("session_id", c.sessionID.String()),
		zap.Int("devices", c.reg.len()),
	)
	c.publish(Change{Kind: ChangeStopped})
}

func (c *Coordinator) runBrowser(ctx context.Context, gen uint64, category string) {
	sink := c.sinkFor(gen)
	err := c.substrate.Browse(ctx, category, sink)
	if err != nil && ctx.Err() == nil {
		sink(BrowseFailed{Category: category, Err: err})
	}
}

// startBrowser browses a category unless a browser for it already runs
func (c *Coordinator) startBrowser(category string) {
	if _, ok := c.browsers[category]; ok {
		return
	}
	ctx, cancel := context.WithCancel(c.sessionCtx)
	c.browsers[category] = cancel
	c.logger.Debug("Browsing category", zap.String("category", category))
	go c.runBrowser(ctx, c.gen, category)
}

func (c *Coordinator) disarmFallback() {
	if c.fallback != nil {
		c.fallback.Stop()
		c.fallback = nil
	}
}

func (c *Coordinator) handleEvent(ev Event) {
	switch e := ev.(type) {
	case CategoryFound:
		c.categoryFound(NormalizeCategory(e.Category))
	case CategoryRemoved:
		c.categoryRemoved(NormalizeCategory(e.Category))
	case InstanceFound:
		c.instanceFound(c.normalizeIdentity(e.Identity))
	case InstanceRemoved:
		c.instanceRemoved(c.normalizeIdentity(e.Identity))
	case InstanceResolved:
		c.applyResolution(c.normalizeIdentity(e.Identity), e.Resolution)
	case MetadataUpdated:
		c.metadataUpdated(c.normalizeIdentity(e.Identity), e.Metadata)
	case ResolveFailed:
		c.logger.Debug("Resolve failed",
			zap.String("instance", e.Identity.String()),
			zap.Error(e.Err),
		)
	case BrowseFailed:
		c.browseFailed(NormalizeCategory(e.Category), e.Err)
	}
}

func (c *Coordinator) normalizeIdentity(id Identity) Identity {
	id.Category = NormalizeCategory(id.Category)
	if id.Domain == "" {
		id.Domain = c.opts.domain
	} else {
		id.Domain = NormalizeDomain(id.Domain)
	}
	return id
}

func (c *Coordinator) categoryFound(category string) {
	if category == "" || category == MetaCategory {
		return
	}

	c.disarmFallback()
	if _, ok := c.catalog[category]; !ok {
		c.catalog[category] = struct{}{}
		c.logger.Debug("Category found", zap.String("category", category))
		c.publish(Change{Kind: ChangeCategoryAdded, Category: category})
	}
	c.startBrowser(category)
}

func (c *Coordinator) categoryRemoved(category string) {
	if _, ok := c.catalog[category]; ok {
		delete(c.catalog, category)
		c.logger.Debug("Category removed", zap.String("category", category))
		c.publish(Change{Kind: ChangeCategoryRemoved, Category: category})
	}
	if cancel, ok := c.browsers[category]; ok {
		cancel()
		delete(c.browsers, category)
	}
}

func (c *Coordinator) instanceFound(id Identity) {
	e, created := c.reg.upsert(id)
	if created {
		c.reclassify(e.device)
		c.logger.Debug("Instance found", zap.String("instance", id.String()))
		c.publish(Change{Kind: ChangeAdded, Identity: id, DeviceID: e.device.ID})
	}
	c.startResolve(id)
}

func (c *Coordinator) instanceRemoved(id Identity) {
	if h, ok := c.resolves[id]; ok {
		h.cancel()
		delete(c.resolves, id)
	}

	d, ok := c.reg.remove(id)
	if !ok {
		return
	}
	c.logger.Debug("Instance removed", zap.String("instance", id.String()))
	c.publish(Change{Kind: ChangeRemoved, Identity: id, DeviceID: d.ID})
}

func (c *Coordinator) startResolve(id Identity) {
	if _, ok := c.resolves[id]; ok {
		return
	}

	c.nextToken++
	token := c.nextToken
	gen := c.gen
	ctx, cancel := context.WithTimeout(c.sessionCtx, c.opts.resolveTimeout)
	c.resolves[id] = resolveHandle{token: token, cancel: cancel}

	go func() {
		res, err := c.substrate.Resolve(ctx, id)
		cancel()
		c.post(resolveMsg{gen: gen, token: token, id: id, res: res, err: err})
	}()
}

func (c *Coordinator) handleResolve(m resolveMsg) {
	if m.gen != c.gen {
		return
	}
	h, ok := c.resolves[m.id]
	if !ok || h.token != m.token {
		return
	}
	delete(c.resolves, m.id)

	if m.err != nil {
		c.logger.Debug("Resolve failed",
			zap.String("instance", m.id.String()),
			zap.Error(m.err),
		)
		return
	}
	if m.res != nil {
		c.applyResolution(m.id, *m.res)
	}
}

func (c *Coordinator) applyResolution(id Identity, res Resolution) {
	e, ok := c.reg.get(id)
	if !ok {
		c.logger.Debug("Resolution for unknown instance dropped", zap.String("instance", id.String()))
		return
	}

	mergeResolution(e.device, res)
	c.reg.touch(e.device)
	c.reclassify(e.device)

	c.logger.Debug("Instance resolved",
		zap.String("instance", id.String()),
		zap.String("host", e.device.HostName),
		zap.Int("port", e.device.Port),
		zap.Strings("addresses", e.device.Addresses),
	)
	c.publish(Change{Kind: ChangeUpdated, Identity: id, DeviceID: e.device.ID})

	c.startCorrelation(id, e)
}

func (c *Coordinator) metadataUpdated(id Identity, md map[string]string) {
	e, ok := c.reg.get(id)
	if !ok || len(md) == 0 {
		return
	}

	mergeMetadata(e.device, md)
	c.reg.touch(e.device)
	c.reclassify(e.device)
	c.publish(Change{Kind: ChangeUpdated, Identity: id, DeviceID: e.device.ID})
}

func (c *Coordinator) browseFailed(category string, err error) {
	c.logger.Warn("Browse failed",
		zap.String("category", category),
		zap.Error(err),
	)

	if category == MetaCategory {
		c.metaCancel = nil
	} else if cancel, ok := c.browsers[category]; ok {
		cancel()
		delete(c.browsers, category)
	}
	c.publish(Change{Kind: ChangeBrowseFailed, Category: category, Err: err})
}

func (c *Coordinator) startCorrelation(id Identity, e *entry) {
	if c.opts.correlator == nil || len(e.device.Addresses) == 0 {
		return
	}

	addrs := append([]string(nil), e.device.Addresses...)
	gen, seq, ctx := c.gen, e.seq, c.sessionCtx
	correlator := c.opts.correlator

	go func() {
		result, ok := correlator.Correlate(ctx, addrs)
		if !ok {
			return
		}
		c.post(correlationMsg{gen: gen, seq: seq, id: id, result: result})
	}()
}

func (c *Coordinator) handleCorrelation(m correlationMsg) {
	if m.gen != c.gen {
		return
	}
	e, ok := c.reg.get(m.id)
	if !ok || e.seq != m.seq {
		c.logger.Debug("Correlation for removed instance dropped", zap.String("instance", m.id.String()))
		return
	}

	d := e.device
	if d.HardwareAddress == m.result.HardwareAddress && d.Vendor == m.result.Vendor {
		return
	}
	d.HardwareAddress = m.result.HardwareAddress
	d.Vendor = m.result.Vendor
	c.reg.touch(d)
	c.reclassify(d)

	c.logger.Debug("Instance correlated",
		zap.String("instance", m.id.String()),
		zap.String("hardware_address", d.HardwareAddress),
		zap.String("vendor", d.Vendor),
	)
	c.publish(Change{Kind: ChangeUpdated, Identity: m.id, DeviceID: d.ID})
}

func (c *Coordinator) handleFallback(m fallbackMsg) {
	if m.gen != c.gen || !c.browsing || c.fallback == nil {
		return
	}
	c.fallback = nil
	if len(c.catalog) > 0 {
		return
	}

	c.logger.Info("Meta-discovery unproductive, browsing fallback categories",
		zap.Int("categories", len(c.opts.fallbackCategories)),
	)
	for _, category := range c.opts.fallbackCategories {
		if category = NormalizeCategory(category); category != "" {
			c.startBrowser(category)
		}
	}
}

func (c *Coordinator) reclassify(d *Device) {
	r := c.opts.classifier.Classify(d.classifyInput())
	d.DisplayName = r.DisplayName
	d.Icon = r.Icon
}

func (c *Coordinator) publish(change Change) {
	change.Time = time.Now()
	for _, ch := range c.subscribers {
		select {
		case ch <- change:
		default:
			c.logger.Debug("Subscriber lagging, change dropped", zap.Stringer("kind", change.Kind))
		}
	}
}

func (c *Coordinator) categories() []string {
	out := make([]string, 0, len(c.catalog))
	for category := range c.catalog {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

func (c *Coordinator) activeBrowsers() []string {
	out := make([]string, 0, len(c.browsers))
	for category := range c.browsers {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}
