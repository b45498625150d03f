// Package querycache is a read-through cache in front of the banking API.
// Identical concurrent queries share one fetch, results carry tags, and
// mutations mark every entry providing an invalidated tag as stale.
package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/deltegui/bankconsole/clock"
	"github.com/deltegui/bankconsole/debounce"
)

var ErrClosed = errors.New("query cache is closed")

type Fetcher func(ctx context.Context) (any, error)

type Request struct {
	Key   Key
	Fetch Fetcher

	// Provides computes the tags of a completed fetch. It may be nil.
	Provides func(data any, err error) []Tag
}

type Result struct {
	Data any
	Err  error

	// IsLoading is set when there is no result at all yet.
	IsLoading bool

	// IsFetching is set while a fetch for the entry is in flight, including
	// background revalidation of stale data.
	IsFetching bool

	UpdatedAt time.Time
}

type Mutation struct {
	Run func(ctx context.Context) (any, error)

	// Invalidates computes the tags to invalidate after a successful Run.
	Invalidates func(result any, err error) []Tag
}

type Options struct {
	Clock clock.Clock

	// StaleAfter is the age after which data is revalidated on read.
	StaleAfter time.Duration

	// KeepUnusedFor is how long an entry survives without reads.
	KeepUnusedFor time.Duration

	// FetchTimeout bounds every fetch, also the ones no caller waits for.
	FetchTimeout time.Duration

	// Debounce coalesces refetches scheduled by invalidation.
	Debounce time.Duration

	Logger zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		Clock:         clock.Real(),
		StaleAfter:    30 * time.Second,
		KeepUnusedFor: 60 * time.Second,
		FetchTimeout:  15 * time.Second,
		Debounce:      debounce.DefaultWindow,
		Logger:        zerolog.Nop(),
	}
}

type entry struct {
	key      Key
	fetch    Fetcher
	provides func(any, error) []Tag

	data      any
	err       error
	hasResult bool
	updatedAt time.Time
	lastUsed  time.Time
	stale     bool
	tags      []Tag

	// gen is bumped by every started fetch and every invalidation. Only a
	// fetch whose generation is still gen when it completes is stored.
	gen       uint64
	flightGen uint64
	flying    bool
}

func (e *entry) currentFlight() bool {
	return e.flying && e.flightGen == e.gen
}

func (e *entry) flightKey(gen uint64) string {
	return fmt.Sprintf("%s#%d", e.key, gen)
}

func (e *entry) provide(tag Tag) bool {
	for _, t := range e.tags {
		if t == tag {
			return true
		}
	}
	return false
}

type Cache struct {
	opts      Options
	log       zerolog.Logger
	group     singleflight.Group
	debouncer *debounce.Debouncer

	baseCtx context.Context
	cancel  context.CancelFunc
	flights sync.WaitGroup
	done    chan struct{}
	janitor sync.WaitGroup

	mu      sync.Mutex
	entries map[Key]*entry
	closed  bool
}

func New(opts Options) *Cache {
	defaults := DefaultOptions()
	if opts.Clock == nil {
		opts.Clock = defaults.Clock
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = defaults.StaleAfter
	}
	if opts.KeepUnusedFor <= 0 {
		opts.KeepUnusedFor = defaults.KeepUnusedFor
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaults.FetchTimeout
	}
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		opts:      opts,
		log:       opts.Logger.With().Str("component", "querycache").Logger(),
		debouncer: debounce.New(opts.Clock, opts.Debounce),
		baseCtx:   ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		entries:   make(map[Key]*entry),
	}
	ticker := opts.Clock.Tick(c.sweepInterval())
	c.janitor.Add(1)
	go c.runJanitor(ticker)
	return c
}

func (c *Cache) sweepInterval() time.Duration {
	interval := c.opts.KeepUnusedFor / 2
	if interval < time.Second {
		return time.Second
	}
	return interval
}

// Query returns the cached result for req.Key. Fresh data is returned as is
// and data past StaleAfter is returned while it revalidates in the
// background. Missing, invalidated or failed entries are fetched first: Query
// waits until ctx is done, then returns what the entry holds and the fetch
// continues in the background.
func (c *Cache) Query(ctx context.Context, req Request) Result {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Result{Err: ErrClosed}
	}
	now := c.opts.Clock.Now()
	e, ok := c.entries[req.Key]
	if !ok {
		e = &entry{key: req.Key}
		c.entries[req.Key] = e
	}
	e.lastUsed = now
	e.fetch = req.Fetch
	e.provides = req.Provides

	if e.hasResult && !e.stale && e.err == nil {
		if now.Sub(e.updatedAt) >= c.opts.StaleAfter && !e.currentFlight() {
			c.log.Debug().Str("key", e.key.String()).Msg("revalidating stale entry")
			c.startFetchLocked(e)
		}
		res := c.resultLocked(e)
		c.mu.Unlock()
		return res
	}

	var ch <-chan singleflight.Result
	if e.currentFlight() {
		ch = c.group.DoChan(e.flightKey(e.gen), c.flightFunc(e, e.gen))
	} else {
		ch = c.startFetchLocked(e)
	}
	c.mu.Unlock()

	select {
	case flight := <-ch:
		c.mu.Lock()
		defer c.mu.Unlock()
		if e.hasResult {
			return c.resultLocked(e)
		}
		return Result{Data: flight.Val, Err: flight.Err, IsFetching: e.currentFlight()}
	case <-ctx.Done():
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.resultLocked(e)
	}
}

func (c *Cache) resultLocked(e *entry) Result {
	return Result{
		Data:       e.data,
		Err:        e.err,
		IsLoading:  !e.hasResult,
		IsFetching: e.currentFlight(),
		UpdatedAt:  e.updatedAt,
	}
}

func (c *Cache) startFetchLocked(e *entry) <-chan singleflight.Result {
	e.gen++
	e.flightGen = e.gen
	e.flying = true
	c.flights.Add(1)
	return c.group.DoChan(e.flightKey(e.gen), c.flightFunc(e, e.gen))
}

func (c *Cache) flightFunc(e *entry, gen uint64) func() (any, error) {
	fetch := e.fetch
	return func() (any, error) {
		defer c.flights.Done()
		ctx, cancel := context.WithTimeout(c.baseCtx, c.opts.FetchTimeout)
		defer cancel()
		data, err := fetch(ctx)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		c.complete(e, gen, data, err)
		return data, err
	}
}

func (c *Cache) complete(e *entry, gen uint64, data any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.flightGen == gen {
		e.flying = false
	}
	if gen != e.gen {
		c.log.Debug().
			Str("key", e.key.String()).
			Uint64("generation", gen).
			Uint64("latest", e.gen).
			Msg("discarding superseded fetch")
		return
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", e.key.String()).Msg("fetch failed")
	}
	if err == nil || !e.hasResult {
		e.data = data
	}
	e.err = err
	e.hasResult = true
	e.stale = false
	e.updatedAt = c.opts.Clock.Now()
	if e.provides != nil {
		e.tags = e.provides(data, err)
	} else {
		e.tags = nil
	}
}

// Mutate runs m and, when it succeeds, invalidates the tags it names.
func (c *Cache) Mutate(ctx context.Context, m Mutation) (any, error) {
	result, err := m.Run(ctx)
	if err != nil {
		return result, err
	}
	if m.Invalidates != nil {
		c.Invalidate(m.Invalidates(result, err)...)
	}
	return result, nil
}

// Invalidate marks every entry providing one of tags as stale. The next read
// of a stale entry waits for fresh data. Entries read recently are also
// refetched once the debounce window passes.
func (c *Cache) Invalidate(tags ...Tag) {
	if len(tags) == 0 {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	now := c.opts.Clock.Now()
	var refetch []Key
	for key, e := range c.entries {
		if !providesAny(e, tags) {
			continue
		}
		e.stale = true
		e.gen++
		if now.Sub(e.lastUsed) < c.opts.KeepUnusedFor {
			refetch = append(refetch, key)
		}
	}
	c.mu.Unlock()

	c.log.Debug().Int("entries", len(refetch)).Interface("tags", tags).Msg("invalidated")
	for _, key := range refetch {
		key := key
		c.debouncer.Trigger(key.String(), func() { c.refetch(key) })
	}
}

func providesAny(e *entry, tags []Tag) bool {
	for _, tag := range tags {
		if e.provide(tag) {
			return true
		}
	}
	return false
}

func (c *Cache) refetch(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	e, ok := c.entries[key]
	// A read may have refetched it already.
	if !ok || !e.stale || e.fetch == nil || e.currentFlight() {
		return
	}
	c.startFetchLocked(e)
}

// Sweep evicts entries that have not been read for KeepUnusedFor and have no
// fetch in flight.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.opts.Clock.Now()
	evicted := 0
	for key, e := range c.entries {
		if e.flying || now.Sub(e.lastUsed) < c.opts.KeepUnusedFor {
			continue
		}
		delete(c.entries, key)
		evicted++
	}
	if evicted > 0 {
		c.log.Debug().Int("evicted", evicted).Msg("swept unused entries")
	}
	return evicted
}

func (c *Cache) runJanitor(ticker clock.Ticker) {
	defer c.janitor.Done()
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C():
			c.Sweep()
		}
	}
}

// Peek returns the entry for key without reading through or touching it.
func (c *Cache) Peek(key Key) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	return c.resultLocked(e), true
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the janitor and pending refetches, cancels fetches in flight
// and waits for them to return.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.debouncer.Stop()
	close(c.done)
	c.janitor.Wait()
	c.cancel()
	c.flights.Wait()
}
