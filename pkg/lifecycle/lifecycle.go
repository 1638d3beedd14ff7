// Package lifecycle tracks whether a long-running component is started,
// reports its transitions on a bounded event queue, and holds a small
// concurrent key-value cache shared by its workers.
//
// The server starts a Core when it begins listening and stops it on
// shutdown; /healthz reports IsRunning.
package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flownet/pkg/cache"
)

// QueueSize is the capacity of the event queue.
const QueueSize = 1024

// Cache bounds. Entries stored with Put expire after EntryTTL and the cache
// holds at most CacheEntries of them.
const (
	EntryTTL     = time.Hour
	CacheEntries = cache.DefaultMemoryEntries
)

// EventKind identifies a lifecycle event.
type EventKind int

const (
	EventStart EventKind = iota
	EventStop
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventStop:
		return "stop"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one entry on the queue. Err is set for EventError only.
type Event struct {
	Kind EventKind
	Err  error
}

// Core is safe for concurrent use.
type Core struct {
	mu      sync.RWMutex
	running bool
	workers int

	events  chan Event
	dropped atomic.Uint64

	cache  *cache.MemoryCache
	logger *log.Logger
}

// New creates a stopped Core. A nil logger uses log.Default().
func New(workers int, logger *log.Logger) *Core {
	if logger == nil {
		logger = log.Default()
	}
	return &Core{
		workers: workers,
		events:  make(chan Event, QueueSize),
		cache:   cache.NewMemoryCacheWithLimit(CacheEntries),
		logger:  logger,
	}
}

// Start marks the core running and emits EventStart.
// Starting a running core does nothing.
func (c *Core) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.emit(Event{Kind: EventStart})
	c.logger.Debug("core started", "workers", c.workers)
}

// Stop marks the core stopped and emits EventStop.
// Stopping a stopped core does nothing.
func (c *Core) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	c.emit(Event{Kind: EventStop})
	c.logger.Debug("core stopped")
}

// IsRunning reports whether the core is started.
func (c *Core) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Workers returns the worker count the core was created with.
func (c *Core) Workers() int {
	return c.workers
}

// ReportError enqueues an EventError. A nil err is ignored.
func (c *Core) ReportError(err error) {
	if err == nil {
		return
	}
	c.emit(Event{Kind: EventError, Err: err})
}

// Events returns the receive side of the event queue.
func (c *Core) Events() <-chan Event {
	return c.events
}

// Dropped returns how many events were discarded because the queue was full.
func (c *Core) Dropped() uint64 {
	return c.dropped.Load()
}

// Drain logs queued events until ctx is done. It is meant to run in its own
// goroutine for the lifetime of the owner.
func (c *Core) Drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.events:
			if ev.Kind == EventError {
				c.logger.Error("core event", "kind", ev.Kind, "err", ev.Err)
			} else {
				c.logger.Info("core event", "kind", ev.Kind)
			}
		}
	}
}

// emit never blocks: a full queue drops the event.
func (c *Core) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.dropped.Add(1)
		c.logger.Warn("event queue full, dropping event", "kind", ev.Kind)
	}
}

// Get returns a cached value.
func (c *Core) Get(key string) ([]byte, bool) {
	data, ok, _ := c.cache.Get(context.Background(), key)
	return data, ok
}

// Put stores a value for EntryTTL.
func (c *Core) Put(key string, value []byte) {
	_ = c.cache.Set(context.Background(), key, value, EntryTTL)
}

// Cache exposes the core's store to components that take a cache.Cache.
func (c *Core) Cache() cache.Cache {
	return c.cache
}
