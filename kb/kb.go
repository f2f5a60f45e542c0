// Package kb holds the catalog of bodies known to the viewer.
package kb

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/core"
)

var (
	// ErrDuplicateBody is returned when a body name is already registered.
	ErrDuplicateBody = errors.New("body already exists")
	// ErrBodyNotFound is returned for operations on an unknown body name.
	ErrBodyNotFound = errors.New("body not found")
)

// EventType indicates what kind of change happened in the catalog.
type EventType int

const (
	EventBodyAdded EventType = iota
	EventBodyMoved
	EventBodyRemoved
)

func (t EventType) String() string {
	switch t {
	case EventBodyAdded:
		return "added"
	case EventBodyMoved:
		return "moved"
	case EventBodyRemoved:
		return "removed"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is emitted to subscribers when the catalog changes. Position and
// Time are set for EventBodyMoved.
type Event struct {
	Type     EventType
	Body     string
	Position r3.Vec
	Time     float64
}

// Sample is the last sampled position of a body.
type Sample struct {
	Position r3.Vec
	Time     float64
}

// Catalog is an in-memory, thread-safe store of entities keyed by name.
type Catalog struct {
	mu sync.RWMutex

	bodies  map[string]*core.Entity
	samples map[string]Sample

	subs    map[int]func(Event)
	nextSub int
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		bodies:  make(map[string]*core.Entity),
		samples: make(map[string]Sample),
		subs:    make(map[int]func(Event)),
	}
}

// AddBody registers e under its name.
func (c *Catalog) AddBody(e *core.Entity) error {
	if e == nil {
		return errors.New("nil body")
	}
	c.mu.Lock()
	if _, exists := c.bodies[e.Name()]; exists {
		c.mu.Unlock()
		return fmt.Errorf("body %q: %w", e.Name(), ErrDuplicateBody)
	}
	c.bodies[e.Name()] = e
	subs := c.subscribers()
	c.mu.Unlock()

	notify(subs, Event{Type: EventBodyAdded, Body: e.Name()})
	return nil
}

// RemoveBody drops a body and its last sample.
func (c *Catalog) RemoveBody(name string) error {
	c.mu.Lock()
	if _, ok := c.bodies[name]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("body %q: %w", name, ErrBodyNotFound)
	}
	delete(c.bodies, name)
	delete(c.samples, name)
	subs := c.subscribers()
	c.mu.Unlock()

	notify(subs, Event{Type: EventBodyRemoved, Body: name})
	return nil
}

// GetBody returns the named body, or nil if not found.
func (c *Catalog) GetBody(name string) *core.Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bodies[name]
}

// ListBodies returns a snapshot of all bodies sorted by name.
func (c *Catalog) ListBodies() []*core.Entity {
	c.mu.RLock()
	res := make([]*core.Entity, 0, len(c.bodies))
	for _, e := range c.bodies {
		res = append(res, e)
	}
	c.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}

// Len returns the number of bodies.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bodies)
}

// LastSample returns the most recent position recorded for name.
func (c *Catalog) LastSample(name string) (Sample, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.samples[name]
	return s, ok
}

// UpdateBodyPosition records a sampled absolute position and notifies
// subscribers. It implements core.PositionUpdater.
func (c *Catalog) UpdateBodyPosition(name string, pos r3.Vec, t float64) error {
	c.mu.Lock()
	if _, ok := c.bodies[name]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("body %q: %w", name, ErrBodyNotFound)
	}
	c.samples[name] = Sample{Position: pos, Time: t}
	subs := c.subscribers()
	c.mu.Unlock()

	notify(subs, Event{Type: EventBodyMoved, Body: name, Position: pos, Time: t})
	return nil
}

// Subscribe registers a callback for catalog events. It returns an
// unsubscribe function; calling it more than once is harmless.
func (c *Catalog) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// subscribers snapshots the callbacks in registration order. Callers hold mu.
func (c *Catalog) subscribers() []func(Event) {
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	res := make([]func(Event), len(ids))
	for i, id := range ids {
		res[i] = c.subs[id]
	}
	return res
}

// notify runs outside the lock so callbacks may call back into the catalog.
func notify(subs []func(Event), e Event) {
	for _, sub := range subs {
		sub(e)
	}
}

var _ core.PositionUpdater = (*Catalog)(nil)
