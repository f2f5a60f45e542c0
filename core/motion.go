package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/cosmoview/internal/logging"
)

// PositionUpdater receives the sampled position of a body each frame.
type PositionUpdater interface {
	UpdateBodyPosition(name string, position r3.Vec, t float64) error
}

// MotionModel samples the positions of registered entities at a simulation
// time and pushes them to a PositionUpdater.
type MotionModel struct {
	mu       sync.Mutex
	entities map[string]*Entity
	updater  PositionUpdater
	log      logging.Logger
}

// MotionModelOption configures a MotionModel.
type MotionModelOption func(*MotionModel)

// WithPositionUpdater sets the sink for sampled positions.
func WithPositionUpdater(u PositionUpdater) MotionModelOption {
	return func(m *MotionModel) { m.updater = u }
}

// WithMotionLogger sets the logger.
func WithMotionLogger(l logging.Logger) MotionModelOption {
	return func(m *MotionModel) { m.log = logging.OrNoop(l) }
}

// NewMotionModel creates an empty motion model.
func NewMotionModel(opts ...MotionModelOption) *MotionModel {
	m := &MotionModel{
		entities: make(map[string]*Entity),
		log:      logging.Noop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddEntity registers e. Names must be unique.
func (m *MotionModel) AddEntity(e *Entity) error {
	if e == nil {
		return errors.New("nil entity")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entities[e.Name()]; exists {
		return fmt.Errorf("entity %q already registered", e.Name())
	}
	m.entities[e.Name()] = e
	return nil
}

// RemoveEntity stops sampling the named entity.
func (m *MotionModel) RemoveEntity(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entities[name]; !exists {
		return fmt.Errorf("entity %q not registered", name)
	}
	delete(m.entities, name)
	return nil
}

// UpdatePositions samples every entity at t, in name order. Updater errors are
// collected and returned together; sampling continues past a failure.
func (m *MotionModel) UpdatePositions(t float64) error {
	m.mu.Lock()
	names := make([]string, 0, len(m.entities))
	for name := range m.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	entities := make([]*Entity, len(names))
	for i, name := range names {
		entities[i] = m.entities[name]
	}
	m.mu.Unlock()

	if m.updater == nil {
		return nil
	}

	var errs []error
	for _, e := range entities {
		if err := m.updater.UpdateBodyPosition(e.Name(), e.Position(t), t); err != nil {
			m.log.Warn(context.Background(), "position update failed",
				logging.String("body", e.Name()),
				logging.Err(err),
			)
			errs = append(errs, fmt.Errorf("update %s: %w", e.Name(), err))
		}
	}
	return errors.Join(errs...)
}
