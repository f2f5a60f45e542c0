package ephemeris

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/cosmoview/core"
)

// StaticFrameService is an in-memory frame table. Frames are registered by
// name as core.Frame values. The built-in inertial frames are always
// available under their core names.
type StaticFrameService struct {
	transformer

	framesMu sync.RWMutex
	frames   map[string]core.Frame
}

// NewStaticFrameService creates a service with the given frames registered.
func NewStaticFrameService(frames map[string]core.Frame) *StaticFrameService {
	s := &StaticFrameService{frames: make(map[string]core.Frame, len(frames))}
	for name, f := range frames {
		s.frames[name] = f
	}
	s.resolve = s.lookup
	return s
}

// Register adds or replaces a named frame.
func (s *StaticFrameService) Register(name string, f core.Frame) {
	s.framesMu.Lock()
	s.frames[name] = f
	s.framesMu.Unlock()
}

func (s *StaticFrameService) lookup(name string, et float64) (frameState, error) {
	s.framesMu.RLock()
	f, ok := s.frames[name]
	s.framesMu.RUnlock()
	if ok {
		return stateOf(f, et), nil
	}
	if st, ok := resolveInertial(name, et); ok {
		return st, nil
	}
	return frameState{}, fmt.Errorf("%q: %w", name, ErrUnknownFrame)
}

var _ core.FrameTransformer = (*StaticFrameService)(nil)
