// Package timectrl drives the frame clock: real (wall clock) time for
// animations and simulation time for ephemerides.
package timectrl

import (
	"context"
	"sync"
	"time"

	"github.com/signalsfoundry/cosmoview/model"
)

// FrameTime is the pair of clocks sampled for one rendered frame. Real is
// seconds since the controller started; Sim is seconds past J2000 TDB.
type FrameTime struct {
	Real float64
	Sim  float64
}

// UTC returns the simulation time as a calendar time.
func (f FrameTime) UTC() time.Time { return model.TimeFromJ2000Seconds(f.Sim) }

// Clock gives read access to the current frame time.
type Clock interface {
	Now() FrameTime
}

// Mode describes how the TimeController advances time.
type Mode int

const (
	// RealTime steps once per Tick of wall-clock time.
	RealTime Mode = iota
	// Accelerated steps by Tick as quickly as the loop can run.
	Accelerated
)

// TimeController keeps the real and simulation clocks and notifies
// registered listeners on every step. Simulation time advances by the real
// step times the time scale, and stops while paused.
type TimeController struct {
	mu    sync.RWMutex
	tick  time.Duration
	mode  Mode
	scale float64
	now   FrameTime

	paused    bool
	listeners []func(FrameTime)
}

// NewTimeController constructs a controller starting at sim seconds past
// J2000 with a time scale of 1.
func NewTimeController(sim float64, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		tick:  tick,
		mode:  mode,
		scale: 1,
		now:   FrameTime{Sim: sim},
	}
}

// Now returns the current frame time. Implements Clock.
func (tc *TimeController) Now() FrameTime {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.now
}

// SetTime jumps the simulation clock. Real time is unaffected.
func (tc *TimeController) SetTime(sim float64) {
	tc.mu.Lock()
	tc.now.Sim = sim
	tc.mu.Unlock()
}

// SetTimeScale sets simulated seconds per real second. Negative scales run
// the simulation backwards.
func (tc *TimeController) SetTimeScale(scale float64) {
	tc.mu.Lock()
	tc.scale = scale
	tc.mu.Unlock()
}

// TimeScale returns the current time scale.
func (tc *TimeController) TimeScale() float64 {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.scale
}

// SetPaused freezes or resumes the simulation clock.
func (tc *TimeController) SetPaused(paused bool) {
	tc.mu.Lock()
	tc.paused = paused
	tc.mu.Unlock()
}

// Paused reports whether the simulation clock is frozen.
func (tc *TimeController) Paused() bool {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.paused
}

// AddListener registers a callback invoked after every step.
func (tc *TimeController) AddListener(fn func(FrameTime)) {
	tc.mu.Lock()
	tc.listeners = append(tc.listeners, fn)
	tc.mu.Unlock()
}

// Step advances real time by dt and simulation time by dt·scale, then
// notifies listeners outside the lock.
func (tc *TimeController) Step(dt time.Duration) FrameTime {
	tc.mu.Lock()
	seconds := dt.Seconds()
	tc.now.Real += seconds
	if !tc.paused {
		tc.now.Sim += seconds * tc.scale
	}
	now := tc.now
	listeners := append([]func(FrameTime){}, tc.listeners...)
	tc.mu.Unlock()

	for _, fn := range listeners {
		fn(now)
	}
	return now
}

// Start steps the controller by Tick until duration of real time has been
// simulated (forever if duration is 0) or ctx is cancelled. It returns a
// channel that is closed when the loop exits.
func (tc *TimeController) Start(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		var ticks <-chan time.Time
		if tc.mode == RealTime {
			ticker := time.NewTicker(tc.tick)
			defer ticker.Stop()
			ticks = ticker.C
		}

		elapsed := time.Duration(0)
		for duration == 0 || elapsed < duration {
			if ticks != nil {
				select {
				case <-ctx.Done():
					return
				case <-ticks:
				}
			} else if ctx.Err() != nil {
				return
			}
			tc.Step(tc.tick)
			elapsed += tc.tick
		}
	}()
	return done
}
