package observer

import (
	"context"
	"fmt"

	"github.com/signalsfoundry/cosmoview/internal/logging"
)

// ActionRecorder counts action updates and completions by action kind.
type ActionRecorder interface {
	ActionUpdated(action string)
	ActionCompleted(action string)
}

// ActionName returns the metrics label for an action.
func ActionName(a Action) string {
	switch a.(type) {
	case *Center:
		return "center"
	case *Goto:
		return "goto"
	case *OrbitGoto:
		return "orbit_goto"
	default:
		return fmt.Sprintf("%T", a)
	}
}

// Controller owns an observer and at most one active action. Starting a new
// action drops the previous one. It is meant to be driven from a single
// render loop.
type Controller struct {
	obs      *Observer
	active   Action
	log      logging.Logger
	recorder ActionRecorder
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l logging.Logger) ControllerOption {
	return func(c *Controller) { c.log = logging.OrNoop(l) }
}

// WithActionRecorder attaches a metrics recorder.
func WithActionRecorder(r ActionRecorder) ControllerOption {
	return func(c *Controller) { c.recorder = r }
}

// NewController wraps obs.
func NewController(obs *Observer, opts ...ControllerOption) *Controller {
	c := &Controller{obs: obs, log: logging.Noop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Observer returns the controlled observer.
func (c *Controller) Observer() *Observer { return c.obs }

// Active returns the running action, or nil.
func (c *Controller) Active() Action { return c.active }

// Start replaces the active action with a.
func (c *Controller) Start(a Action) {
	if c.active != nil {
		c.log.Debug(context.Background(), "observer action replaced",
			logging.String("previous", ActionName(c.active)),
			logging.String("action", ActionName(a)),
		)
	}
	c.active = a
}

// Cancel drops the active action, leaving the observer where it is.
func (c *Controller) Cancel() { c.active = nil }

// Update advances the active action by one frame. It reports true on the
// frame the action finishes; the action is then dropped.
func (c *Controller) Update(realTime, simTime float64) bool {
	if c.active == nil {
		return false
	}
	name := ActionName(c.active)
	done := c.active.UpdateObserver(c.obs, realTime, simTime)
	if c.recorder != nil {
		c.recorder.ActionUpdated(name)
	}
	if !done {
		return false
	}

	c.active = nil
	if c.recorder != nil {
		c.recorder.ActionCompleted(name)
	}
	c.log.Debug(context.Background(), "observer action completed",
		logging.String("action", name),
		logging.Float64("real_time", realTime),
		logging.Float64("sim_time", simTime),
	)
	return true
}
