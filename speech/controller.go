package speech

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State of the playback controller.
type State int

const (
	StateIdle State = iota
	StateSpeaking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	DefaultPlayLabel = "Play Description"
	DefaultStopLabel = "Stop Description"
)

// Button is the control which label reflects playback state.
type Button interface {
	SetText(text string)
}

// Utterance is a single narration task.
type Utterance struct {
	ID    uuid.UUID
	Text  string
	Voice *Voice
	// OnEnd is called by engine when task ends either naturally or because
	// it was cancelled. Calling it more than once is harmless.
	OnEnd func()
}

// Engine performs narration. Speak begins asynchronous narration and returns
// immediately. Cancel requests termination of the current task, confirmation
// comes later through Utterance.OnEnd which may be called from any
// goroutine.
type Engine interface {
	Speak(u *Utterance) error
	Cancel()
}

// Controller is the play/stop toggle. There is at most one narration task in
// flight at any time.
type Controller struct {
	engine    Engine
	voices    *Selector
	log       *zap.Logger
	playLabel string
	stopLabel string
	observer  func(State)

	toggle sync.Mutex // serializes toggles

	mu         sync.Mutex
	state      State
	current    *Utterance
	button     Button
	generation uint64
}

type ControllerOption func(*Controller)

// WithLabels sets button labels for both states.
func WithLabels(play, stop string) ControllerOption {
	return func(c *Controller) {
		if len(play) > 0 {
			c.playLabel = play
		}
		if len(stop) > 0 {
			c.stopLabel = stop
		}
	}
}

// WithObserver registers function called after every state transition. It
// is called without internal locks held.
func WithObserver(fn func(State)) ControllerOption {
	return func(c *Controller) {
		c.observer = fn
	}
}

// NewController returns idle controller. Selector may be nil, engine default
// voice is used then.
func NewController(engine Engine, voices *Selector, log *zap.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		engine:    engine,
		voices:    voices,
		log:       log,
		playLabel: DefaultPlayLabel,
		stopLabel: DefaultStopLabel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns narration task in flight, if any.
func (c *Controller) Current() (Utterance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return Utterance{}, false
	}
	return *c.current, true
}

// Toggle starts narration of text when idle and stops narration in flight
// otherwise. It returns the state controller ended up in. Error is only
// returned when engine refused to start narration, controller stays idle.
func (c *Controller) Toggle(text string, button Button) (State, error) {
	c.toggle.Lock()
	defer c.toggle.Unlock()

	if c.stop(button) {
		return StateIdle, nil
	}
	return c.start(text, button)
}

// Stop cancels narration in flight, if any.
func (c *Controller) Stop() {
	c.toggle.Lock()
	defer c.toggle.Unlock()

	c.stop(nil)
}

func (c *Controller) start(text string, button Button) (State, error) {
	u := &Utterance{ID: uuid.New(), Text: text}
	if c.voices != nil {
		if v, ok := c.voices.Selected(); ok {
			u.Voice = &v
		}
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	u.OnEnd = func() { c.finish(gen) }
	c.state, c.current, c.button = StateSpeaking, u, button
	button.SetText(c.stopLabel)
	c.mu.Unlock()

	log := c.log.With(zap.Stringer("task", u.ID))
	if u.Voice != nil {
		log.Debug("Starting narration", zap.Stringer("voice", *u.Voice), zap.Int("length", len(text)))
	} else {
		log.Debug("Starting narration with default voice", zap.Int("length", len(text)))
	}
	c.notify(StateSpeaking)

	if err := c.engine.Speak(u); err != nil {
		c.mu.Lock()
		reverted := c.generation == gen
		if reverted {
			c.generation++
			c.state, c.current, c.button = StateIdle, nil, nil
			button.SetText(c.playLabel)
		}
		c.mu.Unlock()
		if reverted {
			c.notify(StateIdle)
		}
		return StateIdle, fmt.Errorf("unable to start narration: %w", err)
	}
	return StateSpeaking, nil
}

// stop moves controller to idle first so any completion arriving later is
// recognized as stale, then asks engine to cancel. It reports false when
// there was nothing to stop, narration may have ended on its own already.
func (c *Controller) stop(button Button) bool {
	c.mu.Lock()
	if c.state != StateSpeaking || c.current == nil {
		c.mu.Unlock()
		return false
	}
	c.generation++
	id := c.current.ID
	if button == nil {
		button = c.button
	}
	c.state, c.current, c.button = StateIdle, nil, nil
	if button != nil {
		button.SetText(c.playLabel)
	}
	c.mu.Unlock()

	c.log.Debug("Cancelling narration", zap.Stringer("task", id))
	c.notify(StateIdle)
	c.engine.Cancel()
	return true
}

func (c *Controller) finish(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.state != StateSpeaking || c.current == nil {
		c.mu.Unlock()
		c.log.Debug("Ignoring stale narration completion")
		return
	}
	id := c.current.ID
	button := c.button
	c.generation++
	c.state, c.current, c.button = StateIdle, nil, nil
	if button != nil {
		button.SetText(c.playLabel)
	}
	c.mu.Unlock()

	c.log.Debug("Narration ended", zap.Stringer("task", id))
	c.notify(StateIdle)
}

func (c *Controller) notify(s State) {
	if c.observer != nil {
		c.observer(s)
	}
}
