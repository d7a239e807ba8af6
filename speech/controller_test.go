package speech

import (
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type label struct {
	mu   sync.Mutex
	text string
}

func (l *label) SetText(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.text = text
}

func (l *label) Text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.text
}

// fakeEngine keeps started tasks, completions are triggered by tests.
type fakeEngine struct {
	mu        sync.Mutex
	started   []*Utterance
	cancelled int
	err       error
	// onCancel runs after cancellation is recorded, engine locks released.
	onCancel func()
}

func (e *fakeEngine) Speak(u *Utterance) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.started = append(e.started, u)
	return nil
}

func (e *fakeEngine) Cancel() {
	e.mu.Lock()
	e.cancelled++
	hook := e.onCancel
	e.mu.Unlock()

	if hook != nil {
		hook()
	}
}

func (e *fakeEngine) task(t *testing.T, i int) *Utterance {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	if i >= len(e.started) {
		t.Fatalf("task %d was never started", i)
	}
	return e.started[i]
}

func (e *fakeEngine) latest(t *testing.T) *Utterance {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.started) == 0 {
		t.Fatal("no task was started")
	}
	return e.started[len(e.started)-1]
}

func TestController_ToggleCycle(t *testing.T) {
	engine := &fakeEngine{}
	ctrl := NewController(engine, nil, zaptest.NewLogger(t))
	button := &label{text: DefaultPlayLabel}

	if ctrl.State() != StateIdle {
		t.Fatalf("initial state = %s", ctrl.State())
	}

	state, err := ctrl.Toggle("Item Number: SCP-173\n", button)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if state != StateSpeaking || button.Text() != DefaultStopLabel {
		t.Fatalf("after first toggle: state %s, label %q", state, button.Text())
	}
	cur, ok := ctrl.Current()
	if !ok || cur.Text != "Item Number: SCP-173\n" {
		t.Fatalf("Current() = %v, %v", cur, ok)
	}

	state, err = ctrl.Toggle("ignored", button)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if state != StateIdle || button.Text() != DefaultPlayLabel {
		t.Fatalf("after second toggle: state %s, label %q", state, button.Text())
	}
	if engine.cancelled != 1 {
		t.Errorf("engine cancelled %d times, want 1", engine.cancelled)
	}
	if _, ok := ctrl.Current(); ok {
		t.Error("task must be cleared after cancel")
	}

	// late completion of the cancelled task
	button.SetText("untouched")
	engine.task(t, 0).OnEnd()
	if ctrl.State() != StateIdle || button.Text() != "untouched" {
		t.Errorf("late completion changed controller: state %s, label %q", ctrl.State(), button.Text())
	}
}

func TestController_NaturalCompletion(t *testing.T) {
	engine := &fakeEngine{}
	ctrl := NewController(engine, nil, zaptest.NewLogger(t), WithLabels("Play", "Stop"))
	button := &label{}

	if _, err := ctrl.Toggle("text", button); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if button.Text() != "Stop" {
		t.Fatalf("label = %q, want Stop", button.Text())
	}

	engine.task(t, 0).OnEnd()
	if ctrl.State() != StateIdle || button.Text() != "Play" {
		t.Fatalf("after completion: state %s, label %q", ctrl.State(), button.Text())
	}
	if engine.cancelled != 0 {
		t.Error("natural completion must not cancel engine")
	}

	// repeated completion is harmless
	engine.task(t, 0).OnEnd()
	if ctrl.State() != StateIdle {
		t.Errorf("state = %s", ctrl.State())
	}
}

func TestController_StaleCompletionAfterRestart(t *testing.T) {
	engine := &fakeEngine{}
	ctrl := NewController(engine, nil, zaptest.NewLogger(t))
	button := &label{}

	for range 3 {
		if _, err := ctrl.Toggle("text", button); err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
	}
	// start, stop, start: the first task is stale, the second one is live
	if ctrl.State() != StateSpeaking {
		t.Fatalf("state = %s, want speaking", ctrl.State())
	}
	first, second := engine.task(t, 0), engine.task(t, 1)
	if first.ID == second.ID {
		t.Fatal("tasks must have distinct ids")
	}

	first.OnEnd()
	if ctrl.State() != StateSpeaking || button.Text() != DefaultStopLabel {
		t.Fatalf("stale completion ended live narration: state %s, label %q", ctrl.State(), button.Text())
	}

	second.OnEnd()
	if ctrl.State() != StateIdle || button.Text() != DefaultPlayLabel {
		t.Errorf("state %s, label %q", ctrl.State(), button.Text())
	}
}

func TestController_SpeakError(t *testing.T) {
	engine := &fakeEngine{err: errors.New("no synthesizer")}
	ctrl := NewController(engine, nil, zaptest.NewLogger(t))
	button := &label{}

	state, err := ctrl.Toggle("text", button)
	if err == nil {
		t.Fatal("expected error")
	}
	if state != StateIdle || ctrl.State() != StateIdle || button.Text() != DefaultPlayLabel {
		t.Errorf("state %s/%s, label %q", state, ctrl.State(), button.Text())
	}
}

func TestController_SelectedVoice(t *testing.T) {
	engine := &fakeEngine{}
	sel := newSelector(t)
	sel.OnVoicesChanged([]Voice{{Name: "Karen", Lang: "en-AU"}})
	ctrl := NewController(engine, sel, zaptest.NewLogger(t))

	if _, err := ctrl.Toggle("text", &label{}); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	u := engine.task(t, 0)
	if u.Voice == nil || u.Voice.Name != "Karen" {
		t.Errorf("task voice = %v, want Karen", u.Voice)
	}
	ctrl.Stop()

	sel.OnVoicesChanged(nil)
	if _, err := ctrl.Toggle("text", &label{}); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if u := engine.task(t, 1); u.Voice != nil {
		t.Errorf("task voice = %v, want engine default", u.Voice)
	}
}

func TestController_StopAndObserver(t *testing.T) {
	engine := &fakeEngine{}
	var states []State
	ctrl := NewController(engine, nil, zaptest.NewLogger(t), WithObserver(func(s State) { states = append(states, s) }))
	button := &label{}

	ctrl.Stop()
	if engine.cancelled != 0 || len(states) != 0 {
		t.Fatal("Stop() on idle controller must do nothing")
	}

	if _, err := ctrl.Toggle("text", button); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	ctrl.Stop()
	if ctrl.State() != StateIdle || button.Text() != DefaultPlayLabel || engine.cancelled != 1 {
		t.Errorf("after Stop(): state %s, label %q, cancelled %d", ctrl.State(), button.Text(), engine.cancelled)
	}
	if len(states) != 2 || states[0] != StateSpeaking || states[1] != StateIdle {
		t.Errorf("observed %v", states)
	}
}

func TestController_CompletionRacingStop(t *testing.T) {
	tests := []struct {
		name string
		// stop is called with the live task, it must leave controller idle
		stop func(t *testing.T, ctrl *Controller, engine *fakeEngine, u *Utterance, button *label)
	}{
		{
			name: "completion before stop",
			stop: func(t *testing.T, ctrl *Controller, engine *fakeEngine, u *Utterance, button *label) {
				u.OnEnd()
				ctrl.Stop()
			},
		},
		{
			name: "completion while engine cancels",
			stop: func(t *testing.T, ctrl *Controller, engine *fakeEngine, u *Utterance, button *label) {
				engine.onCancel = u.OnEnd
				if st, err := ctrl.Toggle("ignored", button); err != nil || st != StateIdle {
					t.Fatalf("Toggle() = %s, %v", st, err)
				}
			},
		},
		{
			name: "completion after cancel",
			stop: func(t *testing.T, ctrl *Controller, engine *fakeEngine, u *Utterance, button *label) {
				if st, err := ctrl.Toggle("ignored", button); err != nil || st != StateIdle {
					t.Fatalf("Toggle() = %s, %v", st, err)
				}
				u.OnEnd()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{}
			var idle int
			ctrl := NewController(engine, nil, zaptest.NewLogger(t), WithObserver(func(s State) {
				if s == StateIdle {
					idle++
				}
			}))
			button := &label{}

			if _, err := ctrl.Toggle("text", button); err != nil {
				t.Fatalf("Toggle() error = %v", err)
			}
			tt.stop(t, ctrl, engine, engine.task(t, 0), button)

			if ctrl.State() != StateIdle || button.Text() != DefaultPlayLabel {
				t.Errorf("state %s, label %q", ctrl.State(), button.Text())
			}
			if _, ok := ctrl.Current(); ok {
				t.Error("task must be cleared")
			}
			if idle != 1 {
				t.Errorf("observed %d transitions to idle, want 1", idle)
			}
		})
	}
}

func TestController_ConcurrentCompletion(t *testing.T) {
	const rounds = 2000

	for _, viaToggle := range []bool{false, true} {
		engine := &fakeEngine{}
		ctrl := NewController(engine, nil, zaptest.NewLogger(t))
		button := &label{}

		for i := range rounds {
			if _, err := ctrl.Toggle("text", button); err != nil {
				t.Fatalf("round %d: Toggle() error = %v", i, err)
			}
			u := engine.latest(t)

			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				u.OnEnd()
			}()
			go func() {
				defer wg.Done()
				if viaToggle {
					// when completion wins this starts next narration
					if _, err := ctrl.Toggle("text", button); err != nil {
						t.Errorf("round %d: Toggle() error = %v", i, err)
					}
					return
				}
				ctrl.Stop()
			}()
			wg.Wait()

			// settle restarted narration so every round begins idle
			ctrl.Stop()
			if ctrl.State() != StateIdle || button.Text() != DefaultPlayLabel {
				t.Fatalf("round %d: state %s, label %q", i, ctrl.State(), button.Text())
			}
		}
	}
}

func TestState_String(t *testing.T) {
	if StateIdle.String() != "idle" || StateSpeaking.String() != "speaking" || State(5).String() != "State(5)" {
		t.Error("unexpected state names")
	}
}
