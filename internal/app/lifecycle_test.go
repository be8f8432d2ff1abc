package app

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bft-labs/aisdecoder/internal/domain"
	"github.com/bft-labs/aisdecoder/internal/ports"
)

// warnLogger keeps warning messages and drops everything else.
type warnLogger struct {
	mu    sync.Mutex
	warns []string
}

func (*warnLogger) Debug(string, ...ports.Field) {}
func (*warnLogger) Info(string, ...ports.Field)  {}
func (*warnLogger) Error(string, ...ports.Field) {}

func (l *warnLogger) Warn(msg string, _ ...ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

type transition struct {
	From, To State
	Reason   string
}

// transitionLog records what the lifecycle emits.
type transitionLog struct {
	mu   sync.Mutex
	seen []transition
}

func (r *transitionLog) OnStateChange(previous, current State, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, transition{previous, current, reason})
}

func (r *transitionLog) all() []transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.seen)
}

// lifecycleAt walks the allowed edges from StateStopped to target.
func lifecycleAt(t *testing.T, target State, emitter EventEmitter) *Lifecycle {
	t.Helper()
	paths := map[State][]State{
		StateStopped:  nil,
		StateStarting: {StateStarting},
		StateRunning:  {StateStarting, StateRunning},
		StateStopping: {StateStarting, StateRunning, StateStopping},
		StateCrashed:  {StateStarting, StateCrashed},
	}
	l := NewLifecycle(&warnLogger{}, emitter)
	for _, s := range paths[target] {
		if err := l.TransitionTo(s, "setup"); err != nil {
			t.Fatalf("setup %v: %v", s, err)
		}
	}
	return l
}

var allStates = []State{StateStopped, StateStarting, StateRunning, StateStopping, StateCrashed}

func TestLifecycle_TransitionTable(t *testing.T) {
	for _, from := range allStates {
		for _, to := range allStates {
			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				l := lifecycleAt(t, from, nil)
				err := l.TransitionTo(to, "table")

				switch {
				case slices.Contains(allowed[from], to):
					if err != nil {
						t.Fatalf("TransitionTo = %v, want nil", err)
					}
					if l.State() != to {
						t.Errorf("state = %v, want %v", l.State(), to)
					}
				case from == StateStopped || from == StateCrashed:
					if !errors.Is(err, domain.ErrNotRunning) {
						t.Errorf("TransitionTo = %v, want ErrNotRunning", err)
					}
				default:
					if !errors.Is(err, domain.ErrAlreadyRunning) {
						t.Errorf("TransitionTo = %v, want ErrAlreadyRunning", err)
					}
				}
				if err != nil && l.State() != from {
					t.Errorf("rejected move changed state to %v", l.State())
				}
			})
		}
	}
}

func TestLifecycle_StartStopGuards(t *testing.T) {
	tests := []struct {
		state    State
		canStart bool
		canStop  bool
	}{
		{StateStopped, true, false},
		{StateStarting, false, true},
		{StateRunning, false, true},
		{StateStopping, false, false},
		{StateCrashed, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			l := lifecycleAt(t, tt.state, nil)
			if got := l.CanStart(); got != tt.canStart {
				t.Errorf("CanStart = %v, want %v", got, tt.canStart)
			}
			if got := l.CanStop(); got != tt.canStop {
				t.Errorf("CanStop = %v, want %v", got, tt.canStop)
			}
		})
	}
}

func TestLifecycle_CrashThenRestartClearsErr(t *testing.T) {
	events := &transitionLog{}
	l := lifecycleAt(t, StateRunning, events)

	boom := errors.New("broker went away")
	l.Crash(boom)

	if l.State() != StateCrashed {
		t.Fatalf("state = %v, want Crashed", l.State())
	}
	if !errors.Is(l.Err(), boom) {
		t.Fatalf("Err = %v, want %v", l.Err(), boom)
	}

	if err := l.TransitionTo(StateStarting, "restart"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if l.Err() != nil {
		t.Errorf("Err after restart = %v, want nil", l.Err())
	}

	want := []transition{
		{StateStopped, StateStarting, "setup"},
		{StateStarting, StateRunning, "setup"},
		{StateRunning, StateCrashed, "broker went away"},
		{StateCrashed, StateStarting, "restart"},
	}
	if diff := cmp.Diff(want, events.all()); diff != "" {
		t.Errorf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestLifecycle_CrashWhileStopped(t *testing.T) {
	events := &transitionLog{}
	l := lifecycleAt(t, StateStopped, events)

	l.Crash(errors.New("late failure"))

	if l.State() != StateStopped {
		t.Errorf("state = %v, want Stopped", l.State())
	}
	if l.Err() == nil {
		t.Error("Err = nil, want the recorded error")
	}
	if got := events.all(); len(got) != 0 {
		t.Errorf("transitions = %v, want none", got)
	}
}

func TestLifecycle_StopCancelsWorkers(t *testing.T) {
	l := lifecycleAt(t, StateRunning, nil)

	ctx, cancel := context.WithCancel(context.Background())
	l.SetCancel(cancel)

	var mu sync.Mutex
	var exits []error
	for i := 0; i < 3; i++ {
		l.Go(func() {
			<-ctx.Done()
			mu.Lock()
			exits = append(exits, ctx.Err())
			mu.Unlock()
		})
	}

	l.Cancel()
	if err := l.WaitWithTimeout(time.Second); err != nil {
		t.Fatalf("WaitWithTimeout = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(exits) != 3 {
		t.Fatalf("%d workers exited, want 3", len(exits))
	}
	for _, err := range exits {
		if !errors.Is(err, context.Canceled) {
			t.Errorf("worker saw %v, want context.Canceled", err)
		}
	}
}

func TestLifecycle_WaitTimesOut(t *testing.T) {
	logger := &warnLogger{}
	l := NewLifecycle(logger, nil)

	release := make(chan struct{})
	defer close(release)
	l.Go(func() { <-release })

	// Cancel without a stored cancel func is a no-op.
	l.Cancel()

	if err := l.WaitWithTimeout(10 * time.Millisecond); !errors.Is(err, domain.ErrShutdownTimeout) {
		t.Fatalf("WaitWithTimeout = %v, want ErrShutdownTimeout", err)
	}
	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.warns) != 1 {
		t.Errorf("warnings = %v, want one", logger.warns)
	}
}

func TestState_String(t *testing.T) {
	var got []string
	for _, s := range append(allStates, State(42), State(-1)) {
		got = append(got, s.String())
	}
	want := []string{"Stopped", "Starting", "Running", "Stopping", "Crashed", "Unknown", "Unknown"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("String mismatch (-want +got):\n%s", diff)
	}
}
