package app

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/bft-labs/aisdecoder/internal/domain"
	"github.com/bft-labs/aisdecoder/internal/ports"
)

// ShutdownTimeout bounds how long Stop waits for the processing goroutine.
const ShutdownTimeout = 30 * time.Second

// State is a step of the service state machine.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

var stateNames = [...]string{
	StateStopped:  "Stopped",
	StateStarting: "Starting",
	StateRunning:  "Running",
	StateStopping: "Stopping",
	StateCrashed:  "Crashed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// idle reports whether s has no processing goroutine.
func (s State) idle() bool {
	return s == StateStopped || s == StateCrashed
}

// allowed lists the legal targets for each state.
var allowed = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateStopping, StateCrashed},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStarting},
}

// EventEmitter receives every accepted transition.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle guards the service state, remembers the error of the last
// crash and tracks the processing goroutine so Stop can wait for it.
type Lifecycle struct {
	mu      sync.RWMutex
	state   State
	lastErr error
	cancel  context.CancelFunc

	workers sync.WaitGroup
	logger  ports.Logger
	emitter EventEmitter
}

// NewLifecycle returns a Lifecycle in StateStopped. emitter may be nil.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{logger: logger, emitter: emitter}
}

func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Err returns the error of the last crash. It is cleared when the
// service starts again.
func (l *Lifecycle) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastErr
}

// TransitionTo moves to next if allowed lists it for the current state.
// A rejected move out of an idle state returns ErrNotRunning, any other
// rejected move returns ErrAlreadyRunning.
func (l *Lifecycle) TransitionTo(next State, reason string) error {
	l.mu.Lock()
	prev := l.state
	if !slices.Contains(allowed[prev], next) {
		l.mu.Unlock()
		if prev.idle() {
			return domain.ErrNotRunning
		}
		return domain.ErrAlreadyRunning
	}
	l.state = next
	if next == StateStarting {
		l.lastErr = nil
	}
	l.mu.Unlock()

	if l.emitter != nil {
		l.emitter.OnStateChange(prev, next, reason)
	}
	l.logger.Info("state transition",
		ports.String("from", prev.String()),
		ports.String("to", next.String()),
		ports.String("reason", reason),
	)
	return nil
}

// Crash records err and moves to StateCrashed.
func (l *Lifecycle) Crash(err error) {
	l.mu.Lock()
	l.lastErr = err
	l.mu.Unlock()

	if tErr := l.TransitionTo(StateCrashed, err.Error()); tErr != nil {
		l.logger.Error("crash from unexpected state",
			ports.Err(err),
			ports.String("state", l.State().String()))
	}
}

// CanStart reports whether Start may be called.
func (l *Lifecycle) CanStart() bool {
	return l.State().idle()
}

// CanStop reports whether Stop may be called.
func (l *Lifecycle) CanStop() bool {
	s := l.State()
	return s == StateStarting || s == StateRunning
}

// SetCancel stores the function that cancels the current run.
func (l *Lifecycle) SetCancel(cancel context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel = cancel
}

// Cancel cancels the current run, if any.
func (l *Lifecycle) Cancel() {
	l.mu.RLock()
	cancel := l.cancel
	l.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
}

// Go runs fn on a goroutine that WaitWithTimeout waits for.
func (l *Lifecycle) Go(fn func()) {
	l.workers.Add(1)
	go func() {
		defer l.workers.Done()
		fn()
	}()
}

// WaitWithTimeout blocks until every Go function returned or timeout
// elapsed, in which case it returns ErrShutdownTimeout.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.workers.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		l.logger.Warn("processing did not stop in time",
			ports.Duration("timeout", timeout))
		return domain.ErrShutdownTimeout
	}
}
