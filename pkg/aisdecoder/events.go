package aisdecoder

import (
	"time"

	"github.com/bft-labs/aisdecoder/internal/app"
	"github.com/bft-labs/aisdecoder/internal/domain"
	"github.com/bft-labs/aisdecoder/internal/ports"
)

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// PublishEvent describes a successful publish.
type PublishEvent struct {
	Duration time.Duration
}

// PublishErrorEvent describes a failed publish. The record is lost.
type PublishErrorEvent struct {
	Error    error
	Duration time.Duration
}

// EventHandler receives service events. Methods are called synchronously
// from the processing goroutine and must return quickly.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnPublish(PublishEvent)
	OnPublishError(PublishErrorEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to
// handle only the events you need.
type BaseEventHandler struct{}

// OnStateChange does nothing.
func (BaseEventHandler) OnStateChange(StateChangeEvent) {}

// OnPublish does nothing.
func (BaseEventHandler) OnPublish(PublishEvent) {}

// OnPublishError does nothing.
func (BaseEventHandler) OnPublishError(PublishErrorEvent) {}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler  EventHandler
	observer ports.Observer
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if s, ok := e.observer.(interface{ SetServiceState(int) }); ok {
		s.SetServiceState(int(current))
	}
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnDelivery() {
	if e.observer != nil {
		e.observer.OnDelivery()
	}
}

func (e *eventEmitterWrapper) OnOutcome(outcome domain.Outcome) {
	if e.observer != nil {
		e.observer.OnOutcome(outcome)
	}
}

func (e *eventEmitterWrapper) OnPublish(d time.Duration, err error) {
	if e.observer != nil {
		e.observer.OnPublish(d, err)
	}
	if e.handler == nil {
		return
	}
	if err != nil {
		e.handler.OnPublishError(PublishErrorEvent{Error: err, Duration: d})
		return
	}
	e.handler.OnPublish(PublishEvent{Duration: d})
}

func (e *eventEmitterWrapper) OnQueueDrop() {
	if e.observer != nil {
		e.observer.OnQueueDrop()
	}
}
