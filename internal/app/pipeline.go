package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bft-labs/aisdecoder/internal/domain"
	"github.com/bft-labs/aisdecoder/internal/ports"
	"github.com/bft-labs/aisdecoder/pkg/ais"
	"github.com/bft-labs/aisdecoder/pkg/reassembly"
)

// DefaultPublishTimeout bounds a single publish when none is configured.
const DefaultPublishTimeout = 5 * time.Second

// PipelineConfig contains configuration for the processing pipeline.
type PipelineConfig struct {
	// OutputBaseTopic is the prefix of every outbound topic.
	OutputBaseTopic string

	// PublishTimeout bounds each publish call.
	PublishTimeout time.Duration

	// Now returns the time stamped on outbound envelopes.
	// Defaults to time.Now.
	Now func() time.Time
}

// Pipeline turns inbound envelopes into published records. It owns the
// reassembly buffer; Handle and Run must be called from one goroutine.
type Pipeline struct {
	config      PipelineConfig
	codec       ports.EnvelopeCodec
	reassembler *reassembly.Reassembler
	decoder     ports.RecordDecoder
	router      Router
	publisher   ports.Publisher
	logger      ports.Logger
	observer    ports.Observer
	processing  atomic.Bool
}

// NewPipeline creates a pipeline with the given dependencies.
// A nil observer is replaced with one that ignores events.
func NewPipeline(
	config PipelineConfig,
	codec ports.EnvelopeCodec,
	reassembler *reassembly.Reassembler,
	decoder ports.RecordDecoder,
	publisher ports.Publisher,
	logger ports.Logger,
	observer ports.Observer,
) *Pipeline {
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = DefaultPublishTimeout
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if observer == nil {
		observer = nopObserver{}
	}

	return &Pipeline{
		config:      config,
		codec:       codec,
		reassembler: reassembler,
		decoder:     decoder,
		router:      NewRouter(config.OutputBaseTopic),
		publisher:   publisher,
		logger:      logger,
		observer:    observer,
	}
}

// Run processes deliveries from in until ctx is canceled or in is closed.
// Returns ctx.Err() on cancellation and nil when in is closed.
func (p *Pipeline) Run(ctx context.Context, in <-chan domain.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-in:
			if !ok {
				return nil
			}
			p.Handle(ctx, d)
		}
	}
}

// Processing reports whether a delivery is being handled right now.
func (p *Pipeline) Processing() bool {
	return p.processing.Load()
}

// Reassembler returns the buffer owned by the pipeline.
func (p *Pipeline) Reassembler() *reassembly.Reassembler {
	return p.reassembler
}

// Handle runs one delivery through every step and reports what happened.
// Failures are logged and absorbed; the next delivery is unaffected.
func (p *Pipeline) Handle(ctx context.Context, d domain.Delivery) domain.Outcome {
	p.processing.Store(true)
	defer p.processing.Store(false)

	p.observer.OnDelivery()
	outcome := p.handle(ctx, d)
	p.observer.OnOutcome(outcome)
	return outcome
}

func (p *Pipeline) handle(ctx context.Context, d domain.Delivery) domain.Outcome {
	// Unwrap the envelope
	line, err := p.decodeEnvelope(d)
	if err != nil {
		p.logger.Debug("dropping envelope",
			ports.Topic(d.Topic),
			ports.Err(err),
		)
		return domain.OutcomeDroppedEnvelope
	}

	// Collect fragments until the sentence is complete
	msg, ok := p.reassemble(line)
	if !ok {
		return domain.OutcomeIncomplete
	}

	// Decode and route
	rec, err := p.decodeRecord(msg)
	if err != nil {
		p.logger.Debug("dropping message",
			ports.Lines(msg.Lines()),
			ports.Err(err),
		)
		return domain.OutcomeDroppedDecode
	}

	out, err := p.encodeOutbound(rec)
	if err != nil {
		p.logger.Debug("dropping record",
			ports.Lines(msg.Lines()),
			ports.Err(err),
		)
		return domain.OutcomeDroppedDecode
	}

	// Hand it to the bus
	if err := p.publish(ctx, out); err != nil {
		p.logger.Error("publish failed",
			ports.Topic(out.Topic),
			ports.Err(err),
		)
		return domain.OutcomePublishFailed
	}

	p.logger.Debug("published record",
		ports.Topic(out.Topic),
		ports.Int("bytes", len(out.Payload)),
	)
	return domain.OutcomePublished
}

// decodeEnvelope extracts the raw sentence line from a delivery.
func (p *Pipeline) decodeEnvelope(d domain.Delivery) ([]byte, error) {
	in, err := p.codec.Decode(d.Payload)
	if err != nil {
		return nil, err
	}
	return in.Payload, nil
}

// reassemble feeds one line to the buffer and returns a complete message
// when the line finishes one.
func (p *Pipeline) reassemble(line []byte) (reassembly.Message, bool) {
	return p.reassembler.Ingest(line)
}

// decodeRecord decodes a complete message into a typed record.
func (p *Pipeline) decodeRecord(msg reassembly.Message) (ais.Record, error) {
	rec, err := p.decoder.Decode(msg)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: decoder returned no record", ais.ErrDecode)
	}
	return rec, nil
}

// encodeOutbound routes rec and wraps it in a fresh envelope.
func (p *Pipeline) encodeOutbound(rec ais.Record) (domain.Outbound, error) {
	topic, err := p.router.Route(rec)
	if err != nil {
		return domain.Outbound{}, err
	}

	payload, err := p.codec.Encode(rec, p.config.Now())
	if err != nil {
		return domain.Outbound{}, fmt.Errorf("%w: encode envelope: %v", ais.ErrDecode, err)
	}

	return domain.Outbound{Topic: topic, Payload: payload}, nil
}

// publish sends out, bounded by the publish timeout.
// The returned error always wraps domain.ErrPublish.
func (p *Pipeline) publish(ctx context.Context, out domain.Outbound) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	start := time.Now()
	err := p.publisher.Publish(ctx, out)
	p.observer.OnPublish(time.Since(start), err)

	if err != nil && !errors.Is(err, domain.ErrPublish) {
		err = fmt.Errorf("%w: %v", domain.ErrPublish, err)
	}
	return err
}

type nopObserver struct{}

func (nopObserver) OnDelivery()                    {}
func (nopObserver) OnOutcome(domain.Outcome)       {}
func (nopObserver) OnPublish(time.Duration, error) {}
func (nopObserver) OnQueueDrop()                   {}
