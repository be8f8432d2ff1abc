package aisdecoder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/aisdecoder/internal/app"
	"github.com/bft-labs/aisdecoder/internal/domain"
	"github.com/bft-labs/aisdecoder/internal/ports"
	"github.com/bft-labs/aisdecoder/pkg/ais"
	"github.com/bft-labs/aisdecoder/pkg/envelope"
	"github.com/bft-labs/aisdecoder/pkg/log"
	"github.com/bft-labs/aisdecoder/pkg/reassembly"
)

// Lifecycle errors, re-exported for callers outside the module.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrConnection      = domain.ErrConnection
	ErrPublish         = domain.ErrPublish
)

// Stats is a snapshot of the service counters.
type Stats struct {
	State      State
	Processing bool
	Queued     int
	Reassembly reassembly.Stats
}

// Service consumes sentence envelopes from the bus, reassembles and
// decodes them, and publishes one record per complete message.
// Use New() to create an instance, then Start() to begin processing.
type Service struct {
	config    Config
	lifecycle *app.Lifecycle
	pipeline  *app.Pipeline
	bus       ports.Bus
	logger    ports.Logger
	plugins   []Plugin

	mu    sync.RWMutex
	queue chan domain.Delivery
	done  chan struct{}
}

// New creates a new Service with the given configuration.
// The instance is created in StateStopped; call Start() to begin processing.
// Returns an error if the configuration is invalid or no bus is set.
func New(cfg Config, opts ...Option) (*Service, error) {
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.bus == nil {
		return nil, fmt.Errorf("%w: a bus is required", domain.ErrInvalidConfig)
	}

	var logger ports.Logger
	if o.logger != nil {
		logger = o.logger
	} else {
		logger = log.NewNoopLogger()
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler, observer: o.observer}
	lifecycle := app.NewLifecycle(logger, emitter)

	ropts := o.reassembly
	if ropts.MaxPending == 0 {
		ropts.MaxPending = cfg.MaxPending
	}
	if ropts.MaxAge == 0 {
		ropts.MaxAge = cfg.MaxPendingAge
	}
	if ropts.Logger == nil {
		ropts.Logger = logger
	}

	pipeline := app.NewPipeline(
		app.PipelineConfig{
			OutputBaseTopic: cfg.OutputBaseTopic,
			PublishTimeout:  cfg.PublishTimeout,
		},
		envelope.Codec{},
		reassembly.New(ropts),
		ais.Decoder{IgnoreChecksum: cfg.IgnoreChecksum},
		o.bus,
		logger,
		emitter,
	)

	return &Service{
		config:    cfg,
		lifecycle: lifecycle,
		pipeline:  pipeline,
		bus:       o.bus,
		logger:    logger,
		plugins:   o.plugins,
	}, nil
}

// Start connects to the bus, subscribes to the input topic and begins
// processing in the background. It returns once the subscription is
// active. A connection failure wraps ErrConnection and leaves the service
// in StateCrashed.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}

	if err := s.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		ConfigPath:      s.config.ConfigPath,
		InputTopic:      s.config.InputTopic,
		OutputBaseTopic: s.config.OutputBaseTopic,
		Logger:          s.logger,
	}
	for i, p := range s.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			s.shutdownPlugins(s.plugins[:i])
			cancel()
			s.lifecycle.Crash(err)
			return err
		}
		s.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	fail := func(err error) error {
		cancel()
		_ = s.bus.Close()
		s.shutdownPlugins(s.plugins)
		s.lifecycle.Crash(err)
		return err
	}

	connectCtx, connectCancel := context.WithTimeout(runCtx, s.config.ConnectTimeout)
	defer connectCancel()

	if err := s.bus.Connect(connectCtx); err != nil {
		s.logger.Error("connection failed", ports.Err(err))
		if !errors.Is(err, domain.ErrConnection) {
			err = fmt.Errorf("%w: %w", domain.ErrConnection, err)
		}
		return fail(err)
	}

	queue := make(chan domain.Delivery, s.config.QueueSize)
	if err := s.bus.Subscribe(connectCtx, s.config.InputTopic, queue); err != nil {
		s.logger.Error("subscribe failed",
			ports.Topic(s.config.InputTopic),
			ports.Err(err))
		if !errors.Is(err, domain.ErrConnection) {
			err = fmt.Errorf("%w: %w", domain.ErrConnection, err)
		}
		return fail(err)
	}

	if err := s.lifecycle.TransitionTo(app.StateRunning, "subscribed"); err != nil {
		return fail(err)
	}
	s.logger.Info("processing started",
		ports.String("input_topic", s.config.InputTopic),
		ports.String("output_base_topic", s.config.OutputBaseTopic))

	done := make(chan struct{})
	s.queue = queue
	s.done = done

	s.lifecycle.Go(func() {
		defer close(done)

		err := s.pipeline.Run(runCtx, queue)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("pipeline stopped", ports.Err(err))
			_ = s.bus.Close()
			s.lifecycle.Crash(err)
		}
	})

	return nil
}

// Stop cancels processing, waits for the in-flight delivery, closes the
// bus and shuts plugins down in reverse order.
// Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (s *Service) Stop() error {
	s.mu.Lock()

	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}

	if err := s.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}

	s.lifecycle.Cancel()
	s.mu.Unlock()

	err := s.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	if closeErr := s.bus.Close(); closeErr != nil {
		s.logger.Warn("bus close failed", ports.Err(closeErr))
	}

	s.shutdownPlugins(s.plugins)

	if err != nil {
		s.lifecycle.Crash(err)
	} else {
		_ = s.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}

	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Service) Status() State {
	return convertState(s.lifecycle.State())
}

// Err returns the error that last crashed the service, if any.
func (s *Service) Err() error {
	return s.lifecycle.Err()
}

// Stats returns a snapshot of the service counters.
// Safe to call concurrently from any goroutine.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	queued := len(s.queue)
	s.mu.RUnlock()

	return Stats{
		State:      s.Status(),
		Processing: s.pipeline.Processing(),
		Queued:     queued,
		Reassembly: s.pipeline.Reassembler().Stats(),
	}
}

// ReassemblyStats returns the reassembly buffer counters. It matches the
// signature the metrics adapter scrapes.
func (s *Service) ReassemblyStats() reassembly.Stats {
	return s.pipeline.Reassembler().Stats()
}

// Done returns a channel closed when the processing goroutine of the
// current run exits. It is nil before the first successful Start.
func (s *Service) Done() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done
}

// Handle runs one delivery through the pipeline synchronously. It must not
// be called while the service is running.
func (s *Service) Handle(ctx context.Context, d Delivery) Outcome {
	return s.pipeline.Handle(ctx, d)
}

func (s *Service) shutdownPlugins(plugins []Plugin) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			s.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
		} else {
			s.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}
}
