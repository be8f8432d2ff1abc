package aisdecoder

import (
	"fmt"
	"strings"
	"time"

	"github.com/bft-labs/aisdecoder/internal/domain"
)

// Default configuration values.
const (
	DefaultQueueSize      = 256
	DefaultPublishTimeout = 5 * time.Second
	DefaultConnectTimeout = 10 * time.Second
)

// Config configures a Service.
type Config struct {
	// InputTopic is the topic (or filter) carrying raw sentence envelopes.
	InputTopic string

	// OutputBaseTopic prefixes every outbound topic: {base}/{mmsi}/{type}.
	OutputBaseTopic string

	// QueueSize bounds the deliveries waiting for the pipeline.
	QueueSize int

	// PublishTimeout bounds each publish.
	PublishTimeout time.Duration

	// ConnectTimeout bounds the initial connection and subscription.
	ConnectTimeout time.Duration

	// IgnoreChecksum decodes messages even when a sentence checksum did
	// not match. By default such messages are dropped.
	IgnoreChecksum bool

	// MaxPending caps the incomplete messages held for reassembly.
	// Zero means unbounded.
	MaxPending int

	// MaxPendingAge evicts incomplete messages older than this.
	// Zero means never.
	MaxPendingAge time.Duration

	// ConfigPath is the file the configuration was loaded from, if any.
	// It is handed to plugins.
	ConfigPath string
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = DefaultPublishTimeout
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if c.InputTopic == "" {
		return fmt.Errorf("%w: input topic is required", domain.ErrInvalidConfig)
	}
	if strings.TrimRight(c.OutputBaseTopic, "/") == "" {
		return fmt.Errorf("%w: output base topic is required", domain.ErrInvalidConfig)
	}
	if c.MaxPending < 0 || c.MaxPendingAge < 0 {
		return fmt.Errorf("%w: reassembly bounds must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}
