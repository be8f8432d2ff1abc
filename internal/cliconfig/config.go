package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/aisdecoder/internal/domain"
	"github.com/bft-labs/aisdecoder/pkg/log"
)

// Bus kinds.
const (
	BusMQTT = "mqtt"
	BusNATS = "nats"
)

// ClientIDPrefix prefixes generated client ids.
const ClientIDPrefix = "aisdecoder-"

// Config holds CLI configuration for aisdecoder.
type Config struct {
	Bus        string
	BrokerHost string
	BrokerPort int
	ClientID   string
	Transport  string
	TLS        bool
	Username   string
	Password   string

	InputTopic      string
	OutputBaseTopic string

	QoS            int
	PublishTimeout time.Duration
	ConnectTimeout time.Duration
	QueueSize      int

	MaxPending     int
	MaxPendingAge  time.Duration
	IgnoreChecksum bool

	LogLevel     string
	LogFormat    string
	LogFile      string
	LogMaxSizeMB int

	MetricsAddr string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Bus:            BusMQTT,
		BrokerPort:     1883,
		Transport:      "tcp",
		PublishTimeout: 5 * time.Second,
		ConnectTimeout: 10 * time.Second,
		QueueSize:      256,
		LogLevel:       "warn",
		LogFormat:      log.FormatConsole,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
// Errors wrap domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	c.Bus = strings.ToLower(c.Bus)
	if c.Bus != BusMQTT && c.Bus != BusNATS {
		return fmt.Errorf("bus must be %q or %q, got %q", BusMQTT, BusNATS, c.Bus)
	}

	if c.BrokerHost == "" {
		return fmt.Errorf("broker-host is required")
	}
	if c.BrokerPort <= 0 || c.BrokerPort > 65535 {
		return fmt.Errorf("broker-port out of range: %d", c.BrokerPort)
	}

	c.Transport = strings.ToLower(c.Transport)
	if c.Transport != "tcp" && c.Transport != "websockets" {
		return fmt.Errorf("transport must be tcp or websockets, got %q", c.Transport)
	}
	if c.Bus == BusNATS && c.Transport != "tcp" {
		return fmt.Errorf("transport %q is not supported on nats", c.Transport)
	}

	if c.InputTopic == "" {
		return fmt.Errorf("input-topic is required")
	}
	if strings.TrimRight(c.OutputBaseTopic, "/") == "" {
		return fmt.Errorf("output-base-topic is required")
	}

	if c.QoS < 0 || c.QoS > 2 {
		return fmt.Errorf("qos must be 0, 1 or 2, got %d", c.QoS)
	}
	if c.PublishTimeout <= 0 {
		return fmt.Errorf("publish timeout must be positive")
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive")
	}
	if c.MaxPending < 0 {
		return fmt.Errorf("max-pending must not be negative")
	}
	if c.MaxPendingAge < 0 {
		return fmt.Errorf("max-pending-age must not be negative")
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "" && c.LogFormat != log.FormatConsole && c.LogFormat != log.FormatJSON {
		return fmt.Errorf("log-format must be %q or %q", log.FormatConsole, log.FormatJSON)
	}

	if c.ClientID == "" {
		c.ClientID = ClientIDPrefix + uuid.NewString()
	}

	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.Password != "" {
		c.Password = "*****"
	}
	return c
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if not nil and flag not changed.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts true/1/yes/on and false/0/no/off in any case.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes", "y", "on":
		*dst = true
	case "false", "0", "no", "n", "off":
		*dst = false
	default:
		return fmt.Errorf("parse %s: invalid boolean %q", flag, value)
	}
	return nil
}
