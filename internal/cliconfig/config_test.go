package cliconfig

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bft-labs/aisdecoder/internal/domain"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.BrokerHost = "localhost"
	cfg.InputTopic = "ais/raw"
	cfg.OutputBaseTopic = "ais/decoded"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Bus != BusMQTT {
		t.Errorf("Bus = %v, want mqtt", cfg.Bus)
	}
	if cfg.BrokerPort != 1883 {
		t.Errorf("BrokerPort = %v, want 1883", cfg.BrokerPort)
	}
	if cfg.Transport != "tcp" {
		t.Errorf("Transport = %v, want tcp", cfg.Transport)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %v, want warn", cfg.LogLevel)
	}
	if cfg.QueueSize != 256 {
		t.Errorf("QueueSize = %v, want 256", cfg.QueueSize)
	}
	if cfg.MaxPending != 0 || cfg.MaxPendingAge != 0 {
		t.Errorf("reassembly bounds = %d/%v, want disabled", cfg.MaxPending, cfg.MaxPendingAge)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid minimal config", func(c *Config) {}, false},
		{"nats bus", func(c *Config) { c.Bus = "NATS"; c.BrokerPort = 4222 }, false},
		{"websockets transport", func(c *Config) { c.Transport = "websockets" }, false},
		{"unknown bus", func(c *Config) { c.Bus = "kafka" }, true},
		{"missing host", func(c *Config) { c.BrokerHost = "" }, true},
		{"port out of range", func(c *Config) { c.BrokerPort = 70000 }, true},
		{"unknown transport", func(c *Config) { c.Transport = "quic" }, true},
		{"websockets on nats", func(c *Config) { c.Bus = BusNATS; c.Transport = "websockets" }, true},
		{"missing input topic", func(c *Config) { c.InputTopic = "" }, true},
		{"missing output base", func(c *Config) { c.OutputBaseTopic = "" }, true},
		{"output base only slash", func(c *Config) { c.OutputBaseTopic = "/" }, true},
		{"qos too high", func(c *Config) { c.QoS = 3 }, true},
		{"zero publish timeout", func(c *Config) { c.PublishTimeout = 0 }, true},
		{"zero connect timeout", func(c *Config) { c.ConnectTimeout = 0 }, true},
		{"zero queue", func(c *Config) { c.QueueSize = 0 }, true},
		{"negative max pending", func(c *Config) { c.MaxPending = -1 }, true},
		{"negative max age", func(c *Config) { c.MaxPendingAge = -time.Second }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"uppercase log level name", func(c *Config) { c.LogLevel = "WARNING" }, false},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_Validate_GeneratesClientID(t *testing.T) {
	a := validConfig()
	b := validConfig()
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if !strings.HasPrefix(a.ClientID, ClientIDPrefix) {
		t.Errorf("ClientID = %q, want %s prefix", a.ClientID, ClientIDPrefix)
	}
	if a.ClientID == b.ClientID {
		t.Errorf("generated client ids collide: %q", a.ClientID)
	}

	c := validConfig()
	c.ClientID = "fixed"
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.ClientID != "fixed" {
		t.Errorf("ClientID = %q, want fixed", c.ClientID)
	}
}

func TestConfig_Redacted(t *testing.T) {
	cfg := validConfig()
	cfg.Password = "hunter2"

	r := cfg.Redacted()
	if r.Password != "*****" {
		t.Errorf("Password = %q, want masked", r.Password)
	}
	if cfg.Password != "hunter2" {
		t.Error("Redacted modified the original")
	}
	if (Config{}).Redacted().Password != "" {
		t.Error("empty password should stay empty")
	}
}

func TestConfigSetter_SetBoolFromString(t *testing.T) {
	tests := []struct {
		value   string
		initial bool
		want    bool
		wantErr bool
	}{
		{"true", false, true, false},
		{"1", false, true, false},
		{"YES", false, true, false},
		{"on", false, true, false},
		{"false", true, false, false},
		{"0", true, false, false},
		{"off", true, false, false},
		{"", true, true, false},
		{"maybe", false, false, true},
	}

	for _, tt := range tests {
		s := newConfigSetter(map[string]bool{})
		got := tt.initial
		err := s.setBoolFromString("tls", tt.value, &got)
		if (err != nil) != tt.wantErr {
			t.Errorf("setBoolFromString(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("setBoolFromString(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestConfigSetter_RespectsChanged(t *testing.T) {
	s := newConfigSetter(map[string]bool{"qos": true})

	qos := 1
	two := 2
	s.setInt("qos", &two, &qos)
	if qos != 1 {
		t.Errorf("qos = %d, want flag value 1", qos)
	}

	port := 1883
	s.setInt("broker-port", &two, &port)
	if port != 2 {
		t.Errorf("port = %d, want 2", port)
	}
	s.setInt("broker-port", nil, &port)
	if port != 2 {
		t.Errorf("nil value changed port to %d", port)
	}
}
