package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
// Pointer fields distinguish "absent" from an explicit zero.
type FileConfig struct {
	Bus             string `toml:"bus"`
	BrokerHost      string `toml:"broker_host"`
	BrokerPort      *int   `toml:"broker_port"`
	ClientID        string `toml:"client_id"`
	Transport       string `toml:"transport"`
	TLS             *bool  `toml:"tls"`
	Username        string `toml:"user"`
	Password        string `toml:"password"`
	InputTopic      string `toml:"input_topic"`
	OutputBaseTopic string `toml:"output_base_topic"`
	QoS             *int   `toml:"qos"`
	PublishTimeout  string `toml:"publish_timeout"`
	ConnectTimeout  string `toml:"connect_timeout"`
	QueueSize       *int   `toml:"queue_size"`
	MaxPending      *int   `toml:"max_pending"`
	MaxPendingAge   string `toml:"max_pending_age"`
	IgnoreChecksum  *bool  `toml:"ignore_checksum"`
	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"`
	LogFile         string `toml:"log_file"`
	LogMaxSizeMB    *int   `toml:"log_max_size_mb"`
	MetricsAddr     string `toml:"metrics_addr"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
// Unknown keys are rejected.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	f, err := os.Open(path)
	if err != nil {
		return fc, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.aisdecoder/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".aisdecoder", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("bus", fc.Bus, &cfg.Bus)
	s.setString("broker-host", fc.BrokerHost, &cfg.BrokerHost)
	s.setString("client-id", fc.ClientID, &cfg.ClientID)
	s.setString("transport", fc.Transport, &cfg.Transport)
	s.setString("user", fc.Username, &cfg.Username)
	s.setString("password", fc.Password, &cfg.Password)
	s.setString("input-topic", fc.InputTopic, &cfg.InputTopic)
	s.setString("output-base-topic", fc.OutputBaseTopic, &cfg.OutputBaseTopic)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)
	s.setString("log-file", fc.LogFile, &cfg.LogFile)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)

	if err := s.setDuration("publish-timeout", fc.PublishTimeout, &cfg.PublishTimeout); err != nil {
		return err
	}
	if err := s.setDuration("connect-timeout", fc.ConnectTimeout, &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("max-pending-age", fc.MaxPendingAge, &cfg.MaxPendingAge); err != nil {
		return err
	}

	s.setInt("broker-port", fc.BrokerPort, &cfg.BrokerPort)
	s.setInt("qos", fc.QoS, &cfg.QoS)
	s.setInt("queue-size", fc.QueueSize, &cfg.QueueSize)
	s.setInt("max-pending", fc.MaxPending, &cfg.MaxPending)
	s.setInt("log-max-size", fc.LogMaxSizeMB, &cfg.LogMaxSizeMB)

	s.setBool("tls", fc.TLS, &cfg.TLS)
	s.setBool("ignore-checksum", fc.IgnoreChecksum, &cfg.IgnoreChecksum)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
