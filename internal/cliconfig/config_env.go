package cliconfig

import "os"

// Environment variable names. The MQTT_* and LOG_LEVEL names are shared
// with existing deployments of the decoder; AISDECODER_* covers the rest.
const (
	EnvBrokerHost      = "MQTT_BROKER_HOST"
	EnvBrokerPort      = "MQTT_BROKER_PORT"
	EnvClientID        = "MQTT_CLIENT_ID"
	EnvTransport       = "MQTT_TRANSPORT"
	EnvTLS             = "MQTT_TLS"
	EnvUser            = "MQTT_USER"
	EnvPassword        = "MQTT_PASSWORD"
	EnvInputTopic      = "MQTT_INPUT_TOPIC"
	EnvOutputBaseTopic = "MQTT_OUTPUT_BASE_TOPIC"
	EnvLogLevel        = "LOG_LEVEL"

	EnvBus            = "AISDECODER_BUS"
	EnvQoS            = "AISDECODER_QOS"
	EnvPublishTimeout = "AISDECODER_PUBLISH_TIMEOUT"
	EnvConnectTimeout = "AISDECODER_CONNECT_TIMEOUT"
	EnvQueueSize      = "AISDECODER_QUEUE_SIZE"
	EnvMaxPending     = "AISDECODER_MAX_PENDING"
	EnvMaxPendingAge  = "AISDECODER_MAX_PENDING_AGE"
	EnvIgnoreChecksum = "AISDECODER_IGNORE_CHECKSUM"
	EnvLogFormat      = "AISDECODER_LOG_FORMAT"
	EnvLogFile        = "AISDECODER_LOG_FILE"
	EnvLogMaxSizeMB   = "AISDECODER_LOG_MAX_SIZE_MB"
	EnvMetricsAddr    = "AISDECODER_METRICS_ADDR"
)

// ApplyEnvConfig applies environment variables to cfg.
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("bus", os.Getenv(EnvBus), &cfg.Bus)
	s.setString("broker-host", os.Getenv(EnvBrokerHost), &cfg.BrokerHost)
	s.setString("client-id", os.Getenv(EnvClientID), &cfg.ClientID)
	s.setString("transport", os.Getenv(EnvTransport), &cfg.Transport)
	s.setString("user", os.Getenv(EnvUser), &cfg.Username)
	s.setString("password", os.Getenv(EnvPassword), &cfg.Password)
	s.setString("input-topic", os.Getenv(EnvInputTopic), &cfg.InputTopic)
	s.setString("output-base-topic", os.Getenv(EnvOutputBaseTopic), &cfg.OutputBaseTopic)
	s.setString("log-level", os.Getenv(EnvLogLevel), &cfg.LogLevel)
	s.setString("log-format", os.Getenv(EnvLogFormat), &cfg.LogFormat)
	s.setString("log-file", os.Getenv(EnvLogFile), &cfg.LogFile)
	s.setString("metrics-addr", os.Getenv(EnvMetricsAddr), &cfg.MetricsAddr)

	if err := s.setIntFromString("broker-port", os.Getenv(EnvBrokerPort), &cfg.BrokerPort); err != nil {
		return err
	}
	if err := s.setIntFromString("qos", os.Getenv(EnvQoS), &cfg.QoS); err != nil {
		return err
	}
	if err := s.setIntFromString("queue-size", os.Getenv(EnvQueueSize), &cfg.QueueSize); err != nil {
		return err
	}
	if err := s.setIntFromString("max-pending", os.Getenv(EnvMaxPending), &cfg.MaxPending); err != nil {
		return err
	}
	if err := s.setIntFromString("log-max-size", os.Getenv(EnvLogMaxSizeMB), &cfg.LogMaxSizeMB); err != nil {
		return err
	}

	if err := s.setDuration("publish-timeout", os.Getenv(EnvPublishTimeout), &cfg.PublishTimeout); err != nil {
		return err
	}
	if err := s.setDuration("connect-timeout", os.Getenv(EnvConnectTimeout), &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("max-pending-age", os.Getenv(EnvMaxPendingAge), &cfg.MaxPendingAge); err != nil {
		return err
	}

	if err := s.setBoolFromString("tls", os.Getenv(EnvTLS), &cfg.TLS); err != nil {
		return err
	}
	if err := s.setBoolFromString("ignore-checksum", os.Getenv(EnvIgnoreChecksum), &cfg.IgnoreChecksum); err != nil {
		return err
	}

	return nil
}
