package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	zero := 0
	port := 8883

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				BrokerHost:     "broker",
				BrokerPort:     &port,
				TLS:            &trueVal,
				InputTopic:     "in",
				PublishTimeout: "3s",
				MaxPendingAge:  "90s",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				BrokerHost:     "broker",
				BrokerPort:     8883,
				TLS:            true,
				InputTopic:     "in",
				PublishTimeout: 3 * time.Second,
				MaxPendingAge:  90 * time.Second,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				BrokerHost: "file-host",
				InputTopic: "file/topic",
			},
			changed: map[string]bool{"broker-host": true},
			initial: Config{BrokerHost: "flag-host"},
			expected: Config{
				BrokerHost: "flag-host", // unchanged because flag was set
				InputTopic: "file/topic",
			},
		},
		{
			name:       "explicit zero overrides default",
			fileConfig: FileConfig{QoS: &zero},
			changed:    map[string]bool{},
			initial:    Config{QoS: 1},
			expected:   Config{QoS: 0},
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{ConnectTimeout: "forever"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
bus = "mqtt"
broker_host = "broker.local"
broker_port = 1884
tls = true
input_topic = "ais/raw"
output_base_topic = "ais/decoded"
qos = 1
publish_timeout = "2s"
max_pending = 1000
log_level = "info"
metrics_addr = ":9102"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.BrokerHost != "broker.local" || cfg.BrokerPort != 1884 || !cfg.TLS {
		t.Errorf("broker settings = %s:%d tls=%v", cfg.BrokerHost, cfg.BrokerPort, cfg.TLS)
	}
	if cfg.QoS != 1 || cfg.PublishTimeout != 2*time.Second || cfg.MaxPending != 1000 {
		t.Errorf("tuning = qos %d, timeout %v, max pending %d", cfg.QoS, cfg.PublishTimeout, cfg.MaxPending)
	}
	if cfg.ConnectTimeout != DefaultConfig().ConnectTimeout {
		t.Errorf("ConnectTimeout = %v, want default", cfg.ConnectTimeout)
	}
}

func TestLoadFileConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFileConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("broker_host = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(bad); err == nil {
		t.Error("expected error for invalid TOML")
	}

	unknown := filepath.Join(dir, "unknown.toml")
	if err := os.WriteFile(unknown, []byte(`node_home = "/x"`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(unknown); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	p := DefaultConfigPath()
	if p == "" {
		t.Skip("no home directory")
	}
	if !strings.HasSuffix(p, filepath.Join(".aisdecoder", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %q", p)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	if FileExists(path) {
		t.Error("FileExists() = true before create")
	}
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Error("FileExists() = false after create")
	}
}
