package aisdecoder

import "context"

// PluginConfig is handed to plugins on Initialize.
type PluginConfig struct {
	// ConfigPath is the file the configuration was loaded from, if any.
	ConfigPath string

	InputTopic      string
	OutputBaseTopic string

	Logger Logger
}

// Plugin extends a Service. Plugins are initialized in registration order
// when the service starts and shut down in reverse order when it stops.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize is called from Start. An error aborts the start.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called from Stop. Errors are logged.
	Shutdown(ctx context.Context) error
}

// BasePlugin implements Plugin with no-ops. Embed it and override what
// you need.
type BasePlugin struct {
	PluginName string
}

// Name returns PluginName.
func (b BasePlugin) Name() string { return b.PluginName }

// Initialize does nothing.
func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }

// Shutdown does nothing.
func (BasePlugin) Shutdown(context.Context) error { return nil }
