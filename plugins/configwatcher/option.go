package configwatcher

import "github.com/bft-labs/aisdecoder/pkg/aisdecoder"

// WithConfigWatcher returns an aisdecoder Option that enables config file
// watching. The watched file is aisdecoder.Config.ConfigPath.
//
// Usage:
//
//	svc, err := aisdecoder.New(cfg,
//	    aisdecoder.WithBus(bus),
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 200 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) aisdecoder.Option {
	return aisdecoder.WithPlugin(New(cfg))
}

// WithDefaultConfigWatcher returns an aisdecoder Option that enables config
// watching with default settings (debounce 100ms).
func WithDefaultConfigWatcher() aisdecoder.Option {
	return WithConfigWatcher(DefaultConfig())
}
