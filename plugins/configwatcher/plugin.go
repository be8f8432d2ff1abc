// Package configwatcher watches the aisdecoder configuration file and
// reports edits. Configuration is read once at startup, so a change is
// logged as requiring a restart and handed to an optional callback.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/aisdecoder/pkg/aisdecoder"
	"github.com/bft-labs/aisdecoder/pkg/log"
)

// Plugin implements config watching functionality.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration
	onChange      func(path string, op fsnotify.Op)

	path     string
	logger   aisdecoder.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay coalesces bursts of writes from editors.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// OnChange is called once per debounced change, after the warning is
	// logged. It runs on a timer goroutine.
	OnChange func(path string, op fsnotify.Op)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}

	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		onChange:      cfg.OnChange,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching cfg.ConfigPath. An empty path disables the
// plugin.
func (p *Plugin) Initialize(ctx context.Context, cfg aisdecoder.PluginConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	p.mu.Lock()
	p.path = cfg.ConfigPath
	p.logger = logger
	p.mu.Unlock()

	if cfg.ConfigPath == "" {
		logger.Debug("config watcher disabled: no configuration file")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory so that editors replacing the file by rename
	// are still seen.
	if err := watcher.Add(filepath.Dir(cfg.ConfigPath)); err != nil {
		_ = watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	logger.Info("config watcher started", log.String("path", cfg.ConfigPath))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Clean(p.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceNotify(event.Op)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceNotify(op fsnotify.Op) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	path := p.path
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		p.logger.Warn("configuration file changed, restart to apply",
			log.String("path", path),
			log.String("op", op.String()))
		if p.onChange != nil {
			p.onChange(path, op)
		}
	})
}

// Ensure Plugin implements aisdecoder.Plugin.
var _ aisdecoder.Plugin = (*Plugin)(nil)
