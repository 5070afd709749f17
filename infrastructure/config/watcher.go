package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ConfigWatcher watches the tunables file for changes, reloads the
// DynamicConfig it holds and notifies registered callbacks. The readers
// do not consult it; their limits come from each request's config.
type ConfigWatcher struct {
	path        string
	watcher     *fsnotify.Watcher
	current     *DynamicConfig
	mu          sync.RWMutex
	onChange    []func(*DynamicConfig)
	logger      *zap.Logger
	stopCh      chan struct{}
	lastModTime time.Time
}

// DynamicConfig is the subset of configuration that can change without a
// redeploy: offload limits, cache settings, and version metadata.
type DynamicConfig struct {
	Offload  OffloadLimits  `json:"offload"`
	Cache    CacheConfig    `json:"cache"`
	Metadata ConfigMetadata `json:"metadata"`
}

// CacheConfig holds tunables for the reference-path LRU.
type CacheConfig struct {
	TTLSeconds int `json:"ttlSeconds"`
	MaxEntries int `json:"maxEntries"`
}

// ConfigMetadata holds metadata about the configuration.
type ConfigMetadata struct {
	Version   string    `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewConfigWatcher creates a new configuration watcher rooted at
// configPath, the JSON tunables file.
func NewConfigWatcher(configPath string, logger *zap.Logger) (*ConfigWatcher, error) {
	config, err := loadConfigFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(configPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := watcher.Add(dir); err != nil {
		logger.Warn("failed to watch config directory", zap.Error(err))
	}

	cw := &ConfigWatcher{
		path:        configPath,
		watcher:     watcher,
		current:     config,
		onChange:    make([]func(*DynamicConfig), 0),
		logger:      logger,
		stopCh:      make(chan struct{}),
		lastModTime: time.Now(),
	}

	return cw, nil
}

// Start begins watching for configuration changes.
func (w *ConfigWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("configuration watcher started", zap.String("path", w.path))
}

// Stop stops watching for configuration changes.
func (w *ConfigWatcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	w.logger.Info("configuration watcher stopped")
}

func (w *ConfigWatcher) watchLoop() {
	var debounceTimer *time.Timer
	debounceDuration := 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, w.handleConfigChange)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))
		}
	}
}

func (w *ConfigWatcher) handleConfigChange() {
	w.logger.Info("tunables file changed, reloading", zap.String("path", w.path))

	newConfig, err := loadConfigFromFile(w.path)
	if err != nil {
		w.logger.Error("failed to reload tunables", zap.Error(err))
		return
	}

	if err := w.validateConfig(newConfig); err != nil {
		w.logger.Error("invalid tunables, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	oldConfig := w.current
	w.current = newConfig
	w.mu.Unlock()

	w.logConfigChanges(oldConfig, newConfig)

	for _, handler := range w.onChange {
		go handler(newConfig)
	}

	w.logger.Info("tunables reloaded", zap.String("version", newConfig.Metadata.Version))
}

func (w *ConfigWatcher) validateConfig(config *DynamicConfig) error {
	if config.Offload.MaxDepth <= 0 {
		return fmt.Errorf("offload.maxDepth must be positive")
	}
	if config.Offload.MaxResolveDepth <= 0 {
		return fmt.Errorf("offload.maxResolveDepth must be positive")
	}
	if config.Offload.MaxNodeBytes <= 0 {
		return fmt.Errorf("offload.maxNodeBytes must be positive")
	}
	if config.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttlSeconds cannot be negative")
	}
	return nil
}

func (w *ConfigWatcher) logConfigChanges(oldConfig, newConfig *DynamicConfig) {
	changes := []string{}

	if oldConfig.Offload.MaxDepth != newConfig.Offload.MaxDepth {
		changes = append(changes, fmt.Sprintf("offload.maxDepth: %d -> %d", oldConfig.Offload.MaxDepth, newConfig.Offload.MaxDepth))
	}
	if oldConfig.Offload.MaxNodeBytes != newConfig.Offload.MaxNodeBytes {
		changes = append(changes, fmt.Sprintf("offload.maxNodeBytes: %d -> %d", oldConfig.Offload.MaxNodeBytes, newConfig.Offload.MaxNodeBytes))
	}
	if oldConfig.Cache.TTLSeconds != newConfig.Cache.TTLSeconds {
		changes = append(changes, fmt.Sprintf("cache.ttlSeconds: %d -> %d", oldConfig.Cache.TTLSeconds, newConfig.Cache.TTLSeconds))
	}

	if len(changes) > 0 {
		w.logger.Info("tunable changes detected", zap.Strings("changes", changes))
	}
}

// OnChange registers a callback invoked with the new config on reload.
func (w *ConfigWatcher) OnChange(handler func(*DynamicConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// GetCurrent returns the current tunables.
func (w *ConfigWatcher) GetCurrent() *DynamicConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// GetOffloadLimits returns the current offload limits.
func (w *ConfigWatcher) GetOffloadLimits() OffloadLimits {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current.Offload
}

func loadConfigFromFile(path string) (*DynamicConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config DynamicConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if config.Metadata.Version == "" {
		config.Metadata.Version = "1.0.0"
	}
	config.Metadata.UpdatedAt = time.Now()

	return &config, nil
}
