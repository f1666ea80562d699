package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const minDateLayout = "2006-01-02"

type ConfigCache struct {
	feedsDir string
	cache    map[string]*Config
	mu       sync.RWMutex
}

func NewConfigCache(feedsDir string) *ConfigCache {
	return &ConfigCache{
		feedsDir: feedsDir,
		cache:    make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.feedsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.feedsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		feedID := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(feedID)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Configuration loaded", "feed", feedID, "enabled", config.Settings.Enabled, "sources", len(config.URLs))
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(feedID string) (*Config, error) {
	configFile := cc.getConfigFilePath(feedID)
	feedConfig, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	feedConfig.FeedID = feedID

	if err := cc.validateConfig(feedConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[feedConfig.FeedID] = feedConfig

	return feedConfig, nil
}

func (cc *ConfigCache) GetConfig(feedID string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	feedConfig, ok := cc.cache[feedID]
	if !ok {
		return nil, fmt.Errorf("feed config with id '%s' not found", feedID)
	}
	return feedConfig, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabledConfigs := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabledConfigs[k] = v
		}
	}
	return enabledConfigs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

// MinDateTime parses the config's optional min date floor. Returns nil when
// no floor is configured.
func (c *Config) MinDateTime() (*time.Time, error) {
	if c.MinDate == "" {
		return nil, nil
	}
	t, err := time.Parse(minDateLayout, c.MinDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse min_date %q: %w", c.MinDate, err)
	}
	return &t, nil
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var feedConfig Config
	if err := yaml.Unmarshal(data, &feedConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if feedConfig.Settings.Timeout == 0 {
		feedConfig.Settings.Timeout = 10
	}
	if feedConfig.Channels.Primary == "" {
		feedConfig.Channels.Primary = "twitter"
	}

	return &feedConfig, nil
}

func (cc *ConfigCache) validateConfig(feedConfig *Config) error {
	if feedConfig == nil {
		return fmt.Errorf("feedConfig is nil")
	}

	if feedConfig.Name == "" {
		return fmt.Errorf("feed name is required")
	}
	if len(feedConfig.URLs) == 0 {
		return fmt.Errorf("at least one feed URL is required")
	}

	if feedConfig.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	if feedConfig.MinDate != "" {
		if _, err := time.Parse(minDateLayout, feedConfig.MinDate); err != nil {
			return fmt.Errorf("min_date must be formatted as YYYY-MM-DD: %w", err)
		}
	}

	validChannels := map[string]bool{
		"twitter":  true,
		"linkedin": true,
	}

	if !validChannels[feedConfig.Channels.Primary] {
		return fmt.Errorf("invalid primary channel: %s", feedConfig.Channels.Primary)
	}
	for i, ch := range feedConfig.Channels.Secondary {
		if !validChannels[ch] {
			return fmt.Errorf("invalid secondary channel at index %d: %s", i, ch)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(feedID string) string {
	return filepath.Join(cc.feedsDir, feedID+".yml")
}
