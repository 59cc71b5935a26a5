package pushbridge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Core setting names the coordinator reads from Config.
const (
	// SettingAppID is the application identifier sent with every token sync.
	SettingAppID = "app_id"

	// SettingSenderID is the GCM/FCM sender (project) id. Required on Android.
	SettingSenderID = "sender_id"
)

// defaultURLs is the built-in fallback applied when the configured URL map
// lacks an entry.
var defaultURLs = map[string]string{
	"push": "https://push.pushbridge.io",
}

// Config holds core settings and named service URLs.
type Config struct {
	values map[string]any
	urls   map[string]string
}

// NewConfig builds a Config from a settings map and a named URL map. Both
// maps may be nil.
func NewConfig(values map[string]any, urls map[string]string) *Config {
	if values == nil {
		values = map[string]any{}
	}
	if urls == nil {
		urls = map[string]string{}
	}
	return &Config{values: values, urls: urls}
}

// Get returns the named core setting, or nil when absent.
func (c *Config) Get(name string) any {
	return c.values[name]
}

// GetString returns the named core setting as a string, or "" when absent or
// not a string.
func (c *Config) GetString(name string) string {
	if s, ok := c.values[name].(string); ok {
		return s
	}
	return ""
}

// GetURL returns the named service URL, falling back to the built-in default
// URL map when the configured map lacks the name.
func (c *Config) GetURL(name string) string {
	if u, ok := c.urls[name]; ok && u != "" {
		return u
	}
	return defaultURLs[name]
}

// yamlConfig mirrors the raw config.yaml file.
type yamlConfig struct {
	AppID    string            `yaml:"app_id"`
	SenderID string            `yaml:"sender_id"`
	URLs     map[string]string `yaml:"urls"`
	Values   map[string]any    `yaml:"values"`
}

// LoadConfig reads a YAML config file. Top-level app_id and sender_id map to
// the core settings of the same name; additional settings go under values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	values := map[string]any{}
	for k, v := range raw.Values {
		values[k] = v
	}
	if raw.AppID != "" {
		values[SettingAppID] = raw.AppID
	}
	if raw.SenderID != "" {
		values[SettingSenderID] = raw.SenderID
	}

	return NewConfig(values, raw.URLs), nil
}
