// Package config handles configuration loading and validation for palaver.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/palaver/internal/remote"
)

// DefaultAPIKeyEnv is the environment variable checked first for the
// provider credential.
const DefaultAPIKeyEnv = "PALAVER_API_KEY"

// Fallback credential variables per provider, checked when the configured
// variable is unset.
var providerKeyEnv = map[string]string{
	remote.ProviderGemini: "GEMINI_API_KEY",
	remote.ProviderArk:    "ARK_API_KEY",
}

// Config holds the application configuration.
type Config struct {
	Provider       string   `yaml:"provider"`
	Model          string   `yaml:"model"`
	APIKeyEnv      string   `yaml:"api_key_env"`
	BaseURL        string   `yaml:"base_url"`
	Region         string   `yaml:"region"`
	PromptTemplate string   `yaml:"prompt_template"`
	UI             UIConfig `yaml:"ui"`
	DataDir        string   `yaml:"-"` // set by caller, not from config file
}

// UIConfig controls the chat screen.
type UIConfig struct {
	Title       string `yaml:"title"`
	Placeholder string `yaml:"placeholder"`
	Clock24h    bool   `yaml:"clock_24h"`
	PlainText   bool   `yaml:"plain_text"` // disable markdown rendering of replies
}

// Overrides are values supplied on the command line or through the
// environment. Empty fields leave the file value in place.
type Overrides struct {
	Provider string
	Model    string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  remote.ProviderGemini,
		APIKeyEnv: DefaultAPIKeyEnv,
		UI: UIConfig{
			Title:       "Chat Assistant",
			Placeholder: "Type your message...",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string, ov Overrides) (*Config, error) {
	cfg, err := Read(configPath, dataDir, ov)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Read is Load without validation. It fails only when the file cannot be
// read or parsed.
func Read(configPath, dataDir string, ov Overrides) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir

	if ov.Provider != "" {
		cfg.Provider = ov.Provider
	}
	if ov.Model != "" {
		cfg.Model = ov.Model
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = defaults.Provider
	}
	if c.Model == "" {
		c.Model = remote.DefaultModel(c.Provider)
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = defaults.APIKeyEnv
	}
	if c.UI.Title == "" {
		c.UI.Title = defaults.UI.Title
	}
	if c.UI.Placeholder == "" {
		c.UI.Placeholder = defaults.UI.Placeholder
	}
}

// APIKey returns the provider credential from the environment. The
// configured variable wins; the provider's conventional variable is the
// fallback. An empty result is not an error here.
func (c *Config) APIKey() string {
	key, _ := c.lookupAPIKey()
	return key
}

// APIKeySource returns the name of the variable that supplied the
// credential, or "" if none is set.
func (c *Config) APIKeySource() string {
	_, src := c.lookupAPIKey()
	return src
}

func (c *Config) lookupAPIKey() (string, string) {
	candidates := []string{c.APIKeyEnv}
	if fallback, ok := providerKeyEnv[c.Provider]; ok && fallback != c.APIKeyEnv {
		candidates = append(candidates, fallback)
	}

	for _, name := range candidates {
		if name == "" {
			continue
		}
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, name
		}
	}
	return "", ""
}

// NeedsAPIKey reports whether the configured provider uses a credential.
func (c *Config) NeedsAPIKey() bool {
	return c.Provider != remote.ProviderEcho
}

// RemoteOptions returns the provider options for this configuration.
func (c *Config) RemoteOptions() remote.Options {
	return remote.Options{
		Provider: c.Provider,
		Model:    c.Model,
		APIKey:   c.APIKey(),
		BaseURL:  c.BaseURL,
		Region:   c.Region,
	}
}

// TranscriptsDir returns the directory exported transcripts are written to.
func (c *Config) TranscriptsDir() string {
	return filepath.Join(c.DataDir, "transcripts")
}

// LogsDir returns the directory batch run logs are written to.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// Save writes the configuration to path as YAML, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
