package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for faqbot.
type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Index    IndexConfig    `yaml:"index"`
	Retrieve RetrieveConfig `yaml:"retrieve"`
	Chat     ChatConfig     `yaml:"chat"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BackendConfig selects and configures the search backend.
type BackendConfig struct {
	Engine     string   `yaml:"engine"` // "bolt", "memory", "elastic"
	Collection string   `yaml:"collection"`
	Addresses  []string `yaml:"addresses"` // elastic only
}

// IndexConfig tunes the embedded engines' analysis and scoring.
type IndexConfig struct {
	Stemming bool    `yaml:"stemming"`
	K1       float64 `yaml:"k1"`
	B        float64 `yaml:"b"`
}

// RetrieveConfig holds query-time settings.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
}

// ChatConfig holds the interactive surface settings.
type ChatConfig struct {
	Fallback string `yaml:"fallback"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Engine:     "bolt",
			Collection: "questions",
			Addresses:  []string{"http://localhost:9200"},
		},
		Index: IndexConfig{
			Stemming: true,
			K1:       1.2,
			B:        0.75,
		},
		Retrieve: RetrieveConfig{
			TopK: 5,
		},
		Chat: ChatConfig{
			Fallback: "Sorry, I couldn't find an answer to that.",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for faqbot.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "faqbot.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".faqbot", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DataDir returns the faqbot data directory under root.
func DataDir(root string) string {
	return filepath.Join(root, ".faqbot")
}

// EnsureDataDir creates the data directory if it does not exist.
func EnsureDataDir(root string) error {
	return os.MkdirAll(DataDir(root), 0755)
}

// StorePath returns the path to the embedded index database under root.
func StorePath(root string) string {
	return filepath.Join(DataDir(root), "index.db")
}
