// Package config handles Mira configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/mira/config.yaml, /etc/mira/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "mira", "config.yaml"))
	}

	paths = append(paths, "/etc/mira/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all Mira configuration.
type Config struct {
	Listen    ListenConfig    `yaml:"listen"`
	Auth      AuthConfig      `yaml:"auth"`
	Reasoning ReasoningConfig `yaml:"reasoning"`
	Images    ImagesConfig    `yaml:"images"`
	Tools     ToolsConfig     `yaml:"tools"`
	DataDir   string          `yaml:"data_dir"`
	LogLevel  string          `yaml:"log_level"`
}

// ListenConfig defines the API server settings.
type ListenConfig struct {
	Address string `yaml:"address"` // Bind address (default: "" = all interfaces)
	Port    int    `yaml:"port"`
}

// AuthConfig defines bearer-credential verification settings.
type AuthConfig struct {
	// JWTSecret is the HS256 signing secret for account-owner tokens.
	// If empty, the chat endpoint rejects all requests.
	JWTSecret string `yaml:"jwt_secret"`
}

// ReasoningConfig defines the reasoning-service connection.
type ReasoningConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"` // Default: https://api.openai.com/v1
	Model   string `yaml:"model"`    // Default: gpt-4o
}

// ImagesConfig defines the image-generation service connection and the
// default generation parameters. Size/quality/style can be overridden
// per request through tool arguments.
type ImagesConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"` // Defaults to reasoning.base_url
	Model   string `yaml:"model"`    // Default: dall-e-3
	Size    string `yaml:"size"`     // Default: 1024x1024
	Quality string `yaml:"quality"`  // Default: hd
	Style   string `yaml:"style"`    // Default: natural
}

// ToolsConfig bounds tool execution.
type ToolsConfig struct {
	// TimeoutSeconds caps each tool call at the dispatch boundary.
	// Zero means the default of 120 seconds.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Load reads configuration from a YAML file. Environment variables in
// the file are expanded before parsing, so secrets can be referenced as
// ${MIRA_JWT_SECRET} and friends.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{Port: 8080},
		Reasoning: ReasoningConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o",
		},
		Images: ImagesConfig{
			Model:   "dall-e-3",
			Size:    "1024x1024",
			Quality: "hd",
			Style:   "natural",
		},
		DataDir: "data",
	}
}
