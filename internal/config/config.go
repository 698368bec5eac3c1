// Package config loads and validates subburn configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	UploadDir string `toml:"upload_dir"`
	OutputDir string `toml:"output_dir"`
	FontsDir  string `toml:"fonts_dir"`
	Bind      string `toml:"bind"`
}

// Whisper contains configuration for audio transcription.
type Whisper struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// Remote contains configuration for the hosted LLM translation fallback.
type Remote struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
}

// Hub contains configuration for the translation model repository.
type Hub struct {
	BaseURL             string `toml:"base_url"`
	InferenceBaseURL    string `toml:"inference_base_url"`
	Token               string `toml:"token"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds"`
}

// Config encapsulates all configuration values for subburn.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Whisper Whisper `toml:"whisper"`
	Remote  Remote  `toml:"remote"`
	Hub     Hub     `toml:"hub"`
	Verbose bool    `toml:"verbose"`
}

const (
	defaultDataDir             = "~/.local/share/subburn"
	defaultUploadDir           = "~/.local/share/subburn/uploads"
	defaultOutputDir           = "~/.local/share/subburn/output"
	defaultFontsDir            = "~/.local/share/subburn/fonts"
	defaultBind                = "127.0.0.1:8570"
	defaultWhisperModel        = "whisper-1"
	defaultRemoteProvider      = "openai"
	defaultHubProbeSeconds     = 10
	defaultHubBaseURL          = "https://huggingface.co"
	defaultHubInferenceBaseURL = "https://api-inference.huggingface.co"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			UploadDir: defaultUploadDir,
			OutputDir: defaultOutputDir,
			FontsDir:  defaultFontsDir,
			Bind:      defaultBind,
		},
		Whisper: Whisper{
			Model: defaultWhisperModel,
		},
		Remote: Remote{
			Provider: defaultRemoteProvider,
		},
		Hub: Hub{
			BaseURL:             defaultHubBaseURL,
			InferenceBaseURL:    defaultHubInferenceBaseURL,
			ProbeTimeoutSeconds: defaultHubProbeSeconds,
		},
	}
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subburn/config.toml")
}

// Load parses the configuration file at path, or the default location when
// path is empty. A missing file yields the defaults. Environment variables
// override file-provided secrets.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	} else {
		expanded, err := expandPath(path)
		if err != nil {
			return nil, err
		}
		path = expanded
	}

	if file, err := os.Open(path); err == nil {
		defer file.Close()
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Whisper.APIKey = v
		if c.Remote.Provider == "openai" && c.Remote.APIKey == "" {
			c.Remote.APIKey = v
		}
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && c.Remote.Provider == "anthropic" {
		c.Remote.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && c.Remote.Provider == "gemini" {
		c.Remote.APIKey = v
	}
	if v := os.Getenv("HF_TOKEN"); v != "" {
		c.Hub.Token = v
	}
}

func (c *Config) normalize() error {
	fields := []*string{
		&c.Paths.DataDir,
		&c.Paths.UploadDir,
		&c.Paths.OutputDir,
		&c.Paths.FontsDir,
	}
	for _, field := range fields {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.Remote.Provider = strings.ToLower(strings.TrimSpace(c.Remote.Provider))
	return nil
}

// Validate reports configuration problems that prevent a processing run.
func (c *Config) Validate() error {
	var problems []string
	if c.Whisper.APIKey == "" {
		problems = append(problems, "whisper.api_key is required (or set OPENAI_API_KEY)")
	}
	switch c.Remote.Provider {
	case "openai", "anthropic", "gemini":
	default:
		problems = append(problems, fmt.Sprintf("remote.provider %q is not one of openai, anthropic, gemini", c.Remote.Provider))
	}
	if c.Paths.Bind == "" {
		problems = append(problems, "paths.bind must not be empty")
	}
	if c.Hub.ProbeTimeoutSeconds <= 0 {
		problems = append(problems, "hub.probe_timeout_seconds must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// EnsureDirectories creates the configured working directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.UploadDir, c.Paths.OutputDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return filepath.Abs(path)
}
