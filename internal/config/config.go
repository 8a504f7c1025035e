package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Entity    string    `yaml:"entity"`
	Platform  string    `yaml:"platform"`
	Window    Window    `yaml:"window"`
	Store     Store     `yaml:"store"`
	Generator Generator `yaml:"generator"`
	Email     Email     `yaml:"email"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
}

type Window struct {
	Policy string `yaml:"policy"`
}

type Store struct {
	Driver              string `yaml:"driver"`
	URIEnv              string `yaml:"uri_env"`
	Database            string `yaml:"database"`
	DocumentsCollection string `yaml:"documents_collection"`
	ReportsCollection   string `yaml:"reports_collection"`
	SQLitePath          string `yaml:"sqlite_path"`
}

type Generator struct {
	BaseURL       string  `yaml:"base_url"`
	Model         string  `yaml:"model"`
	APIKeyEnv     string  `yaml:"api_key_env"`
	Temperature   float64 `yaml:"temperature"`
	MaxTokens     int     `yaml:"max_tokens"`
	ContentBudget int     `yaml:"content_budget"`
}

type Email struct {
	Sender      string `yaml:"sender"`
	Receiver    string `yaml:"receiver"`
	PasswordEnv string `yaml:"password_env"`
	SMTPHost    string `yaml:"smtp_host"`
	SMTPPort    int    `yaml:"smtp_port"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for brandbrief.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "brandbrief")
}

// DataDir returns the XDG data directory for brandbrief.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "brandbrief")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/brandbrief/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'brandbrief init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Platform: "reddit",
		Window: Window{
			Policy: "30d-fallback",
		},
		Store: Store{
			Driver:              "mongo",
			URIEnv:              "MONGO_URI",
			Database:            "brand_monitoring",
			DocumentsCollection: "processed_articles",
			ReportsCollection:   "brand_monitoring_summaries",
		},
		Generator: Generator{
			BaseURL:       "https://api.together.xyz/v1",
			Model:         "deepseek-ai/DeepSeek-R1-Distill-Llama-70B-Free",
			APIKeyEnv:     "TOGETHER_API_KEY",
			Temperature:   0.7,
			MaxTokens:     2048,
			ContentBudget: 1000,
		},
		Email: Email{
			PasswordEnv: "EMAIL_PASSWORD",
			SMTPHost:    "smtp.gmail.com",
			SMTPPort:    587,
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// DebugLogging reports whether the configured log level asks for debug
// output.
func (c *Config) DebugLogging() bool {
	return strings.EqualFold(c.Logging.Level, "debug")
}

// SQLitePath returns the effective sqlite database path from config or the
// XDG default.
func (c *Config) SQLitePath() string {
	if c.Store.SQLitePath != "" {
		return c.Store.SQLitePath
	}
	return filepath.Join(DataDir(), "brandbrief.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
