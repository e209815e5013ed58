package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds Privascope configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Provider  ProviderConfig  `yaml:"provider"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	CORS      CORSConfig      `yaml:"cors"`
	Security  SecurityConfig  `yaml:"security"`
	Screening ScreeningConfig `yaml:"screening"`
	Logging   LoggingConfig   `yaml:"logging"`
	Audit     AuditConfig     `yaml:"audit"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Addr         string `yaml:"addr"`           // HTTP listen address, e.g. ":8080"
	MaxBodyBytes int64  `yaml:"max_body_bytes"` // request body cap
}

type ProviderConfig struct {
	Type                 string `yaml:"type"`        // openai | gemini | static
	BaseURL              string `yaml:"base_url"`    // e.g. "https://api.openai.com/v1"
	APIKeyEnv            string `yaml:"api_key_env"` // e.g. "OPENAI_API_KEY"
	APIKey               string `yaml:"api_key"`     // inline key, api_key_env wins when both set
	TimeoutSeconds       int    `yaml:"timeout_seconds"`
	MaxResponseBytes     int64  `yaml:"max_response_bytes"`
	AllowPrivateNetworks bool   `yaml:"allow_private_networks"`
	StaticReply          string `yaml:"static_reply"` // canned reply for type "static"
}

type AnalysisConfig struct {
	Model         string `yaml:"model"`          // upstream model name, e.g. "gpt-5.1"
	RubricVersion string `yaml:"rubric_version"` // v1 | v2, empty means current default
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type SecurityConfig struct {
	Enabled bool     `yaml:"enabled"`
	APIKeys []string `yaml:"api_keys"`
}

type ScreeningConfig struct {
	Enabled           bool    `yaml:"enabled"`
	Mode              string  `yaml:"mode"`               // observe | block
	ModelDir          string  `yaml:"model_dir"`          // local classifier bundle, heuristics when empty
	RequireClassifier bool    `yaml:"require_classifier"` // readiness fails while the classifier is unavailable
	SeqLen            int     `yaml:"seq_len"`
	BlockThreshold    float32 `yaml:"block_threshold"`
	WarnThreshold     float32 `yaml:"warn_threshold"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // metadata | redacted | full
}

type AuditConfig struct {
	QueueSize              int          `yaml:"queue_size"`
	Workers                int          `yaml:"workers"`
	ShutdownTimeoutSeconds int          `yaml:"shutdown_timeout_seconds"`
	Sinks                  []SinkConfig `yaml:"sinks"`
}

type SinkConfig struct {
	Type           string            `yaml:"type"` // stdout | file_jsonl | webhook
	Path           string            `yaml:"path"`
	URL            string            `yaml:"url"`
	Headers        map[string]string `yaml:"headers"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // grpc | http
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{
		Provider: ProviderConfig{
			Type: "openai",
		},
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}

	if cfg.Provider.Type == "" {
		cfg.Provider.Type = "openai"
	}
	if cfg.Provider.TimeoutSeconds <= 0 {
		cfg.Provider.TimeoutSeconds = 60
	}
	if cfg.Provider.MaxResponseBytes <= 0 {
		cfg.Provider.MaxResponseBytes = 4 * 1024 * 1024
	}

	if cfg.Analysis.Model == "" {
		cfg.Analysis.Model = "gpt-5.1"
	}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}

	if cfg.Screening.Mode == "" {
		cfg.Screening.Mode = "observe"
	}
	if cfg.Screening.SeqLen <= 0 {
		cfg.Screening.SeqLen = 256
	}
	if cfg.Screening.BlockThreshold <= 0 {
		cfg.Screening.BlockThreshold = 0.9
	}
	if cfg.Screening.WarnThreshold <= 0 {
		cfg.Screening.WarnThreshold = 0.7
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "metadata"
	}

	if cfg.Audit.QueueSize <= 0 {
		cfg.Audit.QueueSize = 1024
	}
	if cfg.Audit.Workers <= 0 {
		cfg.Audit.Workers = 2
	}
	if cfg.Audit.ShutdownTimeoutSeconds <= 0 {
		cfg.Audit.ShutdownTimeoutSeconds = 5
	}
}

// ResolveAPIKey returns the provider API key, preferring the env var
// named by api_key_env over the inline api_key value.
func (p ProviderConfig) ResolveAPIKey() string {
	if p.APIKeyEnv != "" {
		if v := os.Getenv(p.APIKeyEnv); v != "" {
			return v
		}
	}
	return p.APIKey
}
