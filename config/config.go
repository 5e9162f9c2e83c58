// Package config loads gateway configuration using Viper, supporting
// environment variables (prefixed TALEWEAVE_) and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every recognized gateway configuration option.
type Config struct {
	ProjectID string `mapstructure:"project_id"`
	Region    string `mapstructure:"region"`

	LiveModelID  string `mapstructure:"live_model_id"`
	TextModelID  string `mapstructure:"text_model_id"`
	ImageModelID string `mapstructure:"image_model_id"`
	TextPoolSize int    `mapstructure:"text_pool_size"`

	SessionTTLHours       int    `mapstructure:"session_ttl_hours"`
	MediaBucket           string `mapstructure:"media_bucket"`
	MaxSessionTurns       int    `mapstructure:"max_session_turns"`
	MaxConcurrentSessions int    `mapstructure:"max_concurrent_sessions"`

	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`

	AudioChunkDurationMS int `mapstructure:"audio_chunk_duration_ms"`
	SampleRateIn         int `mapstructure:"sample_rate_in"`
	SampleRateOut        int `mapstructure:"sample_rate_out"`

	StreamBufferHighWatermark int `mapstructure:"stream_buffer_high_watermark"`
	StreamBufferLowWatermark  int `mapstructure:"stream_buffer_low_watermark"`

	AgentTimeoutSeconds int `mapstructure:"agent_timeout_seconds"`

	CulturalConfidenceThreshold float64 `mapstructure:"cultural_confidence_threshold"`
	CulturalRejectThreshold     float64 `mapstructure:"cultural_reject_threshold"`

	ListenAddr string `mapstructure:"listen_addr"`
}

// AgentTimeout is AgentTimeoutSeconds as a time.Duration.
func (c Config) AgentTimeout() time.Duration {
	return time.Duration(c.AgentTimeoutSeconds) * time.Second
}

// SessionTTL is SessionTTLHours as a time.Duration.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Loader loads a gateway Config. Static configuration loading is treated
// as a collaborator, not core logic: the gateway depends on this
// interface, not on Viper directly.
type Loader interface {
	Load() (Config, error)
}

// ViperLoader is the default Loader, reading environment variables
// prefixed TALEWEAVE_ and an optional "config" file (yaml) from the
// current directory, /etc/taleweave/, $HOME/.taleweave, and any
// additional paths supplied to NewViperLoader.
type ViperLoader struct {
	configPaths []string
}

// NewViperLoader builds a ViperLoader searching configPaths in addition
// to its built-in default locations.
func NewViperLoader(configPaths ...string) *ViperLoader {
	return &ViperLoader{configPaths: configPaths}
}

// Load reads the config file (if present) and environment, environment
// taking precedence, and decodes the result into a Config.
func (l *ViperLoader) Load() (Config, error) {
	v := viper.New()

	v.SetDefault("project_id", "")
	v.SetDefault("region", "us-central1")
	v.SetDefault("live_model_id", "gemini-2.0-flash-live")
	v.SetDefault("text_model_id", "gemini-2.0-flash")
	v.SetDefault("image_model_id", "imagen-3.0")
	v.SetDefault("text_pool_size", 2)
	v.SetDefault("session_ttl_hours", 24)
	v.SetDefault("media_bucket", "")
	v.SetDefault("max_session_turns", 200)
	v.SetDefault("max_concurrent_sessions", 500)
	v.SetDefault("debug", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("audio_chunk_duration_ms", 20)
	v.SetDefault("sample_rate_in", 16000)
	v.SetDefault("sample_rate_out", 24000)
	v.SetDefault("stream_buffer_high_watermark", 50)
	v.SetDefault("stream_buffer_low_watermark", 10)
	v.SetDefault("agent_timeout_seconds", 30)
	v.SetDefault("cultural_confidence_threshold", 0.7)
	v.SetDefault("cultural_reject_threshold", 0.4)
	v.SetDefault("listen_addr", ":8080")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/taleweave/")
	v.AddConfigPath("$HOME/.taleweave")
	for _, path := range l.configPaths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("TALEWEAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config into struct: %w", err)
	}
	return cfg, nil
}

// Load builds the default ViperLoader and loads a Config, searching
// configPaths in addition to the built-in default locations.
func Load(configPaths ...string) (Config, error) {
	return NewViperLoader(configPaths...).Load()
}

