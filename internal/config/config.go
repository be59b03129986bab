// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// TranslationSource is one configured bible translation: a code and the
// normalized JSON file that backs it, relative to CONTENT_DIR unless absolute.
type TranslationSource struct {
	Code string
	File string
}

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; when empty the server runs on in-memory stores.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// ContentDir is the base directory for translation data files (default ".").
	ContentDir string `mapstructure:"CONTENT_DIR"`
	// Translations is a comma-separated list of code=file pairs (e.g. "WEB=data/web.json,FAKE=data/fake.json").
	Translations string `mapstructure:"TRANSLATIONS"`
	// LyricsFontScaleMin is the lower clamp bound for lyrics font scale (default 0.6).
	LyricsFontScaleMin float64 `mapstructure:"LYRICS_FONT_SCALE_MIN"`
	// LyricsFontScaleMax is the upper clamp bound for lyrics font scale (default 3.0).
	LyricsFontScaleMax float64 `mapstructure:"LYRICS_FONT_SCALE_MAX"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints (standard OTEL_EXPORTER_OTLP_INSECURE behavior).
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// Telemetry (optional). When Kafka brokers are set, the server emits session telemetry to Kafka.
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for telemetry events (default wtrfll-telemetry).
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the telemetry worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("CONTENT_DIR", ".")
	v.SetDefault("TRANSLATIONS", "")
	v.SetDefault("LYRICS_FONT_SCALE_MIN", 0.6)
	v.SetDefault("LYRICS_FONT_SCALE_MAX", 3.0)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "wtrfll-telemetry")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "wtrfll-telemetry-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.LyricsFontScaleMin <= 0 || cfg.LyricsFontScaleMax < cfg.LyricsFontScaleMin {
		return nil, errors.New("config: LYRICS_FONT_SCALE_MIN/MAX must be positive and ordered")
	}

	return &cfg, nil
}

// TranslationSources parses the comma-separated TRANSLATIONS config into
// code/file pairs. Entries without "=" or with an empty side are skipped.
func (c *Config) TranslationSources() []TranslationSource {
	if c == nil || c.Translations == "" {
		return nil
	}
	parts := strings.Split(c.Translations, ",")
	out := make([]TranslationSource, 0, len(parts))
	for _, p := range parts {
		code, file, ok := strings.Cut(strings.TrimSpace(p), "=")
		code = strings.TrimSpace(code)
		file = strings.TrimSpace(file)
		if !ok || code == "" || file == "" {
			continue
		}
		out = append(out, TranslationSource{Code: code, File: file})
	}
	return out
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
