package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/intentbot-backend/internal/platform/envutil"
)

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 15 * time.Second,
			AllowOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
			},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "chatbot.db",
		},
		Auth: AuthConfig{
			JWTSecret:      "defaultsecret",
			AccessTokenTTL: time.Hour,
		},
		Model: ModelConfig{
			Dir:           "model",
			WeightsFile:   "lstm_weights.json",
			TokenizerFile: "tokenizer.json",
			EncoderFile:   "label_encoder.json",

			MaxSequenceLength: 20,
			EmbeddingDim:      32,
			LSTMUnits:         32,
			HiddenUnits:       16,
			DropoutRecurrent:  0.3,
			DropoutHidden:     0.2,
			BatchSize:         8,
			LearningRate:      0.001,
			Patience:          10,
			Seed:              42,
		},
		Dataset: DatasetConfig{
			Path: filepath.Join("dataset", "intents.json"),
		},
	}
}

// Load merges defaults, an optional YAML config file, and env overrides.
func Load() (*Config, error) {
	cfg := defaultConfig()

	cfgPath := strings.TrimSpace(os.Getenv("IB_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Env = envutil.Str("LOG_MODE", cfg.Env)
	cfg.HTTP.Addr = envutil.Str("IB_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.Database.Driver = envutil.Str("IB_DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = envutil.Str("IB_DB_DSN", cfg.Database.DSN)
	cfg.Auth.JWTSecret = envutil.Str("JWT_SECRET_KEY", cfg.Auth.JWTSecret)
	if ttl := envutil.Int("ACCESS_TOKEN_TTL", 0); ttl > 0 {
		cfg.Auth.AccessTokenTTL = time.Duration(ttl) * time.Second
	}
	cfg.Model.Dir = envutil.Str("IB_MODEL_DIR", cfg.Model.Dir)
	cfg.Dataset.Path = envutil.Str("IB_DATASET_PATH", cfg.Dataset.Path)

	if cfg.Model.MaxSequenceLength <= 0 {
		cfg.Model.MaxSequenceLength = 20
	}
	if cfg.Model.BatchSize <= 0 {
		cfg.Model.BatchSize = 8
	}
	return cfg, nil
}

func (m ModelConfig) WeightsPath() string   { return filepath.Join(m.Dir, m.WeightsFile) }
func (m ModelConfig) TokenizerPath() string { return filepath.Join(m.Dir, m.TokenizerFile) }
func (m ModelConfig) EncoderPath() string   { return filepath.Join(m.Dir, m.EncoderFile) }
