package config

import "time"

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowOrigins    []string      `yaml:"allow_origins"`
}

type DatabaseConfig struct {
	// Driver selects the GORM driver: "sqlite" (default) or "postgres".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
}

// ModelConfig holds classifier hyperparameters and artifact locations.
// The three artifact paths are fixed configuration, never user input.
type ModelConfig struct {
	Dir           string `yaml:"dir"`
	WeightsFile   string `yaml:"weights_file"`
	TokenizerFile string `yaml:"tokenizer_file"`
	EncoderFile   string `yaml:"encoder_file"`

	MaxSequenceLength int     `yaml:"max_sequence_length"`
	EmbeddingDim      int     `yaml:"embedding_dim"`
	LSTMUnits         int     `yaml:"lstm_units"`
	HiddenUnits       int     `yaml:"hidden_units"`
	DropoutRecurrent  float64 `yaml:"dropout_recurrent"`
	DropoutHidden     float64 `yaml:"dropout_hidden"`
	BatchSize         int     `yaml:"batch_size"`
	LearningRate      float64 `yaml:"learning_rate"`
	Patience          int     `yaml:"patience"`
	Seed              int64   `yaml:"seed"`
}

type DatasetConfig struct {
	// Path of the JSON exchange file used by sync/export.
	Path string `yaml:"path"`
}

type Config struct {
	Env      string         `yaml:"env"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Model    ModelConfig    `yaml:"model"`
	Dataset  DatasetConfig  `yaml:"dataset"`
}
