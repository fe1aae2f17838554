// Package config defines environment configuration structs and loaders.
package config

import (
	"github.com/caarlos0/env/v11"
)

// TrainerEnvConfig holds the training hyperparameters.
type TrainerEnvConfig struct {
	C                  float64 `env:"RANK_C" envDefault:"1.0"`
	Epsilon            float64 `env:"RANK_EPSILON" envDefault:"0.001"`
	MaxIterations      int     `env:"RANK_MAX_ITERATIONS" envDefault:"10000"`
	NonnegativeWeights bool    `env:"RANK_NONNEGATIVE_WEIGHTS" envDefault:"false"`
	// 0 picks one worker per CPU
	Workers int `env:"RANK_WORKERS" envDefault:"0"`
	Verbose bool `env:"RANK_VERBOSE" envDefault:"false"`
}

// DataEnvConfig says where the ranktrain tool reads its dataset from and
// where it writes the trained model. Exactly one of DatasetPath and
// DatasetURL should be set; a path ending in .gz is read gzip-compressed.
type DataEnvConfig struct {
	DatasetPath string `env:"RANK_DATASET_PATH"`
	DatasetURL  string `env:"RANK_DATASET_URL"`
	ModelPath   string `env:"RANK_MODEL_PATH" envDefault:"model.json"`
}

// AppConfig is everything the ranktrain tool needs.
type AppConfig struct {
	TrainerEnvConfig
	DataEnvConfig
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
