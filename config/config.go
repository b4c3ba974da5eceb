// Package config contains configuration of the stake ledger CLI.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultLogLevel is used when Logger.Level is not set.
const DefaultLogLevel = "info"

// Config is a top-level configuration structure.
type Config struct {
	Logger  Logger                   `yaml:"Logger"`
	Storage dbconfig.DBConfiguration `yaml:"Storage"`
	// Neo address of the custody pool account.
	Pool string `yaml:"Pool"`
	// Optional FS chain section used to read on-chain records.
	Chain Chain `yaml:"Chain"`
}

// Logger configures the application log.
type Logger struct {
	Level string `yaml:"Level"`
}

// Chain points to the deployed stake contract.
type Chain struct {
	Endpoint string `yaml:"Endpoint"`
	// Contract script hash in little-endian hex.
	Contract string `yaml:"Contract"`
}

// Default returns configuration working on the in-memory storage.
func Default() Config {
	return Config{
		Logger:  Logger{Level: DefaultLogLevel},
		Storage: dbconfig.DBConfiguration{Type: "inmemory"},
	}
}

// Load reads YAML configuration from the file. Missing fields are taken from
// Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration. Missing fields are taken from Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode YAML: %w", err)
	}

	if cfg.Logger.Level == "" {
		cfg.Logger.Level = DefaultLogLevel
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if c.Storage.Type == "" {
		return errors.New("missing storage type")
	}

	if _, err := c.PoolAccount(); err != nil {
		return err
	}

	if c.Chain.Contract != "" {
		if _, err := util.Uint160DecodeStringLE(c.Chain.Contract); err != nil {
			return fmt.Errorf("invalid contract hash: %w", err)
		}
	}

	return nil
}

// PoolAccount decodes Pool address. Empty address means zero account.
func (c Config) PoolAccount() (util.Uint160, error) {
	if c.Pool == "" {
		return util.Uint160{}, nil
	}

	res, err := address.StringToUint160(c.Pool)
	if err != nil {
		return res, fmt.Errorf("invalid pool address: %w", err)
	}

	return res, nil
}

// NewLogger builds production logger of the configured level.
func (c Config) NewLogger() (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(c.Logger.Level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
