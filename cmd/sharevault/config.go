package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the configuration of the utility. Every field can be overridden
// by the command line flag or environment variable of the same meaning.
type Config struct {
	// WebSocket endpoint of the Neo RPC server, e.g. ws://localhost:30333/ws.
	RPCEndpoint string `yaml:"rpc_endpoint"`

	Wallet WalletConfig `yaml:"wallet"`

	// Address of the vault contract, Neo address or LE hex.
	Vault string `yaml:"vault"`

	// Logging level: debug, info, warn or error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// Listen address of the Prometheus endpoint served by 'watch'.
	MetricsAddress string `yaml:"metrics_address"`
}

// WalletConfig points to the account signing transactions.
type WalletConfig struct {
	Path string `yaml:"path"`
	// Account of the wallet, optional for single-account wallets.
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
}

const (
	defaultLogLevel       = "info"
	defaultMetricsAddress = "localhost:9090"
)

// LoadConfig reads YAML configuration from the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &cfg, nil
}

// applyFlags overrides config values by the global flags set explicitly or
// through the environment and fills the defaults.
func (cfg *Config) applyFlags(c *cli.Context) {
	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{"rpc", &cfg.RPCEndpoint},
		{"wallet", &cfg.Wallet.Path},
		{"address", &cfg.Wallet.Address},
		{"password", &cfg.Wallet.Password},
		{"vault", &cfg.Vault},
		{"log-level", &cfg.LogLevel},
		{"metrics", &cfg.MetricsAddress},
	} {
		if v := c.String(o.flag); v != "" {
			*o.dst = v
		}
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.MetricsAddress == "" {
		cfg.MetricsAddress = defaultMetricsAddress
	}
}

func (cfg *Config) requireRPC() error {
	if cfg.RPCEndpoint == "" {
		return errors.New("missing Neo RPC endpoint")
	}
	return nil
}

func (cfg *Config) requireVault() error {
	if err := cfg.requireRPC(); err != nil {
		return err
	}
	if cfg.Vault == "" {
		return errors.New("missing vault address")
	}
	return nil
}

func (cfg *Config) requireWallet() error {
	if cfg.Wallet.Path == "" {
		return errors.New("missing wallet path")
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level

	err := lvl.Set(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	return cfg.Build()
}
