package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DirName is the per-user directory under $HOME holding config and datasets.
const DirName = ".chartly"

// Global configuration structure.
type Global struct {
	// HTTP server
	ServerAddr            string `mapstructure:"server_addr" yaml:"server_addr"`
	ServerReadTimeoutSec  int    `mapstructure:"server_read_timeout_sec" yaml:"server_read_timeout_sec"`
	ServerWriteTimeoutSec int    `mapstructure:"server_write_timeout_sec" yaml:"server_write_timeout_sec"`
	CORS                  bool   `mapstructure:"cors" yaml:"cors"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Dataset store
	StoreBackend   string `mapstructure:"store_backend" yaml:"store_backend"`
	StoreDir       string `mapstructure:"store_dir" yaml:"store_dir"`
	RedisAddr      string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword  string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB        int    `mapstructure:"redis_db" yaml:"redis_db"`
	StoreKeyPrefix string `mapstructure:"store_key_prefix" yaml:"store_key_prefix"`

	// Remote suggestion service
	RemoteURL        string `mapstructure:"remote_url" yaml:"remote_url"`
	HTTPTimeoutSec   int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int    `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int    `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`

	// Ingestion
	MaxRows int `mapstructure:"max_rows" yaml:"max_rows"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Global {
	return &Global{
		ServerAddr:            ":8080",
		ServerReadTimeoutSec:  30,
		ServerWriteTimeoutSec: 30,
		CORS:                  true,
		LogLevel:              "info",
		LogFormat:             "console",
		StoreBackend:          "file",
		RedisAddr:             "localhost:6379",
		StoreKeyPrefix:        "chartly:",
		HTTPTimeoutSec:        30,
		RetryMaxAttempts:      3,
		RetryBaseDelayMs:      500,
		MaxRows:               100000,
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.chartly/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CHARTLY")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("server_addr", d.ServerAddr)
	v.SetDefault("server_read_timeout_sec", d.ServerReadTimeoutSec)
	v.SetDefault("server_write_timeout_sec", d.ServerWriteTimeoutSec)
	v.SetDefault("cors", d.CORS)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("store_backend", d.StoreBackend)
	v.SetDefault("store_dir", "")
	v.SetDefault("redis_addr", d.RedisAddr)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("store_key_prefix", d.StoreKeyPrefix)
	v.SetDefault("remote_url", "")
	v.SetDefault("http_timeout_sec", d.HTTPTimeoutSec)
	v.SetDefault("retry_max_attempts", d.RetryMaxAttempts)
	v.SetDefault("retry_base_delay_ms", d.RetryBaseDelayMs)
	v.SetDefault("max_rows", d.MaxRows)

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.StoreDir == "" {
		c.StoreDir = filepath.Join(dir, "datasets")
	}
	return &c, nil
}

// Dir resolves ~/.chartly.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, DirName), nil
}
