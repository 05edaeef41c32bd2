package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/chartly-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Chartly configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "server_addr: %s\n", c.ServerAddr)
		fmt.Fprintf(w, "server_read_timeout_sec: %d\n", c.ServerReadTimeoutSec)
		fmt.Fprintf(w, "server_write_timeout_sec: %d\n", c.ServerWriteTimeoutSec)
		fmt.Fprintf(w, "cors: %t\n", c.CORS)
		fmt.Fprintf(w, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(w, "log_format: %s\n", c.LogFormat)
		fmt.Fprintf(w, "store_backend: %s\n", c.StoreBackend)
		fmt.Fprintf(w, "store_dir: %s\n", c.StoreDir)
		if c.StoreBackend == "redis" {
			fmt.Fprintf(w, "redis_addr: %s\n", c.RedisAddr)
			fmt.Fprintf(w, "redis_password: %s\n", mask(c.RedisPassword))
			fmt.Fprintf(w, "redis_db: %d\n", c.RedisDB)
		}
		fmt.Fprintf(w, "store_key_prefix: %s\n", c.StoreKeyPrefix)
		if c.RemoteURL != "" {
			fmt.Fprintf(w, "remote_url: %s\n", c.RemoteURL)
		}
		fmt.Fprintf(w, "http_timeout_sec: %d\n", c.HTTPTimeoutSec)
		fmt.Fprintf(w, "retry_max_attempts: %d\n", c.RetryMaxAttempts)
		fmt.Fprintf(w, "retry_base_delay_ms: %d\n", c.RetryBaseDelayMs)
		fmt.Fprintf(w, "max_rows: %d\n", c.MaxRows)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "server_addr":
			cfg.ServerAddr = val
		case "server_read_timeout_sec":
			if err := setPositiveInt(key, val, &cfg.ServerReadTimeoutSec); err != nil {
				return err
			}
		case "server_write_timeout_sec":
			if err := setPositiveInt(key, val, &cfg.ServerWriteTimeoutSec); err != nil {
				return err
			}
		case "cors":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for cors: %v", val)
			}
			cfg.CORS = b
		case "log_level":
			switch strings.ToLower(val) {
			case "trace", "debug", "info", "warn", "warning", "error":
				cfg.LogLevel = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_level: %s (use trace|debug|info|warn|error)", val)
			}
		case "log_format":
			switch strings.ToLower(val) {
			case "json", "console":
				cfg.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use json or console)", val)
			}
		case "store_backend":
			switch strings.ToLower(val) {
			case "file", "badger", "redis":
				cfg.StoreBackend = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid store_backend: %s (use file, badger or redis)", val)
			}
		case "store_dir":
			cfg.StoreDir = val
		case "redis_addr":
			cfg.RedisAddr = val
		case "redis_password":
			cfg.RedisPassword = val
		case "redis_db":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for redis_db: %v", val)
			}
			cfg.RedisDB = i
		case "store_key_prefix":
			cfg.StoreKeyPrefix = val
		case "remote_url":
			cfg.RemoteURL = val
		case "http_timeout_sec":
			if err := setPositiveInt(key, val, &cfg.HTTPTimeoutSec); err != nil {
				return err
			}
		case "retry_max_attempts":
			if err := setPositiveInt(key, val, &cfg.RetryMaxAttempts); err != nil {
				return err
			}
		case "retry_base_delay_ms":
			if err := setPositiveInt(key, val, &cfg.RetryBaseDelayMs); err != nil {
				return err
			}
		case "max_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for max_rows: %v", val)
			}
			cfg.MaxRows = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		return saveConfig(cmd)
	},
}

func setPositiveInt(key, val string, dst *int) error {
	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return fmt.Errorf("invalid positive int for %s: %v", key, val)
	}
	*dst = i
	return nil
}

func saveConfig(cmd *cobra.Command) error {
	if err := cfgpkg.Save(cfg, cfgFile); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
