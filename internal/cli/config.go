package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the CLI configuration. Precedence: flag > STOREFRONT_* env >
// .storefront.yaml > defaults.
type Config struct {
	API      string        `mapstructure:"api"`
	DataDir  string        `mapstructure:"data_dir"`
	Timeout  time.Duration `mapstructure:"timeout"`
	LogLevel string        `mapstructure:"log_level"`
	NoColor  bool          `mapstructure:"no_color"`
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storefront"
	}
	return filepath.Join(home, ".storefront")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api", "http://localhost:8080")
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("log_level", "warn")
}

// loadConfig reads the config file (if any) and the environment into v,
// which already has the command flags bound.
func loadConfig(v *viper.Viper, cfgFile string) (Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".storefront")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/storefront")
	}

	v.SetEnvPrefix("STOREFRONT")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.API == "" {
		return Config{}, errors.New("api url is required")
	}
	if cfg.DataDir == "" {
		return Config{}, errors.New("data dir is required")
	}
	if cfg.Timeout <= 0 {
		return Config{}, errors.New("timeout must be positive")
	}
	return cfg, nil
}
