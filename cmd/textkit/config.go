package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is everything textkit reads from its config file, environment and flags.
type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	Match MatchConfig `mapstructure:"match"`
	Bench BenchConfig `mapstructure:"bench"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

type MatchConfig struct {
	Patterns []string `mapstructure:"patterns"`
	Fold     bool     `mapstructure:"fold"`
	Workers  int      `mapstructure:"workers"`
}

type BenchConfig struct {
	Rounds int  `mapstructure:"rounds"`
	Block  int  `mapstructure:"block"`
	Jitter bool `mapstructure:"jitter"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("match.workers", 4)
	v.SetDefault("bench.rounds", 400)
	v.SetDefault("bench.block", 10_000)
}

// loadConfig reads path, or textkit.{yaml,toml,json} from the usual places if path is empty.
// A missing default config file is fine; a missing explicit one is not.
func loadConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("TEXTKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("textkit")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/textkit")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read configuration file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}
	if cfg.Match.Workers < 1 {
		cfg.Match.Workers = 1
	}
	return &cfg, nil
}
