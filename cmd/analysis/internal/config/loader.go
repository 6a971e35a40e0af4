package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".hll"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for tool settings.
const envPrefix = "HLL"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Load loads configuration from defaults, a YAML file and HLL_* environment
// variables, in increasing order of priority.
// If path is non-empty it must exist. Otherwise .hll.yaml is searched for in
// the working directory and $HOME, and its absence is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
	}

	readErr := v.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := v.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("sweep.precisions", DefaultSweepPrecisions)
	v.SetDefault("sweep.cardinalities", DefaultSweepCardinalities)
	v.SetDefault("sweep.trials", DefaultSweepTrials)
	v.SetDefault("sweep.workers", DefaultSweepWorkers)
	v.SetDefault("sweep.hash", DefaultHash)
	v.SetDefault("sweep.seed", 0)

	v.SetDefault("count.precision", DefaultCountPrecision)
	v.SetDefault("count.hash", DefaultHash)
	v.SetDefault("count.seed", 0)
	v.SetDefault("count.per_source", false)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}
