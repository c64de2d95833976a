// Package config loads runner configuration for the csvcheck CLI.
//
// Values resolve in this order, highest first: command-line flags, CSVCHECK_*
// environment variables, the config file, built-in defaults. The config file
// is optional; when no path is given, csvcheck.yaml is looked up in the
// working directory and then in ~/.csvcheck.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "CSVCHECK"

// Config holds the runner configuration.
type Config struct {
	// Root is where data file discovery starts.
	Root string `mapstructure:"root" validate:"required"`

	// DataFile, when set, skips discovery.
	DataFile string `mapstructure:"data_file"`

	// Suite is the path of a suite file. Empty selects the built-in suite.
	Suite string `mapstructure:"suite"`

	// Markers is a marker expression selecting which checks run.
	Markers string `mapstructure:"markers"`

	// Format is the report format.
	Format string `mapstructure:"format" validate:"oneof=text json"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// flagKeys maps flag names to config keys for BindFlags.
var flagKeys = map[string]string{
	"root":       "root",
	"data":       "data_file",
	"markers":    "markers",
	"format":     "format",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Root:   ".",
		Format: "text",
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load loads configuration from file, environment and flags.
// flags may be nil; only flags named in flagKeys are bound.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".csvcheck"))
		}
		v.SetConfigName("csvcheck")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %q: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional when not named explicitly
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field values against their allowed sets.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s=%q fails %q", fe.Namespace(), fmt.Sprint(fe.Value()), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("root", d.Root)
	v.SetDefault("data_file", d.DataFile)
	v.SetDefault("suite", d.Suite)
	v.SetDefault("markers", d.Markers)
	v.SetDefault("format", d.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}
