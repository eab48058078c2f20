// Package config provides configuration management using Viper, plus the
// overlay that binds numeric retry tuning from the config tree onto the
// retry presets.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/deepquery/dqf/retry"
)

// Config wraps a Viper configuration instance.
type Config struct {
	v *viper.Viper
}

// New creates a new Config instance.
func New() *Config {
	return &Config{v: viper.New()}
}

// Load reads configuration from the given file and, when envFilePath is
// non-empty, from a .env file. Environment variables and command-line
// flags are bound as overrides.
func (c *Config) Load(configFilePath, envFilePath, envPrefix string) error {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			return fmt.Errorf("failed to load .env file %s: %w", envFilePath, err)
		}
	}

	c.v.AutomaticEnv()

	if envPrefix != "" {
		c.v.SetEnvPrefix(envPrefix)
	}

	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	c.v.SetConfigFile(configFilePath)

	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", configFilePath, err)
	}

	return c.v.BindPFlags(pflag.CommandLine)
}

// DefineFlag declares a command-line flag (short and long form) and
// binds it to a configuration key.
func (c *Config) DefineFlag(short, long, configKey string, defaultValue any, usage string) (err error) {
	switch v := defaultValue.(type) {
	case string:
		pflag.StringP(long, short, v, usage)
		err = c.v.BindPFlag(configKey, pflag.Lookup(long))
	case int:
		pflag.IntP(long, short, v, usage)
		err = c.v.BindPFlag(configKey, pflag.Lookup(long))
	case bool:
		pflag.BoolP(long, short, v, usage)
		err = c.v.BindPFlag(configKey, pflag.Lookup(long))
	case float64:
		pflag.Float64P(long, short, v, usage)
		err = c.v.BindPFlag(configKey, pflag.Lookup(long))
	case time.Duration:
		pflag.DurationP(long, short, v, usage)
		err = c.v.BindPFlag(configKey, pflag.Lookup(long))
	}
	return
}

// ParseFlags parses the declared command-line flags.
func (c *Config) ParseFlags() {
	pflag.Parse()
}

// GetString returns the string value for key.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt returns the integer value for key.
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool returns the boolean value for key.
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetFloat64 returns the float value for key.
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetDuration returns the duration value for key.
func (c *Config) GetDuration(key string) time.Duration {
	return c.v.GetDuration(key)
}

// GetStringSlice returns the string-slice value for key.
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// IsSet reports whether key has a value in any bound source.
func (c *Config) IsSet(key string) bool {
	return c.v.IsSet(key)
}

// Unmarshal decodes the subtree under key into out.
func (c *Config) Unmarshal(key string, out any) error {
	return c.v.UnmarshalKey(key, out)
}

// RetryPolicy overlays retry tuning found under key onto base and
// returns the result. Recognized subkeys: max_retries, initial_delay,
// backoff_factor, max_delay. Absent subkeys keep the base value, so a
// config file only needs to name what it changes.
func (c *Config) RetryPolicy(key string, base retry.Policy) retry.Policy {
	if c.v.IsSet(key + ".max_retries") {
		base.MaxRetries = c.v.GetInt(key + ".max_retries")
	}
	if c.v.IsSet(key + ".initial_delay") {
		base.InitialDelay = c.v.GetDuration(key + ".initial_delay")
	}
	if c.v.IsSet(key + ".backoff_factor") {
		base.BackoffFactor = c.v.GetFloat64(key + ".backoff_factor")
	}
	if c.v.IsSet(key + ".max_delay") {
		base.MaxDelay = c.v.GetDuration(key + ".max_delay")
	}
	return base
}
