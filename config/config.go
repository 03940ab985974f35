package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is a wrapper around a viper config holding every tunable of the
// presence client, preloaded with working defaults.
type Config struct {
	config *viper.Viper
}

// NewConfig creates a new config with defaults applied. An optional
// caller-provided viper instance overrides defaults key by key.
func NewConfig(cfgs ...*viper.Viper) *Config {
	var cfg *viper.Viper
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	} else {
		cfg = viper.New()
	}

	cfg.SetEnvPrefix("presence")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()
	c := &Config{config: cfg}
	c.fillDefaultValues()
	return c
}

func (c *Config) fillDefaultValues() {
	defaultsMap := map[string]interface{}{
		"presence.endpoint":                "/presence/ws",
		"presence.dialtimeout":             10 * time.Second,
		"presence.writetimeout":            5 * time.Second,
		"presence.throttle.interval":       100 * time.Millisecond,
		"presence.reaper.interval":         10 * time.Second,
		"presence.reaper.timeout":          60 * time.Second,
		"presence.logger.level":            "info",
		"presence.logger.dir":              "",
		"presence.logger.maxsize":          128,
		"presence.logger.maxage":           7,
		"presence.logger.maxbackups":       7,
		"presence.logger.localtime":        true,
		"presence.logger.compress":         false,
		"presence.eventlog.dir":            "",
		"presence.metrics.statsd.host":     "localhost:8125",
		"presence.metrics.statsd.prefix":   "presence.",
		"presence.metrics.statsd.rate":     1.0,
		"presence.metrics.prometheus.port": 9090,
	}

	for param := range defaultsMap {
		if c.config.Get(param) == nil {
			c.config.SetDefault(param, defaultsMap[param])
		}
	}
}

// GetDuration returns a duration from the config
func (c *Config) GetDuration(s string) time.Duration {
	return c.config.GetDuration(s)
}

// GetString returns a string from the config
func (c *Config) GetString(s string) string {
	return c.config.GetString(s)
}

// GetInt returns an int from the config
func (c *Config) GetInt(s string) int {
	return c.config.GetInt(s)
}

// GetBool returns a boolean from the config
func (c *Config) GetBool(s string) bool {
	return c.config.GetBool(s)
}

// GetFloat64 returns a float64 from the config
func (c *Config) GetFloat64(s string) float64 {
	return c.config.GetFloat64(s)
}

// Viper exposes the underlying viper instance for components that take
// raw viper (logger init, event log).
func (c *Config) Viper() *viper.Viper {
	return c.config
}
