package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	assert.Equal(t, "/presence/ws", c.GetString("presence.endpoint"))
	assert.Equal(t, 100*time.Millisecond, c.GetDuration("presence.throttle.interval"))
	assert.Equal(t, 60*time.Second, c.GetDuration("presence.reaper.timeout"))
	assert.Equal(t, 10*time.Second, c.GetDuration("presence.reaper.interval"))
	assert.Equal(t, "info", c.GetString("presence.logger.level"))
}

func TestNewConfigOverrides(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set("presence.endpoint", "/custom/ws")
	v.Set("presence.throttle.interval", 250*time.Millisecond)

	c := NewConfig(v)
	assert.Equal(t, "/custom/ws", c.GetString("presence.endpoint"))
	assert.Equal(t, 250*time.Millisecond, c.GetDuration("presence.throttle.interval"))
	// Untouched keys keep their defaults.
	assert.Equal(t, 60*time.Second, c.GetDuration("presence.reaper.timeout"))
}
