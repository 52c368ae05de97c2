package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())
	assert.Equal(t, time.Second, config.CounterTick())
	assert.Equal(t, 3*time.Second, config.FrozenPass())
	assert.Equal(t, 50*time.Millisecond, config.TickInterval())
	assert.Zero(t, config.AiMoveDelay())
}

func TestConfigValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"negative delay":    func(c *Config) { c.AiMoveDelayMs = -1 },
		"zero counter tick": func(c *Config) { c.CounterTickMs = 0 },
		"negative pass":     func(c *Config) { c.FrozenPassMs = -5 },
		"zero tick":         func(c *Config) { c.TickIntervalMs = 0 },
		"negative defense":  func(c *Config) { c.DefenseWeight = -0.1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			config := DefaultConfig()
			mutate(&config)
			assert.ErrorIs(t, config.Validate(), ErrInvalidSettings)
		})
	}
}

func TestConfigStoreUpdate(t *testing.T) {
	store := NewConfigStore(DefaultConfig())

	next := DefaultConfig()
	next.AiMoveDelayMs = 250
	require.NoError(t, store.Update(next))
	assert.Equal(t, 250, store.Get().AiMoveDelayMs)

	bad := next
	bad.CounterTickMs = 0
	assert.Error(t, store.Update(bad))
	assert.Equal(t, next, store.Get())
}
