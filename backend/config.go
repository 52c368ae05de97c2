package main

import (
	"fmt"
	"sync"
	"time"
)

type Config struct {
	AiMoveDelayMs  int            `json:"ai_move_delay_ms"`
	CounterTickMs  int            `json:"counter_tick_ms"`
	FrozenPassMs   int            `json:"frozen_pass_ms"`
	TickIntervalMs int            `json:"tick_interval_ms"`
	DefenseWeight  float64        `json:"defense_weight"`
	Heuristics     PatternWeights `json:"heuristics"`
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func DefaultConfig() Config {
	return Config{
		AiMoveDelayMs:  0,
		CounterTickMs:  1000,
		FrozenPassMs:   3000,
		TickIntervalMs: 50,
		DefenseWeight:  DefaultDefenseWeight,
		Heuristics:     DefaultPatternWeights(),
	}
}

func (c Config) Validate() error {
	switch {
	case c.AiMoveDelayMs < 0:
		return fmt.Errorf("%w: ai_move_delay_ms must be >= 0", ErrInvalidSettings)
	case c.CounterTickMs <= 0:
		return fmt.Errorf("%w: counter_tick_ms must be > 0", ErrInvalidSettings)
	case c.FrozenPassMs < 0:
		return fmt.Errorf("%w: frozen_pass_ms must be >= 0", ErrInvalidSettings)
	case c.TickIntervalMs <= 0:
		return fmt.Errorf("%w: tick_interval_ms must be > 0", ErrInvalidSettings)
	case c.DefenseWeight < 0:
		return fmt.Errorf("%w: defense_weight must be >= 0", ErrInvalidSettings)
	}
	return nil
}

func (c Config) AiMoveDelay() time.Duration {
	return time.Duration(c.AiMoveDelayMs) * time.Millisecond
}

func (c Config) CounterTick() time.Duration {
	return time.Duration(c.CounterTickMs) * time.Millisecond
}

func (c Config) FrozenPass() time.Duration {
	return time.Duration(c.FrozenPassMs) * time.Millisecond
}

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

var configStore = NewConfigStore(DefaultConfig())

func NewConfigStore(config Config) *ConfigStore {
	return &ConfigStore{config: config}
}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) error {
	if err := newConfig.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
	return nil
}
