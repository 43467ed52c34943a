package config

import "sync"

type Source interface {
	// Load reads the source into c. With propagate set, sections notify
	// their subscribers about every value that changed.
	Load(c *Config, propagate bool) error
}

type ConfigManager struct {
	*Config
	s  Source
	mu sync.Mutex
}

func NewConfigManager(s Source) *ConfigManager {
	c := DefaultConfig()
	return &ConfigManager{
		s:      s,
		Config: &c,
	}
}

func (cm *ConfigManager) Load() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	return cm.s.Load(cm.Config, false)
}

func (cm *ConfigManager) Reload() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	// check file before loading content
	testC := DefaultConfig()
	if err := cm.s.Load(&testC, false); err != nil {
		return err
	}

	return cm.s.Load(cm.Config, true)
}
