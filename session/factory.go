package session

import (
	"fmt"

	"github.com/itsneelabh/storefront/core"
)

// New builds the Manager selected by cfg.Provider
func New(cfg core.SessionConfig, logger core.Logger) (Manager, error) {
	config := Config{TTL: cfg.TTL, CleanupInterval: cfg.CleanupInterval}

	switch cfg.Provider {
	case "", "memory":
		return NewMemoryManager(config), nil
	case "redis":
		if cfg.RedisURL == "" {
			return nil, &core.OpError{
				Op:      "session.New",
				Kind:    "config",
				Message: "redis session provider needs a Redis URL",
				Err:     core.ErrMissingConfiguration,
			}
		}
		return NewRedisManager(cfg.RedisURL, config, logger)
	default:
		return nil, &core.OpError{
			Op:   "session.New",
			Kind: "config",
			Err:  fmt.Errorf("unknown session provider %q: %w", cfg.Provider, core.ErrInvalidConfiguration),
		}
	}
}
