// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package config

import "fmt"

// Validate checks that the configuration is complete and internally
// consistent. Error messages name the environment variable to fix.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateHub(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("WEBSOCKET_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("READ_HEADER_TIMEOUT must be positive, got %s", c.Server.ReadHeaderTimeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.Server.ShutdownTimeout)
	}
	return nil
}

func (c *Config) validateHub() error {
	if c.Hub.RateLimitMessages < 1 {
		return fmt.Errorf("HUB_RATE_LIMIT_MESSAGES must be at least 1, got %d", c.Hub.RateLimitMessages)
	}
	if c.Hub.RateLimitWindow <= 0 {
		return fmt.Errorf("HUB_RATE_LIMIT_WINDOW must be positive, got %s", c.Hub.RateLimitWindow)
	}
	if c.Hub.HeartbeatInterval <= 0 {
		return fmt.Errorf("HUB_HEARTBEAT_INTERVAL must be positive, got %s", c.Hub.HeartbeatInterval)
	}
	if c.Hub.IdleSweepInterval <= 0 {
		return fmt.Errorf("HUB_IDLE_SWEEP_INTERVAL must be positive, got %s", c.Hub.IdleSweepInterval)
	}
	if c.Hub.IdleTimeout <= 0 {
		return fmt.Errorf("HUB_IDLE_TIMEOUT must be positive, got %s", c.Hub.IdleTimeout)
	}
	if c.Hub.IdleTimeout < c.Hub.HeartbeatInterval {
		return fmt.Errorf("HUB_IDLE_TIMEOUT (%s) must not be shorter than HUB_HEARTBEAT_INTERVAL (%s)",
			c.Hub.IdleTimeout, c.Hub.HeartbeatInterval)
	}
	if c.Hub.OutboxSize < 1 {
		return fmt.Errorf("HUB_OUTBOX_SIZE must be at least 1, got %d", c.Hub.OutboxSize)
	}
	if c.Hub.MaxMessageSize < 1 {
		return fmt.Errorf("HUB_MAX_MESSAGE_SIZE must be at least 1, got %d", c.Hub.MaxMessageSize)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin (use \"*\" to allow any)")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.UpgradeRateLimit < 1 {
			return fmt.Errorf("UPGRADE_RATE_LIMIT must be at least 1, got %d", c.Security.UpgradeRateLimit)
		}
		if c.Security.UpgradeRateWindow <= 0 {
			return fmt.Errorf("UPGRADE_RATE_WINDOW must be positive, got %s", c.Security.UpgradeRateWindow)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
