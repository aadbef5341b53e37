// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

// Package config loads Livehub configuration with Koanf v2 from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables (highest priority).
package config

import "time"

// Config is the root configuration for the Livehub server.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Hub      HubConfig      `koanf:"hub"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds the HTTP/WebSocket listener settings.
type ServerConfig struct {
	// Port is the listener port (WEBSOCKET_PORT).
	Port int `koanf:"port"`

	// Host is the listener bind address.
	Host string `koanf:"host"`

	// ReadHeaderTimeout bounds the time spent reading request headers.
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// HubConfig holds the connection hub tunables.
type HubConfig struct {
	// RateLimitMessages is the per-connection message budget per window.
	RateLimitMessages int `koanf:"rate_limit_messages"`

	// RateLimitWindow is the fixed rate-limit window length.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// HeartbeatInterval is how often unresponsive connections are probed
	// and reaped.
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval"`

	// IdleSweepInterval is how often the independent last-activity sweep
	// runs. It reaps connections even when the transport exposes no
	// ping/pong support.
	IdleSweepInterval time.Duration `koanf:"idle_sweep_interval"`

	// IdleTimeout is the last-activity age beyond which a connection is
	// force-disconnected by the idle sweep.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// OutboxSize is the per-connection outbound queue capacity. On
	// overflow the oldest queued frame is evicted (best-effort delivery).
	OutboxSize int `koanf:"outbox_size"`

	// MaxMessageSize is the largest accepted inbound frame in bytes.
	MaxMessageSize int64 `koanf:"max_message_size"`
}

// SecurityConfig holds listener-level protections.
type SecurityConfig struct {
	// CORSOrigins lists origins accepted for WebSocket upgrades and CORS.
	// "*" allows any origin.
	CORSOrigins []string `koanf:"cors_origins"`

	// UpgradeRateLimit bounds WebSocket upgrade attempts per IP per window.
	UpgradeRateLimit int `koanf:"upgrade_rate_limit"`

	// UpgradeRateWindow is the window for UpgradeRateLimit.
	UpgradeRateWindow time.Duration `koanf:"upgrade_rate_window"`

	// RateLimitDisabled disables the upgrade rate limiter (tests only).
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			Host:              "0.0.0.0",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Hub: HubConfig{
			RateLimitMessages: 60,
			RateLimitWindow:   60 * time.Second,
			HeartbeatInterval: 30 * time.Second,
			IdleSweepInterval: 60 * time.Second,
			IdleTimeout:       60 * time.Second,
			OutboxSize:        64,
			MaxMessageSize:    64 * 1024, // 64 KB
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			UpgradeRateLimit:  30,
			UpgradeRateWindow: time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
