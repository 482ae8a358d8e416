// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Scoring platforms:
//     - CTFd: per-competition credentials live in the store, only client tuning here
//     - HTB: single tracked team, credentials and notify channel
//
//  2. Delivery:
//     - Discord: bot token and REST endpoint used for solve announcements
//
//  3. Infrastructure:
//     - Database: DuckDB configuration
//     - Credentials: badger-backed token cache
//     - Scheduler: poll intervals
//     - Server: read-only HTTP API
//
//  4. Observability:
//     - Logging: Log levels and output formats
//
// Config is immutable after LoadWithKoanf() and safe for concurrent reads.
type Config struct {
	CTFd         CTFdConfig        `koanf:"ctfd"`
	HTB          HTBConfig         `koanf:"htb"`
	Discord      DiscordConfig     `koanf:"discord"`
	Database     DatabaseConfig    `koanf:"database"`
	Credentials  CredentialsConfig `koanf:"credentials"`
	Scheduler    SchedulerConfig   `koanf:"scheduler"`
	Server       ServerConfig      `koanf:"server"`
	Security     SecurityConfig    `koanf:"security"`
	Logging      LoggingConfig     `koanf:"logging"`
	Competitions []CompetitionSeed `koanf:"competitions"`
}

// CTFdConfig tunes the HTTP client used for every CTFd-style competition.
// Competition URLs and API tokens are stored per competition in the database.
//
// Environment Variables:
//   - CTFD_TIMEOUT: per-request timeout (default: 5s)
type CTFdConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// HTBConfig holds HackTheBox team tracking settings.
//
// Environment Variables:
//   - HTB_ENABLED: enable HTB tracking (default: false)
//   - HTB_API_URL: API base URL (default: https://www.hackthebox.eu/api/v4)
//   - HTB_EMAIL, HTB_PASSWORD: login credentials
//   - HTB_TEAM_ID: team to track
//   - HTB_CHANNEL_ID: Discord channel for announcements (0 disables messages)
//   - HTB_TIMEOUT: per-request timeout (default: 5s)
type HTBConfig struct {
	Enabled   bool          `koanf:"enabled"`
	APIURL    string        `koanf:"api_url"`
	Email     string        `koanf:"email"`
	Password  string        `koanf:"password"`
	TeamID    int64         `koanf:"team_id"`
	ChannelID int64         `koanf:"channel_id"`
	Timeout   time.Duration `koanf:"timeout"`
}

// DiscordConfig holds settings for the Discord REST sender.
//
// Environment Variables:
//   - DISCORD_ENABLED: send announcements (default: true)
//   - DISCORD_API_URL: REST base URL (default: https://discord.com/api/v10)
//   - DISCORD_TOKEN: bot token
//   - DISCORD_RATE_LIMIT: minimum spacing between requests (default: 1s)
//   - DISCORD_TIMEOUT: per-request timeout (default: 10s)
type DiscordConfig struct {
	Enabled   bool          `koanf:"enabled"`
	APIURL    string        `koanf:"api_url"`
	Token     string        `koanf:"token"`
	RateLimit time.Duration `koanf:"rate_limit"`
	Timeout   time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // Number of DuckDB threads (0 = use NumCPU)
}

// CredentialsConfig holds the provider token cache settings.
type CredentialsConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// SchedulerConfig holds the fixed poll intervals.
//
// Environment Variables:
//   - SOLVE_POLL_INTERVAL: solve detection interval (default: 15s)
//   - REFRESH_INTERVAL: scoreboard and challenge refresh interval (default: 60s)
type SchedulerConfig struct {
	SolveInterval   time.Duration `koanf:"solve_interval"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds the API's browser and abuse controls.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// CompetitionSeed describes a CTFd competition started at boot when no
// competition with the same name exists yet. Only settable from the config file.
type CompetitionSeed struct {
	Name      string `koanf:"name"`
	BaseURL   string `koanf:"base_url"`
	APIKey    string `koanf:"api_key"`
	ChannelID int64  `koanf:"channel_id"`
}
