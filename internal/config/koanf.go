// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ctftracker/config.yaml",
	"/etc/ctftracker/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultHTBAPIURL is the public HackTheBox v4 API.
const DefaultHTBAPIURL = "https://www.hackthebox.eu/api/v4"

// DefaultDiscordAPIURL is the Discord REST API base.
const DefaultDiscordAPIURL = "https://discord.com/api/v10"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		CTFd: CTFdConfig{
			Timeout: 5 * time.Second,
		},
		HTB: HTBConfig{
			Enabled: false,
			APIURL:  DefaultHTBAPIURL,
			Timeout: 5 * time.Second,
		},
		Discord: DiscordConfig{
			Enabled:   true,
			APIURL:    DefaultDiscordAPIURL,
			RateLimit: time.Second,
			Timeout:   10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/ctftracker.duckdb",
			MaxMemory: "512MB",
			Threads:   0,
		},
		Credentials: CredentialsConfig{
			Path:     "/data/credentials",
			InMemory: false,
		},
		Scheduler: SchedulerConfig{
			SolveInterval:   15 * time.Second,
			RefreshInterval: 60 * time.Second,
		},
		Server: ServerConfig{
			Port:            8010,
			Host:            "127.0.0.1",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"http://localhost:3000"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// CTFd
	"ctfd_timeout": "ctfd.timeout",

	// HTB
	"htb_enabled":    "htb.enabled",
	"htb_api_url":    "htb.api_url",
	"htb_email":      "htb.email",
	"htb_password":   "htb.password",
	"htb_team_id":    "htb.team_id",
	"htb_channel_id": "htb.channel_id",
	"htb_timeout":    "htb.timeout",

	// Discord
	"discord_enabled":    "discord.enabled",
	"discord_api_url":    "discord.api_url",
	"discord_token":      "discord.token",
	"discord_rate_limit": "discord.rate_limit",
	"discord_timeout":    "discord.timeout",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Credential cache
	"credentials_path":      "credentials.path",
	"credentials_in_memory": "credentials.in_memory",

	// Scheduler
	"solve_poll_interval": "scheduler.solve_interval",
	"refresh_interval":    "scheduler.refresh_interval",

	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Security
	"allowed_origin":      "security.cors_origins",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTB_EMAIL -> htb.email
//   - DISCORD_TOKEN -> discord.token
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
//   - ALLOWED_ORIGIN -> security.cors_origins
//
// Unmapped keys return an empty string so unrelated environment variables
// never leak into the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
