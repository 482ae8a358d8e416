// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateCTFd(); err != nil {
		return err
	}

	if err := c.validateHTB(); err != nil {
		return err
	}

	if err := c.validateDiscord(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateScheduler(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateCompetitions(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateCTFd() error {
	if c.CTFd.Timeout <= 0 {
		return fmt.Errorf("CTFD_TIMEOUT must be positive")
	}
	return nil
}

// validateHTB validates HTB configuration (only if enabled)
func (c *Config) validateHTB() error {
	if !c.HTB.Enabled {
		return nil
	}

	if err := validateHTTPURL(c.HTB.APIURL, "HTB_API_URL", true); err != nil {
		return fmt.Errorf("HTB_API_URL is invalid: %w", err)
	}
	if c.HTB.Email == "" {
		return fmt.Errorf("HTB_EMAIL is required when HTB_ENABLED=true")
	}
	if c.HTB.Password == "" {
		return fmt.Errorf("HTB_PASSWORD is required when HTB_ENABLED=true")
	}
	if c.HTB.TeamID <= 0 {
		return fmt.Errorf("HTB_TEAM_ID must be a positive team id when HTB_ENABLED=true")
	}
	if c.HTB.ChannelID < 0 {
		return fmt.Errorf("HTB_CHANNEL_ID must not be negative")
	}
	if c.HTB.Timeout <= 0 {
		return fmt.Errorf("HTB_TIMEOUT must be positive")
	}
	return nil
}

// validateDiscord validates Discord configuration (only if enabled)
func (c *Config) validateDiscord() error {
	if !c.Discord.Enabled {
		return nil
	}

	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required when DISCORD_ENABLED=true")
	}
	if containsPlaceholder(c.Discord.Token) {
		return fmt.Errorf("DISCORD_TOKEN contains a placeholder value")
	}
	if err := validateHTTPURL(c.Discord.APIURL, "DISCORD_API_URL", true); err != nil {
		return fmt.Errorf("DISCORD_API_URL is invalid: %w", err)
	}
	if c.Discord.RateLimit < 0 {
		return fmt.Errorf("DISCORD_RATE_LIMIT must not be negative")
	}
	if c.Discord.Timeout <= 0 {
		return fmt.Errorf("DISCORD_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if c.Scheduler.SolveInterval <= 0 {
		return fmt.Errorf("SOLVE_POLL_INTERVAL must be positive")
	}
	if c.Scheduler.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HTTP_HOST is required")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGIN must name at least one origin")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// HasWildcardCORS reports whether any configured origin is "*".
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateCompetitions() error {
	seen := make(map[string]bool, len(c.Competitions))
	for i, seed := range c.Competitions {
		if strings.TrimSpace(seed.Name) == "" {
			return fmt.Errorf("competitions[%d].name is required", i)
		}
		if seen[seed.Name] {
			return fmt.Errorf("competitions[%d].name %q is duplicated", i, seed.Name)
		}
		seen[seed.Name] = true
		if err := validateHTTPURL(seed.BaseURL, fmt.Sprintf("competitions[%d].base_url", i), false); err != nil {
			return err
		}
		if seed.APIKey == "" {
			return fmt.Errorf("competitions[%d].api_key is required", i)
		}
		if seed.ChannelID < 0 {
			return fmt.Errorf("competitions[%d].channel_id must not be negative", i)
		}
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_TOKEN",
	"PLACEHOLDER",
}

// containsPlaceholder checks if a value contains common placeholder patterns.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
