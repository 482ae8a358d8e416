// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

/*
Package config provides centralized configuration management for ctftracker.

Configuration is layered with Koanf v2: struct defaults, then an optional YAML
file, then environment variables. The result is validated once at startup and
any error is fatal.

# Configuration Sources

  - Defaults from defaultConfig()
  - YAML file at CONFIG_PATH, ./config.yaml or /etc/ctftracker/config.yaml
  - Environment variables mapped through envMappings

# Environment Variables

HackTheBox:
  - HTB_ENABLED, HTB_API_URL, HTB_EMAIL, HTB_PASSWORD, HTB_TEAM_ID,
    HTB_CHANNEL_ID, HTB_TIMEOUT

Discord:
  - DISCORD_ENABLED, DISCORD_API_URL, DISCORD_TOKEN, DISCORD_RATE_LIMIT,
    DISCORD_TIMEOUT

Storage:
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS
  - CREDENTIALS_PATH, CREDENTIALS_IN_MEMORY

Scheduling:
  - SOLVE_POLL_INTERVAL (default: 15s)
  - REFRESH_INTERVAL (default: 60s)

HTTP API:
  - HTTP_HOST (default: 127.0.0.1), HTTP_PORT (default: 8010)
  - ALLOWED_ORIGIN / CORS_ORIGINS: comma-separated list
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Competitions

CTFd competitions normally come from the start command and live in the
database. The config file may list competitions under "competitions:" which
are started at boot when no competition of that name exists:

	competitions:
	  - name: "DownUnderCTF"
	    base_url: "https://play.duc.tf"
	    api_key: "ctfd_..."
	    channel_id: 8123456789
*/
package config
