// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

/*
Package main is the entry point for the ctftracker server.

ctftracker follows a team through CTFd-style competitions and HackTheBox. It
polls the scoring platforms, keeps challenges and solves in DuckDB, announces
new solves to Discord, and serves a read-only REST API and live solve feed.

# Application Architecture

The server runs under a Suture v4 supervision tree:

	RootSupervisor ("ctftracker")
	├── DataSupervisor ("data-layer")
	│   └── store-checkpoint (DuckDB WAL checkpoint)
	├── PollingSupervisor ("polling-layer")
	│   ├── ctfd-solves      (every SOLVE_POLL_INTERVAL, default 15s)
	│   ├── ctfd-refresh     (every REFRESH_INTERVAL, default 60s)
	│   ├── htb-solves       (HTB_ENABLED only)
	│   └── htb-refresh      (HTB_ENABLED only)
	└── APISupervisor ("api-layer")
	    ├── websocket-hub
	    └── http-server

Component initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB
 4. Competitions: active ones loaded from the store, config seeds started
 5. HackTheBox: badger credential cache and circuit-broken client (optional)
 6. Supervisor Tree: checkpoint, scheduler loops, websocket hub, HTTP server

# Configuration

Commonly set environment variables:

	DISCORD_TOKEN=...              bot token for announcements
	HTB_ENABLED=true               track a HackTheBox team
	HTB_EMAIL / HTB_PASSWORD       HackTheBox login
	HTB_TEAM_ID=1234               team to follow
	HTB_CHANNEL_ID=...             announcement channel
	DUCKDB_PATH=/data/ctf.duckdb   store location
	CORS_ORIGINS=https://board.example.com

CTFd competitions are started through the commands service or listed under
"competitions" in config.yaml.

# Signal Handling

SIGINT and SIGTERM cancel the root context. In-flight ticks observe the
cancellation and the HTTP server drains within HTTP_SHUTDOWN_TIMEOUT. The
store is checkpointed one last time before it is closed.
*/
package main
