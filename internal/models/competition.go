// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package models

import (
	"strings"
	"time"
)

// ctfdAPISuffix is appended to a CTFd base URL to reach its REST API.
const ctfdAPISuffix = "/api/v1"

// Competition represents a tracked CTFd-style event.
type Competition struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	BaseURL   string    `json:"base_url"`
	APIURL    string    `json:"api_url"`
	APIKey    string    `json:"-"`
	ChannelID int64     `json:"channel_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// DeriveAPIURL returns the CTFd REST endpoint for a base URL.
//
//	DeriveAPIURL("https://ctf.example.com/") == "https://ctf.example.com/api/v1"
func DeriveAPIURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + ctfdAPISuffix
}

// ScoreEntry is one row of a competition's score history.
type ScoreEntry struct {
	ID            int64     `json:"id"`
	CompetitionID int64     `json:"competition_id"`
	Points        int       `json:"points"`
	Position      string    `json:"position"`
	EntryTime     time.Time `json:"entry_time"`
}

// RankSnapshot is one recorded HackTheBox team rank.
type RankSnapshot struct {
	ID         int64     `json:"id"`
	Rank       int       `json:"rank"`
	Points     int       `json:"points"`
	RecordedAt time.Time `json:"recorded_at"`
}

// UserIdentityMapping links a HackTheBox user id to a Discord user id.
type UserIdentityMapping struct {
	HTBID     int64 `json:"htb_id" validate:"required,gt=0"`
	DiscordID int64 `json:"discord_id" validate:"required,gt=0"`
}
