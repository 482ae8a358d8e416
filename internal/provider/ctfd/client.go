// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

/*
Package ctfd implements provider.Provider for CTFd-compatible platforms.

API Reference: https://docs.ctfd.io/docs/api/redoc
*/
package ctfd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/ctftracker/internal/models"
	"github.com/tomtom215/ctftracker/internal/provider"
)

// Client talks to one CTFd competition's REST API.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

var _ provider.Provider = (*Client)(nil)

// New creates a CTFd client.
//
// Parameters:
//   - apiURL: competition API root (e.g., https://play.duc.tf/api/v1)
//   - apiKey: team member access token from the CTFd settings page
//   - timeout: per-request timeout (0 uses provider.DefaultTimeout)
func New(apiURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		apiKey:     apiKey,
		httpClient: provider.NewHTTPClient(timeout),
	}
}

type challengeData struct {
	Name     string `json:"name"`
	Value    int    `json:"value"`
	Solves   *int   `json:"solves"`
	Category string `json:"category"`
}

type challengesResponse struct {
	Data []challengeData `json:"data"`
}

type solveData struct {
	Date      string        `json:"date"`
	Team      int64         `json:"team"`
	Challenge challengeData `json:"challenge"`
	User      int64         `json:"user"`
}

type solvesResponse struct {
	Data []solveData `json:"data"`
}

type userResponse struct {
	Data struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Score int    `json:"score"`
	} `json:"data"`
}

type teamResponse struct {
	Data struct {
		Place *string `json:"place"`
		Score int     `json:"score"`
	} `json:"data"`
}

// Kind returns provider.KindCTFd.
func (c *Client) Kind() provider.Kind {
	return provider.KindCTFd
}

// FetchChallenges lists every visible challenge.
func (c *Client) FetchChallenges(ctx context.Context) ([]models.RemoteChallenge, error) {
	var resp challengesResponse
	if err := c.get(ctx, "/challenges", "ctfd challenges", &resp); err != nil {
		return nil, err
	}

	out := make([]models.RemoteChallenge, 0, len(resp.Data))
	for _, ch := range resp.Data {
		out = append(out, models.RemoteChallenge{
			Name:     ch.Name,
			Category: ch.Category,
			Points:   ch.Value,
		})
	}
	return out, nil
}

// FetchTeamSolves lists the solves of the team owning the API token.
func (c *Client) FetchTeamSolves(ctx context.Context) ([]models.RemoteSolve, error) {
	var resp solvesResponse
	if err := c.get(ctx, "/teams/me/solves", "ctfd team solves", &resp); err != nil {
		return nil, err
	}

	out := make([]models.RemoteSolve, 0, len(resp.Data))
	for _, s := range resp.Data {
		solvedAt, err := time.Parse(time.RFC3339, s.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ctfd solve date %q: %w", s.Date, err)
		}
		out = append(out, models.RemoteSolve{
			ChallengeName: s.Challenge.Name,
			Category:      s.Challenge.Category,
			Points:        s.Challenge.Value,
			UserID:        s.User,
			Kind:          models.SolveKindChallenge,
			SolvedAt:      solvedAt.UTC(),
		})
	}
	return out, nil
}

// ResolveUser fetches a user's display name and score.
func (c *Client) ResolveUser(ctx context.Context, id int64) (*models.RemoteUser, error) {
	var resp userResponse
	if err := c.get(ctx, fmt.Sprintf("/users/%d", id), fmt.Sprintf("ctfd user %d", id), &resp); err != nil {
		return nil, err
	}
	return &models.RemoteUser{ID: id, Name: resp.Data.Name, Score: resp.Data.Score}, nil
}

// TeamStats fetches the team's scoreboard place and score.
// CTFd reports a null place for teams that have not scored yet.
func (c *Client) TeamStats(ctx context.Context) (*models.TeamStats, error) {
	var resp teamResponse
	if err := c.get(ctx, "/teams/me", "ctfd team", &resp); err != nil {
		return nil, err
	}

	stats := &models.TeamStats{Place: "0", Score: resp.Data.Score}
	if resp.Data.Place != nil && *resp.Data.Place != "" {
		stats.Place = *resp.Data.Place
	}
	return stats, nil
}

// get performs an authenticated GET against the competition API.
func (c *Client) get(ctx context.Context, endpoint, operation string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return provider.DoJSON(c.httpClient, req, operation, out)
}
