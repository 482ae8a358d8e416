// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

/*
Package htb implements provider.Provider for the HackTheBox v4 API.

The client tracks one team. It logs in with email and password, keeps the
returned JWT until its exp claim passes, and re-authenticates synchronously
before the next call that needs it. Tokens are optionally persisted through
a TokenCache so restarts do not trigger a fresh login.

API Reference (unofficial): https://github.com/Propolisa/htb-api-docs
*/
package htb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ctftracker/internal/config"
	"github.com/tomtom215/ctftracker/internal/logging"
	"github.com/tomtom215/ctftracker/internal/metrics"
	"github.com/tomtom215/ctftracker/internal/models"
	"github.com/tomtom215/ctftracker/internal/provider"
)

// unknownCategory is used for challenges whose category id is not listed.
const unknownCategory = "Unknown"

// activityDateLayouts are the timestamp formats seen in the activity feed.
var activityDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
}

// TokenCache persists access tokens between restarts.
type TokenCache interface {
	Get(key string) (string, bool, error)
	Set(key, token string, ttl time.Duration) error
}

// Client talks to the HTB API on behalf of one team.
type Client struct {
	apiURL     string
	email      string
	password   string
	teamID     int64
	httpClient *http.Client
	cache      TokenCache
	now        func() time.Time

	authMu     sync.Mutex
	cred       *Credential
	forceLogin bool

	catMu      sync.Mutex
	categories map[int64]string

	usersMu sync.RWMutex
	users   map[int64]string
}

var _ provider.Provider = (*Client)(nil)

// New creates an HTB client from configuration. cache may be nil.
func New(cfg *config.HTBConfig, cache TokenCache) *Client {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = config.DefaultHTBAPIURL
	}
	return &Client{
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		email:      cfg.Email,
		password:   cfg.Password,
		teamID:     cfg.TeamID,
		httpClient: provider.NewHTTPClient(cfg.Timeout),
		cache:      cache,
		now:        time.Now,
		users:      make(map[int64]string),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type loginResponse struct {
	Message struct {
		AccessToken string `json:"access_token"`
	} `json:"message"`
}

type challengeData struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Difficulty          string `json:"difficulty"`
	Points              string `json:"points"`
	ReleaseDate         string `json:"release_date"`
	ChallengeCategoryID int64  `json:"challenge_category_id"`
}

type machineData struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Difficulty string `json:"difficultyText"`
	Points     int    `json:"points"`
	Release    string `json:"release"`
}

type categoryData struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type activityData struct {
	User struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		AvatarThumb string `json:"avatar_thumb"`
	} `json:"user"`
	Date              string  `json:"date"`
	Type              string  `json:"type"`
	ObjectType        string  `json:"object_type"`
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Points            int     `json:"points"`
	ChallengeCategory *string `json:"challenge_category"`
}

type teamStatsData struct {
	Rank       int `json:"rank"`
	UserOwns   int `json:"user_owns"`
	SystemOwns int `json:"system_owns"`
}

type teamInfoData struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type profileResponse struct {
	Profile struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Points int    `json:"points"`
	} `json:"profile"`
}

// Kind returns provider.KindHTB.
func (c *Client) Kind() provider.Kind {
	return provider.KindHTB
}

// TeamID returns the tracked team id.
func (c *Client) TeamID() int64 {
	return c.teamID
}

// FetchChallenges lists active challenges merged with active machines.
// Machines are reported with category models.HTBMachineCategory.
func (c *Client) FetchChallenges(ctx context.Context) ([]models.RemoteChallenge, error) {
	categories, err := c.loadCategories(ctx)
	if err != nil {
		return nil, err
	}

	var challenges struct {
		Challenges []challengeData `json:"challenges"`
	}
	if err := c.get(ctx, "/challenge/list", "htb challenge list", &challenges); err != nil {
		return nil, err
	}

	var machines struct {
		Info []machineData `json:"info"`
	}
	if err := c.get(ctx, "/machine/list", "htb machine list", &machines); err != nil {
		return nil, err
	}

	out := make([]models.RemoteChallenge, 0, len(challenges.Challenges)+len(machines.Info))
	for _, ch := range challenges.Challenges {
		category, ok := categories[ch.ChallengeCategoryID]
		if !ok {
			category = unknownCategory
		}
		points, err := strconv.Atoi(strings.TrimSpace(ch.Points))
		if err != nil {
			logging.Debug().Str("challenge", ch.Name).Str("points", ch.Points).Msg("Non-numeric HTB challenge points")
			points = 0
		}
		out = append(out, models.RemoteChallenge{
			RemoteID:    ch.ID,
			Name:        ch.Name,
			Category:    category,
			Points:      points,
			Difficulty:  ch.Difficulty,
			ReleaseDate: ch.ReleaseDate,
		})
	}
	for _, m := range machines.Info {
		out = append(out, models.RemoteChallenge{
			RemoteID:    m.ID,
			Name:        m.Name,
			Category:    models.HTBMachineCategory,
			Points:      m.Points,
			Difficulty:  m.Difficulty,
			ReleaseDate: m.Release,
		})
	}
	return out, nil
}

// FetchTeamSolves returns the team's recent activity as solves.
// Usernames seen here are remembered for ResolveUser.
func (c *Client) FetchTeamSolves(ctx context.Context) ([]models.RemoteSolve, error) {
	var activity []activityData
	if err := c.get(ctx, fmt.Sprintf("/team/activity/%d", c.teamID), "htb team activity", &activity); err != nil {
		return nil, err
	}

	out := make([]models.RemoteSolve, 0, len(activity))
	c.usersMu.Lock()
	defer c.usersMu.Unlock()
	for _, a := range activity {
		solvedAt, err := parseActivityDate(a.Date)
		if err != nil {
			return nil, err
		}
		category := ""
		switch {
		case a.ObjectType == "machine":
			category = models.HTBMachineCategory
		case a.ChallengeCategory != nil:
			category = *a.ChallengeCategory
		}
		c.users[a.User.ID] = a.User.Name
		out = append(out, models.RemoteSolve{
			RemoteChallengeID: a.ID,
			ChallengeName:     a.Name,
			Category:          category,
			Points:            a.Points,
			UserID:            a.User.ID,
			Username:          a.User.Name,
			Kind:              a.Type,
			SolvedAt:          solvedAt,
		})
	}
	return out, nil
}

// ResolveUser returns the username seen in the activity feed, falling back
// to the public profile.
func (c *Client) ResolveUser(ctx context.Context, id int64) (*models.RemoteUser, error) {
	c.usersMu.RLock()
	name, ok := c.users[id]
	c.usersMu.RUnlock()
	if ok {
		return &models.RemoteUser{ID: id, Name: name}, nil
	}

	var resp profileResponse
	if err := c.get(ctx, fmt.Sprintf("/user/profile/basic/%d", id), fmt.Sprintf("htb user %d", id), &resp); err != nil {
		return nil, err
	}

	c.usersMu.Lock()
	c.users[id] = resp.Profile.Name
	c.usersMu.Unlock()
	return &models.RemoteUser{ID: id, Name: resp.Profile.Name, Score: resp.Profile.Points}, nil
}

// TeamStats combines the team's owns statistics with its point total.
func (c *Client) TeamStats(ctx context.Context) (*models.TeamStats, error) {
	var stats teamStatsData
	if err := c.get(ctx, fmt.Sprintf("/team/stats/owns/%d", c.teamID), "htb team stats", &stats); err != nil {
		return nil, err
	}
	var info teamInfoData
	if err := c.get(ctx, fmt.Sprintf("/team/info/%d", c.teamID), "htb team info", &info); err != nil {
		return nil, err
	}
	return &models.TeamStats{
		Place:      strconv.Itoa(stats.Rank),
		Score:      info.Points,
		Rank:       stats.Rank,
		UserOwns:   stats.UserOwns,
		SystemOwns: stats.SystemOwns,
	}, nil
}

// loadCategories returns the category id to name map, fetching it once.
func (c *Client) loadCategories(ctx context.Context) (map[int64]string, error) {
	c.catMu.Lock()
	defer c.catMu.Unlock()
	if c.categories != nil {
		return c.categories, nil
	}

	var resp struct {
		Info []categoryData `json:"info"`
	}
	if err := c.get(ctx, "/challenge/categories/list", "htb challenge categories", &resp); err != nil {
		return nil, err
	}
	categories := make(map[int64]string, len(resp.Info))
	for _, cat := range resp.Info {
		categories[cat.ID] = cat.Name
	}
	c.categories = categories
	return categories, nil
}

// get performs an authenticated GET, renewing the credential first if needed.
func (c *Client) get(ctx context.Context, endpoint, operation string, out interface{}) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	err = provider.DoJSON(c.httpClient, req, operation, out)
	var statusErr *provider.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
		c.invalidate(token)
	}
	return err
}

// ensureToken returns a valid access token, logging in if the held one has
// expired. Concurrent callers wait for a single renewal.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.authMu.Lock()
	defer c.authMu.Unlock()

	now := c.now()
	if c.cred.IsValid(now) {
		return c.cred.Token, nil
	}

	if !c.forceLogin {
		if cred := c.loadCachedCredential(now); cred != nil {
			c.cred = cred
			return cred.Token, nil
		}
	}

	cred, err := c.login(ctx)
	if err != nil {
		metrics.CredentialRenewals.WithLabelValues(string(provider.KindHTB), "failure").Inc()
		return "", err
	}
	metrics.CredentialRenewals.WithLabelValues(string(provider.KindHTB), "success").Inc()
	c.cred = cred
	c.forceLogin = false

	if c.cache != nil {
		if err := c.cache.Set(c.cacheKey(), cred.Token, cred.TTL(now)); err != nil {
			logging.Warn().Err(err).Msg("Failed to persist HTB access token")
		}
	}

	logging.Info().
		Str("email", logging.SanitizeEmail(c.email)).
		Time("expires_at", cred.ExpiresAt).
		Msg("HTB credential renewed")
	return cred.Token, nil
}

// loadCachedCredential returns a still-valid persisted credential, if any.
func (c *Client) loadCachedCredential(now time.Time) *Credential {
	if c.cache == nil {
		return nil
	}
	token, ok, err := c.cache.Get(c.cacheKey())
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to read cached HTB access token")
		return nil
	}
	if !ok {
		return nil
	}
	cred, err := ParseCredential(token)
	if err != nil || !cred.IsValid(now) {
		return nil
	}
	return cred
}

// login exchanges email and password for an access token.
func (c *Client) login(ctx context.Context) (*Credential, error) {
	body, err := json.Marshal(loginRequest{Email: c.email, Password: c.password, Remember: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode htb login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create htb login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var resp loginResponse
	if err := provider.DoJSON(c.httpClient, req, "htb login", &resp); err != nil {
		return nil, err
	}
	if resp.Message.AccessToken == "" {
		return nil, errors.New("htb login returned no access token")
	}
	return ParseCredential(resp.Message.AccessToken)
}

// invalidate drops the held credential if it is still token. The next call
// logs in again instead of reusing the rejected token from the cache.
func (c *Client) invalidate(token string) {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	if c.cred != nil && c.cred.Token == token {
		c.cred = nil
		c.forceLogin = true
	}
}

func (c *Client) cacheKey() string {
	return "htb:" + strings.ToLower(c.email)
}

func parseActivityDate(s string) (time.Time, error) {
	for _, layout := range activityDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse htb activity date %q", s)
}
