// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/ctftracker/internal/config"
	"github.com/tomtom215/ctftracker/internal/logging"
	"github.com/tomtom215/ctftracker/internal/metrics"
)

// ErrTransient marks delivery failures worth retrying on the next tick
// (rate limiting, Discord outages, network errors).
var ErrTransient = errors.New("transient delivery failure")

// DeliveryError describes a failed Discord REST call.
type DeliveryError struct {
	Operation  string
	StatusCode int // 0 when no response was received
	Transient  bool
	RetryAfter time.Duration
	Message    string
}

func (e *DeliveryError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("discord %s failed: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("discord %s returned status %d: %s", e.Operation, e.StatusCode, e.Message)
}

// Unwrap lets errors.Is(err, ErrTransient) match transient failures.
func (e *DeliveryError) Unwrap() error {
	if e.Transient {
		return ErrTransient
	}
	return nil
}

// Sender delivers messages to chat channels.
type Sender interface {
	SendMessage(ctx context.Context, channelID int64, msg *Message) error
	SetTopic(ctx context.Context, channelID int64, topic string) error
}

// Message is a Discord channel message.
type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed is a Discord rich embed.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// EmbedField is one name/value pair of an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type channelEdit struct {
	Topic string `json:"topic"`
}

// DiscordSender calls the Discord REST API with a bot token.
type DiscordSender struct {
	apiURL  string
	token   string
	enabled bool
	client  *http.Client
	limiter *rate.Limiter
}

var _ Sender = (*DiscordSender)(nil)

// NewDiscordSender creates a sender from configuration.
// Requests are spaced at least cfg.RateLimit apart.
func NewDiscordSender(cfg *config.DiscordConfig) *DiscordSender {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = config.DefaultDiscordAPIURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Every(cfg.RateLimit)
	}

	return &DiscordSender{
		apiURL:  strings.TrimSuffix(apiURL, "/"),
		token:   cfg.Token,
		enabled: cfg.Enabled,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// SendMessage posts msg to the channel.
func (s *DiscordSender) SendMessage(ctx context.Context, channelID int64, msg *Message) error {
	return s.do(ctx, http.MethodPost, fmt.Sprintf("/channels/%d/messages", channelID), "send_message", msg)
}

// SetTopic replaces the channel topic.
func (s *DiscordSender) SetTopic(ctx context.Context, channelID int64, topic string) error {
	return s.do(ctx, http.MethodPatch, fmt.Sprintf("/channels/%d", channelID), "set_topic", channelEdit{Topic: topic})
}

func (s *DiscordSender) do(ctx context.Context, method, endpoint, operation string, payload interface{}) error {
	if !s.enabled {
		logging.Ctx(ctx).Debug().Str("operation", operation).Msg("Discord delivery disabled, dropping request")
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return &DeliveryError{Operation: operation, Transient: true, Message: err.Error()}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.apiURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create discord request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "DiscordBot (https://github.com/tomtom215/ctftracker, 1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.DiscordRequests.WithLabelValues(operation, "error").Inc()
		return &DeliveryError{Operation: operation, Transient: true, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.DiscordRequests.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		msg = []byte("(failed to read response)")
	}
	derr := &DeliveryError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Transient:  isTransientStatus(resp.StatusCode),
		Message:    string(msg),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			// Discord returns retry-after in (possibly fractional) seconds
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				derr.RetryAfter = seconds
			}
		}
	}
	return derr
}

// isTransientStatus reports whether a status is worth retrying later.
func isTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
