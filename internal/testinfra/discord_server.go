// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package testinfra

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// DiscordCapture is one captured Discord REST request.
type DiscordCapture struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

// MockDiscordServer is a fake Discord REST API that records every request.
type MockDiscordServer struct {
	Server *httptest.Server

	mu       sync.Mutex
	captures []DiscordCapture

	// ResponseStatus is returned for every request (default: 200).
	ResponseStatus int

	// ResponseFunc overrides the default response when set.
	ResponseFunc func(w http.ResponseWriter, r *http.Request)
}

// NewMockDiscordServer starts a mock Discord server. Call Close when done.
func NewMockDiscordServer(t *testing.T) *MockDiscordServer {
	t.Helper()

	m := &MockDiscordServer{ResponseStatus: http.StatusOK}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()

		m.mu.Lock()
		m.captures = append(m.captures, DiscordCapture{
			Method:  r.Method,
			Path:    r.URL.Path,
			Headers: r.Header.Clone(),
			Body:    body,
		})
		status := m.ResponseStatus
		fn := m.ResponseFunc
		m.mu.Unlock()

		if fn != nil {
			fn(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"id":"123456789","type":0,"channel_id":"987654321"}`))
	}))
	return m
}

// URL returns the server base URL.
func (m *MockDiscordServer) URL() string {
	return m.Server.URL
}

// Close shuts down the server.
func (m *MockDiscordServer) Close() {
	m.Server.Close()
}

// SetStatus changes the status returned for subsequent requests.
func (m *MockDiscordServer) SetStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResponseStatus = status
}

// Captures returns a copy of all captured requests.
func (m *MockDiscordServer) Captures() []DiscordCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DiscordCapture, len(m.captures))
	copy(out, m.captures)
	return out
}

// Messages returns the captured message POSTs.
func (m *MockDiscordServer) Messages() []DiscordCapture {
	var out []DiscordCapture
	for _, c := range m.Captures() {
		if c.Method == http.MethodPost && strings.HasSuffix(c.Path, "/messages") {
			out = append(out, c)
		}
	}
	return out
}

// TopicEdits returns the captured channel PATCH requests.
func (m *MockDiscordServer) TopicEdits() []DiscordCapture {
	var out []DiscordCapture
	for _, c := range m.Captures() {
		if c.Method == http.MethodPatch {
			out = append(out, c)
		}
	}
	return out
}

// ClearCaptures drops all captured requests.
func (m *MockDiscordServer) ClearCaptures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captures = nil
}
