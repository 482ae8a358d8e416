// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package ctfd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/ctftracker/internal/provider"
)

const (
	challengesJSON = `{"success":true,"data":[
		{"id":1,"type":"standard","name":"Reverse a String","value":100,"solves":12,"category":"Programming"},
		{"id":2,"type":"standard","name":"Baby Web","value":50,"solves":null,"category":"Web"}]}`

	solvesJSON = `{"success":true,"data":[
		{"type":"correct","date":"2021-05-13T11:01:54+00:00","team":10,
		 "challenge":{"id":1,"name":"Reverse a String","value":100,"category":"Programming"},"user":52}]}`

	userJSON = `{"success":true,"data":{"id":52,"team_id":10,"name":"Craig","place":"25th","score":5}}`

	teamJSON = `{"success":true,"data":{"members":[62,63],"name":"purple_ctf","id":23,"place":"96th","score":201}}`
)

// newTestServer fakes a CTFd API that requires the "Token secret" header.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	routes := map[string]string{
		"/api/v1/challenges":      challengesJSON,
		"/api/v1/teams/me/solves": solvesJSON,
		"/api/v1/users/52":        userJSON,
		"/api/v1/teams/me":        teamJSON,
	}
	for path, body := range routes {
		body := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Token secret" {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"success":false}`))
				return
			}
			if r.Header.Get("Content-Type") != "application/json" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchChallenges(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	c := New(srv.URL+"/api/v1/", "secret", time.Second)

	got, err := c.FetchChallenges(context.Background())
	checkNoError(t, err)
	checkIntEqual(t, "count", len(got), 2)
	checkStringEqual(t, "name", got[0].Name, "Reverse a String")
	checkStringEqual(t, "category", got[0].Category, "Programming")
	checkIntEqual(t, "points", got[0].Points, 100)
	checkIntEqual(t, "remote id unset", int(got[0].RemoteID), 0)
	checkTrue(t, "kind", c.Kind() == provider.KindCTFd)
}

func TestFetchTeamSolves(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	c := New(srv.URL+"/api/v1", "secret", time.Second)

	got, err := c.FetchTeamSolves(context.Background())
	checkNoError(t, err)
	checkIntEqual(t, "count", len(got), 1)
	s := got[0]
	checkStringEqual(t, "challenge", s.ChallengeName, "Reverse a String")
	checkIntEqual(t, "user", int(s.UserID), 52)
	want := time.Date(2021, 5, 13, 11, 1, 54, 0, time.UTC)
	checkTrue(t, "solved at parsed", s.SolvedAt.Equal(want))
}

func TestResolveUserAndTeamStats(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	c := New(srv.URL+"/api/v1", "secret", time.Second)

	user, err := c.ResolveUser(context.Background(), 52)
	checkNoError(t, err)
	checkStringEqual(t, "user", user.Name, "Craig")

	stats, err := c.TeamStats(context.Background())
	checkNoError(t, err)
	checkStringEqual(t, "place", stats.Place, "96th")
	checkIntEqual(t, "score", stats.Score, 201)
}

func TestTeamStatsNullPlace(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"place":null,"score":0}}`))
	}))
	defer srv.Close()

	stats, err := New(srv.URL, "secret", time.Second).TeamStats(context.Background())
	checkNoError(t, err)
	checkStringEqual(t, "place", stats.Place, "0")
}

func TestErrorsAreNotPartial(t *testing.T) {
	t.Parallel()

	t.Run("wrong token", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		_, err := New(srv.URL+"/api/v1", "wrong", time.Second).FetchChallenges(context.Background())
		var statusErr *provider.StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403 status error, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		if _, err := New(srv.URL+"/api/v1", "secret", time.Second).ResolveUser(context.Background(), 9); err == nil {
			t.Fatal("expected error for unknown user")
		}
	})

	t.Run("bad date", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":[{"date":"yesterday","team":1,"challenge":{"name":"x","value":1,"category":"y"},"user":1}]}`))
		}))
		defer srv.Close()
		got, err := New(srv.URL, "secret", time.Second).FetchTeamSolves(context.Background())
		if err == nil || got != nil {
			t.Fatalf("expected error and no result, got %v, %v", got, err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(challengesJSON))
		}))
		defer srv.Close()
		if _, err := New(srv.URL, "secret", 50*time.Millisecond).FetchChallenges(context.Background()); err == nil {
			t.Fatal("expected timeout error")
		}
	})
}
