// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestDerivePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		points int
		want   Priority
	}{
		{0, PriorityLow},
		{49, PriorityLow},
		{50, PriorityMedium},
		{99, PriorityMedium},
		{100, PriorityHigh},
		{249, PriorityHigh},
		{250, PriorityHighest},
		{1000, PriorityHighest},
		{-5, PriorityLow},
	}

	for _, tt := range tests {
		if got := DerivePriority(tt.points); got != tt.want {
			t.Errorf("DerivePriority(%d) = %s, want %s", tt.points, got, tt.want)
		}
	}
}

func TestDeriveStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		solved  bool
		working WorkingSet
		want    ChallengeStatus
	}{
		{"untouched", false, WorkingSet{}, StatusTodo},
		{"being worked on", false, NewWorkingSet("alice"), StatusInProgress},
		{"solved while working", true, NewWorkingSet("alice"), StatusDone},
		{"solved", true, WorkingSet{}, StatusDone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DeriveStatus(tt.solved, tt.working); got != tt.want {
				t.Errorf("DeriveStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDeriveAPIURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://ctf.example.com":   "https://ctf.example.com/api/v1",
		"https://ctf.example.com/":  "https://ctf.example.com/api/v1",
		"https://ctf.example.com//": "https://ctf.example.com/api/v1",
	}
	for in, want := range tests {
		if got := DeriveAPIURL(in); got != want {
			t.Errorf("DeriveAPIURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewChallengeView(t *testing.T) {
	t.Parallel()

	solver := "Craig"
	solvedAt := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	view := NewChallengeView(Challenge{
		Name:       "Reverse a String",
		Category:   "Programming",
		Points:     100,
		Solved:     true,
		Solver:     &solver,
		SolvedTime: &solvedAt,
	})

	data, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"title":"Reverse a String","category":"Programming","status":"DONE","priority":"HIGH","working":null,"solver":"Craig","solved":true,"points":100,"solved_time":"2026-03-01 12:30:00"}`
	if string(data) != want {
		t.Errorf("unexpected JSON\n got: %s\nwant: %s", data, want)
	}
}

func TestNewChallengeViewUnsolvedHidesSolvedTime(t *testing.T) {
	t.Parallel()

	stale := time.Now()
	view := NewChallengeView(Challenge{
		Name:       "Baby RSA",
		Points:     50,
		SolvedTime: &stale,
		Working:    NewWorkingSet("alice", "bob"),
	})
	if view.SolvedTime != nil {
		t.Errorf("expected nil solved_time for unsolved challenge, got %q", *view.SolvedTime)
	}
	if view.Working == nil || *view.Working != "alice, bob" {
		t.Errorf("unexpected working: %v", view.Working)
	}
	if view.Status != StatusInProgress {
		t.Errorf("status = %s, want INPROGRESS", view.Status)
	}
}

func TestEmptyScoreView(t *testing.T) {
	t.Parallel()

	v := EmptyScoreView(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if v.Position != "0" || v.Points != 0 {
		t.Errorf("unexpected fallback stats: %+v", v)
	}
	if v.EntryTime != "2026-01-02 03:04:05" {
		t.Errorf("entry_time = %q", v.EntryTime)
	}
}
