// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package models

import (
	"reflect"
	"testing"
)

func TestWorkingSetAddIsIdempotent(t *testing.T) {
	t.Parallel()

	var ws WorkingSet
	if !ws.Add("alice") {
		t.Fatal("first add should change the set")
	}
	if ws.Add("alice") {
		t.Error("duplicate add should be a no-op")
	}
	if ws.Add("  ") {
		t.Error("blank user should be ignored")
	}
	if got := ws.String(); got != "alice" {
		t.Errorf("String() = %q, want %q", got, "alice")
	}
}

func TestWorkingSetRemoveNonMember(t *testing.T) {
	t.Parallel()

	ws := NewWorkingSet("alice", "bob")
	if ws.Remove("mallory") {
		t.Error("removing a non-member should be a no-op")
	}
	if ws.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ws.Len())
	}

	if !ws.Remove("alice") {
		t.Error("removing a member should change the set")
	}
	if got := ws.Members(); !reflect.DeepEqual(got, []string{"bob"}) {
		t.Errorf("Members() = %v", got)
	}
}

func TestWorkingSetRemoveDoesNotAliasCopies(t *testing.T) {
	t.Parallel()

	original := NewWorkingSet("alice", "bob", "carol")
	copied := original
	copied.Remove("alice")

	if got := original.String(); got != "alice, bob, carol" {
		t.Errorf("original mutated: %q", got)
	}
}

func TestParseWorkingSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"alice", []string{"alice"}},
		{"alice, bob", []string{"alice", "bob"}},
		{"alice,bob,alice", []string{"alice", "bob"}},
		{" , alice, ", []string{"alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := ParseWorkingSet(tt.in).Members(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseWorkingSet(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWorkingSetSQL(t *testing.T) {
	t.Parallel()

	var empty WorkingSet
	v, err := empty.Value()
	if err != nil || v != nil {
		t.Errorf("empty set should store as NULL, got %v (%v)", v, err)
	}

	v, err = NewWorkingSet("alice", "bob").Value()
	if err != nil || v != "alice, bob" {
		t.Errorf("Value() = %v (%v)", v, err)
	}

	var ws WorkingSet
	if err := ws.Scan([]byte("carol, dave")); err != nil {
		t.Fatalf("Scan([]byte): %v", err)
	}
	if !ws.Contains("dave") {
		t.Errorf("expected dave in %v", ws.Members())
	}
	if err := ws.Scan(nil); err != nil || !ws.IsEmpty() {
		t.Errorf("Scan(nil) should give empty set, got %v (%v)", ws.Members(), err)
	}
	if err := ws.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}

func TestWorkingSetRejectsSeparatorInMember(t *testing.T) {
	t.Parallel()

	tests := []struct {
		user string
		want bool
	}{
		{"alice", true},
		{"Smith J", true},
		{"Smith, J", false},
		{",", false},
		{"  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			if got := ValidMember(tt.user); got != tt.want {
				t.Errorf("ValidMember(%q) = %v, want %v", tt.user, got, tt.want)
			}
			var ws WorkingSet
			if got := ws.Add(tt.user); got != tt.want {
				t.Errorf("Add(%q) = %v, want %v", tt.user, got, tt.want)
			}
		})
	}
}

func TestWorkingSetStorageRoundTrip(t *testing.T) {
	t.Parallel()

	ws := NewWorkingSet("alice", "Smith J", "bob")
	stored, err := ws.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}

	var back WorkingSet
	if err := back.Scan(stored); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if got := back.Members(); !reflect.DeepEqual(got, ws.Members()) {
		t.Fatalf("members after round trip = %v, want %v", got, ws.Members())
	}
	if !back.Remove("Smith J") {
		t.Error("member should be removable after a round trip")
	}
}
