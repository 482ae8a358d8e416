// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// WorkingSetDelimiter separates members in the stored representation.
const WorkingSetDelimiter = ", "

// WorkingSetSeparator is the character members are split on when parsing.
// A member may not contain it.
const WorkingSetSeparator = ","

// ValidMember reports whether user can be stored in a working set and read
// back as the same single member.
func ValidMember(user string) bool {
	user = strings.TrimSpace(user)
	return user != "" && !strings.Contains(user, WorkingSetSeparator)
}

// WorkingSet is the set of users currently working on a challenge.
// Members keep insertion order so the stored string is stable.
// The zero value is an empty set.
type WorkingSet struct {
	members []string
}

// NewWorkingSet builds a set from the given members, dropping invalid members
// and duplicates.
func NewWorkingSet(members ...string) WorkingSet {
	var ws WorkingSet
	for _, m := range members {
		ws.Add(m)
	}
	return ws
}

// ParseWorkingSet parses the stored ", "-joined form.
func ParseWorkingSet(s string) WorkingSet {
	if strings.TrimSpace(s) == "" {
		return WorkingSet{}
	}
	return NewWorkingSet(strings.Split(s, WorkingSetSeparator)...)
}

// Add inserts user and reports whether the set changed.
// Blank users and users containing the separator are ignored.
func (ws *WorkingSet) Add(user string) bool {
	user = strings.TrimSpace(user)
	if !ValidMember(user) || ws.Contains(user) {
		return false
	}
	ws.members = append(ws.members, user)
	return true
}

// Remove deletes user and reports whether the set changed.
func (ws *WorkingSet) Remove(user string) bool {
	user = strings.TrimSpace(user)
	for i, m := range ws.members {
		if m == user {
			ws.members = append(ws.members[:i:i], ws.members[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether user is a member.
func (ws WorkingSet) Contains(user string) bool {
	for _, m := range ws.members {
		if m == user {
			return true
		}
	}
	return false
}

// Members returns a copy of the members in insertion order.
func (ws WorkingSet) Members() []string {
	out := make([]string, len(ws.members))
	copy(out, ws.members)
	return out
}

// Len returns the number of members.
func (ws WorkingSet) Len() int {
	return len(ws.members)
}

// IsEmpty reports whether nobody is working on the challenge.
func (ws WorkingSet) IsEmpty() bool {
	return len(ws.members) == 0
}

// String returns the ", "-joined form, or "" for an empty set.
func (ws WorkingSet) String() string {
	return strings.Join(ws.members, WorkingSetDelimiter)
}

// Ptr returns the joined form, or nil for an empty set.
// Used by JSON views where an empty set is rendered as null.
func (ws WorkingSet) Ptr() *string {
	if ws.IsEmpty() {
		return nil
	}
	s := ws.String()
	return &s
}

// Scan implements sql.Scanner. NULL scans to an empty set.
func (ws *WorkingSet) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*ws = WorkingSet{}
	case string:
		*ws = ParseWorkingSet(v)
	case []byte:
		*ws = ParseWorkingSet(string(v))
	default:
		return fmt.Errorf("cannot scan %T into WorkingSet", src)
	}
	return nil
}

// Value implements driver.Valuer. An empty set is stored as NULL.
func (ws WorkingSet) Value() (driver.Value, error) {
	if ws.IsEmpty() {
		return nil, nil
	}
	return ws.String(), nil
}
