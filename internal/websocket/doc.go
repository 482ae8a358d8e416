// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

/*
Package websocket provides the live solve feed.

The Hub keeps the set of connected clients and fans out every message given
to BroadcastJSON. The notifier publishes a "solve" message after each
announcement, so dashboards can update without polling the REST API.

	┌──────────┐
	│   Hub    │ ← BroadcastJSON("solve", event)
	└────┬─────┘
	     │
	┌────┴─────┬─────────┐
	│ Client1  │ Client2 │ ...
	└──────────┴─────────┘

Each client has two goroutines:
  - readPump: answers application-level pings and detects disconnects
  - writePump: writes queued messages and keepalive pings

Delivery is best effort. A full broadcast buffer drops the message and a
client whose send buffer is full is disconnected. Nothing in the tracker
depends on the feed: Discord remains the system of record for announcements.

The hub runs as a suture service through RunWithContext and closes all
clients when its context is canceled.
*/
package websocket
