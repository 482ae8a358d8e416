// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

/*
Package notify delivers solve announcements to Discord.

The Notifier turns a pending solve into a channel message, and only after the
message was accepted marks the solve announced in the store. Delivery is
therefore at-least-once: a crash between send and mark repeats the message on
the next tick, a failed send never loses it.

DiscordSender talks to the Discord REST API directly with a bot token. It is
paced by a token bucket and classifies failures: rate limiting, server errors
and network errors wrap ErrTransient.

For HTB solves the notifier also mentions the mapped Discord user, appends a
rank snapshot when the team standing moved, and rewrites the channel topic.
*/
package notify
