// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

/*
Package provider defines the read-only interface to remote scoring platforms
and the registry of tracked targets.

Platform clients live in subpackages:

  - ctfd: any CTFd-compatible competition, authenticated by API token
  - htb:  the HackTheBox team API, authenticated by a renewable JWT

Every client is wrapped in a Breaker before it is registered, so repeated
failures against one platform open a circuit instead of stalling the
scheduler:

	client := ctfd.New(comp.APIURL, comp.APIKey, cfg.CTFd.Timeout)
	registry.Insert(provider.Target{
		ID:        comp.ID,
		Name:      comp.Name,
		ChannelID: comp.ChannelID,
		Provider:  provider.NewBreaker(client, "ctfd-"+comp.Name),
	})

Registry is the only shared mutable state between the command service and
the scheduler loops. Loops take a Snapshot at the start of each tick.
*/
package provider
