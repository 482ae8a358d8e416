// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

// Package testinfra provides shared fakes for tests across packages.
//
// # FakeProvider
//
// FakeProvider is an in-memory provider.Provider whose responses and errors
// are set directly by the test:
//
//	fake := testinfra.NewFakeProvider(provider.KindCTFd)
//	fake.SetChallenges(models.RemoteChallenge{Name: "Reverse a String", Category: "Programming", Points: 100})
//	fake.SetSolvesErr(errors.New("connection refused"))
//
// # MockDiscordServer
//
// MockDiscordServer is an httptest server that accepts the Discord REST calls
// made by the notifier and captures every request for verification:
//
//	discord := testinfra.NewMockDiscordServer(t)
//	defer discord.Close()
//	discord.ResponseStatus = http.StatusInternalServerError
//
// Neither fake needs network access or Docker.
package testinfra
