// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

// Package services adapts long-running components to suture.Service.
//
// Components that already expose a context-aware run method (the websocket
// hub, the scheduler loops) are either wrapped thinly or added directly.
// HTTPServerService bridges the blocking ListenAndServe and Shutdown pair,
// and CheckpointService runs periodic store maintenance.
package services
