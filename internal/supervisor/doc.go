// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

/*
Package supervisor provides process supervision using suture v4.

The tree groups long-running services into three layers:

	RootSupervisor ("ctftracker")
	├── DataSupervisor ("data-layer")
	│   └── CheckpointService
	├── PollingSupervisor ("polling-layer")
	│   ├── scheduler.Loop "ctfd-solves"
	│   ├── scheduler.Loop "ctfd-refresh"
	│   ├── scheduler.Loop "htb-solves"     (if htb.enabled)
	│   └── scheduler.Loop "htb-refresh"    (if htb.enabled)
	└── APISupervisor ("api-layer")
	    ├── WebSocketHubService
	    └── HTTPServerService

Each loop is its own service, so a loop that panics or returns is restarted
on its own with suture's backoff while the others keep ticking. Failures of a
single competition never reach the supervisor: the loops absorb them per
target.

Supervisor events (start, stop, failure, backoff) are logged through
sutureslog, fed by logging.NewSlogLogger so they land in the zerolog stream:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	for _, loop := range scheduler.Loops(deps, intervals) {
	    tree.AddPollingService(loop)
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	errCh := tree.ServeBackground(ctx)
*/
package supervisor
