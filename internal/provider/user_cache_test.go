// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/ctftracker/internal/metrics"
)

func TestUserCacheServesRepeatLookups(t *testing.T) {
	stub := &stubProvider{kind: KindCTFd}
	u := WithUserCache(stub, 10, time.Minute)

	hits := metrics.UserCacheLookups.WithLabelValues(string(KindCTFd), "hit")
	before := testutil.ToFloat64(hits)

	for i := 0; i < 3; i++ {
		user, err := u.ResolveUser(context.Background(), 52)
		checkNoError(t, err)
		checkStringEqual(t, "user", user.Name, "Craig")
	}

	checkIntEqual(t, "upstream calls", stub.calls, 1)
	if got := testutil.ToFloat64(hits) - before; got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
}

func TestUserCacheDoesNotCacheFailures(t *testing.T) {
	stub := &stubProvider{kind: KindCTFd, err: errors.New("boom")}
	u := WithUserCache(stub, 10, time.Minute)

	_, err := u.ResolveUser(context.Background(), 52)
	if err == nil {
		t.Fatal("expected error")
	}

	stub.err = nil
	user, err := u.ResolveUser(context.Background(), 52)
	checkNoError(t, err)
	checkStringEqual(t, "user", user.Name, "Craig")
	checkIntEqual(t, "upstream calls", stub.calls, 2)
}

func TestUserCachePassesThroughOtherCalls(t *testing.T) {
	stub := &stubProvider{kind: KindHTB}
	u := WithUserCache(stub, 0, 0)

	checkStringEqual(t, "kind", string(u.Kind()), string(KindHTB))

	stats, err := u.TeamStats(context.Background())
	checkNoError(t, err)
	checkStringEqual(t, "place", stats.Place, "96th")

	_, err = u.FetchChallenges(context.Background())
	checkNoError(t, err)
	checkIntEqual(t, "upstream calls", stub.calls, 2)
}
