// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

package provider

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/ctftracker/internal/metrics"
)

func TestRegistryInsertLookupRemove(t *testing.T) {
	r := NewRegistry()
	p := &stubProvider{kind: KindCTFd}

	r.Insert(Target{ID: 3, Name: "DUCTF", ChannelID: 42, Provider: p})
	r.Insert(Target{ID: 1, Name: "PicoCTF", Provider: p})

	got, ok := r.Lookup(3)
	checkTrue(t, "target 3 registered", ok)
	checkStringEqual(t, "name", got.Name, "DUCTF")
	checkTrue(t, "kind ctfd", got.Kind() == KindCTFd)
	checkIntEqual(t, "len", r.Len(), 2)
	if v := testutil.ToFloat64(metrics.ActiveTargets); v != 2 {
		t.Errorf("active_targets = %v, want 2", v)
	}

	snap := r.Snapshot()
	checkIntEqual(t, "snapshot len", len(snap), 2)
	checkTrue(t, "snapshot ordered by id", snap[0].ID == 1 && snap[1].ID == 3)

	checkTrue(t, "remove existing", r.Remove(3))
	checkTrue(t, "remove missing is false", !r.Remove(3))
	_, ok = r.Lookup(3)
	checkTrue(t, "target 3 gone", !ok)
	checkIntEqual(t, "len after remove", r.Len(), 1)

	// Snapshot taken earlier is unaffected.
	checkIntEqual(t, "old snapshot len", len(snap), 2)
}

func TestRegistryInsertReplaces(t *testing.T) {
	r := NewRegistry()
	r.Insert(Target{ID: 1, Name: "old"})
	r.Insert(Target{ID: 1, Name: "new"})

	got, _ := r.Lookup(1)
	checkStringEqual(t, "name", got.Name, "new")
	checkIntEqual(t, "len", r.Len(), 1)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(id int64) {
			defer wg.Done()
			r.Insert(Target{ID: id, Name: fmt.Sprintf("ctf-%d", id)})
		}(int64(i + 1))
		go func() {
			defer wg.Done()
			_ = r.Snapshot()
		}()
	}
	wg.Wait()
	checkIntEqual(t, "len", r.Len(), 20)
}

func TestTargetKindWithoutProvider(t *testing.T) {
	t.Parallel()
	var tgt Target
	checkStringEqual(t, "kind", string(tgt.Kind()), "")
	checkTrue(t, "not htb", !tgt.IsHTB())
}
