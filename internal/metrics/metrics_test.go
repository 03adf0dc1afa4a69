package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bft-labs/repokit/pkg/failure"
	"github.com/bft-labs/repokit/pkg/repository"
)

func TestObserver_OnOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)

	o.OnOutcome(repository.OpGetAll, repository.RemoteWithLocalCache, repository.SourceRemote, nil, 10*time.Millisecond)
	o.OnOutcome(repository.OpGetAll, repository.RemoteWithLocalCache, repository.SourceRemote, failure.Network(failure.CodeTimeout), time.Second)
	o.OnOutcome(repository.OpDelete, repository.RemoteOnly, repository.SourceRemote, errors.New("plain"), time.Millisecond)

	tests := []struct {
		labels []string
		want   float64
	}{
		{[]string{"get_all", "remote-with-local-cache", "remote", "ok"}, 1},
		{[]string{"get_all", "remote-with-local-cache", "remote", "network"}, 1},
		{[]string{"delete", "remote-only", "remote", "generic"}, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(o.operations.WithLabelValues(tt.labels...)); got != tt.want {
			t.Errorf("operations%v = %v, want %v", tt.labels, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(o.latency); n != 2 {
		t.Errorf("latency series = %d, want 2", n)
	}
}

func TestObserver_CacheCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)

	o.OnCacheHit(repository.OpGetByID)
	o.OnCacheMiss(repository.OpGetAll, nil)
	o.OnCacheMiss(repository.OpGetByID, failure.Cache("", repository.ErrNotFound))
	o.OnCacheMiss(repository.OpGetByID, failure.Cache("disk", nil))
	o.OnMirrorFailure(repository.OpCreate, errors.New("locked"))

	if got := testutil.ToFloat64(o.cacheHits.WithLabelValues("get_by_id")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	for _, reason := range []string{"empty", "not_found", "error"} {
		op := "get_by_id"
		if reason == "empty" {
			op = "get_all"
		}
		if got := testutil.ToFloat64(o.cacheMisses.WithLabelValues(op, reason)); got != 1 {
			t.Errorf("cache misses{%s} = %v, want 1", reason, got)
		}
	}
	if got := testutil.ToFloat64(o.mirrorFailures.WithLabelValues("create")); got != 1 {
		t.Errorf("mirror failures = %v, want 1", got)
	}
}

func TestObserver_OnRefresh(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)

	o.OnRefresh(12, nil)
	o.OnRefresh(0, errors.New("offline"))

	expected := `
# HELP repokit_refreshed_items Entities fetched by the last successful refresh
# TYPE repokit_refreshed_items gauge
repokit_refreshed_items 12
# HELP repokit_refreshes_total Cache refresh passes by result
# TYPE repokit_refreshes_total counter
repokit_refreshes_total{result="error"} 1
repokit_refreshes_total{result="ok"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"repokit_refreshed_items", "repokit_refreshes_total"); err != nil {
		t.Error(err)
	}
}

func TestNewObserver_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewObserver(reg)

	defer func() {
		if recover() == nil {
			t.Error("second registration on the same registry did not panic")
		}
	}()
	NewObserver(reg)
}
