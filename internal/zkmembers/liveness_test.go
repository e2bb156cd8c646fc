package zkmembers

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestLivenessMonitorMarksUnreachableAfterMaxFailures(t *testing.T) {
	var calls int32
	probe := func(ctx context.Context, nodeID string) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}
	m := NewLivenessMonitor(5*time.Millisecond, 3, probe)
	m.Track("shard-0")

	var mu sync.Mutex
	var unhealthy []string
	done := make(chan struct{})
	m.OnUnhealthy(func(nodeID string) {
		mu.Lock()
		unhealthy = append(unhealthy, nodeID)
		mu.Unlock()
		close(done)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	go m.Run(ctx)

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected node to be marked unhealthy")
	}

	if !m.IsUnreachable("shard-0") {
		t.Error("expected shard-0 to be unreachable")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(unhealthy) != 1 || unhealthy[0] != "shard-0" {
		t.Errorf("expected exactly one unhealthy callback for shard-0, got %v", unhealthy)
	}
}

func TestLivenessMonitorRecoversOnSuccess(t *testing.T) {
	fail := true
	var mu sync.Mutex
	probe := func(ctx context.Context, nodeID string) error {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return errors.New("down")
		}
		return nil
	}
	m := NewLivenessMonitor(5*time.Millisecond, 1, probe)
	m.Track("shard-1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	time.Sleep(30 * time.Millisecond)
	if !m.IsUnreachable("shard-1") {
		t.Fatal("expected shard-1 to be unreachable before recovery")
	}

	mu.Lock()
	fail = false
	mu.Unlock()

	time.Sleep(30 * time.Millisecond)
	if m.IsUnreachable("shard-1") {
		t.Fatal("expected shard-1 to recover")
	}
}

func TestUntrackedNodeReportsUnreachable(t *testing.T) {
	m := NewLivenessMonitor(time.Second, 3, func(ctx context.Context, nodeID string) error { return nil })
	if !m.IsUnreachable("ghost") {
		t.Fatal("expected untracked node to report unreachable")
	}
}
