package transport

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMpiTransportSendFlushReceive(t *testing.T) {
	group := NewMpiGroup(3)
	ranks := make([]*MpiTransport, 3)
	for i := range ranks {
		ranks[i] = group.NewTransport(Rank(i))
	}
	defer func() {
		for _, r := range ranks {
			r.Close()
		}
	}()

	var mu sync.Mutex
	received := map[Rank][]string{}
	for i, r := range ranks {
		rank := Rank(i)
		r.RegisterReceiver(func(from Rank, payload []byte) {
			mu.Lock()
			received[rank] = append(received[rank], string(payload))
			mu.Unlock()
		})
	}

	if err := ranks[0].Send(1, []byte("hello-from-0")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := ranks[0].Send(2, []byte("hello-from-0-again")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := ranks[0].Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(received[1]) != 1 || received[1][0] != "hello-from-0" {
		t.Errorf("rank 1 expected 1 message, got %v", received[1])
	}
	if len(received[2]) != 1 || received[2][0] != "hello-from-0-again" {
		t.Errorf("rank 2 expected 1 message, got %v", received[2])
	}
}

func TestMpiTransportRejectsSelfSend(t *testing.T) {
	group := NewMpiGroup(2)
	r0 := group.NewTransport(0)
	defer r0.Close()
	if err := r0.Send(0, []byte("x")); err == nil {
		t.Fatal("expected error sending to self")
	}
}

func TestMpiTransportBarrierReleasesAllRanks(t *testing.T) {
	group := NewMpiGroup(4)
	ranks := make([]*MpiTransport, 4)
	for i := range ranks {
		ranks[i] = group.NewTransport(Rank(i))
	}
	defer func() {
		for _, r := range ranks {
			r.Close()
		}
	}()

	var wg sync.WaitGroup
	errs := make(chan error, len(ranks))
	for _, r := range ranks {
		wg.Add(1)
		go func(r *MpiTransport) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := r.Barrier(ctx); err != nil {
				errs <- err
			}
		}(r)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("barrier did not release all ranks in time")
	}
	close(errs)
	for err := range errs {
		t.Errorf("Barrier: %v", err)
	}
}

func TestMpiTransportHasEfficientSendFalse(t *testing.T) {
	group := NewMpiGroup(1)
	r := group.NewTransport(0)
	defer r.Close()
	if r.HasEfficientSend() {
		t.Error("expected simulated MPI transport to report no efficient send path")
	}
}
