// Copyright © 2024 Galvanized Logic Inc.

package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/swarmkit/arena/balance"
	"github.com/swarmkit/arena/kernelerr"
)

func TestZeroWorkerPoolRunsInline(t *testing.T) {
	p := New(0)
	var ran bool
	if err := p.RunPhase(func(int) error { ran = true; return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Fatal("expected inline execution with zero workers")
	}
}

func TestAllWorkersCompletePhaseBeforeReturn(t *testing.T) {
	p := New(4)
	p.Start()
	defer func() { p.Cancel(); p.Join() }()

	var completed int32
	err := p.RunPhase(func(int) error {
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&completed, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completed != 4 {
		t.Fatalf("completed = %d, want 4", completed)
	}
}

func TestPhaseKPlusOneNeverStartsBeforePhaseKDone(t *testing.T) {
	p := New(3)
	p.Start()
	defer func() { p.Cancel(); p.Join() }()

	var phase1Done int32
	var violation int32
	p.RunPhase(func(int) error {
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&phase1Done, 1)
		return nil
	})
	p.RunPhase(func(int) error {
		if atomic.LoadInt32(&phase1Done) != 3 {
			atomic.AddInt32(&violation, 1)
		}
		return nil
	})
	if violation != 0 {
		t.Fatal("a worker observed phase 2 before phase 1 fully drained")
	}
}

func TestRunPhaseAggregatesErrorsFromEveryWorker(t *testing.T) {
	p := New(3)
	p.Start()
	defer func() { p.Cancel(); p.Join() }()

	err := p.RunPhase(func(id int) error {
		return kernelerr.New(kernelerr.KindControllerFailure, "worker %d failed", id)
	})
	if err == nil {
		t.Fatal("expected aggregated error")
	}
}

func TestCancelMidPhaseReleasesWorkersWithinBudget(t *testing.T) {
	p := New(4)
	p.Start()

	started := make(chan struct{}, 4)
	release := make(chan struct{})
	go p.RunPhase(func(int) error {
		started <- struct{}{}
		<-release
		return nil
	})
	for i := 0; i < 4; i++ {
		<-started
	}
	close(release)

	p.Cancel()
	done := make(chan struct{})
	go func() { p.Join(); close(done) }()
	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("workers did not join within the cancellation budget")
	}
}

func TestRunBalancedPhaseCoversEveryTaskExactlyOnce(t *testing.T) {
	for name, strat := range map[string]balance.Strategy{
		"scatter-gather":   balance.NewScatterGather(),
		"balance-quantity": balance.NewBalanceQuantity(),
		"balance-length":   balance.NewBalanceLength(),
	} {
		t.Run(name, func(t *testing.T) {
			p := New(5)
			p.Start()
			defer func() { p.Cancel(); p.Join() }()

			var mu sync.Mutex
			seen := map[int]bool{}
			err := p.RunBalancedPhase(strat, 37, func(idx int) error {
				mu.Lock()
				defer mu.Unlock()
				if seen[idx] {
					t.Fatalf("task %d claimed twice", idx)
				}
				seen[idx] = true
				return nil
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(seen) != 37 {
				t.Fatalf("claimed %d of 37 tasks", len(seen))
			}
		})
	}
}

func TestZeroWorkerPoolBalancedPhaseRunsEveryTask(t *testing.T) {
	p := New(0)
	strat := balance.NewScatterGather()
	count := 0
	err := p.RunBalancedPhase(strat, 10, func(int) error { count++; return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 10 {
		t.Fatalf("ran %d tasks, want 10", count)
	}
}
