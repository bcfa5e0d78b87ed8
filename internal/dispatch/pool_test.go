package dispatch_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"onboardbot/internal/dispatch"
	"onboardbot/internal/logging"
)

func TestSameUserNeverInterleaves(t *testing.T) {
	pool := dispatch.NewPool(4, 16, logging.NewNop())
	defer pool.Close()

	var inFlight atomic.Int32
	var maxInFlight atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		if err := pool.Do("alice", func() {
			defer wg.Done()
			current := inFlight.Add(1)
			if current > maxInFlight.Load() {
				maxInFlight.Store(current)
			}
			inFlight.Add(-1)
		}); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	wg.Wait()

	if got := maxInFlight.Load(); got != 1 {
		t.Fatalf("same-user tasks overlapped: max in flight %d", got)
	}
}

func TestSameUserPreservesOrder(t *testing.T) {
	pool := dispatch.NewPool(2, 8, logging.NewNop())
	defer pool.Close()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		if err := pool.Do("bob", func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	wg.Wait()

	for i, got := range order {
		if got != i {
			t.Fatalf("order[%d] = %d, tasks ran out of arrival order: %v", i, got, order)
		}
	}
}

func TestDifferentUsersRunConcurrently(t *testing.T) {
	pool := dispatch.NewPool(2, 4, logging.NewNop())
	defer pool.Close()

	gate := make(chan struct{})
	started := make(chan string, 2)

	for _, user := range []string{"alice", "bob"} {
		user := user
		if err := pool.Do(user, func() {
			started <- user
			<-gate
		}); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}

	// Both tasks must start even though neither has finished; they sit on
	// distinct lanes.
	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		seen[<-started] = true
	}
	close(gate)
	if !seen["alice"] || !seen["bob"] {
		t.Fatalf("expected both users running, got %v", seen)
	}
}

func TestStickyAssignmentSurvivesManyUsers(t *testing.T) {
	pool := dispatch.NewPool(3, 8, logging.NewNop())
	defer pool.Close()

	// More users than lanes: assignment must still work and stay sticky.
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		user := fmt.Sprintf("user-%d", i)
		wg.Add(1)
		if err := pool.Do(user, func() { wg.Done() }); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	wg.Wait()

	for i := 0; i < 30; i++ {
		if !pool.Assigned(fmt.Sprintf("user-%d", i)) {
			t.Fatalf("user-%d lost its assignment", i)
		}
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	pool := dispatch.NewPool(2, 4, logging.NewNop())
	defer pool.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	if err := pool.Do("carol", func() { wg.Done() }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	wg.Wait()

	if !pool.Assigned("carol") {
		t.Fatal("expected assignment after Do")
	}
	pool.Release("carol")
	if pool.Assigned("carol") {
		t.Fatal("expected assignment dropped after Release")
	}
	pool.Release("carol") // absent: no-op
	pool.Release("never-seen")
}

func TestDoAfterClose(t *testing.T) {
	pool := dispatch.NewPool(1, 1, logging.NewNop())
	pool.Close()
	if err := pool.Do("dave", func() {}); err != dispatch.ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	pool.Close() // second close is a no-op
}
