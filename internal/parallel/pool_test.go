package parallel

import (
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// tasks builds a task sequence of n copies of fn.
func tasks(n int, fn Task) func(yield func(Task) bool) {
	return func(yield func(Task) bool) {
		for range n {
			if !yield(fn) {
				return
			}
		}
	}
}

// =============================================================================
// WorkerPool Creation Tests
// =============================================================================

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}

	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateNonPositiveWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewWorkerPool(n)

		expected := runtime.GOMAXPROCS(0)
		if pool.Workers() != expected {
			t.Errorf("NewWorkerPool(%d).Workers() = %d, want %d (GOMAXPROCS)", n, pool.Workers(), expected)
		}
		pool.Close()
	}
}

// =============================================================================
// ExecuteAll Tests
// =============================================================================

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	numTasks := 100

	pool.ExecuteAll(tasks(numTasks, func(int) {
		counter.Add(1)
	}))

	if counter.Load() != int64(numTasks) {
		t.Errorf("counter = %d, want %d", counter.Load(), numTasks)
	}
}

func TestWorkerPool_ExecuteAll_WorkerIndex(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	var mu sync.Mutex
	seen := make(map[int]bool)

	pool.ExecuteAll(tasks(200, func(worker int) {
		mu.Lock()
		seen[worker] = true
		mu.Unlock()
	}))

	for w := range seen {
		if w < 0 || w >= pool.Workers() {
			t.Errorf("task ran under worker index %d, want [0,%d)", w, pool.Workers())
		}
	}
}

func TestWorkerPool_ExecuteAll_AllIndices(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var mu sync.Mutex
	results := make([]int, 0, 10)

	pool.ExecuteAll(func(yield func(Task) bool) {
		for i := range 10 {
			idx := i
			if !yield(func(int) {
				mu.Lock()
				results = append(results, idx)
				mu.Unlock()
			}) {
				return
			}
		}
	})

	// Order may vary due to parallelism.
	slices.Sort(results)
	for i, v := range results {
		if v != i {
			t.Fatalf("results = %v, want 0..9", results)
		}
	}
	if len(results) != 10 {
		t.Errorf("results length = %d, want 10", len(results))
	}
}

func TestWorkerPool_ExecuteAll_Empty(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	// Should not panic or block
	pool.ExecuteAll(tasks(0, nil))
	pool.ExecuteAll(tasks(3, nil))
}

func TestWorkerPool_ExecuteAll_StopsPullingWhenConsumerStops(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	var pulled, ran atomic.Int64
	var stop atomic.Bool

	pool.ExecuteAll(func(yield func(Task) bool) {
		for range 1000 {
			if stop.Load() {
				return
			}
			pulled.Add(1)
			if !yield(func(int) {
				if ran.Add(1) == 5 {
					stop.Store(true)
				}
			}) {
				return
			}
		}
	})

	if ran.Load() != pulled.Load() {
		t.Errorf("ran = %d, pulled = %d; every pulled task must run", ran.Load(), pulled.Load())
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestWorkerPool_Close(t *testing.T) {
	pool := NewWorkerPool(4)

	if !pool.IsRunning() {
		t.Error("Pool should be running before close")
	}

	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after close")
	}
}

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(4)

	// Multiple closes should not panic
	pool.Close()
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after close")
	}
}

func TestWorkerPool_ExecuteAfterCloseRunsInline(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Close()

	var counter atomic.Int64
	var badIndex atomic.Bool

	pool.ExecuteAll(tasks(10, func(worker int) {
		if worker != pool.Workers() {
			badIndex.Store(true)
		}
		counter.Add(1)
	}))

	if counter.Load() != 10 {
		t.Errorf("counter = %d, want 10", counter.Load())
	}
	if badIndex.Load() {
		t.Errorf("inline tasks must run under index %d", pool.Workers())
	}
}

func TestWorkerPool_CloseDuringDispatch(t *testing.T) {
	pool := NewWorkerPool(2)

	var counter atomic.Int64
	numTasks := 500
	started := make(chan struct{})
	var once sync.Once

	go func() {
		<-started
		pool.Close()
	}()

	pool.ExecuteAll(tasks(numTasks, func(int) {
		once.Do(func() { close(started) })
		counter.Add(1)
	}))

	if counter.Load() != int64(numTasks) {
		t.Errorf("counter = %d, want %d", counter.Load(), numTasks)
	}
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestWorkerPool_Concurrent(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	numGoroutines := 10
	numTasksPerGoroutine := 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for range numGoroutines {
		go func() {
			defer wg.Done()
			pool.ExecuteAll(tasks(numTasksPerGoroutine, func(int) {
				counter.Add(1)
			}))
		}()
	}

	wg.Wait()

	expected := int64(numGoroutines * numTasksPerGoroutine)
	if counter.Load() != expected {
		t.Errorf("counter = %d, want %d", counter.Load(), expected)
	}
}

func TestWorkerPool_WorkStealing(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	// Uneven work distribution: every tenth task is slow.
	var fastCount, slowCount atomic.Int64

	pool.ExecuteAll(func(yield func(Task) bool) {
		for i := range 100 {
			var task Task
			if i%10 == 0 {
				task = func(int) {
					time.Sleep(5 * time.Millisecond)
					slowCount.Add(1)
				}
			} else {
				task = func(int) { fastCount.Add(1) }
			}
			if !yield(task) {
				return
			}
		}
	})

	if slowCount.Load() != 10 {
		t.Errorf("slowCount = %d, want 10", slowCount.Load())
	}
	if fastCount.Load() != 90 {
		t.Errorf("fastCount = %d, want 90", fastCount.Load())
	}
}

func TestWorkerPool_StolenTaskRunsOnThief(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	// Park one worker so anything left in its queue can only be stolen.
	started := make(chan int)
	release := make(chan struct{})
	defer close(release)
	pool.workQueues[0] <- func(worker int) {
		started <- worker
		<-release
	}
	parked := <-started
	idle := 1 - parked

	// A nil entry ahead of real work must be skipped, not called.
	var thief atomic.Int64
	thief.Store(-1)
	done := make(chan struct{})
	pool.workQueues[parked] <- nil
	pool.workQueues[parked] <- func(worker int) {
		thief.Store(int64(worker))
		close(done)
	}

	// Wake the idle worker until it goes looking for work.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-done:
			if got := thief.Load(); got != int64(idle) {
				t.Errorf("stolen task ran on worker %d, want %d", got, idle)
			}
			return
		case <-deadline:
			t.Fatal("task in a parked worker's queue was never stolen")
		default:
		}
		select {
		case pool.workQueues[idle] <- func(int) {}:
		default:
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWorkerPool_NoGoroutineLeak(t *testing.T) {
	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	baseline := runtime.NumGoroutine()

	for range 5 {
		pool := NewWorkerPool(4)
		pool.ExecuteAll(tasks(100, func(int) {}))
		pool.Close()
	}

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	final := runtime.NumGoroutine()

	// Allow for some variance (test framework goroutines, etc.)
	if final > baseline+2 {
		t.Errorf("goroutine count: baseline=%d, final=%d (leak detected)", baseline, final)
	}
}

func TestWorkerPool_ManySmallTasks(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	numTasks := 10000

	pool.ExecuteAll(tasks(numTasks, func(int) {
		counter.Add(1)
	}))

	if counter.Load() != int64(numTasks) {
		t.Errorf("counter = %d, want %d", counter.Load(), numTasks)
	}
}

func BenchmarkWorkerPool_ExecuteAll(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	var sink atomic.Int64
	b.ResetTimer()
	for range b.N {
		pool.ExecuteAll(tasks(256, func(int) { sink.Add(1) }))
	}
}
