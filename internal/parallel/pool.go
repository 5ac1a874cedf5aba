package parallel

import (
	"iter"
	"runtime"
	"sync"
	"sync/atomic"
)

// Task is a unit of work executed by the pool.
// The argument is the index of the goroutine running the task, in
// [0, Workers()] inclusive: indices below Workers() are pool workers and
// Workers() itself denotes the dispatching goroutine (used when the pool is
// closed). Tasks running under the same index never overlap, so per-index
// scratch state needs no locking.
type Task func(worker int)

// WorkerPool is a fixed-size pool of goroutines for tile processing.
//
// The pool distributes tasks across workers, each with its own queue.
// Workers steal from other queues when their own is empty, which balances
// load when some tiles are slower than others (e.g. border tiles of a
// convolution, or tiles that hit an early exit).
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int

	// workQueues holds per-worker task queues.
	workQueues []chan Task

	// done signals workers to stop.
	done chan struct{}

	wg sync.WaitGroup

	// mu orders task submission against Close.
	mu sync.RWMutex

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewWorkerPool creates a pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// 4x workers hides dispatch latency without holding many tiles in flight.
	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan Task, workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan Task, queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}

	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]

	for {
		select {
		case <-p.done:
			p.drainQueue(id, myQueue)
			return

		case task := <-myQueue:
			p.run(id, task)

		default:
			if stolen := p.steal(id); stolen != nil {
				p.run(id, stolen)
				continue
			}
			// Nothing anywhere, block on own queue.
			select {
			case <-p.done:
				p.drainQueue(id, myQueue)
				return
			case task := <-myQueue:
				p.run(id, task)
			}
		}
	}
}

func (p *WorkerPool) run(id int, task Task) {
	if task != nil {
		task(id)
	}
}

// drainQueue executes all remaining tasks in a queue.
func (p *WorkerPool) drainQueue(id int, queue chan Task) {
	for {
		select {
		case task := <-queue:
			p.run(id, task)
		default:
			return
		}
	}
}

// steal attempts to take a task from another worker's queue.
// Returns nil if no work is available.
func (p *WorkerPool) steal(myID int) Task {
	for i := range p.workers {
		if i == myID {
			continue
		}
		select {
		case task := <-p.workQueues[i]:
			return task
		default:
		}
	}
	return nil
}

// ExecuteAll distributes tasks round-robin across workers and waits for all
// of them to complete. The sequence is consumed lazily; a full queue blocks
// the dispatcher until a worker catches up.
//
// If the pool is closed (or closes during dispatch), the remaining tasks run
// on the calling goroutine under index Workers().
func (p *WorkerPool) ExecuteAll(tasks iter.Seq[Task]) {
	var completion sync.WaitGroup
	inline := false

	i := 0
	for task := range tasks {
		if task == nil {
			continue
		}
		if !inline {
			completion.Add(1)
			if p.submit(i, task, &completion) {
				i++
				continue
			}
			completion.Done()
			inline = true
		}
		task(p.workers)
	}

	completion.Wait()
}

// submit queues a task for worker i%workers. It reports false if the pool
// no longer accepts work. Holding the read lock across the send keeps Close
// from shutting workers down while a task is in flight to a queue.
func (p *WorkerPool) submit(i int, task Task, completion *sync.WaitGroup) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running.Load() {
		return false
	}
	p.workQueues[i%p.workers] <- func(worker int) {
		defer completion.Done()
		task(worker)
	}
	return true
}

// Close gracefully shuts down the pool.
// It stops accepting new work, waits for queued tasks to complete,
// and then stops all workers. Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()

	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
