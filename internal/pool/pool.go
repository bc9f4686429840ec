package pool

import (
	"container/heap"
	"fmt"
	"sync"
	"time"

	"envsync/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrUnknownTask = fmt.Errorf("unknown task id")
	ErrWaitTimeout = fmt.Errorf("timed out waiting for task")
	ErrPoolClosed  = fmt.Errorf("pool is shut down")
)

// pollInterval bounds how long an idle worker waits before rechecking
// the queue and the stop signal.
const pollInterval = 50 * time.Millisecond

// Work is a task body. Failures are captured into the task's Result,
// never propagated out of the worker.
type Work func() (any, error)

// Result is the terminal state of a task, kept in the results table
// under the task id for the lifetime of the pool.
type Result struct {
	TaskID int
	Value  any
	Err    error
}

// Pool runs tasks on a fixed number of workers, dequeuing by priority
// (descending) and enqueue order (ascending) within equal priority.
// A pool is meant to be short-lived: created for one batch of work and
// shut down on every exit path.
type Pool struct {
	mu       sync.Mutex
	queue    taskQueue
	results  map[int]Result
	done     map[int]chan struct{}
	nextID   int
	stopped  bool
	draining bool

	wake chan struct{}
	stop chan struct{}
	wg   sync.WaitGroup
}

func New(workers int) (*Pool, error) {
	if workers < 1 {
		return nil, fmt.Errorf("worker count must be >= 1, got %d", workers)
	}

	p := &Pool{
		results: make(map[int]Result),
		done:    make(map[int]chan struct{}),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p, nil
}

// Submit enqueues work and returns its task id. Ids are monotonically
// increasing and never reused.
func (p *Pool) Submit(work Work, priority Priority) (int, error) {
	if !priority.valid() {
		return 0, fmt.Errorf("invalid priority: %d", priority)
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return 0, ErrPoolClosed
	}

	p.nextID++
	id := p.nextID
	heap.Push(&p.queue, &task{
		id:       id,
		priority: priority,
		enqueued: time.Now(),
		work:     work,
	})
	p.done[id] = make(chan struct{})
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}

	return id, nil
}

// WaitFor blocks until the task's result is available or the timeout
// elapses. A timeout of zero waits indefinitely. The task itself is
// never cancelled; a result missed due to timeout can still be
// collected by a later call.
func (p *Pool) WaitFor(id int, timeout time.Duration) (Result, error) {
	p.mu.Lock()
	if r, ok := p.results[id]; ok {
		p.mu.Unlock()
		return r, nil
	}

	ch, ok := p.done[id]
	p.mu.Unlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownTask, id)
	}

	if timeout <= 0 {
		<-ch
	} else {
		select {
		case <-ch:
		case <-time.After(timeout):
			return Result{}, fmt.Errorf("%w: task %d after %s", ErrWaitTimeout, id, timeout)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results[id], nil
}

// WaitAll collects one result per id. The timeout, when non-zero,
// applies to the batch as a whole.
func (p *Pool) WaitAll(ids []int, timeout time.Duration) (map[int]Result, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	out := make(map[int]Result, len(ids))
	for _, id := range ids {
		remaining := time.Duration(0)
		if !deadline.IsZero() {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return out, fmt.Errorf("%w: %d of %d tasks pending", ErrWaitTimeout, len(ids)-len(out), len(ids))
			}
		}

		r, err := p.WaitFor(id, remaining)
		if err != nil {
			return out, err
		}
		out[id] = r
	}

	return out, nil
}

// Shutdown stops the workers. With drain=true queued tasks are
// processed first; with drain=false anything still queued is dropped
// and its result never materializes.
func (p *Pool) Shutdown(drain bool) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.stopped = true
	p.draining = drain
	p.mu.Unlock()

	close(p.stop)
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		t, ok := p.next()
		if !ok {
			return
		}
		p.run(t)
	}
}

// next pops the highest-priority, oldest-enqueued task, or blocks
// briefly and retries. Returns false once the pool is stopped and, when
// draining, the queue is empty.
func (p *Pool) next() (*task, bool) {
	for {
		p.mu.Lock()
		if p.queue.Len() > 0 {
			if !p.stopped || p.draining {
				t := heap.Pop(&p.queue).(*task)
				p.mu.Unlock()
				return t, true
			}
		}
		stopped := p.stopped
		p.mu.Unlock()

		if stopped {
			return nil, false
		}

		select {
		case <-p.wake:
		case <-p.stop:
		case <-time.After(pollInterval):
		}
	}
}

func (p *Pool) run(t *task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("task panicked",
				zap.Int("task_id", t.id),
				zap.Any("panic", r))
			p.record(Result{TaskID: t.id, Err: fmt.Errorf("task panicked: %v", r)})
		}
	}()

	value, err := t.work()
	p.record(Result{TaskID: t.id, Value: value, Err: err})
}

func (p *Pool) record(r Result) {
	p.mu.Lock()
	p.results[r.TaskID] = r
	ch := p.done[r.TaskID]
	p.mu.Unlock()

	close(ch)
}
