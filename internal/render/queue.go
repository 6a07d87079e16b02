package render

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	log "github.com/sirupsen/logrus"

	"codeberg.org/altpic/altpic/pkg/timers"
)

// Handler receives the result of a scheduled render pass.
type Handler func(key string, out Output, err error)

// Queue runs render passes on a worker pool.
//
// Scheduled jobs are debounced per key and only the last job of a
// burst runs. A key never has more than one pass in flight: a job
// scheduled while its key is rendering waits for that pass to end
// and replaces any job already waiting.
type Queue struct {
	pool      *workerpool.WorkerPool
	debouncer *timers.Debouncer

	mu      sync.Mutex
	pending map[string]Job
	running map[string]bool
	stopped bool
}

// NewQueue starts a queue with the given number of workers and
// debounce delay.
func NewQueue(workers int, delay time.Duration) *Queue {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Queue{
		pool:      workerpool.New(workers),
		debouncer: timers.NewDebouncer(delay),
		pending:   map[string]Job{},
		running:   map[string]bool{},
	}
}

type result struct {
	out Output
	err error
}

// Do runs a job on the pool and waits for its output.
func (q *Queue) Do(ctx context.Context, job Job) (Output, error) {
	ch := make(chan result, 1)
	q.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithField("recover", r).Error("error during render")
				ch <- result{err: fmt.Errorf("render failed: %v", r)}
			}
		}()
		out, err := Process(ctx, job)
		ch <- result{out, err}
	})

	select {
	case r := <-ch:
		return r.out, r.err
	case <-ctx.Done():
		return Output{}, ctx.Err()
	}
}

// Schedule debounces a job for the key. fn is called from a worker
// once the job ran.
func (q *Queue) Schedule(key string, job Job, fn Handler) {
	q.mu.Lock()
	q.pending[key] = job
	q.mu.Unlock()

	q.debouncer.Trigger(key, func() {
		q.submit(key, fn)
	})
}

func (q *Queue) submit(key string, fn Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return
	}
	q.pool.Submit(func() {
		q.runPending(key, fn)
	})
}

// Pending returns true when a job waits for the key, debounced or
// not.
func (q *Queue) Pending(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.pending[key]
	return ok
}

func (q *Queue) runPending(key string, fn Handler) {
	q.mu.Lock()
	if q.running[key] {
		// the running pass resubmits the key when done
		q.mu.Unlock()
		return
	}
	job, ok := q.pending[key]
	if !ok {
		q.mu.Unlock()
		return
	}
	delete(q.pending, key)
	q.running[key] = true
	q.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{"recover": r, "key": key}).Error("error during render")
			fn(key, Output{}, fmt.Errorf("render failed: %v", r))
		}

		q.mu.Lock()
		delete(q.running, key)
		_, again := q.pending[key]
		q.mu.Unlock()

		if again && !q.debouncer.Pending(key) {
			q.submit(key, fn)
		}
	}()

	out, err := Process(context.Background(), job)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("render pass")
	}
	fn(key, out, err)
}

// Cancel drops the job waiting for the key. A pass already running
// is not interrupted.
func (q *Queue) Cancel(key string) {
	q.debouncer.Cancel(key)
	q.mu.Lock()
	delete(q.pending, key)
	q.mu.Unlock()
}

// Stop cancels the debounced jobs and waits for the running ones.
func (q *Queue) Stop() {
	q.debouncer.Stop()
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()
	q.pool.StopWait()
}
