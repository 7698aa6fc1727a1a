package goroutine

import (
	"fmt"
	"runtime/debug"
	"sync"

	"veil/internal/shared/logger"
)

// Executor runs fire-and-forget tasks on a bounded worker pool. Tasks
// submitted after Stop, or while the queue is full, are dropped with a
// warning rather than blocking the caller.
type Executor struct {
	tasks   chan task
	logger  logger.Interface
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

type task struct {
	name string
	fn   func()
}

func NewExecutor(workers, queueSize int, log logger.Interface) *Executor {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	e := &Executor{
		tasks:  make(chan task, queueSize),
		logger: log,
	}

	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}

	return e
}

func (e *Executor) worker() {
	defer e.wg.Done()
	for t := range e.tasks {
		e.run(t)
	}
}

func (e *Executor) run(t task) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorw("background task panicked",
				"task", t.name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	t.fn()
}

// Submit queues fn for execution. Returns false if the task was dropped.
// The mutex is held across the send so Stop cannot close the channel
// between the stopped check and the enqueue.
func (e *Executor) Submit(name string, fn func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		e.logger.Warnw("task submitted after executor stopped", "task", name)
		return false
	}

	select {
	case e.tasks <- task{name: name, fn: fn}:
		return true
	default:
		e.logger.Warnw("task queue full, dropping task", "task", name)
		return false
	}
}

// Stop drains queued tasks and waits for in-flight ones to finish.
func (e *Executor) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.tasks)
	e.mu.Unlock()

	e.wg.Wait()
}
