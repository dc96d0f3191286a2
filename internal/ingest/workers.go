package ingest

import (
	"context"
	"sync"
)

// workers is a fixed pool draining a bounded task queue.
// Enqueue blocks while the queue is full.
type workers struct {
	wg    sync.WaitGroup
	tasks chan func()
}

func newWorkers(maxTasks int) *workers {
	return &workers{tasks: make(chan func(), maxTasks)}
}

func (w *workers) Start(n int) {
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for job := range w.tasks {
				job()
			}
		}()
	}
}

// Enqueue queues fn, or returns ctx.Err() if ctx ends while waiting for room.
func (w *workers) Enqueue(ctx context.Context, fn func()) error {
	select {
	case w.tasks <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the queue and waits for queued tasks to finish.
// Enqueue must not be called after Stop.
func (w *workers) Stop() {
	close(w.tasks)
	w.wg.Wait()
}

func (w *workers) TasksCount() int {
	return len(w.tasks)
}
