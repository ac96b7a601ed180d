package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

const (
	writeBackoffBase = time.Second
	writeBackoffMax  = 30 * time.Second
	writeMaxAttempts = 8
)

// WriteQueue runs one session's ledger writes in the background and retries
// failures with exponential backoff. Settled rounds are never rolled back
// locally, so a write either eventually lands or is dropped after the
// attempt limit with an error log. Each session has its own queue, so a
// retrying write only delays that player's later writes.
type WriteQueue struct {
	clock  quartz.Clock
	logger *log.Logger
	jobs   chan job
	done   chan struct{}
	wg     sync.WaitGroup
}

type job struct {
	name string
	fn   func(context.Context) error
}

func NewWriteQueue(clock quartz.Clock, logger *log.Logger) *WriteQueue {
	q := &WriteQueue{
		clock:  clock,
		logger: logger.WithPrefix("ledger-writes"),
		jobs:   make(chan job, 256),
		done:   make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// Enqueue schedules a write. Blocks only if the queue is saturated.
func (q *WriteQueue) Enqueue(name string, fn func(context.Context) error) {
	select {
	case <-q.done:
		q.logger.Warn("queue closed, dropping write", "write", name)
	case q.jobs <- job{name: name, fn: fn}:
	}
}

// Close stops accepting writes and drains what is already queued, retries
// included.
func (q *WriteQueue) Close() {
	close(q.done)
	q.wg.Wait()
}

func (q *WriteQueue) run() {
	defer q.wg.Done()
	for {
		select {
		case j := <-q.jobs:
			q.attempt(j)
		case <-q.done:
			for {
				select {
				case j := <-q.jobs:
					q.attempt(j)
				default:
					return
				}
			}
		}
	}
}

func (q *WriteQueue) attempt(j job) {
	backoff := writeBackoffBase
	for attempt := 1; ; attempt++ {
		err := j.fn(context.Background())
		if err == nil {
			if attempt > 1 {
				q.logger.Info("write landed after retry", "write", j.name, "attempts", attempt)
			}
			return
		}
		if attempt >= writeMaxAttempts {
			q.logger.Error("giving up on ledger write", "write", j.name, "attempts", attempt, "err", err)
			return
		}
		q.logger.Warn("ledger write failed, retrying", "write", j.name, "attempt", attempt, "backoff", backoff, "err", err)

		timer := q.clock.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-q.done:
			timer.Stop()
			if err := j.fn(context.Background()); err != nil {
				q.logger.Error("dropping ledger write at shutdown", "write", j.name, "err", err)
			}
			return
		}
		if backoff *= 2; backoff > writeBackoffMax {
			backoff = writeBackoffMax
		}
	}
}
