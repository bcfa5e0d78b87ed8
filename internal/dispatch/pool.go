package dispatch

import (
	"errors"
	"log/slog"
	"sync"

	"onboardbot/internal/logging"
)

// ErrClosed is returned when work is submitted after Close.
var ErrClosed = errors.New("dispatcher closed")

// Pool assigns each user a dedicated serial lane from a fixed set.
// Assignment is round-robin on first contact and memoized for the life
// of the mapping; Release drops it so the lane can be reused without the
// table growing unboundedly.
type Pool struct {
	logger *slog.Logger
	lanes  []chan func()

	mu       sync.Mutex
	assigned map[string]int
	next     int
	closed   bool

	wg sync.WaitGroup
}

// NewPool creates a pool with the given lane count and per-lane queue
// depth and starts the lane workers.
func NewPool(lanes, depth int, logger *slog.Logger) *Pool {
	if lanes < 1 {
		lanes = 1
	}
	if depth < 1 {
		depth = 1
	}
	p := &Pool{
		logger:   logging.NewComponentLogger(logger, "dispatch"),
		lanes:    make([]chan func(), lanes),
		assigned: make(map[string]int),
	}
	for i := range p.lanes {
		ch := make(chan func(), depth)
		p.lanes[i] = ch
		p.wg.Add(1)
		go p.runLane(ch)
	}
	return p
}

func (p *Pool) runLane(tasks <-chan func()) {
	defer p.wg.Done()
	for task := range tasks {
		task()
	}
}

// Do enqueues task on the user's sticky lane, assigning one round-robin
// on first contact. It blocks when the lane queue is full, which
// preserves per-user arrival order under backpressure.
func (p *Pool) Do(username string, task func()) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	index, ok := p.assigned[username]
	if !ok {
		index = p.next % len(p.lanes)
		p.next++
		p.assigned[username] = index
		p.logger.Debug("lane assigned",
			logging.String(logging.FieldUser, username),
			logging.Int(logging.FieldLane, index),
		)
	}
	lane := p.lanes[index]
	p.mu.Unlock()

	lane <- task
	return nil
}

// Release drops the user's lane assignment. Idempotent when absent.
func (p *Pool) Release(username string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.assigned[username]; ok {
		delete(p.assigned, username)
		p.logger.Debug("lane released", logging.String(logging.FieldUser, username))
	}
}

// Assigned reports whether the user currently holds a lane.
func (p *Pool) Assigned(username string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.assigned[username]
	return ok
}

// Close stops accepting work, drains every lane, and joins the workers.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	for _, lane := range p.lanes {
		close(lane)
	}
	p.wg.Wait()
}
