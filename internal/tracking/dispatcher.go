// Package tracking fans incoming driver position reports out to the
// location command handler. Reports from one driver are processed strictly
// in order; reports from different drivers are processed in parallel.
package tracking

import (
	"context"
	"log/slog"
	"sync"

	"dispatch/internal/core/application/usecases/commands"
)

// locationHandler processes one position report.
type locationHandler interface {
	Handle(ctx context.Context, cmd commands.UpdateDriverLocationCommand) error
}

// Dispatcher serializes position reports per driver. Each driver gets a
// buffered queue drained by its own goroutine, so a slow report for one
// driver never delays another driver's pipeline.
type Dispatcher struct {
	handler locationHandler
	buffer  int
	logger  *slog.Logger

	mu     sync.Mutex
	queues map[string]chan commands.UpdateDriverLocationCommand
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. Buffer bounds each driver's queue;
// non-positive values fall back to a small default.
func NewDispatcher(handler locationHandler, buffer int, logger *slog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 16
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		handler: handler,
		buffer:  buffer,
		logger:  logger.With("component", "tracking_dispatcher"),
		queues:  make(map[string]chan commands.UpdateDriverLocationCommand),
	}
}

// Submit enqueues a position report for its driver's queue. Submission never
// blocks: when the queue is full the report is dropped, because the next
// report supersedes it within seconds anyway. Returns false when the report
// was dropped or the dispatcher is closed.
func (d *Dispatcher) Submit(cmd commands.UpdateDriverLocationCommand) bool {
	if err := cmd.Validate(); err != nil {
		return false
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}

	key := cmd.DriverID().String()
	queue, ok := d.queues[key]
	if !ok {
		queue = make(chan commands.UpdateDriverLocationCommand, d.buffer)
		d.queues[key] = queue
		d.wg.Add(1)
		go d.drain(queue)
	}
	d.mu.Unlock()

	select {
	case queue <- cmd:
		return true
	default:
		d.logger.Debug("driver queue full, dropping position report", "driver_id", key)
		return false
	}
}

// Close stops accepting reports, drains every queue and waits for the
// in-flight handlers to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, queue := range d.queues {
		close(queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) drain(queue <-chan commands.UpdateDriverLocationCommand) {
	defer d.wg.Done()

	for cmd := range queue {
		ctx := context.Background()
		if err := d.handler.Handle(ctx, cmd); err != nil {
			d.logger.ErrorContext(ctx, "position report processing failed",
				"driver_id", cmd.DriverID().String(), "error", err)
		}
	}
}
