package publishers

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

const (
	// DefaultDispatchBuffer bounds the number of undelivered events.
	DefaultDispatchBuffer = 256
	defaultPublishTimeout = 10 * time.Second
)

// ErrDispatcherClosed is returned by Enqueue after Close.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Dispatcher delivers events to every publisher from a single background
// worker, so slow sinks never block the caller. When the buffer is full new
// events are dropped with a warning.
type Dispatcher struct {
	pubs    []Publisher
	log     Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}
	once   sync.Once
}

// NewDispatcher starts the delivery worker.
func NewDispatcher(pubs []Publisher, buffer int, log Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultDispatchBuffer
	}
	d := &Dispatcher{
		pubs:    pubs,
		log:     ensureLogger(log),
		timeout: defaultPublishTimeout,
		queue:   make(chan Event, buffer),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Publishers returns the sinks events are delivered to.
func (d *Dispatcher) Publishers() []Publisher { return d.pubs }

// Enqueue schedules evt for delivery without blocking.
func (d *Dispatcher) Enqueue(evt Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- evt:
		return nil
	default:
		d.log.WarnObj("publisher queue full, dropping event", "publisher_queue_full", map[string]any{
			"event_id": evt.ID,
			"url":      evt.URL,
		})
		return errors.New("publisher queue full")
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for evt := range d.queue {
		d.deliver(evt)
	}
}

func (d *Dispatcher) deliver(evt Event) {
	for _, pub := range d.pubs {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := pub.Publish(ctx, evt)
		cancel()
		if err != nil {
			d.log.ErrorObj("event delivery failed", "publisher_delivery_error", map[string]any{
				"publisher_id": pub.ID(),
				"type":         pub.Type(),
				"event_id":     evt.ID,
				"error":        err.Error(),
			})
			continue
		}
		d.log.DebugObj("event delivered", "publisher_delivered", map[string]any{
			"publisher_id": pub.ID(),
			"event_id":     evt.ID,
		})
	}
}

// Close stops accepting events, waits for queued ones to be delivered or ctx
// to end, then closes publishers that hold resources.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})

	var err error
	select {
	case <-d.done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	for _, pub := range d.pubs {
		if c, ok := pub.(io.Closer); ok {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}
	return err
}
