package telemetry

import (
	"context"
	"log"
	"time"
)

// ShutdownDrainDuration bounds how long Shutdown waits for queued events to
// flush before giving up.
const ShutdownDrainDuration = 5 * time.Second

const queueCapacity = 1024

// AsyncEmitter fans events out to its sinks from a single worker goroutine.
// EmitAsync drops the event when the queue is full; telemetry must never
// apply backpressure to the hub.
type AsyncEmitter struct {
	sinks []Sink
	queue chan *Event
	done  chan struct{}
}

// NewAsyncEmitter starts the worker and returns the emitter.
func NewAsyncEmitter(sinks ...Sink) *AsyncEmitter {
	e := &AsyncEmitter{
		sinks: sinks,
		queue: make(chan *Event, queueCapacity),
		done:  make(chan struct{}),
	}
	go e.run()
	return e
}

// Emit delivers the event to every sink, returning the first error.
func (e *AsyncEmitter) Emit(ctx context.Context, ev *Event) error {
	var firstErr error
	for _, sink := range e.sinks {
		if err := sink.Publish(ctx, ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// EmitAsync queues the event for the worker. It never blocks.
func (e *AsyncEmitter) EmitAsync(ctx context.Context, ev *Event) {
	select {
	case e.queue <- ev:
	default:
		log.Printf("telemetry: queue full, dropping event %s", ev.Name)
	}
}

// Shutdown stops accepting events, drains the queue within the drain
// window, and closes the sinks.
func (e *AsyncEmitter) Shutdown(ctx context.Context) error {
	close(e.queue)
	select {
	case <-e.done:
	case <-time.After(ShutdownDrainDuration):
		log.Print("telemetry: drain window elapsed with events still queued")
	case <-ctx.Done():
	}
	var firstErr error
	for _, sink := range e.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *AsyncEmitter) run() {
	defer close(e.done)
	for ev := range e.queue {
		if err := e.Emit(context.Background(), ev); err != nil {
			log.Printf("telemetry: publish %s: %v", ev.Name, err)
		}
	}
}

// NopEmitter discards every event. Used when no sink is configured.
type NopEmitter struct{}

// Emit discards the event.
func (NopEmitter) Emit(ctx context.Context, e *Event) error { return nil }

// EmitAsync discards the event.
func (NopEmitter) EmitAsync(ctx context.Context, e *Event) {}
