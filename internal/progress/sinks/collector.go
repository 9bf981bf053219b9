package sinks

import (
	"context"
	"sync"

	"github.com/osintnator/osintnator/internal/progress"
)

// Collector captures events in arrival order. The CLI uses it to print hits
// as they stream in, and tests use it to assert on event sequences.
type Collector struct {
	mu     sync.Mutex
	events []progress.Event

	// OnEvent, when set, observes each event as it is consumed.
	OnEvent func(progress.Event)
}

// NewCollector builds an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Consume appends the batch to the ordered capture.
func (c *Collector) Consume(_ context.Context, batch []progress.Event) error {
	c.mu.Lock()
	c.events = append(c.events, batch...)
	cb := c.OnEvent
	c.mu.Unlock()
	if cb != nil {
		for _, evt := range batch {
			cb(evt)
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (c *Collector) Close(context.Context) error {
	return nil
}

// Events returns a copy of everything captured so far.
func (c *Collector) Events() []progress.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]progress.Event(nil), c.events...)
}

// Kinds returns the captured event kinds in order, a convenience for tests.
func (c *Collector) Kinds() []progress.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]progress.Kind, len(c.events))
	for i, evt := range c.events {
		out[i] = evt.Kind
	}
	return out
}
