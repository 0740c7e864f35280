package ecs

import (
	"reflect"
	"sync"
)

// EventChannel is a double-buffered queue of one event type: writers
// append to the write buffer all frame, and World.Update swaps the
// buffers so the next frame's readers see exactly what was sent during
// the frame just finished (spec.md §4.9's double-buffer rule).
type EventChannel[E any] struct {
	mu    sync.Mutex
	read  []E
	write []E
}

func (c *EventChannel[E]) swap() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.read, c.write = c.write, c.read[:0]
}

// eventChannelFor returns (creating if necessary) the world's channel
// for event type E and registers it for per-update swapping.
func eventChannelFor[E any](w *World) *EventChannel[E] {
	t := reflect.TypeFor[E]()
	if ch, ok := w.eventChannels[t]; ok {
		return ch.(*EventChannel[E])
	}
	ch := &EventChannel[E]{}
	w.eventChannels[t] = ch
	w.events = append(w.events, ch)
	return ch
}

// EventReader is a shared-read system param over event type E, seeing
// every E sent during the previous Update cycle.
type EventReader[E any] struct {
	nonExclusive
	ch *EventChannel[E]
}

func (p *EventReader[E]) init(w *World)    { p.ch = eventChannelFor[E](w) }
func (p *EventReader[E]) access() []Access { return nil }
func (p *EventReader[E]) send() bool       { return true }

// Read returns every E sent during the prior frame.
func (p *EventReader[E]) Read() []E {
	p.ch.mu.Lock()
	defer p.ch.mu.Unlock()
	return p.ch.read
}

// EventWriter is a shared-write system param over event type E.
type EventWriter[E any] struct {
	nonExclusive
	ch *EventChannel[E]
}

func (p *EventWriter[E]) init(w *World)    { p.ch = eventChannelFor[E](w) }
func (p *EventWriter[E]) access() []Access { return nil }
func (p *EventWriter[E]) send() bool       { return true }

// Send queues e for delivery to readers starting next frame.
func (p *EventWriter[E]) Send(e E) {
	p.ch.mu.Lock()
	defer p.ch.mu.Unlock()
	p.ch.write = append(p.ch.write, e)
}
