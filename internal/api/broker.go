package api

import (
    "sync"
)

// Event is one booking-scoped event fanned out to stream subscribers.
type Event struct {
    Type string
    Data map[string]any
}

// Broker is the in-memory fanout used when no Redis is configured.
type Broker struct {
    mu   sync.Mutex
    subs map[string]map[chan Event]struct{} // bookingID -> set of channels
}

func NewBroker() *Broker {
    return &Broker{subs: map[string]map[chan Event]struct{}{}}
}

func (b *Broker) Subscribe(bookingID string) chan Event {
    ch := make(chan Event, 8)
    b.mu.Lock()
    if b.subs[bookingID] == nil { b.subs[bookingID] = map[chan Event]struct{}{} }
    b.subs[bookingID][ch] = struct{}{}
    b.mu.Unlock()
    return ch
}

func (b *Broker) Unsubscribe(bookingID string, ch chan Event) {
    b.mu.Lock()
    if m := b.subs[bookingID]; m != nil {
        delete(m, ch)
        if len(m) == 0 { delete(b.subs, bookingID) }
    }
    b.mu.Unlock()
    close(ch)
}

func (b *Broker) Publish(bookingID string, evt Event) {
    b.mu.Lock()
    m := b.subs[bookingID]
    for ch := range m {
        select { case ch <- evt: default: }
    }
    b.mu.Unlock()
}
