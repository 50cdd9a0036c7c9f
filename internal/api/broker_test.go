package api

import (
    "testing"
    "time"
)

func TestBrokerFanout(t *testing.T) {
    b := NewBroker()
    ch1 := b.Subscribe("bk_1")
    ch2 := b.Subscribe("bk_1")
    other := b.Subscribe("bk_2")

    b.Publish("bk_1", Event{Type: "quotes.ready", Data: map[string]any{"count": 2}})

    for _, ch := range []chan Event{ch1, ch2} {
        select {
        case evt := <-ch:
            if evt.Type != "quotes.ready" {
                t.Fatalf("event type = %q", evt.Type)
            }
        case <-time.After(100 * time.Millisecond):
            t.Fatal("subscriber did not receive event")
        }
    }
    select {
    case evt := <-other:
        t.Fatalf("unrelated booking received %+v", evt)
    default:
    }

    b.Unsubscribe("bk_1", ch1)
    // publishing after unsubscribe must not panic or block
    b.Publish("bk_1", Event{Type: "quotes.ready"})
    select {
    case evt := <-ch2:
        if evt.Type != "quotes.ready" {
            t.Fatalf("event type = %q", evt.Type)
        }
    case <-time.After(100 * time.Millisecond):
        t.Fatal("remaining subscriber did not receive event")
    }
}
