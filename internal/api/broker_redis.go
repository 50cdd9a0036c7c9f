package api

import (
    "context"
    "encoding/json"
    "time"

    redis "github.com/redis/go-redis/v9"
)

type EventBroker interface {
    Subscribe(bookingID string) chan Event
    Unsubscribe(bookingID string, ch chan Event)
    Publish(bookingID string, evt Event)
}

// RedisBroker implements EventBroker over Redis Pub/Sub so multiple API
// replicas see each other's booking events.
type RedisBroker struct {
    rdb *redis.Client
}

func NewRedisBroker(url string) (*RedisBroker, error) {
    opt, err := redis.ParseURL(url)
    if err != nil { return nil, err }
    return &RedisBroker{rdb: redis.NewClient(opt)}, nil
}

func (b *RedisBroker) Subscribe(bookingID string) chan Event {
    ch := make(chan Event, 16)
    ctx := context.Background()
    ps := b.rdb.Subscribe(ctx, b.chanName(bookingID))
    // initial consume to ensure subscription
    _, _ = ps.Receive(ctx)
    go func() {
        defer close(ch)
        for msg := range ps.Channel() {
            var evt Event
            if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
                select { case ch <- evt: default: }
            }
        }
    }()
    return ch
}

func (b *RedisBroker) Unsubscribe(bookingID string, ch chan Event) {
    // the pubsub goroutine exits when its channel closes on connection loss
    close(ch)
}

func (b *RedisBroker) Publish(bookingID string, evt Event) {
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    data, _ := json.Marshal(evt)
    _ = b.rdb.Publish(ctx, b.chanName(bookingID), data).Err()
}

func (b *RedisBroker) chanName(bookingID string) string { return "booking-events:" + bookingID }
