package api

import (
    "testing"

    "freightq/internal/wizard"
)

func TestNewServerFallsBackToMemoryOnBadRedisURL(t *testing.T) {
    t.Setenv("REDIS_URL", "not-a-redis-url")
    t.Setenv("DATABASE_URL", "")
    s, err := NewServer()
    if err != nil { t.Fatalf("NewServer: %v", err) }
    if _, ok := s.Broker.(*Broker); !ok {
        t.Fatalf("broker = %T, want in-memory fallback", s.Broker)
    }
    if _, ok := s.Sessions.(*wizard.MemorySessions); !ok {
        t.Fatalf("sessions = %T, want in-memory fallback", s.Sessions)
    }
}
