package wizard

import (
    "context"
    "encoding/json"
    "errors"
    "sync"
    "time"

    redis "github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("booking session not found")

// SessionStore holds transient booking state. Sessions expire; the pending
// confirmation marker inside the state is what makes step 4 reachable after
// a cold start.
type SessionStore interface {
    Get(ctx context.Context, id string) (State, error)
    Put(ctx context.Context, s State) error
    Delete(ctx context.Context, id string) error
}

// MemorySessions is the fallback store when no REDIS_URL is set.
type MemorySessions struct {
    mu  sync.Mutex
    m   map[string]memSession
    ttl time.Duration
}

type memSession struct {
    state     State
    expiresAt time.Time
}

func NewMemorySessions(ttl time.Duration) *MemorySessions {
    if ttl <= 0 {
        ttl = 2 * time.Hour
    }
    return &MemorySessions{m: map[string]memSession{}, ttl: ttl}
}

func (s *MemorySessions) Get(ctx context.Context, id string) (State, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    ms, ok := s.m[id]
    if !ok || time.Now().After(ms.expiresAt) {
        delete(s.m, id)
        return State{}, ErrSessionNotFound
    }
    return ms.state, nil
}

func (s *MemorySessions) Put(ctx context.Context, st State) error {
    s.mu.Lock()
    s.m[st.ID] = memSession{state: st, expiresAt: time.Now().Add(s.ttl)}
    s.mu.Unlock()
    return nil
}

func (s *MemorySessions) Delete(ctx context.Context, id string) error {
    s.mu.Lock()
    delete(s.m, id)
    s.mu.Unlock()
    return nil
}

// RedisSessions stores sessions as JSON values with a TTL.
type RedisSessions struct {
    rdb *redis.Client
    ttl time.Duration
}

func NewRedisSessions(url string, ttl time.Duration) (*RedisSessions, error) {
    opt, err := redis.ParseURL(url)
    if err != nil {
        return nil, err
    }
    if ttl <= 0 {
        ttl = 2 * time.Hour
    }
    return &RedisSessions{rdb: redis.NewClient(opt), ttl: ttl}, nil
}

func (s *RedisSessions) key(id string) string { return "booking:" + id }

func (s *RedisSessions) Get(ctx context.Context, id string) (State, error) {
    raw, err := s.rdb.Get(ctx, s.key(id)).Bytes()
    if errors.Is(err, redis.Nil) {
        return State{}, ErrSessionNotFound
    }
    if err != nil {
        return State{}, err
    }
    var st State
    if err := json.Unmarshal(raw, &st); err != nil {
        return State{}, err
    }
    return st, nil
}

func (s *RedisSessions) Put(ctx context.Context, st State) error {
    raw, err := json.Marshal(st)
    if err != nil {
        return err
    }
    return s.rdb.Set(ctx, s.key(st.ID), raw, s.ttl).Err()
}

func (s *RedisSessions) Delete(ctx context.Context, id string) error {
    return s.rdb.Del(ctx, s.key(id)).Err()
}
