package api

import (
    "net/http"
    "time"

    "github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type wsEvent struct {
    Type string         `json:"type"`
    Data map[string]any `json:"data,omitempty"`
    TS   string         `json:"ts"`
}

// BookingEventsWSHandler streams booking events over a WebSocket as JSON
// frames, with periodic pings to keep intermediaries from closing the
// connection. Reads are drained only to notice the client going away.
func (s *Server) BookingEventsWSHandler(w http.ResponseWriter, r *http.Request, bookingID string) {
    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        return
    }
    defer func() { _ = conn.Close() }()

    conn.SetReadLimit(1 << 16)
    _ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
    conn.SetPongHandler(func(string) error { _ = conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

    ch := s.Broker.Subscribe(bookingID)
    defer s.Broker.Unsubscribe(bookingID, ch)

    closed := make(chan struct{})
    go func() {
        defer close(closed)
        for {
            if _, _, err := conn.ReadMessage(); err != nil {
                return
            }
        }
    }()

    ticker := time.NewTicker(20 * time.Second)
    defer ticker.Stop()

    _ = conn.WriteJSON(wsEvent{Type: "connected", Data: map[string]any{"bookingId": bookingID}, TS: time.Now().UTC().Format(time.RFC3339)})
    for {
        select {
        case <-closed:
            return
        case <-r.Context().Done():
            return
        case evt, ok := <-ch:
            if !ok {
                return
            }
            if err := conn.WriteJSON(wsEvent{Type: evt.Type, Data: evt.Data, TS: time.Now().UTC().Format(time.RFC3339)}); err != nil {
                return
            }
        case <-ticker.C:
            if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
                return
            }
        }
    }
}
