// Package main runs a demo WebSocket client for booking events.
package main

import (
    "bytes"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "net/url"
    "os"
    "time"

    "github.com/gorilla/websocket"
)

type wsEvent struct {
    Type string          `json:"type"`
    Data json.RawMessage `json:"data,omitempty"`
    TS   string          `json:"ts"`
}

func main() {
    port := os.Getenv("PORT")
    if port == "" {
        port = "8080"
    }
    base := fmt.Sprintf("http://localhost:%s", port)

    // Start a booking session
    resp, err := http.Post(base+"/v1/bookings", "application/json", nil)
    if err != nil {
        log.Fatal(err)
    }
    defer func() { _ = resp.Body.Close() }()
    var created struct {
        ID string `json:"id"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
        log.Fatal(err)
    }
    if created.ID == "" {
        log.Fatal("no booking id returned")
    }
    log.Printf("Booking ID: %s", created.ID)

    // Connect WS
    u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/bookings/" + created.ID + "/events/ws"}
    c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
    if err != nil {
        log.Fatal("dial:", err)
    }
    defer func() { _ = c.Close() }()

    done := make(chan struct{})
    go func() {
        defer close(done)
        for {
            var evt wsEvent
            if err := c.ReadJSON(&evt); err != nil {
                log.Printf("read: %v", err)
                return
            }
            log.Printf("WS <- %s: %s", evt.Type, string(evt.Data))
        }
    }()

    // Fill in details and submit to trigger quotes.* events
    time.Sleep(500 * time.Millisecond)
    details := []byte(`{
        "origin": {"name":"Acme Ltd","street":"1 High St","city":"London","postcode":"SW1A 1AA","country":"gb"},
        "destination": {"name":"Jo Chan","street":"5 Main Ave","city":"New York","postcode":"10001","country":"us"},
        "parcel": {"lengthCm":30,"widthCm":20,"heightCm":10,"weightKg":2}
    }`)
    putReq, _ := http.NewRequest(http.MethodPut, base+"/v1/bookings/"+created.ID, bytes.NewReader(details))
    putReq.Header.Set("Content-Type", "application/json")
    _, _ = http.DefaultClient.Do(putReq)
    _, _ = http.Post(base+"/v1/bookings/"+created.ID+"/submit", "application/json", nil)

    // Wait briefly to receive a few messages
    select {
    case <-time.After(5 * time.Second):
    case <-done:
    }
}
