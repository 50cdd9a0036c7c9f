package hscode

import (
    "context"
    "net/http"
    "net/http/httptest"
    "testing"
)

func TestSuggestViaProvider(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`{"suggestions":[
            {"code":"8471.30","description":"Laptops"},
            {"code":"8473.30","description":"Laptop parts"},
            {"code":"8504.40","description":"Chargers"},
            {"code":"4202.92","description":"Laptop bags"}]}`))
    }))
    defer srv.Close()

    c := NewClient(srv.URL, "key")
    got, err := c.Suggest(context.Background(), "gaming laptop")
    if err != nil {
        t.Fatalf("Suggest: %v", err)
    }
    if len(got) != 3 {
        t.Fatalf("expected cap at 3 suggestions, got %d", len(got))
    }
    if got[0].Code != "8471.30" {
        t.Fatalf("first suggestion = %+v", got[0])
    }
}

func TestSuggestLocalFallback(t *testing.T) {
    c := &Client{}
    got, err := c.Suggest(context.Background(), "a cotton t-shirt")
    if err != nil {
        t.Fatalf("Suggest: %v", err)
    }
    if len(got) == 0 || got[0].Code != "6109.10" {
        t.Fatalf("fallback = %+v", got)
    }
    got, _ = c.Suggest(context.Background(), "mystery item")
    if len(got) != 1 || got[0].Code != "9999.00" {
        t.Fatalf("unknown item fallback = %+v", got)
    }
}
