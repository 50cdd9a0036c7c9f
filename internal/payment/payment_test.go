package payment

import (
    "context"
    "net/http"
    "net/http/httptest"
    "testing"
)

func TestCreateIntent(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path != "/v1/payment_intents" {
            t.Errorf("path = %s", r.URL.Path)
        }
        if r.Header.Get("Authorization") != "Bearer sk_test" {
            t.Errorf("auth = %q", r.Header.Get("Authorization"))
        }
        _ = r.ParseForm()
        if r.PostForm.Get("amount") != "1850" || r.PostForm.Get("currency") != "usd" {
            t.Errorf("form = %v", r.PostForm)
        }
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret_x","status":"requires_payment_method"}`))
    }))
    defer srv.Close()

    c := NewClient(srv.URL, "sk_test")
    it, err := c.CreateIntent(context.Background(), 1850, "USD", "booking FQ-1")
    if err != nil {
        t.Fatalf("CreateIntent: %v", err)
    }
    if it.ClientSecret != "pi_1_secret_x" {
        t.Fatalf("client secret = %q", it.ClientSecret)
    }
}

func TestCreateIntentProviderError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(402)
        _, _ = w.Write([]byte(`{"error":{"message":"card declined"}}`))
    }))
    defer srv.Close()
    c := NewClient(srv.URL, "sk_test")
    if _, err := c.CreateIntent(context.Background(), 100, "usd", ""); err == nil {
        t.Fatalf("expected provider error")
    }
}
