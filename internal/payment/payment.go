// Package payment is a thin client for the payment-intent provider.
package payment

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"
)

type Client struct {
    BaseURL string
    Key     string
    HTTP    *http.Client
}

func NewClient(baseURL, key string) *Client {
    return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Key: key, HTTP: &http.Client{Timeout: 15 * time.Second}}
}

type Intent struct {
    ID           string `json:"id"`
    ClientSecret string `json:"client_secret"`
    Status       string `json:"status"`
}

// CreateIntent creates a payment intent for the given amount in minor
// currency units and returns the provider intent with its client secret.
func (c *Client) CreateIntent(ctx context.Context, amount int64, currency, description string) (Intent, error) {
    form := url.Values{}
    form.Set("amount", strconv.FormatInt(amount, 10))
    form.Set("currency", strings.ToLower(currency))
    if description != "" {
        form.Set("description", description)
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
    if err != nil {
        return Intent{}, err
    }
    req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
    req.Header.Set("Authorization", "Bearer "+c.Key)
    resp, err := c.HTTP.Do(req)
    if err != nil {
        return Intent{}, err
    }
    defer func() { _ = resp.Body.Close() }()
    if resp.StatusCode >= 400 {
        var e struct {
            Error struct {
                Message string `json:"message"`
            } `json:"error"`
        }
        _ = json.NewDecoder(resp.Body).Decode(&e)
        if e.Error.Message == "" {
            e.Error.Message = resp.Status
        }
        return Intent{}, fmt.Errorf("payment provider: %s", e.Error.Message)
    }
    var it Intent
    if err := json.NewDecoder(resp.Body).Decode(&it); err != nil {
        return Intent{}, err
    }
    return it, nil
}
