// Package hscode suggests harmonized-system codes for customs declarations.
package hscode

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "freightq/internal/model"
)

type Client struct {
    BaseURL string
    Key     string
    HTTP    *http.Client
}

func NewClient(baseURL, key string) *Client {
    return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Key: key, HTTP: &http.Client{Timeout: 15 * time.Second}}
}

// Suggest returns the top suggestions for a free-text goods description,
// capped at three. With no provider configured it falls back to a small
// built-in table so the flow stays usable in dev.
func (c *Client) Suggest(ctx context.Context, description string) ([]model.HSSuggestion, error) {
    if c == nil || c.BaseURL == "" {
        return suggestLocal(description), nil
    }
    body, _ := json.Marshal(map[string]string{"description": description})
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/suggest", bytes.NewReader(body))
    if err != nil {
        return nil, err
    }
    req.Header.Set("Content-Type", "application/json")
    if c.Key != "" {
        req.Header.Set("Authorization", "Bearer "+c.Key)
    }
    resp, err := c.HTTP.Do(req)
    if err != nil {
        return nil, err
    }
    defer func() { _ = resp.Body.Close() }()
    if resp.StatusCode >= 400 {
        return nil, fmt.Errorf("hscode provider: %s", resp.Status)
    }
    var out struct {
        Suggestions []model.HSSuggestion `json:"suggestions"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return nil, err
    }
    if len(out.Suggestions) > 3 {
        out.Suggestions = out.Suggestions[:3]
    }
    return out.Suggestions, nil
}

var localTable = []struct {
    keywords []string
    sug      model.HSSuggestion
}{
    {[]string{"laptop", "computer", "notebook"}, model.HSSuggestion{Code: "8471.30", Description: "Portable automatic data processing machines"}},
    {[]string{"phone", "smartphone", "mobile"}, model.HSSuggestion{Code: "8517.13", Description: "Smartphones"}},
    {[]string{"book", "books"}, model.HSSuggestion{Code: "4901.99", Description: "Printed books, brochures and similar"}},
    {[]string{"shirt", "t-shirt", "clothing", "apparel"}, model.HSSuggestion{Code: "6109.10", Description: "T-shirts, singlets, of cotton"}},
    {[]string{"shoe", "shoes", "sneaker"}, model.HSSuggestion{Code: "6403.99", Description: "Footwear with leather uppers"}},
    {[]string{"toy", "toys"}, model.HSSuggestion{Code: "9503.00", Description: "Toys and scale models"}},
    {[]string{"watch"}, model.HSSuggestion{Code: "9102.11", Description: "Wrist-watches, battery powered"}},
}

func suggestLocal(description string) []model.HSSuggestion {
    d := strings.ToLower(description)
    var out []model.HSSuggestion
    for _, row := range localTable {
        for _, kw := range row.keywords {
            if strings.Contains(d, kw) {
                out = append(out, row.sug)
                break
            }
        }
        if len(out) == 3 {
            return out
        }
    }
    if len(out) == 0 {
        out = append(out, model.HSSuggestion{Code: "9999.00", Description: "General merchandise, unclassified"})
    }
    return out
}
