// Package carrier talks to the external rate-shopping provider and
// normalizes its heterogeneous carrier responses.
package carrier

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "sort"
    "strconv"
    "strings"
    "time"

    "golang.org/x/time/rate"

    "freightq/internal/country"
    "freightq/internal/model"
)

var (
    // ErrNoRates means the upstream answered but no usable rate survived
    // filtering. Empty result is a failure, not an empty success.
    ErrNoRates = errors.New("no rates available")
    // ErrRateLimited surfaces an upstream 429 as a distinguishable kind.
    ErrRateLimited = errors.New("rate provider throttled the request")
    // ErrCountryUnresolved rejects rate requests whose country cannot be
    // mapped to an ISO-2 code, instead of guessing one.
    ErrCountryUnresolved = errors.New("country not resolvable to ISO code")
)

// ServiceError wraps non-throttle upstream failures with the status code.
type ServiceError struct {
    Status  int
    Message string
}

func (e *ServiceError) Error() string {
    return fmt.Sprintf("rate provider error (status %d): %s", e.Status, e.Message)
}

// Client calls the rate provider. A client-side limiter keeps bursts under
// the provider's published quota; 429s can still occur and are surfaced.
type Client struct {
    BaseURL string
    Token   string
    HTTP    *http.Client
    Limiter *rate.Limiter
}

func NewClient(baseURL, token string, rps float64, burst int) *Client {
    if rps <= 0 {
        rps = 5
    }
    if burst <= 0 {
        burst = 5
    }
    return &Client{
        BaseURL: strings.TrimRight(baseURL, "/"),
        Token:   token,
        HTTP:    &http.Client{Timeout: 15 * time.Second},
        Limiter: rate.NewLimiter(rate.Limit(rps), burst),
    }
}

type rateRequest struct {
    AddressFrom providerAddress  `json:"address_from"`
    AddressTo   providerAddress  `json:"address_to"`
    Parcels     []providerParcel `json:"parcels"`
    Async       bool             `json:"async"`
}

// providerRate is one raw rate as returned upstream. Amount arrives as a
// string, transit either as a day count or free text.
type providerRate struct {
    ObjectID     string   `json:"object_id"`
    Provider     string   `json:"provider"`
    ServiceLevel struct {
        Name string `json:"name"`
    } `json:"servicelevel"`
    Amount       string `json:"amount"`
    Currency     string `json:"currency"`
    EstimatedDays int   `json:"estimated_days"`
    DurationTerms string `json:"duration_terms"`
    Available    *bool  `json:"available,omitempty"`
}

type rateResponse struct {
    Rates []providerRate `json:"rates"`
}

// FetchRates requests rates for one parcel and returns the normalized,
// filtered sequence sorted ascending by price.
func (c *Client) FetchRates(ctx context.Context, origin, destination model.Address, parcel model.Parcel) ([]model.Rate, error) {
    if err := ValidateParcel(parcel); err != nil {
        return nil, err
    }
    from, err := toProviderAddress(origin)
    if err != nil {
        return nil, fmt.Errorf("origin: %w", err)
    }
    to, err := toProviderAddress(destination)
    if err != nil {
        return nil, fmt.Errorf("destination: %w", err)
    }
    body := rateRequest{
        AddressFrom: from,
        AddressTo:   to,
        Parcels:     []providerParcel{toProviderParcel(parcel)},
    }
    raw, err := c.do(ctx, http.MethodPost, "/shipments", body)
    if err != nil {
        return nil, err
    }
    var resp rateResponse
    if err := json.Unmarshal(raw, &resp); err != nil {
        return nil, &ServiceError{Status: http.StatusBadGateway, Message: "malformed rate response"}
    }
    rates := normalize(resp.Rates)
    if len(rates) == 0 {
        return nil, ErrNoRates
    }
    return rates, nil
}

// Forward sends an arbitrary method+path+body to the provider and returns
// the raw JSON body, preserving upstream error kinds.
func (c *Client) Forward(ctx context.Context, endpoint, method string, data any) (json.RawMessage, error) {
    if method == "" {
        method = http.MethodPost
    }
    if !strings.HasPrefix(endpoint, "/") {
        endpoint = "/" + endpoint
    }
    return c.do(ctx, method, endpoint, data)
}

func (c *Client) do(ctx context.Context, method, path string, data any) (json.RawMessage, error) {
    if err := c.Limiter.Wait(ctx); err != nil {
        return nil, err
    }
    var body io.Reader
    if data != nil {
        b, err := json.Marshal(data)
        if err != nil {
            return nil, err
        }
        body = bytes.NewReader(b)
    }
    req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
    if err != nil {
        return nil, err
    }
    req.Header.Set("Content-Type", "application/json")
    if c.Token != "" {
        req.Header.Set("Authorization", "ShippoToken "+c.Token)
    }
    resp, err := c.HTTP.Do(req)
    if err != nil {
        return nil, &ServiceError{Status: http.StatusBadGateway, Message: err.Error()}
    }
    defer func() { _ = resp.Body.Close() }()
    raw, err := io.ReadAll(resp.Body)
    if err != nil {
        return nil, &ServiceError{Status: http.StatusBadGateway, Message: "read error"}
    }
    switch {
    case resp.StatusCode == http.StatusTooManyRequests:
        return nil, ErrRateLimited
    case resp.StatusCode >= 400:
        msg := strings.TrimSpace(string(raw))
        if len(msg) > 200 {
            msg = msg[:200]
        }
        return nil, &ServiceError{Status: resp.StatusCode, Message: msg}
    }
    return raw, nil
}

func toProviderAddress(a model.Address) (providerAddress, error) {
    code, ok := country.Resolve(a.Country)
    if !ok {
        return providerAddress{}, fmt.Errorf("%w: %q", ErrCountryUnresolved, a.Country)
    }
    return providerAddress{
        Name:    a.Name,
        Street1: a.Street,
        City:    a.City,
        Zip:     a.Postcode,
        Country: code,
        Phone:   a.Phone,
        Email:   a.Email,
    }, nil
}

// normalize filters to available rates with positive price and sorts by
// price ascending.
func normalize(in []providerRate) []model.Rate {
    out := make([]model.Rate, 0, len(in))
    for _, r := range in {
        if r.Available != nil && !*r.Available {
            continue
        }
        amount, err := strconv.ParseFloat(strings.TrimSpace(r.Amount), 64)
        if err != nil || amount <= 0 {
            continue
        }
        out = append(out, model.Rate{
            ID:          r.ObjectID,
            Carrier:     r.Provider,
            Service:     r.ServiceLevel.Name,
            Amount:      amount,
            Currency:    r.Currency,
            TransitDays: r.EstimatedDays,
            Transit:     r.DurationTerms,
            Available:   true,
        })
    }
    sort.SliceStable(out, func(i, j int) bool { return out[i].Amount < out[j].Amount })
    return out
}
