package carrier

import (
    "context"
    "encoding/json"
    "errors"
    "math"
    "net/http"
    "net/http/httptest"
    "testing"

    "freightq/internal/model"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestConversions(t *testing.T) {
    if got := CmToIn(2.54); !approx(got, 1.0) {
        t.Fatalf("CmToIn(2.54) = %v", got)
    }
    if got := KgToLb(1); !approx(got, 2.20462) {
        t.Fatalf("KgToLb(1) = %v", got)
    }
    // round-trip within float tolerance
    if got := CmToIn(1) * 2.54; !approx(got, 1.0) {
        t.Fatalf("cm round-trip = %v", got)
    }
}

func TestValidateParcel(t *testing.T) {
    good := model.Parcel{LengthCm: 10, WidthCm: 10, HeightCm: 10, WeightKg: 1}
    if err := ValidateParcel(good); err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    for _, bad := range []model.Parcel{
        {LengthCm: 0, WidthCm: 10, HeightCm: 10, WeightKg: 1},
        {LengthCm: 10, WidthCm: 10, HeightCm: 10, WeightKg: 0},
        {LengthCm: 10, WidthCm: -1, HeightCm: 10, WeightKg: 1},
    } {
        if err := ValidateParcel(bad); err == nil {
            t.Fatalf("expected error for %+v", bad)
        }
    }
}

func testAddresses() (model.Address, model.Address) {
    origin := model.Address{Name: "A", Street: "1 High St", City: "London", Postcode: "SW1A 1AA", Country: "United Kingdom"}
    dest := model.Address{Name: "B", Street: "5 Main St", City: "Boston", Postcode: "02101", Country: "usa"}
    return origin, dest
}

func TestFetchRatesNormalizesAndSorts(t *testing.T) {
    unavailable := false
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        var req rateRequest
        _ = json.NewDecoder(r.Body).Decode(&req)
        if req.AddressFrom.Country != "GB" || req.AddressTo.Country != "US" {
            t.Errorf("countries not resolved: %s -> %s", req.AddressFrom.Country, req.AddressTo.Country)
        }
        if req.Parcels[0].MassUnit != "lb" || req.Parcels[0].DistanceUnit != "in" {
            t.Errorf("units not converted: %+v", req.Parcels[0])
        }
        resp := rateResponse{Rates: []providerRate{
            {ObjectID: "r1", Provider: "ups", Amount: "12.40", Currency: "USD", EstimatedDays: 3},
            {ObjectID: "r2", Provider: "usps", Amount: "8.15", Currency: "USD", DurationTerms: "2-5 days"},
            {ObjectID: "r3", Provider: "dhl", Amount: "0.00", Currency: "USD"},
            {ObjectID: "r4", Provider: "fedex", Amount: "30.00", Currency: "USD", Available: &unavailable},
        }}
        _ = json.NewEncoder(w).Encode(resp)
    }))
    defer srv.Close()

    c := NewClient(srv.URL, "tok", 100, 10)
    origin, dest := testAddresses()
    rates, err := c.FetchRates(context.Background(), origin, dest, model.Parcel{LengthCm: 30, WidthCm: 20, HeightCm: 10, WeightKg: 2})
    if err != nil {
        t.Fatalf("FetchRates: %v", err)
    }
    if len(rates) != 2 {
        t.Fatalf("expected 2 rates after filtering, got %d", len(rates))
    }
    if rates[0].ID != "r2" || rates[1].ID != "r1" {
        t.Fatalf("not sorted by price: %+v", rates)
    }
}

func TestFetchRatesEmptyIsError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        _ = json.NewEncoder(w).Encode(rateResponse{})
    }))
    defer srv.Close()
    c := NewClient(srv.URL, "", 100, 10)
    origin, dest := testAddresses()
    _, err := c.FetchRates(context.Background(), origin, dest, model.Parcel{LengthCm: 1, WidthCm: 1, HeightCm: 1, WeightKg: 1})
    if !errors.Is(err, ErrNoRates) {
        t.Fatalf("expected ErrNoRates, got %v", err)
    }
}

func TestFetchRatesRateLimited(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusTooManyRequests)
    }))
    defer srv.Close()
    c := NewClient(srv.URL, "", 100, 10)
    origin, dest := testAddresses()
    _, err := c.FetchRates(context.Background(), origin, dest, model.Parcel{LengthCm: 1, WidthCm: 1, HeightCm: 1, WeightKg: 1})
    if !errors.Is(err, ErrRateLimited) {
        t.Fatalf("expected ErrRateLimited, got %v", err)
    }
}

func TestFetchRatesUnresolvedCountry(t *testing.T) {
    c := NewClient("http://unused.invalid", "", 100, 10)
    origin, _ := testAddresses()
    dest := model.Address{Country: "atlantis"}
    _, err := c.FetchRates(context.Background(), origin, dest, model.Parcel{LengthCm: 1, WidthCm: 1, HeightCm: 1, WeightKg: 1})
    if !errors.Is(err, ErrCountryUnresolved) {
        t.Fatalf("expected ErrCountryUnresolved, got %v", err)
    }
}

func TestForwardServiceError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        http.Error(w, "upstream exploded", http.StatusBadGateway)
    }))
    defer srv.Close()
    c := NewClient(srv.URL, "", 100, 10)
    _, err := c.Forward(context.Background(), "/tracks", http.MethodGet, nil)
    var se *ServiceError
    if !errors.As(err, &se) || se.Status != http.StatusBadGateway {
        t.Fatalf("expected ServiceError 502, got %v", err)
    }
}
