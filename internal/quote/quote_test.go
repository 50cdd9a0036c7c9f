package quote

import (
    "math"
    "testing"

    "freightq/internal/model"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuildAndSortByPrice(t *testing.T) {
    rates := []model.Rate{
        {ID: "r1", Carrier: "ups", Amount: 10, Currency: "USD"},
        {ID: "r2", Carrier: "usps", Amount: 5, Currency: "USD"},
        {ID: "r3", Carrier: "dhl", Amount: 20, Currency: "USD"},
    }
    quotes := Build(rates, 2.0, 0.1)
    if len(quotes) != 3 {
        t.Fatalf("expected 3 quotes, got %d", len(quotes))
    }
    SortByPrice(quotes)
    want := []float64{5.5, 11.0, 22.0}
    for i, w := range want {
        if !approx(quotes[i].Total, w) {
            t.Fatalf("total[%d] = %v; want %v", i, quotes[i].Total, w)
        }
    }
    q := quotes[1] // base 10, fee 1
    if !approx(q.Breakdown.BaseCost, 10) || !approx(q.Breakdown.ServiceFee, 1) {
        t.Fatalf("unexpected breakdown: %+v", q.Breakdown)
    }
    if q.Breakdown.Fuel != 0 || q.Breakdown.Customs != 0 {
        t.Fatalf("fuel/customs should start at zero: %+v", q.Breakdown)
    }
    if !q.HasBreakdown {
        t.Fatalf("expected hasBreakdown")
    }
}

func TestWithInsuranceDoesNotMutateOriginals(t *testing.T) {
    quotes := Build([]model.Rate{{ID: "r1", Amount: 10}}, 1, 0.1)
    if !approx(quotes[0].Total, 11.0) {
        t.Fatalf("precondition: total = %v", quotes[0].Total)
    }
    insured := WithInsurance(quotes, 7.50)
    if !approx(insured[0].Total, 18.5) {
        t.Fatalf("insured total = %v; want 18.5", insured[0].Total)
    }
    if !approx(insured[0].Breakdown.Insurance, 7.5) {
        t.Fatalf("insurance line = %v; want 7.5", insured[0].Breakdown.Insurance)
    }
    if !approx(quotes[0].Total, 11.0) || quotes[0].Breakdown.Insurance != 0 {
        t.Fatalf("original mutated: %+v", quotes[0])
    }
}

func TestPremium(t *testing.T) {
    cases := []struct{ value, want float64 }{
        {2000, 10.00},
        {100, 5.00},
        {0, 0},
        {-50, 0},
    }
    for _, c := range cases {
        if got := Premium(c.value); !approx(got, c.want) {
            t.Fatalf("Premium(%v) = %v; want %v", c.value, got, c.want)
        }
    }
}

func TestSortBySpeed(t *testing.T) {
    quotes := []model.Quote{
        {RateID: "slow", Transit: "5 days"},
        {RateID: "vague", Transit: "about a week"},
        {RateID: "fast", Transit: "1 day"},
        {RateID: "mid", Transit: "3-5 days"},
    }
    SortBySpeed(quotes)
    order := []string{"fast", "mid", "slow", "vague"}
    for i, id := range order {
        if quotes[i].RateID != id {
            t.Fatalf("position %d: got %s, want %s", i, quotes[i].RateID, id)
        }
    }
}

func TestTransitDisplay(t *testing.T) {
    if got := transitDisplay(model.Rate{TransitDays: 1}); got != "1 day" {
        t.Fatalf("got %q", got)
    }
    if got := transitDisplay(model.Rate{TransitDays: 3}); got != "3 days" {
        t.Fatalf("got %q", got)
    }
    if got := transitDisplay(model.Rate{Transit: "2-4 days"}); got != "2-4 days" {
        t.Fatalf("got %q", got)
    }
}
