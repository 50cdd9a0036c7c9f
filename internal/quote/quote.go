// Package quote derives priced quotes from normalized carrier rates.
// Everything here is pure: no I/O, no shared state.
package quote

import (
    "fmt"
    "sort"
    "strconv"
    "strings"

    "freightq/internal/model"
)

const (
    insuranceRate   = 0.005
    insuranceFloor  = 5.00
    transitSentinel = 1 << 30 // unparseable transit sorts last
)

// Build converts rates into quotes by applying the markup rate. Fuel and
// customs start at zero; fuller service variants populate them upstream.
func Build(rates []model.Rate, weightKg, markupRate float64) []model.Quote {
    out := make([]model.Quote, 0, len(rates))
    for _, r := range rates {
        fee := r.Amount * markupRate
        out = append(out, model.Quote{
            RateID:   r.ID,
            Carrier:  r.Carrier,
            Service:  r.Service,
            Transit:  transitDisplay(r),
            WeightKg: weightKg,
            Total:    r.Amount + fee,
            Currency: r.Currency,
            Breakdown: model.CostBreakdown{
                BaseCost:   r.Amount,
                Fuel:       0,
                Customs:    0,
                ServiceFee: fee,
            },
            HasBreakdown: true,
        })
    }
    return out
}

func transitDisplay(r model.Rate) string {
    if r.TransitDays > 0 {
        if r.TransitDays == 1 {
            return "1 day"
        }
        return fmt.Sprintf("%d days", r.TransitDays)
    }
    return r.Transit
}

// Premium computes the insurance premium for a declared value. Non-positive
// values yield zero: insurance selected but inert, not an error.
func Premium(declaredValue float64) float64 {
    if declaredValue <= 0 {
        return 0
    }
    p := declaredValue * insuranceRate
    if p < insuranceFloor {
        return insuranceFloor
    }
    return p
}

// WithInsurance returns copies of quotes with the flat insurance cost added
// to each breakdown and total. The input quotes are never mutated: sorting
// and re-rendering re-apply insurance to the canonical set.
func WithInsurance(quotes []model.Quote, cost float64) []model.Quote {
    out := make([]model.Quote, len(quotes))
    copy(out, quotes)
    if cost <= 0 {
        return out
    }
    for i := range out {
        out[i].Breakdown.Insurance += cost
        out[i].Total += cost
    }
    return out
}

// SortByPrice orders quotes by total ascending, stable on input order.
func SortByPrice(quotes []model.Quote) {
    sort.SliceStable(quotes, func(i, j int) bool { return quotes[i].Total < quotes[j].Total })
}

// SortBySpeed orders quotes by the leading integer of the transit display,
// ascending. Quotes without a parseable leading integer sort last.
func SortBySpeed(quotes []model.Quote) {
    sort.SliceStable(quotes, func(i, j int) bool {
        return transitKey(quotes[i].Transit) < transitKey(quotes[j].Transit)
    })
}

func transitKey(transit string) int {
    s := strings.TrimSpace(transit)
    end := 0
    for end < len(s) && s[end] >= '0' && s[end] <= '9' {
        end++
    }
    if end == 0 {
        return transitSentinel
    }
    n, err := strconv.Atoi(s[:end])
    if err != nil {
        return transitSentinel
    }
    return n
}
