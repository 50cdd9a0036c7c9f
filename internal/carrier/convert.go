package carrier

import (
    "fmt"

    "freightq/internal/model"
)

const (
    cmPerInch   = 2.54
    lbPerKg     = 2.20462
)

// CmToIn converts centimeters to inches.
func CmToIn(cm float64) float64 { return cm / cmPerInch }

// KgToLb converts kilograms to pounds.
func KgToLb(kg float64) float64 { return kg * lbPerKg }

// ValidateParcel enforces the rate-request precondition: all four values
// strictly positive.
func ValidateParcel(p model.Parcel) error {
    if p.LengthCm <= 0 || p.WidthCm <= 0 || p.HeightCm <= 0 {
        return fmt.Errorf("parcel dimensions must be positive: %vx%vx%v cm", p.LengthCm, p.WidthCm, p.HeightCm)
    }
    if p.WeightKg <= 0 {
        return fmt.Errorf("parcel weight must be positive: %v kg", p.WeightKg)
    }
    return nil
}

// providerAddress is the upstream service's address schema.
type providerAddress struct {
    Name    string `json:"name,omitempty"`
    Street1 string `json:"street1,omitempty"`
    City    string `json:"city,omitempty"`
    Zip     string `json:"zip,omitempty"`
    Country string `json:"country"`
    Phone   string `json:"phone,omitempty"`
    Email   string `json:"email,omitempty"`
}

// providerParcel carries imperial units with string-encoded numbers, as the
// upstream expects.
type providerParcel struct {
    Length       string `json:"length"`
    Width        string `json:"width"`
    Height       string `json:"height"`
    DistanceUnit string `json:"distance_unit"`
    Weight       string `json:"weight"`
    MassUnit     string `json:"mass_unit"`
}

func toProviderParcel(p model.Parcel) providerParcel {
    return providerParcel{
        Length:       fmt.Sprintf("%.2f", CmToIn(p.LengthCm)),
        Width:        fmt.Sprintf("%.2f", CmToIn(p.WidthCm)),
        Height:       fmt.Sprintf("%.2f", CmToIn(p.HeightCm)),
        DistanceUnit: "in",
        Weight:       fmt.Sprintf("%.2f", KgToLb(p.WeightKg)),
        MassUnit:     "lb",
    }
}
