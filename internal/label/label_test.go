package label

import (
    "strings"
    "testing"

    "freightq/internal/model"
)

func TestRenderContainsPartiesAndTracking(t *testing.T) {
    b := model.Booking{
        TrackingID: "FQ-1700000000000",
        Quote:      model.Quote{Carrier: "DHL Express", Service: "Express Worldwide", Transit: "2-3 days", WeightKg: 1.5},
        Origin:     model.Address{Name: "Acme Ltd", Street: "1 High St", City: "London", Postcode: "SW1A 1AA", Country: "gb"},
        Destination: model.Address{Name: "Jo Chan", Street: "5 Main Ave", City: "New York", Postcode: "10001", Country: "us"},
        AddOns:     []string{"insurance"},
    }
    out := Render(b)
    for _, want := range []string{"FROM:", "TO:", "Acme Ltd", "Jo Chan", "SW1A 1AA GB", "10001 US", "DHL Express", "FQ-1700000000000", "insurance"} {
        if !strings.Contains(out, want) {
            t.Fatalf("label missing %q:\n%s", want, out)
        }
    }
}

func TestBarcodeDeterministic(t *testing.T) {
    a := barcode("FQ-123")
    if a != barcode("FQ-123") {
        t.Fatalf("barcode not deterministic")
    }
    if len(a) != 2*len("FQ-123") {
        t.Fatalf("barcode width = %d", len(a))
    }
    if a == barcode("FQ-124") {
        t.Fatalf("distinct ids produced identical barcode")
    }
}
