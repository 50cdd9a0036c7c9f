package wizard

import (
    "context"
    "strings"
    "testing"
    "time"

    "freightq/internal/model"
)

func validState() State {
    s := NewState("bk_test")
    s.Origin = model.Address{Name: "A", Street: "1 High St", City: "London", Postcode: "SW1A 1AA", Country: "GB"}
    s.Destination = model.Address{Name: "B", Street: "5 Main St", City: "Boston", Postcode: "02101", Country: "US"}
    s.Parcel = model.Parcel{LengthCm: 30, WidthCm: 20, HeightCm: 10, WeightKg: 2}
    return s
}

func TestValidateBlocksEmptyDestinationCountry(t *testing.T) {
    s := validState()
    s.Destination.Country = ""
    vr := Validate(&s)
    if vr.OK() {
        t.Fatalf("expected validation failure")
    }
    if len(vr.Fields) != 1 {
        t.Fatalf("expected exactly one field error, got %v", vr.Fields)
    }
    if _, ok := vr.Fields["destination.country"]; !ok {
        t.Fatalf("expected destination.country flagged, got %v", vr.Fields)
    }
    if vr.Notice == "" {
        t.Fatalf("expected aggregate notice")
    }
    // and the step does not advance
    if seq, fail := s.BeginQuoteFetch(); fail == nil || seq != 0 {
        t.Fatalf("submit should be blocked: seq=%d fail=%v", seq, fail)
    }
    if s.Step != StepDetails {
        t.Fatalf("step moved to %d", s.Step)
    }
}

func TestValidateBadPostcodeAndInsurance(t *testing.T) {
    s := validState()
    s.Origin.Postcode = "12345" // not a GB postcode
    s.SetInsurance(true, 0)
    vr := Validate(&s)
    if _, ok := vr.Fields["origin.postcode"]; !ok {
        t.Fatalf("expected origin.postcode flagged: %v", vr.Fields)
    }
    if _, ok := vr.Fields["insurance.declaredValue"]; !ok {
        t.Fatalf("expected insurance.declaredValue flagged: %v", vr.Fields)
    }
}

func TestDropoffModeRelaxesOrigin(t *testing.T) {
    s := validState()
    s.Mode = ModeDropoff
    s.Origin.Street = ""
    s.Origin.City = ""
    if vr := Validate(&s); !vr.OK() {
        t.Fatalf("dropoff origin should not require street/city: %v", vr.Fields)
    }
}

func TestQuoteFetchLifecycleAndStaleDrop(t *testing.T) {
    s := validState()
    seq, fail := s.BeginQuoteFetch()
    if fail != nil {
        t.Fatalf("submit failed: %v", fail)
    }
    if s.Step != StepQuotes || !s.QuotesPending || seq != 1 {
        t.Fatalf("unexpected state after submit: %+v", s)
    }
    // user resubmits before the first fetch lands
    seq2, fail := s.BeginQuoteFetch()
    if fail != nil || seq2 != 2 {
        t.Fatalf("resubmit: seq=%d fail=%v", seq2, fail)
    }
    // the stale result is dropped
    if s.ApplyQuotes(seq, []model.Quote{{RateID: "old"}}, "") {
        t.Fatalf("stale fetch result applied")
    }
    if !s.ApplyQuotes(seq2, []model.Quote{{RateID: "r1", Total: 11}}, "") {
        t.Fatalf("current fetch result dropped")
    }
    if s.QuotesPending || len(s.Quotes) != 1 || s.Quotes[0].RateID != "r1" {
        t.Fatalf("unexpected quotes state: %+v", s)
    }
}

func TestSelectConfirmReset(t *testing.T) {
    s := validState()
    if _, fail := s.BeginQuoteFetch(); fail != nil {
        t.Fatalf("submit: %v", fail)
    }
    s.ApplyQuotes(s.FetchSeq, []model.Quote{{RateID: "r1", Total: 11, Carrier: "ups"}}, "")
    s.SetInsurance(true, 2000) // premium 10

    b, err := s.Select("r1", []string{"premium_tracking"}, "FQ")
    if err != nil {
        t.Fatalf("select: %v", err)
    }
    if s.Step != StepPayment || !s.PendingConfirmation {
        t.Fatalf("expected payment step with pending marker: %+v", s)
    }
    if b.Quote.Total != 21 {
        t.Fatalf("selected quote should carry insurance: total=%v", b.Quote.Total)
    }
    if s.Quotes[0].Total != 11 {
        t.Fatalf("canonical quote mutated: %v", s.Quotes[0].Total)
    }
    if !strings.HasPrefix(b.TrackingID, "FQ-") {
        t.Fatalf("tracking id %q", b.TrackingID)
    }

    if err := s.Confirm(); err != nil {
        t.Fatalf("confirm: %v", err)
    }
    if s.Step != StepConfirmation || s.PendingConfirmation {
        t.Fatalf("unexpected post-confirm state: %+v", s)
    }

    s.Reset()
    if s.Step != StepDetails || s.Booking != nil || len(s.Quotes) != 0 {
        t.Fatalf("reset incomplete: %+v", s)
    }
}

func TestConfirmFromColdStartMarker(t *testing.T) {
    s := validState()
    s.Booking = &model.Booking{TrackingID: "FQ-1"}
    s.PendingConfirmation = true
    s.Step = StepDetails // restored session landed on step 1
    if err := s.Confirm(); err != nil {
        t.Fatalf("confirm via marker: %v", err)
    }
    if s.Step != StepConfirmation {
        t.Fatalf("step = %d", s.Step)
    }
}

func TestBackTransition(t *testing.T) {
    s := validState()
    if err := s.Back(); err == nil {
        t.Fatalf("back from details should fail")
    }
    _, _ = s.BeginQuoteFetch()
    if err := s.Back(); err != nil {
        t.Fatalf("back: %v", err)
    }
    if s.Step != StepDetails {
        t.Fatalf("step = %d", s.Step)
    }
}

func TestVisibleFields(t *testing.T) {
    s := NewState("bk_v")
    got := VisibleFields("origin", &s)
    if len(got) != 1 || got[0] != "name" {
        t.Fatalf("fresh form: %v", got)
    }
    s.Origin.Name = "A"
    s.Origin.Street = "1 High St"
    got = VisibleFields("origin", &s)
    want := []string{"name", "street", "city"}
    if len(got) != len(want) {
        t.Fatalf("got %v, want %v", got, want)
    }
    for i := range want {
        if got[i] != want[i] {
            t.Fatalf("got %v, want %v", got, want)
        }
    }
    s.Origin.City = "London"
    s.Origin.Postcode = "SW1A 1AA"
    got = VisibleFields("origin", &s)
    if got[len(got)-1] != "country" {
        t.Fatalf("country should be revealed after postcode: %v", got)
    }
}

func TestCustomsRequired(t *testing.T) {
    s := validState()
    if !s.CustomsRequired() {
        t.Fatalf("GB -> US should require customs")
    }
    s.Destination.Country = "uk"
    if s.CustomsRequired() {
        t.Fatalf("GB -> uk is domestic")
    }
}

func TestMemorySessions(t *testing.T) {
    ctx := context.Background()
    ss := NewMemorySessions(50 * time.Millisecond)
    st := NewState("bk_1")
    if err := ss.Put(ctx, st); err != nil {
        t.Fatalf("put: %v", err)
    }
    got, err := ss.Get(ctx, "bk_1")
    if err != nil || got.ID != "bk_1" {
        t.Fatalf("get: %v %v", got, err)
    }
    time.Sleep(80 * time.Millisecond)
    if _, err := ss.Get(ctx, "bk_1"); err == nil {
        t.Fatalf("expected expiry")
    }
    if _, err := ss.Get(ctx, "missing"); err == nil {
        t.Fatalf("expected not found")
    }
}
