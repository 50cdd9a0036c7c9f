// Package wizard drives the four-step booking flow. State lives in a
// SessionStore and is passed explicitly; there is no package-level state.
package wizard

import (
    "errors"
    "strconv"
    "time"

    "freightq/internal/country"
    "freightq/internal/model"
    "freightq/internal/postcode"
    "freightq/internal/quote"
)

type Step int

const (
    StepDetails      Step = 1
    StepQuotes       Step = 2
    StepPayment      Step = 3
    StepConfirmation Step = 4
)

const (
    ModePickup  = "pickup"
    ModeDropoff = "dropoff"
)

var ErrBadTransition = errors.New("transition not allowed from current step")

// Insurance holds the declared-value selection. Cost is recomputed from the
// declared value whenever it changes; a zero cost means inert insurance.
type Insurance struct {
    Selected      bool    `json:"selected"`
    DeclaredValue float64 `json:"declaredValue,omitempty"`
    Cost          float64 `json:"cost"`
}

// State is one booking session. Quotes is the canonical pre-insurance set;
// renders apply insurance to copies.
type State struct {
    ID          string         `json:"id"`
    Step        Step           `json:"step"`
    Mode        string         `json:"mode"`
    Origin      model.Address  `json:"origin"`
    Destination model.Address  `json:"destination"`
    Parcel      model.Parcel   `json:"parcel"`
    Insurance   Insurance      `json:"insurance"`

    Quotes        []model.Quote `json:"quotes,omitempty"`
    QuotesPending bool          `json:"quotesPending,omitempty"`
    QuotesError   string        `json:"quotesError,omitempty"`
    FetchSeq      int           `json:"fetchSeq"`

    Booking             *model.Booking `json:"booking,omitempty"`
    PendingConfirmation bool           `json:"pendingConfirmation,omitempty"`

    CreatedAt string `json:"createdAt"`
    UpdatedAt string `json:"updatedAt"`
}

func NewState(id string) State {
    now := time.Now().UTC().Format(time.RFC3339)
    return State{ID: id, Step: StepDetails, Mode: ModePickup, CreatedAt: now, UpdatedAt: now}
}

// Reset clears everything except identity: the "new shipment" transition.
func (s *State) Reset() {
    fresh := NewState(s.ID)
    fresh.CreatedAt = s.CreatedAt
    *s = fresh
}

// Touch updates the modification timestamp.
func (s *State) Touch() { s.UpdatedAt = time.Now().UTC().Format(time.RFC3339) }

// SetInsurance applies the selection and recomputes the premium. A
// non-positive declared value leaves a selected-but-inert insurance.
func (s *State) SetInsurance(selected bool, declaredValue float64) {
    s.Insurance.Selected = selected
    s.Insurance.DeclaredValue = declaredValue
    if selected {
        s.Insurance.Cost = quote.Premium(declaredValue)
    } else {
        s.Insurance.Cost = 0
    }
}

// BeginQuoteFetch validates the details form and, on success, moves to the
// quotes step and claims a new fetch sequence number. The prior quote list
// is discarded. Returns the claimed sequence.
func (s *State) BeginQuoteFetch() (int, *ValidationResult) {
    if s.Step != StepDetails && s.Step != StepQuotes {
        vr := &ValidationResult{Notice: "booking is past the details step"}
        return 0, vr
    }
    if vr := Validate(s); !vr.OK() {
        return 0, vr
    }
    s.Step = StepQuotes
    s.FetchSeq++
    s.Quotes = nil
    s.QuotesPending = true
    s.QuotesError = ""
    return s.FetchSeq, nil
}

// ApplyQuotes installs a fetch result. Results for a superseded sequence are
// dropped: a late-arriving response must not clobber a newer fetch.
func (s *State) ApplyQuotes(seq int, quotes []model.Quote, fetchErr string) bool {
    if seq != s.FetchSeq {
        return false
    }
    s.QuotesPending = false
    s.Quotes = quotes
    s.QuotesError = fetchErr
    return true
}

// Back returns from quotes to details. Any in-flight fetch keeps running;
// its result lands on the same sequence and is simply never rendered.
func (s *State) Back() error {
    if s.Step != StepQuotes {
        return ErrBadTransition
    }
    s.Step = StepDetails
    return nil
}

// Select copies the chosen quote (insurance applied) with add-ons and a
// generated tracking id into the booking context, then hands off to payment.
func (s *State) Select(rateID string, addOns []string, trackingPrefix string) (*model.Booking, error) {
    if s.Step != StepQuotes {
        return nil, ErrBadTransition
    }
    rendered := quote.WithInsurance(s.Quotes, s.Insurance.Cost)
    for _, q := range rendered {
        if q.RateID != rateID {
            continue
        }
        b := model.Booking{
            TrackingID:  NewTrackingID(trackingPrefix),
            Quote:       q,
            Origin:      s.Origin,
            Destination: s.Destination,
            AddOns:      addOns,
            CreatedAt:   time.Now().UTC().Format(time.RFC3339),
        }
        s.Booking = &b
        s.Step = StepPayment
        s.PendingConfirmation = true
        return &b, nil
    }
    return nil, errors.New("quote not found: " + rateID)
}

// Confirm renders the confirmation step. Reachable from the payment step or,
// after a cold start, whenever a pending confirmation marker survives in the
// session store.
func (s *State) Confirm() error {
    if s.Step != StepPayment && !s.PendingConfirmation {
        return ErrBadTransition
    }
    if s.Booking == nil {
        return errors.New("no booking to confirm")
    }
    s.Step = StepConfirmation
    s.PendingConfirmation = false
    return nil
}

// CustomsRequired reports whether customs/HS-code fields apply. Advisory:
// driven by the same alias-folded comparison the details form uses.
func (s *State) CustomsRequired() bool {
    return !country.Domestic(s.Origin.Country, s.Destination.Country)
}

// NewTrackingID generates a tracking identifier PREFIX-<unix-millis>.
func NewTrackingID(prefix string) string {
    if prefix == "" {
        prefix = "FQ"
    }
    return prefix + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// ValidationResult carries per-field errors plus the aggregate notice.
type ValidationResult struct {
    Fields map[string]string `json:"fields,omitempty"`
    Notice string            `json:"notice,omitempty"`
}

func (v *ValidationResult) OK() bool { return len(v.Fields) == 0 && v.Notice == "" }

func (v *ValidationResult) add(field, msg string) {
    if v.Fields == nil {
        v.Fields = map[string]string{}
    }
    v.Fields[field] = msg
}

// addressFields in reveal order. Layout places postcode before country; the
// reveal chain is the same sequence, keyed off the previous field's input.
var addressFields = []string{"name", "street", "city", "postcode", "country"}

// requiredFields returns the required address field set for a form under the
// given mode. Drop-off origins only need enough to locate a drop-off point.
func requiredFields(form, mode string) []string {
    if form == "origin" && mode == ModeDropoff {
        return []string{"name", "postcode", "country"}
    }
    return addressFields
}

func fieldValue(a model.Address, field string) string {
    switch field {
    case "name":
        return a.Name
    case "street":
        return a.Street
    case "city":
        return a.City
    case "postcode":
        return a.Postcode
    case "country":
        return a.Country
    }
    return ""
}

// Validate runs the submit-time checks: required presence per mode, postcode
// format via the resolved country rule, positive parcel values, and declared
// value when insurance is selected. Any failure blocks submission.
func Validate(s *State) *ValidationResult {
    vr := &ValidationResult{}
    forms := map[string]model.Address{"origin": s.Origin, "destination": s.Destination}
    for form, addr := range forms {
        for _, f := range requiredFields(form, s.Mode) {
            if fieldValue(addr, f) == "" {
                vr.add(form+"."+f, "required")
            }
        }
        if addr.Postcode != "" && addr.Country != "" {
            if rule := postcode.ForCountry(addr.Country); !rule.Pattern.MatchString(addr.Postcode) {
                vr.add(form+".postcode", rule.Message)
            }
        }
    }
    if s.Parcel.LengthCm <= 0 || s.Parcel.WidthCm <= 0 || s.Parcel.HeightCm <= 0 {
        vr.add("parcel.dimensions", "all dimensions must be positive")
    }
    if s.Parcel.WeightKg <= 0 {
        vr.add("parcel.weight", "weight must be positive")
    }
    if s.Insurance.Selected && s.Insurance.DeclaredValue <= 0 {
        vr.add("insurance.declaredValue", "declared value must be positive when insurance is selected")
    }
    if len(vr.Fields) > 0 {
        vr.Notice = "Please correct the highlighted fields before continuing"
    }
    return vr
}

// VisibleFields returns, in layout order, the address fields the form should
// show: each field is revealed once the previous one has input. The first
// field is always visible.
func VisibleFields(form string, s *State) []string {
    var addr model.Address
    if form == "destination" {
        addr = s.Destination
    } else {
        addr = s.Origin
    }
    visible := []string{addressFields[0]}
    for i := 0; i < len(addressFields)-1; i++ {
        if fieldValue(addr, addressFields[i]) == "" {
            break
        }
        visible = append(visible, addressFields[i+1])
    }
    return visible
}
