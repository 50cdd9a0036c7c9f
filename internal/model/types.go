package model

// Core domain types for quoting and booking.

// Address is a free-text shipping address. Country is resolved to an ISO-2
// code at the carrier boundary; resolution may fail for unmapped countries.
type Address struct {
    Name     string `json:"name,omitempty"`
    Street   string `json:"street,omitempty"`
    City     string `json:"city,omitempty"`
    Postcode string `json:"postcode,omitempty"`
    Country  string `json:"country,omitempty"`
    Phone    string `json:"phone,omitempty"`
    Email    string `json:"email,omitempty"`
}

// Parcel dimensions in centimeters and weight in kilograms. Converted to
// inches/pounds when a rate request is issued.
type Parcel struct {
    LengthCm float64 `json:"lengthCm"`
    WidthCm  float64 `json:"widthCm"`
    HeightCm float64 `json:"heightCm"`
    WeightKg float64 `json:"weightKg"`
}

// Rate is a normalized carrier offer. Immutable once received; only derived
// Quotes are mutated.
type Rate struct {
    ID          string  `json:"id"`
    Carrier     string  `json:"carrier"`
    Service     string  `json:"service"`
    Amount      float64 `json:"amount"`
    Currency    string  `json:"currency"`
    TransitDays int     `json:"transitDays,omitempty"`
    Transit     string  `json:"transit,omitempty"` // free-text duration when no day count
    Available   bool    `json:"available"`
}

// CostBreakdown itemizes a quote total. Fuel and customs are informational
// placeholders populated by fuller service variants.
type CostBreakdown struct {
    BaseCost   float64 `json:"baseCost"`
    Fuel       float64 `json:"fuel"`
    Customs    float64 `json:"customs"`
    Insurance  float64 `json:"insurance,omitempty"`
    ServiceFee float64 `json:"serviceFee"`
}

// Quote is a Rate after markup and breakdown derivation.
type Quote struct {
    RateID       string        `json:"rateId"`
    Carrier      string        `json:"carrier"`
    Service      string        `json:"service"`
    Transit      string        `json:"transit"`
    WeightKg     float64       `json:"weightKg"`
    Total        float64       `json:"total"`
    Currency     string        `json:"currency"`
    Breakdown    CostBreakdown `json:"breakdown"`
    SpecialOffer bool          `json:"specialOffer,omitempty"`
    HasBreakdown bool          `json:"hasBreakdown"`
}

// Booking is the payment-stage context: the selected quote plus addresses,
// add-ons and the generated tracking id.
type Booking struct {
    TrackingID  string   `json:"trackingId"`
    Quote       Quote    `json:"quote"`
    Origin      Address  `json:"origin"`
    Destination Address  `json:"destination"`
    AddOns      []string `json:"addOns,omitempty"`
    CreatedAt   string   `json:"createdAt"`
}

// ShipmentRecord is persisted when a payment webhook confirms checkout.
type ShipmentRecord struct {
    ID            string  `json:"id"`
    Service       string  `json:"service"`
    TrackingID    string  `json:"trackingId"`
    Origin        string  `json:"origin"`
    Destination   string  `json:"destination"`
    Cost          float64 `json:"cost"`
    Currency      string  `json:"currency"`
    CustomerEmail string  `json:"customerEmail,omitempty"`
    PaymentRef    string  `json:"paymentRef"`
    CreatedAt     string  `json:"createdAt,omitempty"`
}

// SubscriptionRecord mirrors the billing provider's subscription object,
// keyed by the provider's subscription id.
type SubscriptionRecord struct {
    ExternalID         string `json:"externalId"`
    CustomerID         string `json:"customerId,omitempty"`
    Status             string `json:"status"`
    Plan               string `json:"plan,omitempty"` // monthly or yearly
    CurrentPeriodStart string `json:"currentPeriodStart,omitempty"`
    CurrentPeriodEnd   string `json:"currentPeriodEnd,omitempty"`
    CancelAt           string `json:"cancelAt,omitempty"`
    TrialEnd           string `json:"trialEnd,omitempty"`
    UpdatedAt          string `json:"updatedAt,omitempty"`
}

// QuoteRequest is an operator-reviewed request for a manual quote
// (LCL/FCL/air), stored as pending and forwarded to the operator channel.
type QuoteRequest struct {
    ID              string         `json:"id"`
    ServiceType     string         `json:"serviceType"`
    CustomerInfo    map[string]any `json:"customerInfo"`
    ShipmentDetails map[string]any `json:"shipmentDetails"`
    AIEstimate      map[string]any `json:"aiEstimate,omitempty"`
    Status          string         `json:"status"`
    Timestamp       string         `json:"timestamp,omitempty"`
    CreatedAt       string         `json:"createdAt,omitempty"`
}

// HSSuggestion is one harmonized-system code suggestion.
type HSSuggestion struct {
    Code        string `json:"code"`
    Description string `json:"description"`
}
