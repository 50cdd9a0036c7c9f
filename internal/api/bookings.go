package api

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"

    "freightq/internal/carrier"
    "freightq/internal/label"
    "freightq/internal/metrics"
    "freightq/internal/model"
    "freightq/internal/quote"
    "freightq/internal/wizard"
)

// BookingsHandler handles POST /v1/bookings: starts a new booking session
// at the details step.
func (s *Server) BookingsHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    st := wizard.NewState("bk_" + uuid.NewString())
    if err := s.Sessions.Put(r.Context(), st); err != nil {
        writeProblem(w, http.StatusInternalServerError, "Session store failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusCreated, s.stateView(&st))
}

// BookingByIDHandler routes /v1/bookings/{id} and its sub-resources.
func (s *Server) BookingByIDHandler(w http.ResponseWriter, r *http.Request) {
    path := r.URL.Path
    rest := strings.TrimPrefix(path, "/v1/bookings/")
    if rest == path || rest == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing booking id", path)
        return
    }
    parts := strings.Split(rest, "/")
    id := parts[0]

    st, err := s.Sessions.Get(r.Context(), id)
    if err != nil {
        if errors.Is(err, wizard.ErrSessionNotFound) {
            writeProblem(w, http.StatusNotFound, "Booking not found", "session expired or unknown", path)
        } else {
            writeProblem(w, http.StatusInternalServerError, "Session store failed", err.Error(), path)
        }
        return
    }

    if len(parts) == 1 {
        switch r.Method {
        case http.MethodGet:
            writeJSON(w, http.StatusOK, s.stateView(&st))
        case http.MethodPut:
            s.updateBooking(w, r, &st)
        default:
            w.WriteHeader(http.StatusMethodNotAllowed)
        }
        return
    }

    sub := strings.Join(parts[1:], "/")
    switch sub {
    case "submit":
        s.submitBooking(w, r, &st)
    case "back":
        s.backBooking(w, r, &st)
    case "quotes":
        s.listQuotes(w, r, &st)
    case "quotes/select":
        s.selectQuote(w, r, &st)
    case "insurance":
        s.setInsurance(w, r, &st)
    case "confirm":
        s.confirmBooking(w, r, &st)
    case "reset":
        s.resetBooking(w, r, &st)
    case "label":
        s.bookingLabel(w, r, &st)
    case "events/stream":
        s.bookingEventsSSE(w, r, st.ID)
    case "events/ws":
        s.BookingEventsWSHandler(w, r, st.ID)
    default:
        writeProblem(w, http.StatusNotFound, "Not Found", "unknown booking resource", path)
    }
}

// bookingUpdate is the PUT body: nil pointers mean "leave unchanged".
type bookingUpdate struct {
    Mode        *string        `json:"mode"`
    Origin      *model.Address `json:"origin"`
    Destination *model.Address `json:"destination"`
    Parcel      *model.Parcel  `json:"parcel"`
}

func (s *Server) updateBooking(w http.ResponseWriter, r *http.Request, st *wizard.State) {
    var upd bookingUpdate
    if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    if upd.Mode != nil {
        if *upd.Mode != wizard.ModePickup && *upd.Mode != wizard.ModeDropoff {
            writeProblem(w, http.StatusBadRequest, "Invalid mode", "mode must be pickup or dropoff", r.URL.Path)
            return
        }
        st.Mode = *upd.Mode
    }
    if upd.Origin != nil {
        st.Origin = *upd.Origin
    }
    if upd.Destination != nil {
        st.Destination = *upd.Destination
    }
    if upd.Parcel != nil {
        st.Parcel = *upd.Parcel
    }
    st.Touch()
    if err := s.Sessions.Put(r.Context(), *st); err != nil {
        writeProblem(w, http.StatusInternalServerError, "Session store failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, s.stateView(st))
}

// submitBooking validates the details form, advances to the quotes step and
// kicks off the asynchronous rate fetch. The claimed sequence number makes
// a late response from a superseded fetch land harmlessly.
func (s *Server) submitBooking(w http.ResponseWriter, r *http.Request, st *wizard.State) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    seq, vr := st.BeginQuoteFetch()
    if vr != nil {
        writeValidation(w, vr.Fields, vr.Notice)
        return
    }
    st.Touch()
    if err := s.Sessions.Put(r.Context(), *st); err != nil {
        writeProblem(w, http.StatusInternalServerError, "Session store failed", err.Error(), r.URL.Path)
        return
    }
    s.Broker.Publish(st.ID, Event{Type: "quotes.pending", Data: map[string]any{"bookingId": st.ID, "seq": seq}})
    go s.fetchQuotes(st.ID, seq, st.Origin, st.Destination, st.Parcel)
    writeJSON(w, http.StatusAccepted, s.stateView(st))
}

func (s *Server) fetchQuotes(bookingID string, seq int, origin, destination model.Address, parcel model.Parcel) {
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()

    rates, err := s.Carrier.FetchRates(ctx, origin, destination, parcel)
    var quotes []model.Quote
    fetchErr := ""
    if err != nil {
        switch {
        case errors.Is(err, carrier.ErrRateLimited):
            metrics.RateFetches.WithLabelValues("throttled").Inc()
        case errors.Is(err, carrier.ErrNoRates):
            metrics.RateFetches.WithLabelValues("empty").Inc()
        default:
            metrics.RateFetches.WithLabelValues("error").Inc()
        }
        // the session carries a generic notice, not the raw upstream error
        fetchErr = "We could not fetch quotes right now. Please try again."
    } else {
        metrics.RateFetches.WithLabelValues("ok").Inc()
        quotes = quote.Build(rates, parcel.WeightKg, s.Cfg.MarkupRate)
    }

    st, gerr := s.Sessions.Get(ctx, bookingID)
    if gerr != nil {
        return
    }
    if !st.ApplyQuotes(seq, quotes, fetchErr) {
        return
    }
    st.Touch()
    if err := s.Sessions.Put(ctx, st); err != nil {
        return
    }
    if fetchErr != "" {
        s.Broker.Publish(bookingID, Event{Type: "quotes.failed", Data: map[string]any{"bookingId": bookingID, "seq": seq, "notice": fetchErr}})
        return
    }
    s.Broker.Publish(bookingID, Event{Type: "quotes.ready", Data: map[string]any{"bookingId": bookingID, "seq": seq, "count": len(quotes)}})
}

func (s *Server) backBooking(w http.ResponseWriter, r *http.Request, st *wizard.State) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    if err := st.Back(); err != nil {
        writeProblem(w, http.StatusConflict, "Invalid transition", err.Error(), r.URL.Path)
        return
    }
    st.Touch()
    if err := s.Sessions.Put(r.Context(), *st); err != nil {
        writeProblem(w, http.StatusInternalServerError, "Session store failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, s.stateView(st))
}

// listQuotes handles GET .../quotes?sort=price|speed. Insurance is applied
// to copies at render time; the stored quote set stays pre-insurance.
func (s *Server) listQuotes(w http.ResponseWriter, r *http.Request, st *wizard.State) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    rendered := quote.WithInsurance(st.Quotes, st.Insurance.Cost)
    switch r.URL.Query().Get("sort") {
    case "speed":
        quote.SortBySpeed(rendered)
    case "price", "":
        quote.SortByPrice(rendered)
    default:
        writeProblem(w, http.StatusBadRequest, "Invalid sort", "sort must be price or speed", r.URL.Path)
        return
    }
    resp := map[string]any{"items": rendered, "pending": st.QuotesPending}
    if st.QuotesError != "" {
        resp["notice"] = st.QuotesError
    }
    writeJSON(w, http.StatusOK, resp)
}

func (s *Server) selectQuote(w http.ResponseWriter, r *http.Request, st *wizard.State) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    var req struct {
        RateID string   `json:"rateId"`
        AddOns []string `json:"addOns"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    if req.RateID == "" {
        writeProblem(w, http.StatusBadRequest, "Missing rateId", "rateId is required", r.URL.Path)
        return
    }
    booking, err := st.Select(req.RateID, req.AddOns, s.Cfg.TrackingPrefix)
    if err != nil {
        if errors.Is(err, wizard.ErrBadTransition) {
            writeProblem(w, http.StatusConflict, "Invalid transition", err.Error(), r.URL.Path)
        } else {
            writeProblem(w, http.StatusNotFound, "Quote not found", err.Error(), r.URL.Path)
        }
        return
    }
    st.Touch()
    if err := s.Sessions.Put(r.Context(), *st); err != nil {
        writeProblem(w, http.StatusInternalServerError, "Session store failed", err.Error(), r.URL.Path)
        return
    }
    s.Broker.Publish(st.ID, Event{Type: "quote.selected", Data: map[string]any{"bookingId": st.ID, "trackingId": booking.TrackingID}})
    writeJSON(w, http.StatusOK, map[string]any{"booking": booking, "step": st.Step})
}

func (s *Server) setInsurance(w http.ResponseWriter, r *http.Request, st *wizard.State) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    var req struct {
        Selected      bool    `json:"selected"`
        DeclaredValue float64 `json:"declaredValue"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    st.SetInsurance(req.Selected, req.DeclaredValue)
    st.Touch()
    if err := s.Sessions.Put(r.Context(), *st); err != nil {
        writeProblem(w, http.StatusInternalServerError, "Session store failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"insurance": st.Insurance})
}

func (s *Server) confirmBooking(w http.ResponseWriter, r *http.Request, st *wizard.State) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    if err := st.Confirm(); err != nil {
        writeProblem(w, http.StatusConflict, "Cannot confirm", err.Error(), r.URL.Path)
        return
    }
    st.Touch()
    if err := s.Sessions.Put(r.Context(), *st); err != nil {
        writeProblem(w, http.StatusInternalServerError, "Session store failed", err.Error(), r.URL.Path)
        return
    }
    s.Broker.Publish(st.ID, Event{Type: "booking.confirmed", Data: map[string]any{"bookingId": st.ID, "trackingId": st.Booking.TrackingID}})
    writeJSON(w, http.StatusOK, s.stateView(st))
}

func (s *Server) resetBooking(w http.ResponseWriter, r *http.Request, st *wizard.State) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    st.Reset()
    if err := s.Sessions.Put(r.Context(), *st); err != nil {
        writeProblem(w, http.StatusInternalServerError, "Session store failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, s.stateView(st))
}

func (s *Server) bookingLabel(w http.ResponseWriter, r *http.Request, st *wizard.State) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    if st.Booking == nil {
        writeProblem(w, http.StatusNotFound, "No booking", "no quote has been selected", r.URL.Path)
        return
    }
    w.Header().Set("Content-Type", "text/plain; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write([]byte(label.Render(*st.Booking)))
}

func (s *Server) bookingEventsSSE(w http.ResponseWriter, r *http.Request, bookingID string) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
        return
    }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("Connection", "keep-alive")
    ch := s.Broker.Subscribe(bookingID)
    defer s.Broker.Unsubscribe(bookingID, ch)
    // initial heartbeat
    fmt.Fprintf(w, "event: heartbeat\n")
    fmt.Fprintf(w, "data: {\"bookingId\":\"%s\",\"ts\":\"%s\"}\n\n", bookingID, time.Now().Format(time.RFC3339))
    flusher.Flush()
    notify := r.Context().Done()
    for {
        select {
        case <-notify:
            return
        case evt := <-ch:
            b, _ := json.Marshal(evt.Data)
            fmt.Fprintf(w, "event: %s\n", evt.Type)
            fmt.Fprintf(w, "data: %s\n\n", string(b))
            flusher.Flush()
        case <-time.After(15 * time.Second):
            fmt.Fprintf(w, "event: heartbeat\n")
            fmt.Fprintf(w, "data: {\"bookingId\":\"%s\",\"ts\":\"%s\"}\n\n", bookingID, time.Now().Format(time.RFC3339))
            flusher.Flush()
        }
    }
}

// stateView renders a session for the wire: the state plus derived
// visibility and the insurance-adjusted quote list.
func (s *Server) stateView(st *wizard.State) map[string]any {
    view := map[string]any{
        "id":              st.ID,
        "step":            st.Step,
        "mode":            st.Mode,
        "origin":          st.Origin,
        "destination":     st.Destination,
        "parcel":          st.Parcel,
        "insurance":       st.Insurance,
        "customsRequired": st.CustomsRequired(),
        "visibleFields": map[string]any{
            "origin":      wizard.VisibleFields("origin", st),
            "destination": wizard.VisibleFields("destination", st),
        },
        "quotesPending": st.QuotesPending,
        "createdAt":     st.CreatedAt,
        "updatedAt":     st.UpdatedAt,
    }
    if len(st.Quotes) > 0 {
        view["quotes"] = quote.WithInsurance(st.Quotes, st.Insurance.Cost)
    }
    if st.QuotesError != "" {
        view["quotesNotice"] = st.QuotesError
    }
    if st.Booking != nil {
        view["booking"] = st.Booking
    }
    if st.PendingConfirmation {
        view["pendingConfirmation"] = true
    }
    return view
}
