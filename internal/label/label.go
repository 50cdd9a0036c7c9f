// Package label renders a plain-text shipping label for a booking.
package label

import (
    "fmt"
    "strings"

    "freightq/internal/model"
)

const width = 44

// Render produces a fixed-width text label: sender and recipient blocks,
// the service line, and a mock barcode derived from the tracking id. The
// barcode is a visual placeholder, not a scannable standard.
func Render(b model.Booking) string {
    var sb strings.Builder
    rule := strings.Repeat("=", width)
    sb.WriteString(rule + "\n")
    sb.WriteString(center("SHIPPING LABEL") + "\n")
    sb.WriteString(rule + "\n")
    writeParty(&sb, "FROM", b.Origin)
    sb.WriteString(strings.Repeat("-", width) + "\n")
    writeParty(&sb, "TO", b.Destination)
    sb.WriteString(strings.Repeat("-", width) + "\n")
    sb.WriteString(fmt.Sprintf("SERVICE: %s %s\n", b.Quote.Carrier, b.Quote.Service))
    if b.Quote.Transit != "" {
        sb.WriteString(fmt.Sprintf("TRANSIT: %s\n", b.Quote.Transit))
    }
    sb.WriteString(fmt.Sprintf("WEIGHT:  %.2f kg\n", b.Quote.WeightKg))
    if len(b.AddOns) > 0 {
        sb.WriteString(fmt.Sprintf("ADD-ONS: %s\n", strings.Join(b.AddOns, ", ")))
    }
    sb.WriteString(strings.Repeat("-", width) + "\n")
    sb.WriteString(center(b.TrackingID) + "\n")
    sb.WriteString(center(barcode(b.TrackingID)) + "\n")
    sb.WriteString(rule + "\n")
    return sb.String()
}

func writeParty(sb *strings.Builder, tag string, a model.Address) {
    sb.WriteString(tag + ":\n")
    for _, line := range []string{a.Name, a.Street, a.City, strings.TrimSpace(a.Postcode + " " + strings.ToUpper(a.Country))} {
        if strings.TrimSpace(line) != "" {
            sb.WriteString("  " + line + "\n")
        }
    }
}

func center(s string) string {
    if len(s) >= width {
        return s
    }
    pad := (width - len(s)) / 2
    return strings.Repeat(" ", pad) + s
}

// barcode maps each byte of the tracking id to a bar pattern by parity of
// its low bits.
func barcode(trackingID string) string {
    var sb strings.Builder
    for _, c := range []byte(trackingID) {
        switch c & 3 {
        case 0:
            sb.WriteString("||")
        case 1:
            sb.WriteString("| ")
        case 2:
            sb.WriteString(" |")
        default:
            sb.WriteString("||")
        }
    }
    return sb.String()
}
