// Package country maps free-text country names to ISO 3166-1 alpha-2 codes.
package country

import "strings"

// names maps lowercased common names and aliases to ISO-2 codes. This is the
// routing table for the carrier boundary, not an authoritative ISO list.
var names = map[string]string{
    "united kingdom": "GB",
    "great britain":  "GB",
    "britain":        "GB",
    "england":        "GB",
    "scotland":       "GB",
    "wales":          "GB",
    "uk":             "GB",
    "united states":  "US",
    "united states of america": "US",
    "usa":            "US",
    "america":        "US",
    "canada":         "CA",
    "australia":      "AU",
    "germany":        "DE",
    "deutschland":    "DE",
    "france":         "FR",
    "india":          "IN",
    "ireland":        "IE",
    "spain":          "ES",
    "italy":          "IT",
    "netherlands":    "NL",
    "holland":        "NL",
    "belgium":        "BE",
    "switzerland":    "CH",
    "austria":        "AT",
    "portugal":       "PT",
    "poland":         "PL",
    "sweden":         "SE",
    "norway":         "NO",
    "denmark":        "DK",
    "finland":        "FI",
    "japan":          "JP",
    "china":          "CN",
    "hong kong":      "HK",
    "singapore":      "SG",
    "south korea":    "KR",
    "korea":          "KR",
    "new zealand":    "NZ",
    "brazil":         "BR",
    "mexico":         "MX",
    "south africa":   "ZA",
    "united arab emirates": "AE",
    "uae":            "AE",
    "saudi arabia":   "SA",
    "turkey":         "TR",
    "russia":         "RU",
    "greece":         "GR",
    "czech republic": "CZ",
    "czechia":        "CZ",
    "hungary":        "HU",
    "romania":        "RO",
    "thailand":       "TH",
    "vietnam":        "VN",
    "malaysia":       "MY",
    "indonesia":      "ID",
    "philippines":    "PH",
    "argentina":      "AR",
    "chile":          "CL",
    "colombia":       "CO",
    "israel":         "IL",
    "egypt":          "EG",
    "nigeria":        "NG",
    "kenya":          "KE",
    "pakistan":       "PK",
    "bangladesh":     "BD",
    "sri lanka":      "LK",
}

// Resolve normalizes free-text country input to an ISO-2 code. A trimmed
// 2-letter input is upper-cased and treated as an explicit code. Anything
// else without a table entry is unresolved; callers decide whether that is
// an error (rate requests) or merely advisory (domestic detection).
func Resolve(input string) (string, bool) {
    s := strings.ToLower(strings.TrimSpace(input))
    if s == "" {
        return "", false
    }
    if code, ok := names[s]; ok {
        return code, true
    }
    if len(s) == 2 {
        return strings.ToUpper(s), true
    }
    return "", false
}

// foldAlias collapses the aliases the booking flow accepts interchangeably.
func foldAlias(s string) string {
    switch s {
    case "uk":
        return "gb"
    case "usa":
        return "us"
    }
    return s
}

// Domestic reports whether two country inputs name the same country after
// trimming, lowercasing and alias folding. Advisory only: it drives whether
// customs fields are shown, not compliance. Unresolved inputs compare by
// their folded text; empty input is never domestic.
func Domestic(a, b string) bool {
    na := foldAlias(strings.ToLower(strings.TrimSpace(a)))
    nb := foldAlias(strings.ToLower(strings.TrimSpace(b)))
    if na == "" || nb == "" {
        return false
    }
    if na == nb {
        return true
    }
    ca, oka := Resolve(a)
    cb, okb := Resolve(b)
    return oka && okb && ca == cb
}
