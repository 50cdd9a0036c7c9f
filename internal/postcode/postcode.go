// Package postcode resolves per-country postcode validation rules.
package postcode

import (
    "regexp"

    "freightq/internal/country"
)

// Rule is the pattern, UI placeholder and error message for one country.
type Rule struct {
    Pattern     *regexp.Regexp
    Placeholder string
    Message     string
}

var rules = map[string]Rule{
    "GB": {regexp.MustCompile(`^[A-Za-z]{1,2}\d[A-Za-z\d]? ?\d[A-Za-z]{2}$`), "SW1A 1AA", "Enter a valid UK postcode, e.g. SW1A 1AA"},
    "US": {regexp.MustCompile(`^\d{5}(-\d{4})?$`), "90210", "Enter a valid ZIP code, e.g. 90210"},
    "CA": {regexp.MustCompile(`^[A-Za-z]\d[A-Za-z] ?\d[A-Za-z]\d$`), "K1A 0B1", "Enter a valid Canadian postal code, e.g. K1A 0B1"},
    "AU": {regexp.MustCompile(`^\d{4}$`), "2000", "Enter a valid 4-digit postcode, e.g. 2000"},
    "DE": {regexp.MustCompile(`^\d{5}$`), "10115", "Enter a valid 5-digit Postleitzahl, e.g. 10115"},
    "FR": {regexp.MustCompile(`^\d{5}$`), "75001", "Enter a valid 5-digit code postal, e.g. 75001"},
    "IN": {regexp.MustCompile(`^\d{6}$`), "110001", "Enter a valid 6-digit PIN code, e.g. 110001"},
}

// defaultRule accepts any 2-15 character value for countries without a
// dedicated entry.
var defaultRule = Rule{
    Pattern:     regexp.MustCompile(`^.{2,15}$`),
    Placeholder: "Postal code",
    Message:     "Enter a postal code between 2 and 15 characters",
}

// ForCountry resolves the validation rule for a free-text or 2-letter
// country input. Unresolved or unlisted countries get the default rule.
func ForCountry(countryInput string) Rule {
    code, ok := country.Resolve(countryInput)
    if !ok {
        return defaultRule
    }
    if r, ok := rules[code]; ok {
        return r
    }
    return defaultRule
}

// Valid reports whether value matches the rule for countryInput.
func Valid(countryInput, value string) bool {
    return ForCountry(countryInput).Pattern.MatchString(value)
}
