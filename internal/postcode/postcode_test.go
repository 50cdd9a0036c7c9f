package postcode

import (
    "strings"
    "testing"
)

func TestRulesAcceptOwnPlaceholder(t *testing.T) {
    for code, r := range rules {
        if !r.Pattern.MatchString(r.Placeholder) {
            t.Fatalf("%s: pattern %q rejects its own placeholder %q", code, r.Pattern, r.Placeholder)
        }
    }
}

func TestForCountryByNameAndCode(t *testing.T) {
    if got := ForCountry("United Kingdom"); got.Placeholder != "SW1A 1AA" {
        t.Fatalf("United Kingdom: got placeholder %q", got.Placeholder)
    }
    if got := ForCountry("us"); got.Placeholder != "90210" {
        t.Fatalf("us: got placeholder %q", got.Placeholder)
    }
    // listed country, no dedicated rule
    if got := ForCountry("Japan"); got.Placeholder != defaultRule.Placeholder {
        t.Fatalf("Japan: expected default rule, got %q", got.Placeholder)
    }
    // unresolved input falls back to the default rule
    if got := ForCountry("atlantis"); got.Placeholder != defaultRule.Placeholder {
        t.Fatalf("atlantis: expected default rule, got %q", got.Placeholder)
    }
}

func TestDefaultRuleBounds(t *testing.T) {
    r := defaultRule
    for _, ok := range []string{"ab", "12345", strings.Repeat("x", 15)} {
        if !r.Pattern.MatchString(ok) {
            t.Fatalf("default rule should accept %q", ok)
        }
    }
    for _, bad := range []string{"", "x", strings.Repeat("x", 16)} {
        if r.Pattern.MatchString(bad) {
            t.Fatalf("default rule should reject %q", bad)
        }
    }
}

func TestValid(t *testing.T) {
    cases := []struct {
        country, value string
        want           bool
    }{
        {"GB", "SW1A 1AA", true},
        {"GB", "90210", false},
        {"US", "90210-1234", true},
        {"US", "9021", false},
        {"CA", "K1A0B1", true},
        {"IN", "110001", true},
        {"IN", "11001", false},
    }
    for _, c := range cases {
        if got := Valid(c.country, c.value); got != c.want {
            t.Fatalf("Valid(%q,%q) = %v; want %v", c.country, c.value, got, c.want)
        }
    }
}
