package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// VerifyHMAC checks an HMAC-SHA256 signature over the raw body using the shared secret.
func VerifyHMAC(secret string, body []byte, provided string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)
	b, err := hex.DecodeString(provided)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, b)
}

// SignHMAC returns lowercase hex of HMAC-SHA256 for use in headers
func SignHMAC(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return fmt.Sprintf("%x", mac.Sum(nil))
}

// ParseSignatureHeader extracts the hex signature and optional timestamp from
// a signature header. Accepts a bare hex digest, "sha256=<hex>", and the
// billing provider's "t=<unix>,v1=<hex>" scheme.
func ParseSignatureHeader(header string) (sig string, timestamp string) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ""
	}
	if !strings.Contains(header, "=") {
		return header, ""
	}
	if rest, ok := strings.CutPrefix(header, "sha256="); ok {
		return strings.TrimSpace(rest), ""
	}
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			sig = v
		}
	}
	return sig, timestamp
}

// VerifySigned validates a header produced by any of the accepted schemes.
// For the timestamped scheme the signed payload is "<t>.<body>".
func VerifySigned(secret string, body []byte, header string) bool {
	sig, ts := ParseSignatureHeader(header)
	if sig == "" {
		return false
	}
	if ts != "" {
		signed := append([]byte(ts+"."), body...)
		return VerifyHMAC(secret, signed, sig)
	}
	return VerifyHMAC(secret, body, sig)
}
