package webhooks

import "testing"

func TestSignAndVerify(t *testing.T) {
    body := []byte(`{"id":"evt_1"}`)
    sig := SignHMAC("secret", body)
    if !VerifyHMAC("secret", body, sig) {
        t.Fatalf("signature did not verify")
    }
    if VerifyHMAC("wrong", body, sig) {
        t.Fatalf("verified with wrong secret")
    }
    if VerifyHMAC("secret", []byte(`tampered`), sig) {
        t.Fatalf("verified tampered body")
    }
    if VerifyHMAC("secret", body, "ZZZ") {
        t.Fatalf("verified non-hex signature")
    }
}

func TestParseSignatureHeader(t *testing.T) {
    if sig, ts := ParseSignatureHeader("abc123"); sig != "abc123" || ts != "" {
        t.Fatalf("bare: %q %q", sig, ts)
    }
    if sig, ts := ParseSignatureHeader("sha256=abc123"); sig != "abc123" || ts != "" {
        t.Fatalf("prefixed: %q %q", sig, ts)
    }
    if sig, ts := ParseSignatureHeader("t=1700000000,v1=deadbeef"); sig != "deadbeef" || ts != "1700000000" {
        t.Fatalf("timestamped: %q %q", sig, ts)
    }
    if sig, _ := ParseSignatureHeader(""); sig != "" {
        t.Fatalf("empty header parsed to %q", sig)
    }
}

func TestVerifySignedTimestampedScheme(t *testing.T) {
    body := []byte(`{"type":"checkout.session.completed"}`)
    ts := "1700000000"
    sig := SignHMAC("whsec", append([]byte(ts+"."), body...))
    header := "t=" + ts + ",v1=" + sig
    if !VerifySigned("whsec", body, header) {
        t.Fatalf("timestamped signature did not verify")
    }
    if VerifySigned("whsec", body, "t=1700000001,v1="+sig) {
        t.Fatalf("verified with altered timestamp")
    }
    // plain scheme still works
    if !VerifySigned("whsec", body, SignHMAC("whsec", body)) {
        t.Fatalf("plain signature did not verify")
    }
}
