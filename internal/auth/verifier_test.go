package auth

import (
    "crypto/hmac"
    "crypto/sha256"
    "encoding/base64"
    "testing"
)

func TestDevModeToken(t *testing.T) {
    v := &Verifier{Mode: "dev"}
    pr, err := v.Verify("ops:admin")
    if err != nil {
        t.Fatalf("verify: %v", err)
    }
    if pr.Subject != "ops" || pr.Role != "admin" {
        t.Fatalf("principal = %+v", pr)
    }
    if _, err := v.Verify("garbage"); err == nil {
        t.Fatalf("expected error for malformed dev token")
    }
}

func signHS256(secret []byte, header, payload string) string {
    enc := base64.RawURLEncoding
    input := enc.EncodeToString([]byte(header)) + "." + enc.EncodeToString([]byte(payload))
    mac := hmac.New(sha256.New, secret)
    mac.Write([]byte(input))
    return input + "." + enc.EncodeToString(mac.Sum(nil))
}

func TestHMACModeToken(t *testing.T) {
    secret := []byte("s3cret")
    v := &Verifier{Mode: "hmac", HMACSecret: secret, RoleClaim: "role"}
    tok := signHS256(secret, `{"alg":"HS256","typ":"JWT"}`, `{"sub":"u_1","role":"Admin"}`)
    pr, err := v.Verify(tok)
    if err != nil {
        t.Fatalf("verify: %v", err)
    }
    if pr.Subject != "u_1" || pr.Role != "admin" {
        t.Fatalf("principal = %+v", pr)
    }
    bad := signHS256([]byte("other"), `{"alg":"HS256"}`, `{"sub":"u_1","role":"admin"}`)
    if _, err := v.Verify(bad); err == nil {
        t.Fatalf("expected bad signature error")
    }
}
