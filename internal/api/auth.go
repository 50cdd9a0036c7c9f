// Package api implements the HTTP surface of the freight quoting service.
package api

import (
    "net/http"
    "strings"

    "freightq/internal/auth"
)

// getPrincipal extracts the caller identity for admin endpoints.
// A Bearer token goes through the configured verifier (dev or hmac);
// otherwise the X-Role header is honored as a dev fallback.
func (s *Server) getPrincipal(r *http.Request) auth.Principal {
    authz := r.Header.Get("Authorization")
    if strings.HasPrefix(strings.ToLower(authz), "bearer ") && s.Auth != nil {
        tok := strings.TrimSpace(authz[len("Bearer "):])
        if pr, err := s.Auth.Verify(tok); err == nil {
            return pr
        }
        return auth.Principal{}
    }
    role := strings.ToLower(r.Header.Get("X-Role"))
    if role == "" {
        role = "user"
    }
    return auth.Principal{Role: role}
}

// requireAdmin writes a problem response and returns false unless the
// caller holds the admin role.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
    if s.getPrincipal(r).Role != "admin" {
        writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
        return false
    }
    return true
}
