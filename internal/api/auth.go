package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/AaronLay10/schemagraph/internal/config"
)

// Role represents an authorization role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleReader Role = "reader" // metrics scrapers
)

// authConfig holds credentials loaded from environment variables.
type authConfig struct {
	adminUser  string
	adminPass  string
	readerUser string
	readerPass string
	enabled    bool
}

var auth *authConfig

// InitAuth loads credentials from SCHEMAGRAPH_ADMIN_USER/PASS and
// SCHEMAGRAPH_READER_USER/PASS, each also readable from a *_FILE.
// Without admin credentials authentication is disabled.
func InitAuth() error {
	var values [4]string
	for i, name := range []string{
		"SCHEMAGRAPH_ADMIN_USER",
		"SCHEMAGRAPH_ADMIN_PASS",
		"SCHEMAGRAPH_READER_USER",
		"SCHEMAGRAPH_READER_PASS",
	} {
		v, err := config.ResolveSecret(name)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", name, err)
		}
		values[i] = v
	}

	auth = &authConfig{
		adminUser:  values[0],
		adminPass:  values[1],
		readerUser: values[2],
		readerPass: values[3],
		enabled:    values[0] != "" && values[1] != "",
	}
	return nil
}

// IsAuthEnabled returns true if authentication is configured.
func IsAuthEnabled() bool {
	return auth != nil && auth.enabled
}

// authenticate checks basic auth credentials and returns the role if valid.
// Returns empty string if credentials are invalid.
func authenticate(r *http.Request) Role {
	if auth == nil || !auth.enabled {
		return RoleAdmin // No auth configured = full access
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return ""
	}

	if secureCompare(user, auth.adminUser) && secureCompare(pass, auth.adminPass) {
		return RoleAdmin
	}

	if auth.readerUser != "" && auth.readerPass != "" {
		if secureCompare(user, auth.readerUser) && secureCompare(pass, auth.readerPass) {
			return RoleReader
		}
	}

	return ""
}

// secureCompare performs constant-time string comparison.
func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// requireAuth returns 401 Unauthorized with WWW-Authenticate header.
func requireAuth(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="schemagraph"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// RequireRole wraps a handler and requires one of the specified roles.
func RequireRole(handler http.HandlerFunc, allowedRoles ...Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := authenticate(r)
		if role == "" {
			requireAuth(w)
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				handler(w, r)
				return
			}
		}

		http.Error(w, "Forbidden", http.StatusForbidden)
	}
}

// RequireAnyRole wraps a handler requiring admin OR reader role.
func RequireAnyRole(handler http.HandlerFunc) http.HandlerFunc {
	return RequireRole(handler, RoleAdmin, RoleReader)
}

// RequireAdmin wraps a handler requiring admin role only.
func RequireAdmin(handler http.HandlerFunc) http.HandlerFunc {
	return RequireRole(handler, RoleAdmin)
}
