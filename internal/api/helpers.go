package api

import (
	"crypto/subtle"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// requireUser validates the X-User-ID header carrying the caller's
// stable community identifier. There are no accounts on this server;
// the client supplies the identity it votes under.
func requireUser(userHeader string) (string, error) {
	userID := strings.TrimSpace(userHeader)
	if userID == "" {
		return "", huma.Error401Unauthorized("Missing X-User-ID header")
	}
	if len(userID) > 128 {
		return "", huma.Error422UnprocessableEntity("User ID too long")
	}
	return userID, nil
}

// requireAdmin validates the Authorization header against the
// configured admin token. A server with no token configured has its
// admin surface disabled entirely.
func (s *Server) requireAdmin(authHeader string) error {
	if s.adminToken == "" {
		return huma.Error403Forbidden("Admin endpoints are disabled")
	}

	if authHeader == "" {
		return huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return huma.Error401Unauthorized("Invalid authorization header format")
	}

	if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(s.adminToken)) != 1 {
		return huma.Error401Unauthorized("Invalid admin token")
	}

	return nil
}

// allowVote applies the per-user rate limit shared by voting and
// suggestion endpoints.
func (s *Server) allowVote(userID string) error {
	if !s.voteLimiter.Allow(userID) {
		s.logger.Warn("vote rate limit exceeded", "user_id", userID)
		return huma.Error429TooManyRequests("Too many requests. Please try again later.")
	}
	return nil
}
