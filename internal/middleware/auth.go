// Package middleware provides the HTTP middleware stack: participant auth,
// request logging.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tably/tably/internal/auth"
)

const (
	// participantIDKey is the gin context key for the authenticated participant.
	participantIDKey = "participant_id"
	// sessionIDKey is the gin context key for the participant's session.
	sessionIDKey = "session_id"
)

// ParticipantID extracts the authenticated participant ID from the context.
func ParticipantID(c *gin.Context) (string, bool) {
	id, ok := c.Get(participantIDKey)
	if !ok {
		return "", false
	}
	s, ok := id.(string)
	return s, ok
}

// SessionID extracts the authenticated session ID from the context.
func SessionID(c *gin.Context) (string, bool) {
	id, ok := c.Get(sessionIDKey)
	if !ok {
		return "", false
	}
	s, ok := id.(string)
	return s, ok
}

// RequireAuth validates the participant JWT from the Authorization header and
// stores the participant and session IDs in the request context. Tokens are
// scoped to a single session; handlers additionally check that the token's
// session matches the path.
func RequireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		claims, err := jwtManager.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Error()})
			return
		}

		c.Set(participantIDKey, claims.ParticipantID)
		c.Set(sessionIDKey, claims.SessionID)
		c.Next()
	}
}
