package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"spot_market/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// TokenCookie is the session cookie holding the JWT.
const TokenCookie = "token"

// RequireAuth validates the session token and stores the caller's userID in
// the context. The token is read from the Authorization header (Bearer) or,
// failing that, from the session cookie.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := "" // Raw token string
		// Prefer the Authorization header when present
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
		} else if cookie, err := c.Cookie(TokenCookie); err == nil {
			tokenStr = cookie // Fall back to the session cookie
		}
		// Reject when no token was provided
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret) // Parse the JWT token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}
		c.Set("userID", claims.UserID) // Store userID in context
		c.Next()                       // Proceed to the next handler
	}
}
