package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Adham-ELshahed/Memar/internal/auth"
	"github.com/Adham-ELshahed/Memar/internal/models"
)

const (
	// ContextKeyUserID holds the key for user ID in Gin context.
	ContextKeyUserID = "userID"
	// ContextKeyRole holds the key for the caller's role in Gin context.
	ContextKeyRole = "role"
	// ContextKeyClaims holds the key for the full token claims in Gin context.
	ContextKeyClaims = "claims"
)

// AuthContext is the resolved identity of the caller, extracted once by the
// auth middleware and read by handlers. Handlers never parse tokens.
type AuthContext struct {
	UserID string
	Role   models.Role
}

// GetAuthContext reads the caller identity set by AuthMiddleware. The second
// return is false on unauthenticated requests.
func GetAuthContext(c *gin.Context) (AuthContext, bool) {
	userID := c.GetString(ContextKeyUserID)
	if userID == "" {
		return AuthContext{}, false
	}
	role, _ := c.Get(ContextKeyRole)
	r, ok := role.(models.Role)
	if !ok {
		r = models.RoleBuyer
	}
	return AuthContext{UserID: userID, Role: r}, true
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromRequest(c, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller identity when a token is
// present but lets anonymous requests through. Used on the object download
// route where public objects need no login.
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if claims, err := claimsFromRequest(c, jwtSecret); err == nil {
				c.Set(ContextKeyUserID, claims.UserID)
				c.Set(ContextKeyRole, claims.Role)
				c.Set(ContextKeyClaims, claims)
			}
		}
		c.Next()
	}
}

// AdminMiddleware creates a Gin middleware to check for admin privileges.
// Assumes AuthMiddleware runs first.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextKeyRole)
		if !exists || role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Administrator privileges required"})
			return
		}
		c.Next()
	}
}

func claimsFromRequest(c *gin.Context, jwtSecret string) (*auth.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("Authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, fmt.Errorf("Authorization header format must be Bearer {token}")
	}

	claims, err := auth.ValidateJWT(parts[1], jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("Invalid or expired token: %v", err)
	}
	return claims, nil
}
