package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	intconfig "github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/config"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/domain/models"
	"github.com/yeatasim-cse9/ReturnVehicle-sub000/internal/repositories"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// Auth verifies the bearer token and resolves it to a local user record.
// Downstream handlers read the identity via CurrentUser; they never touch
// credentials themselves.
func Auth(env intconfig.Env) gin.HandlerFunc {
	users := repositories.UserRepository{}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(env.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}
		rawID, ok := claims["user_id"].(float64)
		if !ok || rawID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), int64(rawID))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		if user.Status != models.UserStatusActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is banned"})
			return
		}

		c.Set(userIDKey, user.ID)
		c.Set(userRoleKey, user.Role)
		c.Next()
	}
}

// CurrentUser returns the identity resolved by Auth.
func CurrentUser(c *gin.Context) (int64, string) {
	id, _ := c.Get(userIDKey)
	role := c.GetString(userRoleKey)
	userID, _ := id.(int64)
	return userID, role
}
