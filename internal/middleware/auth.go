package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/consult-scheduler/internal/config"
	"github.com/BruksfildServices01/consult-scheduler/internal/domain/booking"
)

const (
	ContextUserID     = "userID"
	ContextProviderID = "providerID"
	ContextUserRole   = "userRole"
)

var knownRoles = []booking.Role{
	booking.RoleCustomer,
	booking.RoleProvider,
	booking.RolePaymentGateway,
	booking.RoleAdmin,
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_authorization_header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_authorization_header"})
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token_claims"})
			return
		}

		userID, ok := claims["sub"].(float64)
		role := booking.Role(stringClaim(claims, "role"))
		if role == "" {
			role = booking.RoleCustomer
		}
		if !ok || !slices.Contains(knownRoles, role) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token_payload"})
			return
		}

		// providerId is only meaningful for provider accounts.
		var providerID uint
		if role == booking.RoleProvider {
			pid, ok := claims["providerId"].(float64)
			if !ok || pid <= 0 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token_payload"})
				return
			}
			providerID = uint(pid)
		}

		c.Set(ContextUserID, uint(userID))
		c.Set(ContextProviderID, providerID)
		c.Set(ContextUserRole, role)

		c.Next()
	}
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

// RequireRole lets only the listed roles through. Use after AuthMiddleware.
func RequireRole(roles ...booking.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.MustGet(ContextUserRole).(booking.Role)
		if !slices.Contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden_actor"})
			return
		}
		c.Next()
	}
}

// Actor builds the booking actor for the authenticated request.
func Actor(c *gin.Context) booking.Actor {
	return booking.Actor{
		Role:       c.MustGet(ContextUserRole).(booking.Role),
		UserID:     c.MustGet(ContextUserID).(uint),
		ProviderID: c.MustGet(ContextProviderID).(uint),
	}
}
