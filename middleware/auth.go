package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/javiersgm/bistro-api/models"
	"github.com/javiersgm/bistro-api/policy"
)

// Context keys set by ValidateToken.
const (
	CtxUserID = "user_id"
	CtxUser   = "current_user"
	CtxRole   = "role"
)

// ValidateToken authenticates the request, loads the user with its groups
// and resolves the role exactly once, storing all three in the gin context.
// An unresolvable principal never gets past this middleware.
func ValidateToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			c.Abort()
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid token signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}
		rawID, ok := claims["user_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		var user models.User
		if err := db.Preload("Groups").First(&user, uint(rawID)).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
			c.Abort()
			return
		}

		c.Set(CtxUserID, user.ID)
		c.Set(CtxUser, &user)
		c.Set(CtxRole, models.ResolveRole(&user))
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by ValidateToken.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CtxUser); ok {
		return v.(*models.User)
	}
	return nil
}

// CurrentRole returns the role resolved by ValidateToken.
func CurrentRole(c *gin.Context) models.Role {
	if v, ok := c.Get(CtxRole); ok {
		return v.(models.Role)
	}
	return models.RoleAnonymous
}

// RequireManager rejects everyone but managers/superusers.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !policy.IsManagerOrSuperuser(CurrentRole(c)) {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireCustomer rejects managers and delivery crew. Carts are a
// customer-only concept.
func RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !policy.IsCustomer(CurrentRole(c)) {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Only customers have a cart"})
			c.Abort()
			return
		}
		c.Next()
	}
}
