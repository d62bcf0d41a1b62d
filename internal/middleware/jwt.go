package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/socialgraph/socialgraph/pkg/cache"
)

const (
	contextUserIDKey   = "user_id"
	contextUsernameKey = "username"
	contextTokenKey    = "token"
	contextExpiresKey  = "token_expires"
)

type JWTConfig struct {
	Secret string
	// Revocations is consulted on every request so logged-out tokens die
	// before their signature does. Nil disables the check.
	Revocations *cache.RedisClient
}

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func GenerateToken(userID, username, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func NewJWTAuth(cfg *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.Secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		if cfg.Revocations != nil {
			revoked, err := cfg.Revocations.IsTokenRevoked(c.Request.Context(), raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify token"})
				return
			}
			if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
				return
			}
		}

		c.Set(contextUserIDKey, claims.UserID)
		c.Set(contextUsernameKey, claims.Username)
		c.Set(contextTokenKey, raw)
		if claims.ExpiresAt != nil {
			c.Set(contextExpiresKey, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// GetUserID returns the authenticated user's id, or uuid.Nil outside an
// authenticated route.
func GetUserID(c *gin.Context) uuid.UUID {
	raw := c.GetString(contextUserIDKey)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func GetUsername(c *gin.Context) string {
	return c.GetString(contextUsernameKey)
}

// GetToken returns the raw bearer token and its expiry, for revocation on
// logout.
func GetToken(c *gin.Context) (string, time.Time) {
	raw := c.GetString(contextTokenKey)
	expires, _ := c.Get(contextExpiresKey)
	t, _ := expires.(time.Time)
	return raw, t
}
