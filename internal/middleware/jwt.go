package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"dropskills/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxUserRole  = "user_role"

	renewWindow = 24 * time.Hour
)

// UserLookup returns the current stored role and email of a user.
type UserLookup interface {
	Lookup(ctx context.Context, uid string) (role, email string, err error)
}

// Auth issues and checks HS256 bearer tokens.
type Auth struct {
	secret []byte
	ttl    time.Duration
	users  UserLookup
}

// NewAuth builds the token middleware. When users is set, role and email
// are reloaded on every request and the claims only identify the user.
func NewAuth(secret string, ttl time.Duration, users UserLookup) *Auth {
	return &Auth{secret: []byte(secret), ttl: ttl, users: users}
}

func (a *Auth) NewToken(uid, email, role string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   uid,
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(a.ttl).Unix(),
	}).SignedString(a.secret)
}

// Required rejects requests without a valid bearer token. Tokens with less
// than a day left get a fresh one in the X-New-Token header.
func (a *Auth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		token, err := jwt.Parse(auth[7:], func(t *jwt.Token) (interface{}, error) {
			return a.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		claims := token.Claims.(jwt.MapClaims)
		uid, _ := claims["uid"].(string)
		email, _ := claims["email"].(string)
		role, _ := claims["role"].(string)
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if a.users != nil {
			role, email, err = a.users.Lookup(c.Request.Context(), uid)
			if err != nil {
				logger.Warn("auth.lookup.failed", "uid", uid, "err", err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
		}
		c.Set(ctxUserID, uid)
		c.Set(ctxUserEmail, email)
		c.Set(ctxUserRole, role)

		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			if time.Until(exp.Time) < renewWindow {
				if newToken, err := a.NewToken(uid, email, role); err == nil {
					c.Header("X-New-Token", newToken)
				}
			}
		}

		c.Next()
	}
}

func UserID(c *gin.Context) string    { return c.GetString(ctxUserID) }
func UserEmail(c *gin.Context) string { return c.GetString(ctxUserEmail) }
func UserRole(c *gin.Context) string  { return c.GetString(ctxUserRole) }
