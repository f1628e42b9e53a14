package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	actorKey = "actor"
	roleKey  = "userRole"
)

// Claims identify a catalog user. Role and department are re-read from the
// catalog on every request, so the token only carries the id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
	Clock  func() time.Time
}

func (t TokenIssuer) now() time.Time {
	if t.Clock != nil {
		return t.Clock()
	}
	return time.Now()
}

// Issue returns a signed token for u and its expiry.
func (t TokenIssuer) Issue(u models.User) (string, time.Time, error) {
	ttl := t.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := t.now()
	exp := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies raw and returns the user id it was issued for.
func (t TokenIssuer) Parse(raw string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (any, error) {
		return t.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// UserLookup resolves a user id to its catalog entry.
type UserLookup interface {
	User(id string) (models.User, error)
}

// Authenticate requires a valid bearer token naming a known user and stores
// the resulting actor on the context.
func Authenticate(tokens TokenIssuer, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abortUnauthenticated(c, "missing bearer token")
			return
		}
		userID, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			abortUnauthenticated(c, "invalid token")
			return
		}
		u, err := users.User(userID)
		if err != nil {
			abortUnauthenticated(c, "unknown user")
			return
		}
		actor := u.Actor()
		c.Set(actorKey, actor)
		c.Set(roleKey, string(actor.Role))
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthenticated",
		"request_id": GetRequestID(c),
	})
}

// CurrentActor returns the actor set by Authenticate.
func CurrentActor(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}, false
	}
	a, ok := v.(domain.Actor)
	return a, ok
}
