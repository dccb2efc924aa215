package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTTL    = 7 * 24 * time.Hour
	renewWithin = 24 * time.Hour

	ctxEmail = "user_email"
	ctxRole  = "user_role"
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type JWT struct{ secret []byte }

func NewJWT(secret string) *JWT { return &JWT{secret: []byte(secret)} }

func (j *JWT) Issue(email, role string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}).SignedString(j.secret)
}

func (j *JWT) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Email == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// bearer reads the Authorization header, or the token query parameter for
// pages opened directly in a browser.
func bearer(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return auth[7:]
	}
	return c.Query("token")
}

// authenticate sets the identity on c and renews a token close to expiry.
func (j *JWT) authenticate(c *gin.Context) error {
	raw := bearer(c)
	if raw == "" {
		return errors.New("unauthorized")
	}
	claims, err := j.Parse(raw)
	if err != nil {
		return errors.New("invalid token")
	}
	c.Set(ctxEmail, claims.Email)
	c.Set(ctxRole, claims.Role)

	// renew when less than a day is left
	if claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) < renewWithin {
		if fresh, err := j.Issue(claims.Email, claims.Role); err == nil {
			c.Header("X-New-Token", fresh)
		}
	}
	return nil
}

// Required rejects requests without a valid bearer token.
func (j *JWT) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := j.authenticate(c); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": err.Error()})
			return
		}
		c.Next()
	}
}

// Optional lets anonymous requests through; the handler decides per action
// whether an identity is needed.
func (j *JWT) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = j.authenticate(c)
		c.Next()
	}
}

// RequireRole must run after Required.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, role, ok := Identity(c); !ok || !slices.Contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": "forbidden"})
			return
		}
		c.Next()
	}
}

// Token is the raw token the request authenticated with.
func Token(c *gin.Context) string { return bearer(c) }

// Identity reports the authenticated email and role, if any.
func Identity(c *gin.Context) (email, role string, ok bool) {
	email = c.GetString(ctxEmail)
	role = c.GetString(ctxRole)
	return email, role, email != ""
}
