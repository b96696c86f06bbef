package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"projectly/internal/config"
	"projectly/internal/model"
)

const (
	typAccess  = "access"
	typRefresh = "refresh"

	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
)

var ErrInvalidToken = errors.New("invalid token")

// Tokens issues and verifies the HS256 access/refresh pair.
type Tokens struct {
	secret      []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
	renewWithin time.Duration
}

func NewTokens(cfg config.AuthConfig) *Tokens {
	return &Tokens{
		secret:      []byte(cfg.JWTSecret),
		accessTTL:   cfg.AccessTTL,
		refreshTTL:  cfg.RefreshTTL,
		renewWithin: cfg.RenewWithin,
	}
}

func (t *Tokens) Issue(uid uint, email string) (model.TokenPair, error) {
	access, err := t.sign(uid, email, typAccess, t.accessTTL)
	if err != nil {
		return model.TokenPair{}, err
	}
	refresh, err := t.sign(uid, email, typRefresh, t.refreshTTL)
	if err != nil {
		return model.TokenPair{}, err
	}
	return model.TokenPair{Email: email, Access: access, Refresh: refresh}, nil
}

// Refresh trades a valid refresh token for a new access token.
func (t *Tokens) Refresh(refresh string) (string, error) {
	claims, err := t.parse(refresh, typRefresh)
	if err != nil {
		return "", err
	}
	return t.sign(claimUID(claims), claimEmail(claims), typAccess, t.accessTTL)
}

func (t *Tokens) sign(uid uint, email, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   uid,
		"email": email,
		"typ":   typ,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return token, nil
}

func (t *Tokens) parse(raw, typ string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != typ || claimUID(claims) == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// JWTAuth rejects requests without a valid bearer access token. Tokens
// about to expire get a fresh one in X-New-Token.
func JWTAuth(t *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
			return
		}
		claims, err := t.parse(auth[7:], typAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		t.setCaller(c, claims)
		c.Next()
	}
}

// OptionalAuth records the caller when a valid bearer token is present and
// lets the request through either way.
func OptionalAuth(t *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			if claims, err := t.parse(auth[7:], typAccess); err == nil {
				t.setCaller(c, claims)
			}
		}
		c.Next()
	}
}

func (t *Tokens) setCaller(c *gin.Context, claims jwt.MapClaims) {
	uid, email := claimUID(claims), claimEmail(claims)
	c.Set(ctxUserID, uid)
	c.Set(ctxUserEmail, email)

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && time.Until(exp.Time) < t.renewWithin {
		if renewed, err := t.sign(uid, email, typAccess, t.accessTTL); err == nil {
			c.Header("X-New-Token", renewed)
		}
	}
}

// UserID returns the authenticated caller, if any.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	uid, ok := v.(uint)
	return uid, ok && uid != 0
}

func UserEmail(c *gin.Context) string { return c.GetString(ctxUserEmail) }

func claimUID(claims jwt.MapClaims) uint {
	if f, ok := claims["uid"].(float64); ok && f > 0 {
		return uint(f)
	}
	return 0
}

func claimEmail(claims jwt.MapClaims) string {
	s, _ := claims["email"].(string)
	return s
}
