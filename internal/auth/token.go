package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quillhub/quill/internal/models"
	"github.com/quillhub/quill/pkg/config"
	"github.com/quillhub/quill/pkg/logging"
)

// ErrInvalidToken is returned for malformed, forged, or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the authenticated user's identity inside a JWT.
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed session tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager from config.
// Without a configured secret a random one is generated, so issued tokens
// do not survive a restart.
func NewTokenManager(cfg *config.AuthConfig) *TokenManager {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		secret = []byte(hex.EncodeToString(buf))
		logging.GetLogger().Warn("jwt_secret not configured, generated an ephemeral secret")
	}
	return &TokenManager{secret: secret, ttl: cfg.TokenTTL}
}

// Issue creates a signed token for the user
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies a token and returns its claims
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
