package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/quizdesk/testplayer/internal/config"
)

// ErrInvalidToken covers malformed, expired or mis-signed attempt tokens.
var ErrInvalidToken = errors.New("invalid attempt token")

// Claims binds an issued attempt token to one test attempt.
type Claims struct {
	jwt.RegisteredClaims
	TestID int64 `json:"test_id"`
}

// TokenService issues and validates the short-lived JWTs that tie a caller
// to their attempt. The upstream scoring-API token is never embedded; it
// lives in the attempt's session context in memory only.
type TokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{cfg: cfg}
}

// GenerateAttemptToken creates a signed token scoped to one test ID.
func (s *TokenService) GenerateAttemptToken(testID int64) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatInt(testID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AttemptTokenTTL)),
		},
		TestID: testID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign attempt token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies an attempt token.
func (s *TokenService) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
