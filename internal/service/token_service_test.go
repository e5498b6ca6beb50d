package service

import (
	"errors"
	"testing"
	"time"

	"github.com/quizdesk/testplayer/internal/config"
)

func TestAttemptTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(&config.Config{
		JWTSecret:       "test-secret",
		AttemptTokenTTL: time.Hour,
	})

	token, err := svc.GenerateAttemptToken(42)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.TestID != 42 {
		t.Errorf("test_id = %d, want 42", claims.TestID)
	}
	if claims.Subject != "42" {
		t.Errorf("subject = %q, want 42", claims.Subject)
	}
	if claims.ID == "" {
		t.Error("token should carry a jti")
	}
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewTokenService(&config.Config{
		JWTSecret:       "test-secret",
		AttemptTokenTTL: time.Hour,
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := svc.ValidateToken("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService(&config.Config{JWTSecret: "other-secret", AttemptTokenTTL: time.Hour})
		token, err := other.GenerateAttemptToken(42)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewTokenService(&config.Config{JWTSecret: "test-secret", AttemptTokenTTL: -time.Minute})
		token, err := expired.GenerateAttemptToken(42)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("error = %v, want ErrInvalidToken", err)
		}
	})
}
