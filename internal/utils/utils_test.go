package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !VerifyPassword(hash, "correct horse battery staple") {
		t.Fatalf("expected the original password to verify")
	}
	if VerifyPassword(hash, "wrong password") {
		t.Fatalf("expected a wrong password to be rejected")
	}
}

func TestNewAccessTokenClaims(t *testing.T) {
	tok, err := NewAccessToken("test-secret", 42, "ADMIN", 15)
	if err != nil {
		t.Fatalf("token creation failed: %v", err)
	}

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("expected a valid token, err=%v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", parsed.Claims)
	}
	if sub, _ := claims["sub"].(float64); uint64(sub) != 42 {
		t.Fatalf("expected subject 42, got %v", claims["sub"])
	}
	if claims["role"] != "ADMIN" {
		t.Fatalf("expected role ADMIN, got %v", claims["role"])
	}

	if _, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	}); err == nil {
		t.Fatalf("expected signature verification to fail with the wrong secret")
	}
}
