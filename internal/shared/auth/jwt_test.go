package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignAndVerifyJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "dev")

	token, err := SignJWT(Claims{Sub: "google:123", Email: "a@b.test", Name: "Ada"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if claims.Sub != "google:123" {
		t.Fatalf("sub = %q", claims.Sub)
	}
	if claims.Email != "a@b.test" || claims.Name != "Ada" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Exp == 0 || claims.Iat == 0 {
		t.Fatalf("expected iat/exp to be set, got %+v", claims)
	}
}

func TestVerifyJWTRejectsTampering(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "dev")

	token, err := SignJWT(Claims{Sub: "google:123"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	if _, err := VerifyJWT(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := VerifyJWT("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyJWTRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "dev")

	past := time.Now().UTC().Add(-time.Hour).Unix()
	token, err := SignJWT(Claims{Sub: "google:123", Iat: past - 3600, Exp: past})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	if _, err := VerifyJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSignJWTRequiresSecretInProduction(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ENV", "production")

	if _, err := SignJWT(Claims{Sub: "google:123"}); err == nil {
		t.Fatalf("expected error without secret in production")
	}
}
