package client

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestTokenStoreValid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewTokenStore()

	if store.Valid(now) {
		t.Fatal("empty store must not be valid")
	}

	store.Set(signedToken(t, jwt.MapClaims{"sub": "u-1", "exp": now.Add(time.Hour).Unix()}))
	if !store.Valid(now) {
		t.Fatal("unexpired token must be valid")
	}
	if store.Valid(now.Add(2 * time.Hour)) {
		t.Fatal("expired token must not be valid")
	}

	// No exp claim means the backend controls the lifetime.
	store.Set(signedToken(t, jwt.MapClaims{"sub": "u-1"}))
	if !store.Valid(now) {
		t.Fatal("token without exp must be valid")
	}

	store.Set("not-a-jwt")
	if store.Valid(now) {
		t.Fatal("garbage token must not be valid")
	}

	store.Clear()
	if store.Token() != "" || store.Valid(now) {
		t.Fatal("clear did not empty the store")
	}
}
