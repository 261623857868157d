package client

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore defines a public type used by avfacePay APIs.
//
// TokenStore holds the bearer token issued by the face or OTP backend and
// answers the client-side "still logged in" question by reading the token's
// exp claim without verifying the signature. Verification is the backend's
// job; the client only needs to know when to stop sending a stale token.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewTokenStore describes the newtokenstore operation and its observable behavior.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Set describes the set operation and its observable behavior.
func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token describes the token operation and its observable behavior.
func (s *TokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Clear describes the clear operation and its observable behavior.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// Valid describes the valid operation and its observable behavior.
//
// Valid reports whether a token is present and its exp claim, if any, is
// still in the future. A token without an exp claim counts as valid.
func (s *TokenStore) Valid(now time.Time) bool {
	token := s.Token()
	if token == "" {
		return false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp == nil {
		return true
	}
	return exp.Time.After(now)
}
