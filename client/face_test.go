package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFaceClientLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Email  string   `json:"email"`
			Images []string `json:"images"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Email != "a@b.test" || len(body.Images) != 1 {
			t.Errorf("unexpect request body: %+v", body)
		}
		if !strings.HasPrefix(body.Images[0], "data:image/jpeg;base64,") {
			t.Errorf("image not sent as data url: %q", body.Images[0][:30])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":      true,
			"user_id":      "u-1",
			"email":        "a@b.test",
			"access_token": "tok-123",
		})
	}))
	defer srv.Close()

	tokens := NewTokenStore()
	c := NewFaceClient(Config{BaseURL: srv.URL}, tokens)

	result, err := c.Login(context.Background(), "a@b.test", [][]byte{{0xff, 0xd8}})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !result.Success || result.UserID != "u-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if tokens.Token() != "tok-123" {
		t.Fatalf("token not stored, got %q", tokens.Token())
	}
}

func TestFaceClientNormalizesErrorBodies(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantCode   string
	}{
		{"detail field", http.StatusNotFound, `{"detail":"face not registered"}`, "face not registered", ""},
		{"message field", http.StatusBadRequest, `{"message":"bad images"}`, "bad images", ""},
		{"error field", http.StatusInternalServerError, `{"error":"boom"}`, "boom", ""},
		{"machine code", http.StatusUnauthorized, `{"detail":"nope","code":"BIOMETRIC_FAILED"}`, "nope", "BIOMETRIC_FAILED"},
		{"bare string", http.StatusConflict, `"already registered"`, "already registered", ""},
		{"plain text", http.StatusBadGateway, `upstream sad`, "upstream sad", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewFaceClient(Config{BaseURL: srv.URL}, NewTokenStore())
			_, err := c.Identify(context.Background(), [][]byte{{0x01}})

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", apiErr.StatusCode, tc.status)
			}
			if apiErr.Detail != tc.wantDetail {
				t.Fatalf("detail = %q, want %q", apiErr.Detail, tc.wantDetail)
			}
			if apiErr.Code != tc.wantCode {
				t.Fatalf("code = %q, want %q", apiErr.Code, tc.wantCode)
			}
		})
	}
}

func TestFaceClientValidateEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/validate-email" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"registered": true})
	}))
	defer srv.Close()

	c := NewFaceClient(Config{BaseURL: srv.URL}, nil)
	registered, err := c.ValidateEmail(context.Background(), "a@b.test")
	if err != nil {
		t.Fatalf("ValidateEmail: %v", err)
	}
	if !registered {
		t.Fatal("expected registered=true")
	}
}

func TestFaceClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"user_id": "u-1", "email": "a@b.test"})
	}))
	defer srv.Close()

	tokens := NewTokenStore()
	tokens.Set("tok-abc")
	c := NewFaceClient(Config{BaseURL: srv.URL}, tokens)

	if _, err := c.CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
}
