package client

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	avfacepay "github.com/Handavipul/avfacePay"
)

// FaceClient defines a public type used by avfacePay APIs.
//
// FaceClient implements avfacepay.FaceService against the face
// authentication backend. Captured frames travel as JPEG data URLs, the
// format the backend's detection pipeline ingests.
type FaceClient struct {
	http   *httpClient
	tokens *TokenStore
}

// NewFaceClient describes the newfaceclient operation and its observable behavior.
func NewFaceClient(cfg Config, tokens *TokenStore) *FaceClient {
	return &FaceClient{
		http:   newHTTPClient(cfg, tokens),
		tokens: tokens,
	}
}

type faceAuthRequest struct {
	Email  string   `json:"email,omitempty"`
	Images []string `json:"images"`
}

type faceAuthResponse struct {
	Success          bool    `json:"success"`
	UserID           string  `json:"user_id"`
	Email            string  `json:"email"`
	Token            string  `json:"access_token"`
	Message          string  `json:"message"`
	Confidence       float64 `json:"confidence"`
	RequiresFallback bool    `json:"requires_fallback"`
}

func (r *faceAuthResponse) result() *avfacepay.AuthResult {
	return &avfacepay.AuthResult{
		Success:          r.Success,
		UserID:           r.UserID,
		Email:            r.Email,
		Token:            r.Token,
		Message:          r.Message,
		Confidence:       r.Confidence,
		RequiresFallback: r.RequiresFallback,
	}
}

func (c *FaceClient) submit(ctx context.Context, path, email string, images [][]byte) (*avfacepay.AuthResult, error) {
	req := faceAuthRequest{
		Email:  email,
		Images: encodeDataURLs(images),
	}
	var resp faceAuthResponse
	if err := c.http.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	if resp.Success && resp.Token != "" && c.tokens != nil {
		c.tokens.Set(resp.Token)
	}
	return resp.result(), nil
}

// Register describes the register operation and its observable behavior.
func (c *FaceClient) Register(ctx context.Context, email string, images [][]byte) (*avfacepay.AuthResult, error) {
	return c.submit(ctx, "/auth/register", email, images)
}

// Login describes the login operation and its observable behavior.
func (c *FaceClient) Login(ctx context.Context, email string, images [][]byte) (*avfacepay.AuthResult, error) {
	return c.submit(ctx, "/auth/login", email, images)
}

// Identify describes the identify operation and its observable behavior.
//
// Identify authenticates by face alone; the backend resolves the account.
func (c *FaceClient) Identify(ctx context.Context, images [][]byte) (*avfacepay.AuthResult, error) {
	return c.submit(ctx, "/auth/identify", "", images)
}

// Verify describes the verify operation and its observable behavior.
func (c *FaceClient) Verify(ctx context.Context, email string, images [][]byte) (*avfacepay.AuthResult, error) {
	return c.submit(ctx, "/auth/verify", email, images)
}

type validateEmailRequest struct {
	Email string `json:"email"`
}

type validateEmailResponse struct {
	Registered bool `json:"registered"`
}

// ValidateEmail describes the validateemail operation and its observable behavior.
func (c *FaceClient) ValidateEmail(ctx context.Context, email string) (bool, error) {
	var resp validateEmailResponse
	if err := c.http.do(ctx, http.MethodPost, "/auth/validate-email", validateEmailRequest{Email: email}, &resp); err != nil {
		return false, err
	}
	return resp.Registered, nil
}

type currentUserResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CurrentUser describes the currentuser operation and its observable behavior.
func (c *FaceClient) CurrentUser(ctx context.Context) (*avfacepay.UserProfile, error) {
	var resp currentUserResponse
	if err := c.http.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &avfacepay.UserProfile{
		UserID:    resp.UserID,
		Email:     resp.Email,
		Name:      resp.Name,
		CreatedAt: resp.CreatedAt,
	}, nil
}

func encodeDataURLs(images [][]byte) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		out = append(out, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(img))
	}
	return out
}
