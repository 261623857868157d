package client

import (
	"context"
	"net/http"
	"time"

	avfacepay "github.com/Handavipul/avfacePay"
)

// OTPClient defines a public type used by avfacePay APIs.
//
// OTPClient implements avfacepay.OTPService against the OTP delivery
// backend.
type OTPClient struct {
	http *httpClient
}

// NewOTPClient describes the newotpclient operation and its observable behavior.
func NewOTPClient(cfg Config, tokens *TokenStore) *OTPClient {
	return &OTPClient{
		http: newHTTPClient(cfg, tokens),
	}
}

type otpRequestBody struct {
	Method      string `json:"method"`
	Destination string `json:"destination"`
	Purpose     string `json:"purpose"`
}

type otpSessionResponse struct {
	SessionID string    `json:"session_id"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Request describes the request operation and its observable behavior.
func (c *OTPClient) Request(ctx context.Context, req avfacepay.OTPRequest) (*avfacepay.OTPSession, error) {
	body := otpRequestBody{
		Method:      string(req.Method),
		Destination: req.Destination,
		Purpose:     req.Purpose,
	}
	var resp otpSessionResponse
	if err := c.http.do(ctx, http.MethodPost, "/otp/request", body, &resp); err != nil {
		return nil, err
	}
	return &avfacepay.OTPSession{
		ID:        resp.SessionID,
		Method:    avfacepay.OTPMethod(resp.Method),
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

type otpVerifyBody struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
}

type otpVerifyResponse struct {
	Verified bool   `json:"verified"`
	UserID   string `json:"user_id"`
	Token    string `json:"access_token"`
}

// Verify describes the verify operation and its observable behavior.
func (c *OTPClient) Verify(ctx context.Context, sessionID, code string) (*avfacepay.OTPVerification, error) {
	var resp otpVerifyResponse
	if err := c.http.do(ctx, http.MethodPost, "/otp/verify", otpVerifyBody{SessionID: sessionID, Code: code}, &resp); err != nil {
		return nil, err
	}
	return &avfacepay.OTPVerification{
		Verified: resp.Verified,
		UserID:   resp.UserID,
		Token:    resp.Token,
	}, nil
}

type otpResendBody struct {
	SessionID string `json:"session_id"`
}

// Resend describes the resend operation and its observable behavior.
func (c *OTPClient) Resend(ctx context.Context, sessionID string) error {
	return c.http.do(ctx, http.MethodPost, "/otp/resend", otpResendBody{SessionID: sessionID}, nil)
}

// Cancel describes the cancel operation and its observable behavior.
func (c *OTPClient) Cancel(ctx context.Context, sessionID string) error {
	return c.http.do(ctx, http.MethodDelete, "/otp/session/"+sessionID, nil, nil)
}

type otpStatusResponse struct {
	SessionID string    `json:"session_id"`
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Status describes the status operation and its observable behavior.
func (c *OTPClient) Status(ctx context.Context, sessionID string) (*avfacepay.OTPSessionStatus, error) {
	var resp otpStatusResponse
	if err := c.http.do(ctx, http.MethodGet, "/otp/status/"+sessionID, nil, &resp); err != nil {
		return nil, err
	}
	return &avfacepay.OTPSessionStatus{
		SessionID: resp.SessionID,
		Active:    resp.Active,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}
