package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// APIError defines a public type used by avfacePay APIs.
//
// APIError carries the normalized backend failure: HTTP status, an optional
// machine code, and the human-readable detail extracted from the body.
type APIError struct {
	StatusCode int
	Code       string
	Detail     string
}

// Error describes the error operation and its observable behavior.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
}

// HTTPStatus describes the httpstatus operation and its observable behavior.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// AuthCode describes the authcode operation and its observable behavior.
func (e *APIError) AuthCode() string { return e.Code }

// Config defines a public type used by avfacePay APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// httpClient is the shared JSON plumbing under every concrete client.
type httpClient struct {
	base   string
	hc     *http.Client
	tokens *TokenStore
}

func newHTTPClient(cfg Config, tokens *TokenStore) *httpClient {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &httpClient{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		hc:     hc,
		tokens: tokens,
	}
}

// do runs one JSON round trip. A nil body sends no payload; a nil out
// discards the response body. Statuses >= 400 return *APIError.
func (c *httpClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// errorBody covers the shapes backends actually send: FastAPI-style
// "detail", plain "message"/"error", and an optional machine "code".
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	ErrMsg  string `json:"error"`
	Code    string `json:"code"`
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Detail: resp.Status}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Code = body.Code
		switch {
		case body.Detail != "":
			apiErr.Detail = body.Detail
		case body.Message != "":
			apiErr.Detail = body.Message
		case body.ErrMsg != "":
			apiErr.Detail = body.ErrMsg
		}
		return apiErr
	}

	// Some backends send a bare JSON string or plain text.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		apiErr.Detail = s
		return apiErr
	}
	apiErr.Detail = strings.TrimSpace(string(raw))
	return apiErr
}
