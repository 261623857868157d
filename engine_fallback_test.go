package avfacepay

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// failTwice drives two failed biometric submissions through the engine so the
// consecutive-failure counter reaches the auto-trigger threshold.
func failTwice(t *testing.T, engine *Engine, face *fakeFaceService) {
	t.Helper()
	face.loginErr = &fakeAPIError{status: 401, detail: "no match"}
	for i := 0; i < 2; i++ {
		completeSingleShot(t, engine, &stubFrameSource{})
		if _, err := engine.SubmitCaptures(context.Background()); err == nil {
			t.Fatal("submission should have failed")
		}
		engine.CancelCapture()
	}
}

func TestConsecutiveFailuresReachThreshold(t *testing.T) {
	engine, _, face, _ := newTestEngine(t, manualCaptureConfig)

	failTwice(t, engine, face)
	if got := engine.ConsecutiveFailures(); got != 2 {
		t.Fatalf("consecutive failures = %d, want 2", got)
	}
}

func TestCancelCaptureDoesNotResetFailures(t *testing.T) {
	engine, _, face, _ := newTestEngine(t, manualCaptureConfig)

	face.loginErr = &fakeAPIError{status: 401, detail: "no match"}
	completeSingleShot(t, engine, &stubFrameSource{})
	if _, err := engine.SubmitCaptures(context.Background()); err == nil {
		t.Fatal("submission should have failed")
	}
	engine.CancelCapture()

	// Abandoning the capture session keeps the failure streak; only a
	// successful authentication or an explicit fallback cancel clears it.
	if got := engine.ConsecutiveFailures(); got != 1 {
		t.Fatalf("consecutive failures = %d, want 1", got)
	}
}

func TestTriggerFallbackOpensSession(t *testing.T) {
	engine, _, _, otp := newTestEngine(t, nil)

	session, err := engine.TriggerFallback(context.Background(), OTPMethodSMS, "+15551234567")
	if err != nil {
		t.Fatalf("TriggerFallback: %v", err)
	}
	if session == nil || session.ID == "" {
		t.Fatal("no session returned")
	}
	if !engine.FallbackActive() {
		t.Fatal("fallback not active")
	}
	if len(otp.requests) != 1 || otp.requests[0].Method != OTPMethodSMS {
		t.Fatalf("unexpected requests: %+v", otp.requests)
	}
	if otp.requests[0].Purpose != "login_fallback" {
		t.Fatalf("purpose = %q", otp.requests[0].Purpose)
	}

	msg := engine.CurrentMessage()
	if msg.Kind != MessageInfo {
		t.Fatalf("message kind = %v, want info", msg.Kind)
	}
	if strings.Contains(msg.Text, "+15551234567") {
		t.Fatal("message leaked the full destination")
	}
	if !strings.Contains(msg.Text, "4567") {
		t.Fatalf("message should keep the last digits: %q", msg.Text)
	}
}

func TestTriggerFallbackDefaultsMethod(t *testing.T) {
	engine, _, _, otp := newTestEngine(t, nil)

	if _, err := engine.TriggerFallback(context.Background(), "", "a@b.test"); err != nil {
		t.Fatalf("TriggerFallback: %v", err)
	}
	if otp.requests[0].Method != OTPMethodEmail {
		t.Fatalf("method = %v, want default email", otp.requests[0].Method)
	}
}

func TestTriggerFallbackValidation(t *testing.T) {
	engine, _, _, _ := newTestEngine(t, nil)

	if _, err := engine.TriggerFallback(context.Background(), OTPMethod("carrier-pigeon"), "a@b.test"); !errors.Is(err, ErrOTPMethodInvalid) {
		t.Fatalf("bad method: err = %v", err)
	}
	if _, err := engine.TriggerFallback(context.Background(), OTPMethodEmail, ""); !errors.Is(err, ErrOTPDestinationRequired) {
		t.Fatalf("empty destination: err = %v", err)
	}
}

func TestTriggerFallbackReplacesPriorSession(t *testing.T) {
	engine, _, _, otp := newTestEngine(t, nil)

	first, err := engine.TriggerFallback(context.Background(), OTPMethodEmail, "a@b.test")
	if err != nil {
		t.Fatalf("first TriggerFallback: %v", err)
	}
	second, err := engine.TriggerFallback(context.Background(), OTPMethodEmail, "a@b.test")
	if err != nil {
		t.Fatalf("second TriggerFallback: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("second trigger reused the first session")
	}
	if len(otp.cancelled) != 1 || otp.cancelled[0] != first.ID {
		t.Fatalf("cancelled = %v, want [%s]", otp.cancelled, first.ID)
	}
}

func TestTriggerFallbackRequestFailure(t *testing.T) {
	engine, _, _, otp := newTestEngine(t, nil)
	otp.requestErr = &fakeAPIError{status: 503, detail: "sms gateway down"}

	_, err := engine.TriggerFallback(context.Background(), OTPMethodSMS, "+15551234567")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want *AuthError", err)
	}
	if engine.FallbackActive() {
		t.Fatal("fallback should not activate on request failure")
	}
}

func TestTriggerFallbackRateLimited(t *testing.T) {
	rdb := newTestRedis(t)
	engine, _, _, otp := newTestEngine(t, func(cfg *Config) {
		cfg.OTP.EnableRequestThrottle = true
		cfg.OTP.MaxRequestsPerWindow = 2
		cfg.OTP.RequestWindow = time.Hour
	}, withRedisOption(rdb))

	for i := 0; i < 2; i++ {
		if _, err := engine.TriggerFallback(context.Background(), OTPMethodEmail, "a@b.test"); err != nil {
			t.Fatalf("trigger %d: %v", i, err)
		}
	}
	if _, err := engine.TriggerFallback(context.Background(), OTPMethodEmail, "a@b.test"); !errors.Is(err, ErrOTPRequestRateLimited) {
		t.Fatalf("err = %v, want ErrOTPRequestRateLimited", err)
	}
	// The throttle is per destination.
	if _, err := engine.TriggerFallback(context.Background(), OTPMethodEmail, "c@d.test"); err != nil {
		t.Fatalf("other destination: %v", err)
	}
	if got := len(otp.requests); got != 3 {
		t.Fatalf("backend requests = %d, want 3", got)
	}
}

func TestCancelFallbackClearsState(t *testing.T) {
	engine, _, face, otp := newTestEngine(t, manualCaptureConfig)
	failTwice(t, engine, face)

	session, err := engine.TriggerFallback(context.Background(), OTPMethodEmail, "a@b.test")
	if err != nil {
		t.Fatalf("TriggerFallback: %v", err)
	}
	if err := engine.CancelFallback(context.Background()); err != nil {
		t.Fatalf("CancelFallback: %v", err)
	}

	if engine.FallbackActive() {
		t.Fatal("fallback still active")
	}
	if engine.ConsecutiveFailures() != 0 {
		t.Fatal("cancel did not clear the failure streak")
	}
	found := false
	for _, id := range otp.cancelled {
		if id == session.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("backend session was not cancelled")
	}
}

func TestMaskDestination(t *testing.T) {
	cases := []struct {
		method OTPMethod
		in     string
		want   string
	}{
		{OTPMethodSMS, "+15551234567", "****4567"},
		{OTPMethodSMS, "123", "****"},
		{OTPMethodEmail, "alice@example.com", "a***@example.com"},
		{OTPMethodEmail, "a@b.c", "****"},
		{OTPMethodEmail, "not-an-email", "****"},
	}
	for _, tc := range cases {
		if got := maskDestination(tc.method, tc.in); got != tc.want {
			t.Errorf("maskDestination(%v, %q) = %q, want %q", tc.method, tc.in, got, tc.want)
		}
	}
}
