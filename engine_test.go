package avfacepay

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Handavipul/avfacePay/capture"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

type fakeFaceService struct {
	registerErr error
	loginErr    error
	loginResult *AuthResult

	lastEmail  string
	lastImages [][]byte
	calls      int
}

func (f *fakeFaceService) submit(email string, images [][]byte, result *AuthResult, err error) (*AuthResult, error) {
	f.calls++
	f.lastEmail = email
	f.lastImages = images
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}
	return &AuthResult{Success: true, UserID: "u-1", Email: email}, nil
}

func (f *fakeFaceService) Register(_ context.Context, email string, images [][]byte) (*AuthResult, error) {
	return f.submit(email, images, nil, f.registerErr)
}

func (f *fakeFaceService) Login(_ context.Context, email string, images [][]byte) (*AuthResult, error) {
	return f.submit(email, images, f.loginResult, f.loginErr)
}

func (f *fakeFaceService) Identify(_ context.Context, images [][]byte) (*AuthResult, error) {
	return f.submit("", images, f.loginResult, f.loginErr)
}

func (f *fakeFaceService) Verify(_ context.Context, email string, images [][]byte) (*AuthResult, error) {
	return f.submit(email, images, f.loginResult, f.loginErr)
}

func (f *fakeFaceService) ValidateEmail(context.Context, string) (bool, error) {
	return true, nil
}

func (f *fakeFaceService) CurrentUser(context.Context) (*UserProfile, error) {
	return &UserProfile{UserID: "u-1"}, nil
}

type fakeOTPService struct {
	requestErr error
	verifyErr  error
	verified   bool
	code       string

	requests  []OTPRequest
	cancelled []string
	resent    []string
	nextID    int
}

func (f *fakeOTPService) Request(_ context.Context, req OTPRequest) (*OTPSession, error) {
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	f.nextID++
	f.requests = append(f.requests, req)
	return &OTPSession{ID: "otp-" + strconv.Itoa(f.nextID), Method: req.Method}, nil
}

func (f *fakeOTPService) Verify(_ context.Context, sessionID, code string) (*OTPVerification, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if f.code != "" && code == f.code {
		return &OTPVerification{Verified: true, UserID: "u-1", Token: "tok"}, nil
	}
	return &OTPVerification{Verified: f.verified}, nil
}

func (f *fakeOTPService) Resend(_ context.Context, sessionID string) error {
	f.resent = append(f.resent, sessionID)
	return nil
}

func (f *fakeOTPService) Cancel(_ context.Context, sessionID string) error {
	f.cancelled = append(f.cancelled, sessionID)
	return nil
}

func (f *fakeOTPService) Status(_ context.Context, sessionID string) (*OTPSessionStatus, error) {
	return &OTPSessionStatus{SessionID: sessionID, Active: true}, nil
}

type engineTestOption func(*Builder)

func withRedisOption(client *redis.Client) engineTestOption {
	return func(b *Builder) { b.WithRedis(client) }
}

func withCheckoutOption(svc CheckoutService) engineTestOption {
	return func(b *Builder) { b.WithCheckoutService(svc) }
}

func newTestEngine(t *testing.T, mutate func(*Config), opts ...engineTestOption) (*Engine, *capture.VirtualClock, *fakeFaceService, *fakeOTPService) {
	t.Helper()

	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	clock := capture.NewVirtualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	face := &fakeFaceService{}
	otp := &fakeOTPService{}

	b := New().
		WithConfig(cfg).
		WithClock(clock).
		WithFaceService(face).
		WithOTPService(otp)
	for _, opt := range opts {
		opt(b)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, clock, face, otp
}

func TestBuilderRequiresServices(t *testing.T) {
	if _, err := New().Build(); !errors.Is(err, ErrFaceServiceRequired) {
		t.Fatalf("err = %v, want ErrFaceServiceRequired", err)
	}
	if _, err := New().WithFaceService(&fakeFaceService{}).Build(); !errors.Is(err, ErrOTPServiceRequired) {
		t.Fatalf("err = %v, want ErrOTPServiceRequired", err)
	}
}

func TestBuilderRequiresRedisForRecovery(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Recovery.Enabled = true
	_, err := New().
		WithConfig(cfg).
		WithFaceService(&fakeFaceService{}).
		WithOTPService(&fakeOTPService{}).
		Build()
	if !errors.Is(err, ErrRedisRequired) {
		t.Fatalf("err = %v, want ErrRedisRequired", err)
	}
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OTP.MaxAttempts = 0
	_, err := New().
		WithConfig(cfg).
		WithFaceService(&fakeFaceService{}).
		WithOTPService(&fakeOTPService{}).
		Build()
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("err = %v, want ErrConfigInvalid", err)
	}
}

func TestBuilderSecondBuildFails(t *testing.T) {
	b := New().WithFaceService(&fakeFaceService{}).WithOTPService(&fakeOTPService{})
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	t.Cleanup(engine.Close)
	if _, err := b.Build(); err == nil {
		t.Fatal("second Build should fail")
	}
}

func TestEngineMessageAutoClears(t *testing.T) {
	engine, clock, _, _ := newTestEngine(t, nil)

	engine.mu.Lock()
	engine.setMessageLocked(MessageError, "boom", CodeSystemError)
	engine.mu.Unlock()

	if msg := engine.CurrentMessage(); msg.Kind != MessageError {
		t.Fatalf("message kind = %v, want error", msg.Kind)
	}
	clock.Advance(7 * time.Second)
	if msg := engine.CurrentMessage(); msg.Kind != MessageError {
		t.Fatal("error message cleared before its 8s window")
	}
	clock.Advance(2 * time.Second)
	if msg := engine.CurrentMessage(); msg.Kind != MessageNone {
		t.Fatalf("error message not cleared after 8s, got %+v", msg)
	}

	engine.mu.Lock()
	engine.setMessageLocked(MessageSuccess, "done", "")
	engine.mu.Unlock()
	clock.Advance(4 * time.Second)
	if msg := engine.CurrentMessage(); msg.Kind != MessageNone {
		t.Fatal("success message not cleared after 3s")
	}
}
