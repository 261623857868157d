package avfacepay

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeAPIError struct {
	status int
	code   string
	detail string
}

func (e *fakeAPIError) Error() string    { return fmt.Sprintf("api error %d: %s", e.status, e.detail) }
func (e *fakeAPIError) HTTPStatus() int  { return e.status }
func (e *fakeAPIError) AuthCode() string { return e.code }

type fakeNetError struct {
	timeout bool
}

func (e *fakeNetError) Error() string   { return "dial tcp: connection refused" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return false }

func TestClassifyPrecedence(t *testing.T) {
	now := time.Unix(1000, 0)

	t.Run("auth error passes through", func(t *testing.T) {
		orig := newAuthError(CodeBiometricFailed, errors.New("x"), now)
		got := Classify(fmt.Errorf("wrapped: %w", orig), now.Add(time.Minute))
		if got != orig {
			t.Fatal("existing AuthError was reclassified")
		}
	})

	t.Run("machine code beats status", func(t *testing.T) {
		err := &fakeAPIError{status: 500, code: "LIVENESS_CHECK_FAILED", detail: "liveness"}
		got := Classify(err, now)
		if got.Code != CodeLivenessCheckFailed {
			t.Fatalf("code = %v, want LIVENESS_CHECK_FAILED", got.Code)
		}
		if !got.RequiresFallback {
			t.Fatal("liveness failure must be fallback eligible")
		}
	})

	t.Run("status beats message", func(t *testing.T) {
		err := &fakeAPIError{status: 409, detail: "camera is mentioned here"}
		got := Classify(err, now)
		if got.Code != CodeDuplicateFaceRegistration {
			t.Fatalf("code = %v, want DUPLICATE_FACE_REGISTRATION", got.Code)
		}
	})
}

func TestClassifyHTTPStatuses(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorCode
	}{
		{0, CodeNetworkError},
		{400, CodeInvalidRequest},
		{401, CodeBiometricFailed},
		{403, CodeBiometricFailed},
		{404, CodeFaceNotRegistered},
		{408, CodeFaceRecognitionTimeout},
		{409, CodeDuplicateFaceRegistration},
		{422, CodeValidationError},
		{429, CodeMultipleFailedAttempts},
		{500, CodeSystemError},
		{503, CodeSystemError},
	}
	for _, tc := range cases {
		got := Classify(&fakeAPIError{status: tc.status}, time.Unix(0, 0))
		if got.Code != tc.want {
			t.Errorf("status %d: code = %v, want %v", tc.status, got.Code, tc.want)
		}
	}
}

func TestClassifyTransportErrors(t *testing.T) {
	now := time.Unix(0, 0)

	if got := Classify(context.DeadlineExceeded, now); got.Code != CodeFaceRecognitionTimeout {
		t.Fatalf("deadline: code = %v", got.Code)
	}
	if got := Classify(&fakeNetError{timeout: true}, now); got.Code != CodeFaceRecognitionTimeout {
		t.Fatalf("net timeout: code = %v", got.Code)
	}
	if got := Classify(&fakeNetError{}, now); got.Code != CodeNetworkError {
		t.Fatalf("net error: code = %v", got.Code)
	}
}

func TestClassifyMessageHeuristics(t *testing.T) {
	cases := []struct {
		msg  string
		want ErrorCode
	}{
		{"Camera permission denied by user", CodeCameraAccessDenied},
		{"request timed out after 30s", CodeFaceRecognitionTimeout},
		{"this face is already registered", CodeDuplicateFaceRegistration},
		{"email not registered", CodeFaceNotRegistered},
		{"no face detected in frame", CodeFaceDetectionFailed},
		{"face recognition failed", CodeBiometricFailed},
		{"liveness check did not pass", CodeLivenessCheckFailed},
		{"network unreachable", CodeNetworkError},
		{"validation failed for field amount", CodeValidationError},
		{"total mystery", CodeUnknownError},
	}
	for _, tc := range cases {
		got := Classify(errors.New(tc.msg), time.Unix(0, 0))
		if got.Code != tc.want {
			t.Errorf("%q: code = %v, want %v", tc.msg, got.Code, tc.want)
		}
	}
}

func TestClassifyStableMessages(t *testing.T) {
	// Every code must carry exactly one non-empty user-facing message.
	for code, profile := range errorProfiles {
		if profile.message == "" {
			t.Errorf("code %v has no message", code)
		}
	}
	a := Classify(errors.New("mystery one"), time.Unix(0, 0))
	b := Classify(errors.New("mystery two"), time.Unix(5, 0))
	if a.Message != b.Message {
		t.Fatal("same code produced different user-facing messages")
	}
}

func TestFallbackEligibleCodes(t *testing.T) {
	eligible := []ErrorCode{
		CodeBiometricFailed, CodeFaceRecognitionTimeout, CodeCameraAccessDenied,
		CodeMultipleFailedAttempts, CodeDeviceNotTrusted, CodeSuspiciousActivity,
		CodeLivenessCheckFailed,
	}
	for _, code := range eligible {
		if !FallbackEligible(code) {
			t.Errorf("%v should be fallback eligible", code)
		}
	}
	for _, code := range []ErrorCode{CodeDuplicateFaceRegistration, CodeFaceNotRegistered, CodeValidationError, CodeUnknownError} {
		if FallbackEligible(code) {
			t.Errorf("%v should not be fallback eligible", code)
		}
	}
}

func TestAuthErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	authErr := Classify(fmt.Errorf("wrap: %w", cause), time.Unix(0, 0))
	if !errors.Is(authErr, cause) {
		t.Fatal("classified error lost its cause chain")
	}
}
