package avfacepay

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
)

// statusCoder is implemented by client.APIError without either package
// importing the other.
type statusCoder interface {
	HTTPStatus() int
}

// errorCoder exposes a backend-provided machine code when the error body
// carried one.
type errorCoder interface {
	AuthCode() string
}

type errorProfile struct {
	message  string
	fallback bool
}

// errorProfiles maps every canonical code to its one stable user-facing
// message and fallback eligibility.
var errorProfiles = map[ErrorCode]errorProfile{
	CodeCameraAccessDenied:        {"Camera access was denied. Please allow camera access or use a fallback method.", true},
	CodeFaceRecognitionTimeout:    {"Face recognition timed out. Please try again or use a fallback method.", true},
	CodeBiometricFailed:           {"Face recognition failed. Please try again or use a fallback method.", true},
	CodeDuplicateFaceRegistration: {"This face is already registered. Please sign in instead.", false},
	CodeFaceDetectionFailed:       {"No face detected. Please center your face in the circle and try again.", false},
	CodeFaceNotRegistered:         {"Face not recognized. Please register first or check your email.", false},
	CodeValidationError:           {"Please check your details and try again.", false},
	CodeInvalidRequest:            {"The request was invalid. Please try again.", false},
	CodeNetworkError:              {"Connection problem. Please check your network and try again.", false},
	CodeSystemError:               {"Something went wrong on our side. Please try again shortly.", false},
	CodeUnknownError:              {"An unexpected error occurred. Please try again.", false},
	CodeMultipleFailedAttempts:    {"Too many failed attempts. Please use a fallback method.", true},
	CodeDeviceNotTrusted:          {"This device is not trusted. Please use a fallback method.", true},
	CodeSuspiciousActivity:        {"Suspicious activity detected. Please verify with a fallback method.", true},
	CodeLivenessCheckFailed:       {"Liveness check failed. Please try again or use a fallback method.", true},
}

// newAuthError builds the canonical error for a code, preserving the cause.
func newAuthError(code ErrorCode, cause error, now time.Time) *AuthError {
	p, ok := errorProfiles[code]
	if !ok {
		code = CodeUnknownError
		p = errorProfiles[CodeUnknownError]
	}
	return &AuthError{
		Code:             code,
		Message:          p.message,
		RequiresFallback: p.fallback,
		Err:              cause,
		Timestamp:        now,
	}
}

// Classify maps any failure onto the canonical taxonomy.
//
// Precedence: an error that is already an AuthError passes through
// untouched; then a backend machine code; then the HTTP status; then
// message heuristics; then CodeUnknownError. Classify is total: it never
// returns nil for a non-nil error.
func Classify(err error, now time.Time) *AuthError {
	if err == nil {
		return nil
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}

	var coder errorCoder
	if errors.As(err, &coder) {
		if code := ErrorCode(strings.ToUpper(coder.AuthCode())); code != "" {
			if _, ok := errorProfiles[code]; ok {
				return newAuthError(code, err, now)
			}
		}
	}

	var status statusCoder
	if errors.As(err, &status) {
		if code, ok := classifyHTTPStatus(status.HTTPStatus()); ok {
			return newAuthError(code, err, now)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newAuthError(CodeFaceRecognitionTimeout, err, now)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return newAuthError(CodeFaceRecognitionTimeout, err, now)
		}
		return newAuthError(CodeNetworkError, err, now)
	}

	if code, ok := classifyMessage(err.Error()); ok {
		return newAuthError(code, err, now)
	}

	return newAuthError(CodeUnknownError, err, now)
}

func classifyHTTPStatus(status int) (ErrorCode, bool) {
	switch {
	case status == 0:
		return CodeNetworkError, true
	case status == http.StatusBadRequest:
		return CodeInvalidRequest, true
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return CodeBiometricFailed, true
	case status == http.StatusNotFound:
		return CodeFaceNotRegistered, true
	case status == http.StatusRequestTimeout:
		return CodeFaceRecognitionTimeout, true
	case status == http.StatusConflict:
		return CodeDuplicateFaceRegistration, true
	case status == http.StatusUnprocessableEntity:
		return CodeValidationError, true
	case status == http.StatusTooManyRequests:
		return CodeMultipleFailedAttempts, true
	case status >= 500:
		return CodeSystemError, true
	default:
		return "", false
	}
}

func classifyMessage(msg string) (ErrorCode, bool) {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "camera") || strings.Contains(lower, "permission denied"):
		return CodeCameraAccessDenied, true
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out"):
		return CodeFaceRecognitionTimeout, true
	case strings.Contains(lower, "already registered") || strings.Contains(lower, "duplicate"):
		return CodeDuplicateFaceRegistration, true
	case strings.Contains(lower, "not registered") || strings.Contains(lower, "no match"):
		return CodeFaceNotRegistered, true
	case strings.Contains(lower, "no face") || strings.Contains(lower, "face detection"):
		return CodeFaceDetectionFailed, true
	case strings.Contains(lower, "face recognition") || strings.Contains(lower, "biometric"):
		return CodeBiometricFailed, true
	case strings.Contains(lower, "liveness"):
		return CodeLivenessCheckFailed, true
	case strings.Contains(lower, "network") || strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host"):
		return CodeNetworkError, true
	case strings.Contains(lower, "validation"):
		return CodeValidationError, true
	default:
		return "", false
	}
}

// FallbackEligible reports whether a classified code may auto-trigger the
// OTP fallback flow.
func FallbackEligible(code ErrorCode) bool {
	switch code {
	case CodeBiometricFailed, CodeFaceRecognitionTimeout, CodeCameraAccessDenied,
		CodeMultipleFailedAttempts, CodeDeviceNotTrusted, CodeSuspiciousActivity,
		CodeLivenessCheckFailed:
		return true
	default:
		return false
	}
}
