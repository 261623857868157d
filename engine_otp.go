package avfacepay

import (
	"context"
	"strconv"
	"time"
)

// VerifyOTP describes the verifyotp operation and its observable behavior.
//
// VerifyOTP may return an error when input validation, dependency calls, or security checks fail.
// VerifyOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// A wrong code bumps the attempt count; at the configured maximum the flow
// locks for the lockout duration and every further call fails with
// ErrOTPLocked until the deadline passes, no matter what state resets happen
// in between.
func (e *Engine) VerifyOTP(ctx context.Context, code string) (*OTPVerification, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	e.mu.Lock()
	if remaining := e.lockRemainingLocked(); remaining > 0 {
		e.mu.Unlock()
		return nil, ErrOTPLocked
	}
	if !e.fallback.active || e.fallback.session == nil {
		e.mu.Unlock()
		return nil, ErrNoOTPSession
	}
	sessionID := e.fallback.session.ID
	e.mu.Unlock()

	verification, err := e.otp.Verify(ctx, sessionID, code)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil || verification == nil || !verification.Verified {
		e.fallback.attempts++
		e.metricInc(MetricOTPVerifyFailure)

		if e.fallback.attempts >= e.config.OTP.MaxAttempts {
			e.fallback.lockedUntil = e.now().Add(e.config.OTP.LockoutDuration)
			e.metricInc(MetricOTPLockout)
			e.setMessageLocked(MessageError, "Too many incorrect codes. Try again in a few minutes.", "")
			e.auditEmit(AuditEvent{
				EventType: "otp_locked",
				SessionID: sessionID,
				Metadata:  map[string]string{"attempts": strconv.Itoa(e.fallback.attempts)},
			})
			return nil, ErrOTPAttemptsExceeded
		}

		e.setMessageLocked(MessageError, "Incorrect code. Please try again.", "")
		e.auditEmit(AuditEvent{EventType: "otp_verify_failed", SessionID: sessionID})
		if err != nil {
			return nil, Classify(err, e.now())
		}
		return nil, ErrOTPInvalidCode
	}

	// Success clears the whole fallback flow, lockout deadline included.
	e.fallback = fallbackState{method: e.config.Fallback.DefaultMethod}
	e.setMessageLocked(MessageSuccess, "Code verified. Signed in successfully.", "")
	e.metricInc(MetricOTPVerifySuccess)
	e.auditEmit(AuditEvent{
		EventType: "otp_verified",
		UserID:    verification.UserID,
		SessionID: sessionID,
		Success:   true,
	})

	return verification, nil
}

// ResendOTP describes the resendotp operation and its observable behavior.
//
// ResendOTP may return an error when input validation, dependency calls, or security checks fail.
// ResendOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ResendOTP(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}

	e.mu.Lock()
	if !e.fallback.active || e.fallback.session == nil {
		e.mu.Unlock()
		return ErrNoOTPSession
	}
	if e.now().Before(e.fallback.resendAvailableAt) {
		e.mu.Unlock()
		return ErrOTPResendCooldown
	}
	sessionID := e.fallback.session.ID
	e.mu.Unlock()

	if err := e.otp.Resend(ctx, sessionID); err != nil {
		e.mu.Lock()
		authErr := Classify(err, e.now())
		e.setErrorMessageLocked(authErr)
		e.mu.Unlock()
		return authErr
	}

	e.mu.Lock()
	e.fallback.resendAvailableAt = e.now().Add(e.config.OTP.ResendCooldown)
	e.setMessageLocked(MessageInfo, "A new code was sent.", "")
	e.mu.Unlock()

	e.metricInc(MetricOTPResend)
	e.auditEmit(AuditEvent{EventType: "otp_resent", SessionID: sessionID, Success: true})
	return nil
}

// ResendCooldown describes the resendcooldown operation and its observable behavior.
//
// ResendCooldown returns the time left before Resend is allowed, rounded up
// to whole seconds so a host can show a 1Hz ticker.
func (e *Engine) ResendCooldown() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	remaining := e.fallback.resendAvailableAt.Sub(e.now())
	if remaining <= 0 {
		return 0
	}
	if rem := remaining % time.Second; rem != 0 {
		remaining += time.Second - rem
	}
	return remaining
}

// SwitchOTPMethod describes the switchotpmethod operation and its observable behavior.
//
// SwitchOTPMethod may return an error when input validation, dependency calls, or security checks fail.
// SwitchOTPMethod does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The old backend session is cancelled and a fresh one opened on the new
// channel. On request failure the previous method is restored and no session
// remains; on success the attempt count resets.
func (e *Engine) SwitchOTPMethod(ctx context.Context, method OTPMethod, destination string) (*OTPSession, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if !method.valid() {
		return nil, ErrOTPMethodInvalid
	}
	if destination == "" {
		return nil, ErrOTPDestinationRequired
	}

	e.mu.Lock()
	if !e.fallback.active {
		e.mu.Unlock()
		return nil, ErrFallbackNotActive
	}
	prior := e.fallback.session
	priorMethod := e.fallback.method
	e.fallback.method = method
	e.mu.Unlock()

	if prior != nil {
		_ = e.otp.Cancel(ctx, prior.ID)
	}

	session, err := e.otp.Request(ctx, OTPRequest{
		Method:      method,
		Destination: destination,
		Purpose:     e.config.Fallback.Purpose,
	})

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.fallback.method = priorMethod
		e.fallback.session = nil
		authErr := Classify(err, e.now())
		e.setErrorMessageLocked(authErr)
		return nil, authErr
	}

	e.fallback.session = session
	e.fallback.destination = destination
	e.fallback.attempts = 0
	e.fallback.resendAvailableAt = e.now().Add(e.config.OTP.ResendCooldown)
	e.setMessageLocked(MessageInfo, "A verification code was sent to "+maskDestination(method, destination)+".", "")
	e.metricInc(MetricOTPMethodSwitched)
	e.metricInc(MetricOTPRequested)
	e.auditEmit(AuditEvent{
		EventType: "otp_method_switched",
		SessionID: session.ID,
		Success:   true,
		Metadata:  map[string]string{"method": string(method)},
	})

	return session, nil
}

// ResetOTPState describes the resetotpstate operation and its observable behavior.
//
// ResetOTPState clears the session, attempts, and transient messages, but a
// standing lockout deadline is never lifted early.
func (e *Engine) ResetOTPState() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	locked := e.fallback.lockedUntil
	e.fallback = fallbackState{
		method:      e.config.Fallback.DefaultMethod,
		lockedUntil: locked,
	}
	e.message = Message{}
}

// OTPStatus describes the otpstatus operation and its observable behavior.
func (e *Engine) OTPStatus() OTPStatusView {
	e.mu.Lock()
	defer e.mu.Unlock()

	view := OTPStatusView{
		Active:      e.fallback.active,
		Method:      e.fallback.method,
		Attempts:    e.fallback.attempts,
		MaxAttempts: e.config.OTP.MaxAttempts,
	}
	if e.fallback.session != nil {
		view.SessionID = e.fallback.session.ID
	}
	if remaining := e.lockRemainingLocked(); remaining > 0 {
		view.Locked = true
		view.LockRemaining = remaining
	}
	if remaining := e.fallback.resendAvailableAt.Sub(e.now()); remaining > 0 {
		view.ResendRemaining = remaining
	}
	return view
}

func (e *Engine) lockRemainingLocked() time.Duration {
	if e.fallback.lockedUntil.IsZero() {
		return 0
	}
	remaining := e.fallback.lockedUntil.Sub(e.now())
	if remaining <= 0 {
		e.fallback.lockedUntil = time.Time{}
		e.fallback.attempts = 0
		return 0
	}
	return remaining
}
