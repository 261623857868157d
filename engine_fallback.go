package avfacepay

import (
	"context"

	"go.uber.org/zap"
)

// recordAuthFailureLocked bumps the consecutive-failure count and reports
// whether the failure should open the fallback flow: eligible code, explicit
// backend request, or the failure threshold reached.
func (e *Engine) recordAuthFailureLocked(authErr *AuthError) bool {
	e.fallback.consecutiveFailures++

	if FallbackEligible(authErr.Code) || authErr.RequiresFallback {
		return true
	}
	return e.fallback.consecutiveFailures >= e.config.Fallback.AutoTriggerThreshold
}

// ConsecutiveFailures describes the consecutivefailures operation and its observable behavior.
func (e *Engine) ConsecutiveFailures() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fallback.consecutiveFailures
}

// FallbackActive describes the fallbackactive operation and its observable behavior.
func (e *Engine) FallbackActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fallback.active
}

// TriggerFallback describes the triggerfallback operation and its observable behavior.
//
// TriggerFallback may return an error when input validation, dependency calls, or security checks fail.
// TriggerFallback does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Triggering while a fallback session is already open replaces it: the old
// backend session is cancelled before the new request goes out. A standing
// lockout is NOT cleared by re-triggering.
func (e *Engine) TriggerFallback(ctx context.Context, method OTPMethod, destination string) (*OTPSession, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if method == "" {
		method = e.config.Fallback.DefaultMethod
	}
	if !method.valid() {
		return nil, ErrOTPMethodInvalid
	}
	if destination == "" {
		return nil, ErrOTPDestinationRequired
	}

	e.mu.Lock()
	prior := e.fallback.session
	e.mu.Unlock()

	if prior != nil {
		// Replace, never stack.
		if err := e.otp.Cancel(ctx, prior.ID); err != nil {
			e.log.Warn("stale otp session cancel failed",
				zap.String("session_id", prior.ID),
				zap.Error(err),
			)
		}
	}

	if e.otpLimiter != nil {
		if err := e.otpLimiter.Check(ctx, destination); err != nil {
			e.metricInc(MetricOTPRequestRateLimited)
			return nil, err
		}
	}

	session, err := e.otp.Request(ctx, OTPRequest{
		Method:      method,
		Destination: destination,
		Purpose:     e.config.Fallback.Purpose,
	})
	if err != nil {
		e.mu.Lock()
		authErr := Classify(err, e.now())
		e.setErrorMessageLocked(authErr)
		e.mu.Unlock()
		e.auditEmit(AuditEvent{
			EventType: "fallback_request_failed",
			Code:      string(authErr.Code),
			Error:     err.Error(),
		})
		return nil, authErr
	}

	e.mu.Lock()
	e.fallback.active = true
	e.fallback.session = session
	e.fallback.method = method
	e.fallback.destination = destination
	e.fallback.attempts = 0
	e.fallback.resendAvailableAt = e.now().Add(e.config.OTP.ResendCooldown)
	e.setMessageLocked(MessageInfo, "A verification code was sent to "+maskDestination(method, destination)+".", "")
	e.mu.Unlock()

	e.metricInc(MetricFallbackTriggered)
	e.metricInc(MetricOTPRequested)
	e.auditEmit(AuditEvent{
		EventType: "fallback_triggered",
		SessionID: session.ID,
		Success:   true,
		Metadata:  map[string]string{"method": string(method)},
	})

	return session, nil
}

// CancelFallback describes the cancelfallback operation and its observable behavior.
//
// CancelFallback cancels the backend session and clears the fallback state
// including the consecutive-failure count. The lockout deadline survives.
func (e *Engine) CancelFallback(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}

	e.mu.Lock()
	session := e.fallback.session
	e.fallback.active = false
	e.fallback.session = nil
	e.fallback.attempts = 0
	e.fallback.consecutiveFailures = 0
	e.fallback.resendAvailableAt = e.now()
	e.message = Message{}
	e.mu.Unlock()

	e.metricInc(MetricFallbackCancelled)
	e.auditEmit(AuditEvent{EventType: "fallback_cancelled", Success: true})

	if session == nil {
		return nil
	}
	return e.otp.Cancel(ctx, session.ID)
}

// maskDestination hides most of a phone number or email for display.
func maskDestination(method OTPMethod, destination string) string {
	if method == OTPMethodSMS {
		if len(destination) <= 4 {
			return "****"
		}
		return "****" + destination[len(destination)-4:]
	}
	at := -1
	for i, r := range destination {
		if r == '@' {
			at = i
			break
		}
	}
	if at <= 1 {
		return "****"
	}
	return destination[:1] + "***" + destination[at:]
}
