package avfacepay

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Handavipul/avfacePay/capture"
)

// Engine defines a public type used by avfacePay APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config   Config
	clock    capture.Clock
	log      *zap.Logger
	face     FaceService
	otp      OTPService
	payments PaymentService
	checkout CheckoutService

	recovery   *redirectRecoveryStore
	otpLimiter *otpRequestLimiter
	audit      *auditDispatcher
	metrics    *Metrics

	mu           sync.Mutex
	orch         *capture.Orchestrator
	captureMode  AuthMode
	captureEmail string
	processing   bool
	fallback     fallbackState
	message      Message
}

// fallbackState carries the OTP fallback flow. Zero value means inactive.
// lockedUntil deliberately survives ResetOTPState.
type fallbackState struct {
	active              bool
	session             *OTPSession
	method              OTPMethod
	destination         string
	attempts            int
	consecutiveFailures int
	lockedUntil         time.Time
	resendAvailableAt   time.Time
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	orch := e.orch
	e.orch = nil
	e.mu.Unlock()
	if orch != nil {
		orch.Close()
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) now() time.Time {
	return e.clock.Now()
}

// CurrentMessage describes the currentmessage operation and its observable behavior.
//
// CurrentMessage returns the transient user-facing message, or a zero
// Message once its display window has elapsed. Errors display for the
// configured error TTL, success and info for theirs.
func (e *Engine) CurrentMessage() Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentMessageLocked()
}

func (e *Engine) currentMessageLocked() Message {
	if e.message.Kind == MessageNone {
		return Message{}
	}
	ttl := e.config.Messages.InfoTTL
	switch e.message.Kind {
	case MessageError:
		ttl = e.config.Messages.ErrorTTL
	case MessageSuccess:
		ttl = e.config.Messages.SuccessTTL
	}
	if e.now().Sub(e.message.At) >= ttl {
		e.message = Message{}
		return Message{}
	}
	return e.message
}

// ClearMessage describes the clearmessage operation and its observable behavior.
func (e *Engine) ClearMessage() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.message = Message{}
}

func (e *Engine) setMessageLocked(kind MessageKind, text string, code ErrorCode) {
	e.message = Message{Kind: kind, Text: text, Code: code, At: e.now()}
}

func (e *Engine) setErrorMessageLocked(authErr *AuthError) {
	if authErr == nil {
		return
	}
	e.setMessageLocked(MessageError, authErr.Message, authErr.Code)
}

func (e *Engine) auditEmit(event AuditEvent) {
	if e.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}
	e.audit.Emit(nil, event)
}
