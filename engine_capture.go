package avfacepay

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/Handavipul/avfacePay/capture"
)

// StartCapture describes the startcapture operation and its observable behavior.
//
// StartCapture may return an error when input validation, dependency calls, or security checks fail.
// StartCapture does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Exactly one capture session exists per engine; a second StartCapture
// without CancelCapture fails. Registration runs the 5-pose sequence, all
// other modes a single centered shot. Login and verify require an email;
// identify is face-only.
func (e *Engine) StartCapture(mode AuthMode, email string, src capture.FrameSource) (*capture.Orchestrator, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if !mode.valid() {
		return nil, ErrInvalidMode
	}
	if (mode == ModeRegister || mode == ModeLogin || mode == ModeVerify) && email == "" {
		return nil, ErrEmailRequired
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.orch != nil {
		return nil, ErrCaptureSessionActive
	}

	steps := capture.SingleShotSteps()
	if mode == ModeRegister {
		steps = capture.RegistrationSteps()
	}

	sessionID := uuid.NewString()
	orch := capture.NewOrchestrator(
		e.captureConfig(),
		sessionID,
		steps,
		src,
		e.clock,
		e.log,
	)
	if err := orch.Start(); err != nil {
		authErr := Classify(err, e.now())
		e.setErrorMessageLocked(authErr)
		e.auditEmit(AuditEvent{
			EventType: "capture_start_failed",
			Mode:      string(mode),
			SessionID: sessionID,
			Code:      string(authErr.Code),
			Error:     err.Error(),
		})
		return nil, authErr
	}

	e.orch = orch
	e.captureMode = mode
	e.captureEmail = email
	e.metricInc(MetricCaptureSessionStarted)
	e.auditEmit(AuditEvent{
		EventType: "capture_started",
		Mode:      string(mode),
		SessionID: sessionID,
		Success:   true,
	})

	return orch, nil
}

func (e *Engine) captureConfig() capture.Config {
	c := e.config.Capture
	return capture.Config{
		DetectionInterval:  c.DetectionInterval,
		StabilityThreshold: c.StabilityThreshold,
		AlignmentThreshold: c.AlignmentThreshold,
		CountdownStart:     c.CountdownStart,
		CountdownInterval:  c.CountdownInterval,
		AutoCapture:        c.AutoCapture,
		MirrorFrames:       c.MirrorFrames,
		EventBuffer:        c.EventBuffer,
	}
}

// CancelCapture describes the cancelcapture operation and its observable behavior.
//
// CancelCapture tears the active session down from any state. The
// consecutive-failure count survives: retrying after a rejection means
// cancelling the spent session first, and the count must outlive that to
// ever reach the fallback threshold.
func (e *Engine) CancelCapture() {
	if e == nil {
		return
	}
	e.mu.Lock()
	orch := e.orch
	e.orch = nil
	e.captureMode = ""
	e.captureEmail = ""
	e.processing = false
	e.message = Message{}
	e.mu.Unlock()

	if orch != nil {
		orch.Close()
		e.metricInc(MetricCaptureSessionCancelled)
		e.auditEmit(AuditEvent{EventType: "capture_cancelled", Success: true})
	}
}

// CaptureSession describes the capturesession operation and its observable behavior.
func (e *Engine) CaptureSession() *capture.Orchestrator {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orch
}

// SubmitCaptures describes the submitcaptures operation and its observable behavior.
//
// SubmitCaptures may return an error when input validation, dependency calls, or security checks fail.
// SubmitCaptures does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// One submission is in flight at a time; a second call while the first runs
// fails with ErrSubmissionInFlight. Failures are classified onto the
// canonical taxonomy and counted toward the fallback trigger.
func (e *Engine) SubmitCaptures(ctx context.Context) (*AuthResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	e.mu.Lock()
	if e.orch == nil {
		e.mu.Unlock()
		return nil, ErrNoCaptureSession
	}
	if e.processing {
		e.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}

	mode := e.captureMode
	email := e.captureEmail
	orch := e.orch
	session := orch.Session()

	required := session.Sequencer().Len()
	if session.Sequencer().CompletedCount() < required {
		e.mu.Unlock()
		return nil, ErrCaptureIncomplete
	}

	e.processing = true
	orch.SetProcessing(true)
	e.mu.Unlock()

	start := e.now()
	images := session.Images()
	result, err := e.dispatchSubmission(ctx, mode, email, images)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.processing = false
	orch.SetProcessing(false)
	if e.metrics != nil {
		e.metrics.Observe(MetricSubmitLatency, e.now().Sub(start))
	}

	if err == nil && result != nil && !result.Success {
		// Backend rejections arrive as a failed result, not a transport
		// error. Fold them into the same classification path.
		err = resultFailure(result, e.now())
	}

	if err != nil {
		authErr := Classify(err, e.now())
		triggered := e.recordAuthFailureLocked(authErr)
		e.setErrorMessageLocked(authErr)
		e.metricInc(MetricSubmissionFailure)
		e.auditEmit(AuditEvent{
			EventType: "submission_failed",
			Mode:      string(mode),
			SessionID: session.ID,
			Code:      string(authErr.Code),
			Error:     authErr.Error(),
			Metadata:  map[string]string{"fallback_triggered": boolString(triggered)},
		})
		e.log.Warn("capture submission failed",
			zap.String("mode", string(mode)),
			zap.String("code", string(authErr.Code)),
			zap.Bool("fallback_eligible", authErr.RequiresFallback),
		)
		return nil, authErr
	}

	e.fallback.consecutiveFailures = 0
	e.setMessageLocked(MessageSuccess, successMessage(mode), "")
	e.metricInc(MetricSubmissionSuccess)
	e.auditEmit(AuditEvent{
		EventType: "submission_succeeded",
		Mode:      string(mode),
		UserID:    result.UserID,
		SessionID: session.ID,
		Success:   true,
	})

	return result, nil
}

func (e *Engine) dispatchSubmission(ctx context.Context, mode AuthMode, email string, images [][]byte) (*AuthResult, error) {
	switch mode {
	case ModeRegister:
		return e.face.Register(ctx, email, images)
	case ModeLogin:
		return e.face.Login(ctx, email, images)
	case ModeIdentify:
		return e.face.Identify(ctx, images)
	case ModeVerify:
		return e.face.Verify(ctx, email, images)
	default:
		return nil, ErrInvalidMode
	}
}

// resultFailure turns a rejected AuthResult into a classifiable error,
// honoring the backend's explicit fallback request.
func resultFailure(result *AuthResult, now time.Time) error {
	msg := result.Message
	if msg == "" {
		msg = "authentication failed"
	}
	authErr := Classify(errMessage(msg), now)
	if result.RequiresFallback {
		authErr.RequiresFallback = true
	}
	return authErr
}

type errMessage string

func (m errMessage) Error() string { return string(m) }

func successMessage(mode AuthMode) string {
	switch mode {
	case ModeRegister:
		return "Face registered successfully. You can now sign in."
	case ModeLogin:
		return "Welcome back. Signed in successfully."
	case ModeIdentify:
		return "Identity confirmed."
	case ModeVerify:
		return "Verification complete."
	default:
		return "Success."
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
