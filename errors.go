package avfacepay

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the payment authentication engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrCaptureSessionActive is an exported constant or variable used by the payment authentication engine.
	ErrCaptureSessionActive = errors.New("capture session already active")
	// ErrNoCaptureSession is an exported constant or variable used by the payment authentication engine.
	ErrNoCaptureSession = errors.New("no active capture session")
	// ErrCaptureIncomplete is an exported constant or variable used by the payment authentication engine.
	ErrCaptureIncomplete = errors.New("capture sequence incomplete")
	// ErrSubmissionInFlight is an exported constant or variable used by the payment authentication engine.
	ErrSubmissionInFlight = errors.New("submission already in flight")
	// ErrEmailRequired is an exported constant or variable used by the payment authentication engine.
	ErrEmailRequired = errors.New("email required for this mode")
	// ErrInvalidMode is an exported constant or variable used by the payment authentication engine.
	ErrInvalidMode = errors.New("invalid authentication mode")
	// ErrFallbackNotActive is an exported constant or variable used by the payment authentication engine.
	ErrFallbackNotActive = errors.New("fallback authentication not active")
	// ErrNoOTPSession is an exported constant or variable used by the payment authentication engine.
	ErrNoOTPSession = errors.New("no active otp session")
	// ErrOTPLocked is an exported constant or variable used by the payment authentication engine.
	ErrOTPLocked = errors.New("otp verification locked")
	// ErrOTPAttemptsExceeded is an exported constant or variable used by the payment authentication engine.
	ErrOTPAttemptsExceeded = errors.New("otp attempts exceeded")
	// ErrOTPInvalidCode is an exported constant or variable used by the payment authentication engine.
	ErrOTPInvalidCode = errors.New("invalid otp code")
	// ErrOTPResendCooldown is an exported constant or variable used by the payment authentication engine.
	ErrOTPResendCooldown = errors.New("otp resend cooldown active")
	// ErrOTPRequestRateLimited is an exported constant or variable used by the payment authentication engine.
	ErrOTPRequestRateLimited = errors.New("otp request rate limited")
	// ErrOTPMethodInvalid is an exported constant or variable used by the payment authentication engine.
	ErrOTPMethodInvalid = errors.New("invalid otp delivery method")
	// ErrOTPDestinationRequired is an exported constant or variable used by the payment authentication engine.
	ErrOTPDestinationRequired = errors.New("otp destination required")
	// ErrCheckoutUnavailable is an exported constant or variable used by the payment authentication engine.
	ErrCheckoutUnavailable = errors.New("checkout provider unavailable")
	// ErrRedirectUnresolved is an exported constant or variable used by the payment authentication engine.
	ErrRedirectUnresolved = errors.New("redirect parameters unresolved")
	// ErrMandateRequired is an exported constant or variable used by the payment authentication engine.
	ErrMandateRequired = errors.New("recurring payment requires a mandate")
	// ErrConfigInvalid is an exported constant or variable used by the payment authentication engine.
	ErrConfigInvalid = errors.New("invalid engine configuration")
	// ErrRedisRequired is an exported constant or variable used by the payment authentication engine.
	ErrRedisRequired = errors.New("redis client required for the enabled features")
	// ErrFaceServiceRequired is an exported constant or variable used by the payment authentication engine.
	ErrFaceServiceRequired = errors.New("face service required")
	// ErrOTPServiceRequired is an exported constant or variable used by the payment authentication engine.
	ErrOTPServiceRequired = errors.New("otp service required")
)
