package avfacepay

import (
	"fmt"
	"time"
)

// Config defines a public type used by avfacePay APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Capture  CaptureConfig
	Fallback FallbackConfig
	OTP      OTPConfig
	Messages MessageConfig
	Checkout CheckoutConfig
	Recovery RecoveryConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
CAPTURE CONFIG
====================================
*/

// CaptureConfig defines a public type used by avfacePay APIs.
//
// CaptureConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CaptureConfig struct {
	DetectionInterval  time.Duration
	StabilityThreshold time.Duration
	AlignmentThreshold float64
	CountdownStart     int
	CountdownInterval  time.Duration
	AutoCapture        bool
	MirrorFrames       bool
	EventBuffer        int
}

/*
====================================
FALLBACK CONFIG
====================================
*/

// FallbackConfig defines a public type used by avfacePay APIs.
//
// FallbackConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FallbackConfig struct {
	// AutoTriggerThreshold is the consecutive primary-auth failure count at
	// which fallback triggers regardless of the failure code.
	AutoTriggerThreshold int
	DefaultMethod        OTPMethod
	Purpose              string
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig defines a public type used by avfacePay APIs.
//
// OTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPConfig struct {
	MaxAttempts     int
	LockoutDuration time.Duration
	ResendCooldown  time.Duration

	// Fixed-window request limiter, Redis-backed. Disabled when redis is
	// absent or EnableRequestThrottle is false.
	EnableRequestThrottle bool
	RequestWindow         time.Duration
	MaxRequestsPerWindow  int
}

/*
====================================
MESSAGE CONFIG
====================================
*/

// MessageConfig defines a public type used by avfacePay APIs.
//
// MessageConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MessageConfig struct {
	ErrorTTL   time.Duration
	SuccessTTL time.Duration
	InfoTTL    time.Duration
}

/*
====================================
CHECKOUT CONFIG
====================================
*/

// CheckoutConfig defines a public type used by avfacePay APIs.
//
// CheckoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CheckoutConfig struct {
	RedirectURL  string
	WebhookURL   string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

/*
====================================
RECOVERY CONFIG
====================================
*/

// RecoveryConfig defines a public type used by avfacePay APIs.
//
// RecoveryConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RecoveryConfig struct {
	Enabled     bool
	RedisPrefix string
	TTL         time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by avfacePay APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by avfacePay APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return Config{
		Capture: CaptureConfig{
			DetectionInterval:  100 * time.Millisecond,
			StabilityThreshold: 2 * time.Second,
			AlignmentThreshold: 80,
			CountdownStart:     3,
			CountdownInterval:  time.Second,
			AutoCapture:        true,
			MirrorFrames:       true,
			EventBuffer:        32,
		},
		Fallback: FallbackConfig{
			AutoTriggerThreshold: 2,
			DefaultMethod:        OTPMethodEmail,
			Purpose:              "login_fallback",
		},
		OTP: OTPConfig{
			MaxAttempts:           3,
			LockoutDuration:       5 * time.Minute,
			ResendCooldown:        60 * time.Second,
			EnableRequestThrottle: false,
			RequestWindow:         time.Hour,
			MaxRequestsPerWindow:  10,
		},
		Messages: MessageConfig{
			ErrorTTL:   8 * time.Second,
			SuccessTTL: 3 * time.Second,
			InfoTTL:    3 * time.Second,
		},
		Checkout: CheckoutConfig{
			PollInterval: 2 * time.Second,
			PollTimeout:  2 * time.Minute,
		},
		Recovery: RecoveryConfig{
			Enabled:     false,
			RedisPrefix: "afp:redir",
			TTL:         30 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Capture.DetectionInterval <= 0 {
		return fmt.Errorf("%w: capture detection interval must be positive", ErrConfigInvalid)
	}
	if c.Capture.StabilityThreshold <= 0 {
		return fmt.Errorf("%w: capture stability threshold must be positive", ErrConfigInvalid)
	}
	if c.Capture.AlignmentThreshold <= 0 {
		return fmt.Errorf("%w: capture alignment threshold must be positive", ErrConfigInvalid)
	}
	if c.Capture.CountdownStart <= 0 {
		return fmt.Errorf("%w: capture countdown start must be positive", ErrConfigInvalid)
	}
	if c.Capture.CountdownInterval <= 0 {
		return fmt.Errorf("%w: capture countdown interval must be positive", ErrConfigInvalid)
	}
	if c.Fallback.AutoTriggerThreshold <= 0 {
		return fmt.Errorf("%w: fallback auto-trigger threshold must be positive", ErrConfigInvalid)
	}
	if !c.Fallback.DefaultMethod.valid() {
		return fmt.Errorf("%w: fallback default method must be sms or email", ErrConfigInvalid)
	}
	if c.OTP.MaxAttempts <= 0 {
		return fmt.Errorf("%w: otp max attempts must be positive", ErrConfigInvalid)
	}
	if c.OTP.LockoutDuration <= 0 {
		return fmt.Errorf("%w: otp lockout duration must be positive", ErrConfigInvalid)
	}
	if c.OTP.ResendCooldown <= 0 {
		return fmt.Errorf("%w: otp resend cooldown must be positive", ErrConfigInvalid)
	}
	if c.OTP.EnableRequestThrottle {
		if c.OTP.RequestWindow <= 0 {
			return fmt.Errorf("%w: otp request window must be positive", ErrConfigInvalid)
		}
		if c.OTP.MaxRequestsPerWindow <= 0 {
			return fmt.Errorf("%w: otp max requests per window must be positive", ErrConfigInvalid)
		}
	}
	if c.Messages.ErrorTTL <= 0 || c.Messages.SuccessTTL <= 0 || c.Messages.InfoTTL <= 0 {
		return fmt.Errorf("%w: message ttls must be positive", ErrConfigInvalid)
	}
	if c.Recovery.Enabled {
		if c.Recovery.RedisPrefix == "" {
			return fmt.Errorf("%w: recovery redis prefix required", ErrConfigInvalid)
		}
		if c.Recovery.TTL <= 0 {
			return fmt.Errorf("%w: recovery ttl must be positive", ErrConfigInvalid)
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%w: audit buffer size must be positive", ErrConfigInvalid)
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}
