package avfacepay

import (
	"go.uber.org/zap"

	"github.com/Handavipul/avfacePay/capture"

	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by avfacePay APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client
	clock  capture.Clock
	logger *zap.Logger

	face     FaceService
	otp      OTPService
	payments PaymentService
	checkout CheckoutService

	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithClock describes the withclock operation and its observable behavior.
func (b *Builder) WithClock(clock capture.Clock) *Builder {
	b.clock = clock
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.logger = log
	return b
}

// WithFaceService describes the withfaceservice operation and its observable behavior.
func (b *Builder) WithFaceService(svc FaceService) *Builder {
	b.face = svc
	return b
}

// WithOTPService describes the withotpservice operation and its observable behavior.
func (b *Builder) WithOTPService(svc OTPService) *Builder {
	b.otp = svc
	return b
}

// WithPaymentService describes the withpaymentservice operation and its observable behavior.
func (b *Builder) WithPaymentService(svc PaymentService) *Builder {
	b.payments = svc
	return b
}

// WithCheckoutService describes the withcheckoutservice operation and its observable behavior.
func (b *Builder) WithCheckoutService(svc CheckoutService) *Builder {
	b.checkout = svc
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrEngineNotReady
	}

	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.face == nil {
		return nil, ErrFaceServiceRequired
	}
	if b.otp == nil {
		return nil, ErrOTPServiceRequired
	}
	if b.redis == nil && (b.config.Recovery.Enabled || b.config.OTP.EnableRequestThrottle) {
		return nil, ErrRedisRequired
	}

	clock := b.clock
	if clock == nil {
		clock = capture.RealClock()
	}
	log := b.logger
	if log == nil {
		log = zap.NewNop()
	}

	e := &Engine{
		config:   b.config,
		clock:    clock,
		log:      log,
		face:     b.face,
		otp:      b.otp,
		payments: b.payments,
		checkout: b.checkout,
		audit:    newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics:  NewMetrics(b.config.Metrics),
	}
	e.fallback.method = b.config.Fallback.DefaultMethod

	if b.config.Recovery.Enabled {
		e.recovery = newRedirectRecoveryStore(b.redis, b.config.Recovery)
	}
	if b.config.OTP.EnableRequestThrottle {
		e.otpLimiter = newOTPRequestLimiter(b.redis, b.config.OTP)
	}

	b.built = true
	return e, nil
}
