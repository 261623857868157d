// Command avfacepay-sim drives the full authentication flow against
// in-process simulated services: a synthetic camera feed, a face backend
// with a configurable failure rate, and an OTP backend that accepts a fixed
// code. It exists to exercise the capture state machine and the fallback
// path end to end without a browser or a real provider.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	avfacepay "github.com/Handavipul/avfacePay"
	"github.com/Handavipul/avfacePay/capture"
)

func main() {
	pflag.Int("iterations", 20, "number of login attempts to simulate")
	pflag.Float64("failure-rate", 0.4, "probability that a face submission fails")
	pflag.Int64("seed", 0, "random seed; 0 means time-based")
	pflag.String("redis-addr", "", "redis address; empty starts an embedded miniredis")
	pflag.String("config", "", "optional config file (yaml)")
	pflag.Bool("debug", false, "debug logging")
	pflag.Parse()

	v := viper.New()
	if err := v.BindPFlags(pflag.CommandLine); err != nil {
		fmt.Fprintf(os.Stderr, "bind flags: %v\n", err)
		os.Exit(2)
	}
	v.SetEnvPrefix("AVFACEPAY_SIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "read config: %v\n", err)
			os.Exit(2)
		}
	}

	logCfg := zap.NewDevelopmentConfig()
	if !v.GetBool("debug") {
		logCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	log, err := logCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(v, log); err != nil {
		log.Fatal("simulation failed", zap.Error(err))
	}
}

func run(v *viper.Viper, log *zap.Logger) error {
	seed := v.GetInt64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	log.Info("starting simulation",
		zap.Int("iterations", v.GetInt("iterations")),
		zap.Float64("failure_rate", v.GetFloat64("failure-rate")),
		zap.Int64("seed", seed),
	)

	client, cleanup, err := openRedis(v.GetString("redis-addr"), log)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := avfacepay.DefaultConfig()
	// Compressed timings so a run finishes in seconds, same state machine.
	cfg.Capture.DetectionInterval = 20 * time.Millisecond
	cfg.Capture.StabilityThreshold = 200 * time.Millisecond
	cfg.Capture.CountdownInterval = 100 * time.Millisecond
	cfg.Recovery.Enabled = true
	cfg.Audit.Enabled = true
	cfg.OTP.EnableRequestThrottle = true
	cfg.OTP.MaxRequestsPerWindow = 1 << 20 // throttle wired but effectively off

	face := &simFaceService{rng: rng, failureRate: v.GetFloat64("failure-rate")}
	otp := &simOTPService{}

	engine, err := avfacepay.New().
		WithConfig(cfg).
		WithRedis(client).
		WithLogger(log.Named("engine")).
		WithFaceService(face).
		WithOTPService(otp).
		WithAuditSink(avfacepay.NoOpSink{}).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	var primary, fallback, failed int
	for i := 0; i < v.GetInt("iterations"); i++ {
		switch err := runLogin(engine, rng, log); {
		case err == nil:
			primary++
		case errors.Is(err, errRecoveredViaOTP):
			fallback++
		default:
			failed++
			log.Warn("attempt failed outright", zap.Int("iteration", i), zap.Error(err))
		}
	}

	snap := engine.MetricsSnapshot()
	log.Info("simulation done",
		zap.Int("primary_success", primary),
		zap.Int("fallback_success", fallback),
		zap.Int("failed", failed),
		zap.Uint64("submissions_ok", snap.Counters[avfacepay.MetricSubmissionSuccess]),
		zap.Uint64("submissions_failed", snap.Counters[avfacepay.MetricSubmissionFailure]),
		zap.Uint64("fallbacks_triggered", snap.Counters[avfacepay.MetricFallbackTriggered]),
		zap.Uint64("otp_verified", snap.Counters[avfacepay.MetricOTPVerifySuccess]),
		zap.Uint64("audit_dropped", engine.AuditDropped()),
	)
	return nil
}

var errRecoveredViaOTP = errors.New("recovered via otp")

// runLogin performs one capture-submit cycle and, when the submission fails,
// walks the OTP fallback to completion.
func runLogin(engine *avfacepay.Engine, rng *rand.Rand, log *zap.Logger) error {
	src := newSimCamera(rng)
	orch, err := engine.StartCapture(avfacepay.ModeLogin, "sim@avfacepay.test", src)
	if err != nil {
		return err
	}
	defer engine.CancelCapture()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	go func() { _ = orch.Run(ctx) }()

	if err := waitForCapture(ctx, orch); err != nil {
		return err
	}

	if _, err := engine.SubmitCaptures(ctx); err != nil {
		var authErr *avfacepay.AuthError
		if !errors.As(err, &authErr) {
			return err
		}
		log.Debug("primary auth failed", zap.String("code", string(authErr.Code)))
		return recoverWithOTP(ctx, engine)
	}
	return nil
}

func waitForCapture(ctx context.Context, orch *capture.Orchestrator) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-orch.Events():
			if !ok {
				return capture.ErrOrchestratorClosed
			}
			switch event.Type {
			case capture.EventAllComplete:
				return nil
			case capture.EventError:
				if event.Err != nil {
					return event.Err
				}
			}
		}
	}
}

func recoverWithOTP(ctx context.Context, engine *avfacepay.Engine) error {
	if _, err := engine.TriggerFallback(ctx, avfacepay.OTPMethodEmail, "sim@avfacepay.test"); err != nil {
		return err
	}
	if _, err := engine.VerifyOTP(ctx, simOTPCode); err != nil {
		return err
	}
	return errRecoveredViaOTP
}

func openRedis(addr string, log *zap.Logger) (*redis.Client, func(), error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		log.Info("using embedded miniredis", zap.String("addr", mr.Addr()))
		return client, func() { _ = client.Close(); mr.Close() }, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	log.Info("using redis", zap.String("addr", addr))
	return client, func() { _ = client.Close() }, nil
}

/*
====================================
SIMULATED CAMERA
====================================
*/

// simCamera produces a face that starts off-center and drifts toward the
// guide, with occasional detection dropouts so the dwell logic gets
// exercised.
type simCamera struct {
	mu    sync.Mutex
	rng   *rand.Rand
	x, y  float64
	frame []byte
}

func newSimCamera(rng *rand.Rand) *simCamera {
	return &simCamera{
		rng: rng,
		x:   120 + rng.Float64()*80,
		y:   90 + rng.Float64()*60,
	}
}

func (c *simCamera) Start() (int, int, error) {
	frame, err := encodeTestJPEG()
	if err != nil {
		return 0, 0, err
	}
	c.frame = frame
	return 640, 480, nil
}

func (c *simCamera) Detect() (*capture.Detection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rng.Float64() < 0.02 {
		return nil, nil // dropout
	}
	// Drift toward the frame center.
	c.x += (320 - c.x) * 0.3
	c.y += (240 - c.y) * 0.3
	return &capture.Detection{
		X:          c.x - 30,
		Y:          c.y - 30,
		Width:      60,
		Height:     60,
		Confidence: 0.85 + c.rng.Float64()*0.1,
	}, nil
}

func (c *simCamera) Frame() ([]byte, error) { return c.frame, nil }

func (c *simCamera) Stop() {}

func encodeTestJPEG() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 96, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

/*
====================================
SIMULATED BACKENDS
====================================
*/

const simOTPCode = "424242"

type simFaceService struct {
	mu          sync.Mutex
	rng         *rand.Rand
	failureRate float64
}

func (s *simFaceService) fail() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.failureRate
}

func (s *simFaceService) Login(_ context.Context, email string, images [][]byte) (*avfacepay.AuthResult, error) {
	if len(images) == 0 {
		return nil, errors.New("no images")
	}
	if s.fail() {
		return &avfacepay.AuthResult{Success: false, Message: "face recognition failed", RequiresFallback: true}, nil
	}
	return &avfacepay.AuthResult{Success: true, UserID: "sim-user", Email: email, Token: "sim-token", Confidence: 0.97}, nil
}

func (s *simFaceService) Register(ctx context.Context, email string, images [][]byte) (*avfacepay.AuthResult, error) {
	return s.Login(ctx, email, images)
}

func (s *simFaceService) Identify(ctx context.Context, images [][]byte) (*avfacepay.AuthResult, error) {
	return s.Login(ctx, "sim@avfacepay.test", images)
}

func (s *simFaceService) Verify(ctx context.Context, email string, images [][]byte) (*avfacepay.AuthResult, error) {
	return s.Login(ctx, email, images)
}

func (s *simFaceService) ValidateEmail(context.Context, string) (bool, error) { return true, nil }

func (s *simFaceService) CurrentUser(context.Context) (*avfacepay.UserProfile, error) {
	return &avfacepay.UserProfile{UserID: "sim-user", Email: "sim@avfacepay.test"}, nil
}

type simOTPService struct {
	mu     sync.Mutex
	nextID int
}

func (s *simOTPService) Request(_ context.Context, req avfacepay.OTPRequest) (*avfacepay.OTPSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return &avfacepay.OTPSession{
		ID:        fmt.Sprintf("sim-otp-%d", s.nextID),
		Method:    req.Method,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}, nil
}

func (s *simOTPService) Verify(_ context.Context, sessionID, code string) (*avfacepay.OTPVerification, error) {
	if code != simOTPCode {
		return &avfacepay.OTPVerification{Verified: false}, nil
	}
	return &avfacepay.OTPVerification{Verified: true, UserID: "sim-user", Token: "sim-token"}, nil
}

func (s *simOTPService) Resend(context.Context, string) error { return nil }

func (s *simOTPService) Cancel(context.Context, string) error { return nil }

func (s *simOTPService) Status(_ context.Context, sessionID string) (*avfacepay.OTPSessionStatus, error) {
	return &avfacepay.OTPSessionStatus{SessionID: sessionID, Active: true}, nil
}
