package avfacepay

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var errOTPLimiterUnavailable = errors.New("otp request limiter unavailable")

// otpRequestLimiter throttles OTP delivery per destination with a Redis
// fixed window, so a stuck retry loop cannot drain an SMS budget.
type otpRequestLimiter struct {
	redis  *redis.Client
	config OTPConfig
}

func newOTPRequestLimiter(redisClient *redis.Client, cfg OTPConfig) *otpRequestLimiter {
	return &otpRequestLimiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Check describes the check operation and its observable behavior.
//
// Check may return an error when input validation, dependency calls, or security checks fail.
// Check does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (l *otpRequestLimiter) Check(ctx context.Context, destination string) error {
	key := otpRequestKey(destination)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errOTPLimiterUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.RequestWindow).Err(); err != nil {
			return fmt.Errorf("%w: %v", errOTPLimiterUnavailable, err)
		}
	}

	if count > int64(l.config.MaxRequestsPerWindow) {
		return ErrOTPRequestRateLimited
	}

	return nil
}

func otpRequestKey(destination string) string {
	return "afp:otpreq:" + destination
}
