package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"echoboard/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when the rate limit store
// cannot be reached.
type FailPolicy int

const (
	// FailOpen lets the request through when Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed rejects the request with 503 when Redis is unavailable.
	FailClosed
)

// limiterBypassed reports whether rate limiting is switched off for the
// current environment. Test and development runs are never throttled.
func limiterBypassed() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return true
	}
	return false
}

// CheckRateLimit counts a hit against resource/id and reports whether the
// caller is still under limit for the window. The counter lives in Redis
// under a fixed window keyed by resource and caller identity.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if limiterBypassed() {
		return true, nil
	}
	if rdb == nil {
		return false, fmt.Errorf("rate limit store not configured")
	}

	key := fmt.Sprintf("ratelimit:%s:%s", resource, id)
	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		rdb.Expire(ctx, key, window)
	}
	return count <= int64(limit), nil
}

// RateLimit enforces limit requests per window per caller, failing open when
// Redis is down. Authenticated callers are keyed by user ID, anonymous ones
// by remote IP. An optional name overrides the request path as the counter's
// resource label, so signup and login can carry separate budgets.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit failure policy for
// endpoints where letting traffic through unmetered is worse than a 503.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				observability.Logger.Warn("rate limit store unavailable, rejecting",
					slog.String("resource", resource), slog.String("error", err.Error()))
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "Rate limiting unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, slow down",
			})
		}
		return c.Next()
	}
}
