package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiterRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("test environment bypasses the limiter", func(t *testing.T) {
		t.Setenv("APP_ENV", "test")
		allowed, err := CheckRateLimit(ctx, nil, "signup", "ip:1.2.3.4", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("counts hits within the window", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := newLimiterRedis(t)

		for i := 0; i < 2; i++ {
			allowed, err := CheckRateLimit(ctx, rdb, "signup", "ip:1.2.3.4", 2, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := CheckRateLimit(ctx, rdb, "signup", "ip:1.2.3.4", 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		mr, rdb := newLimiterRedis(t)

		allowed, err := CheckRateLimit(ctx, rdb, "login", "user:7", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = CheckRateLimit(ctx, rdb, "login", "user:7", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		mr.FastForward(2 * time.Minute)

		allowed, err = CheckRateLimit(ctx, rdb, "login", "user:7", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("separate resources carry separate budgets", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := newLimiterRedis(t)

		allowed, err := CheckRateLimit(ctx, rdb, "signup", "ip:9.9.9.9", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:9.9.9.9", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("nil redis errors in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		allowed, err := CheckRateLimit(ctx, nil, "signup", "ip:1.2.3.4", 1, time.Minute)
		assert.Error(t, err)
		assert.False(t, allowed)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	newApp := func(handler fiber.Handler) *fiber.App {
		app := fiber.New()
		app.Get("/limited", handler, func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		return app
	}

	t.Run("rejects once over limit", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := newLimiterRedis(t)
		app := newApp(RateLimit(rdb, 1, time.Minute))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("fails open with nil redis", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		app := newApp(RateLimit(nil, 1, time.Minute))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("fails closed when asked to", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		app := newApp(RateLimitWithPolicy(nil, 1, time.Minute, FailClosed))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
