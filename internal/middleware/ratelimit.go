package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/yamdb/internal/config"
)

// tokenBucket takes one token from the bucket at KEYS[1] after adding
// the refills owed since the last whole interval. The hash keeps the
// tokens left and the start of the current interval.
//
// ARGV: now_ms, capacity, refill, interval_ms, ttl_s.
// Reply: {allowed (0|1), tokens left, ms until the next refill}.
var tokenBucket = redis.NewScript(`
local now, cap, refill, every, ttl =
  tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local left = tonumber(redis.call('HGET', KEYS[1], 'left') or cap)
local since = tonumber(redis.call('HGET', KEYS[1], 'since') or now)

if every > 0 and now > since then
  local n = math.floor((now - since) / every)
  left = math.min(cap, left + n * refill)
  since = since + n * every
end

local ok, wait = 0, 0
if left >= 1 then
  ok, left = 1, left - 1
elseif every > 0 then
  wait = math.max(0, since + every - now)
end

redis.call('HSET', KEYS[1], 'left', left, 'since', since)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, left, wait}
`)

// NewTokenBucket limits requests with a Redis-backed token bucket. With
// the limiter disabled or no Redis client it passes every request
// through; Redis errors also fail open.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			ctx := c.Request().Context()
			l := zerolog.Ctx(ctx)

			reply, err := tokenBucket.Run(ctx, rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Int64Slice()
			if err == nil && len(reply) != 3 {
				err = fmt.Errorf("unexpected reply %v", reply)
			}
			if err != nil {
				l.Warn().Err(err).Str("key", key).Msg("ratelimit: redis error")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(reply[1], 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if reply[0] == 1 {
				return next(c)
			}

			secs := retryAfterSeconds(reply[2])
			h.Set("Retry-After", strconv.Itoa(secs))
			l.Debug().Str("key", key).Int64("retry_ms", reply[2]).Msg("ratelimit: blocked")
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

// retryAfterSeconds rounds a wait up to whole seconds for Retry-After.
func retryAfterSeconds(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := userID(c)
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", uid)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", uid, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
