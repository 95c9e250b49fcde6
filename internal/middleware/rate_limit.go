package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// MutationRateLimit throttles balance-mutating requests per account id (falling
// back to the client IP) using Redis if available.
func MutationRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 30
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}
		key := strings.TrimSpace(c.Params("accountId"))
		if key == "" {
			key = c.IP()
		}
		cacheKey := "rl:txn:" + key
		cnt, err := cache.Incr(c.UserContext(), cacheKey).Result()
		if err == nil && cnt == 1 {
			cache.Expire(c.UserContext(), cacheKey, time.Minute)
		}
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many transactions, try again later")
		}
		return c.Next()
	}
}
