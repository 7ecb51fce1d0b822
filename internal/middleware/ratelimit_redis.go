// internal/middleware/ratelimit_redis.go
package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/placement-backend/internal/utils"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter is a fixed-window counter shared by every server instance.
// A nil limiter or an unreachable Redis allows all requests.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(rateLimitScript),
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if l == nil || l.client == nil {
		return true
	}
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{key}, ttl, limit).Int64()
	if err != nil {
		logrus.WithError(err).Debug("Rate limit check skipped")
		return true
	}
	return allowed == 1
}

// PerUser limits an authenticated route per caller. Mount it after
// AuthRequired.
func (l *RedisLimiter) PerUser(name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		identity, ok := utils.GetIdentityFromContext(c)
		if !ok {
			c.Next()
			return
		}
		key := fmt.Sprintf("placement:ratelimit:%s:%s", name, identity.UserID)
		if !l.Allow(c.Request.Context(), key, limit, window) {
			tooManyRequests(c)
			return
		}
		c.Next()
	}
}
