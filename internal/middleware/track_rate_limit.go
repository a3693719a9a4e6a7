package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"storefront_dev_v1/pkg/logger"
)

// ==================== 埋点限流 ====================

const trackLimitedKey = "track_limited"

// TrackLimiter 按客户端 IP 对埋点接口限流
// IP 取 c.ClientIP()，只有 engine.SetTrustedProxies 配置的代理才会被信任转发头
type TrackLimiter struct {
	instance *limiter.Limiter
}

// NewTrackRateLimiter rate 为 ulule 格式（如 "120-M"），client 为 nil 时使用进程内计数
func NewTrackRateLimiter(rate string, client *redis.Client) (*TrackLimiter, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("无效的限流配置 %q: %w", rate, err)
	}

	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   "storefront:track",
			MaxRetry: 3,
		})
		if err != nil {
			return nil, fmt.Errorf("创建 Redis 限流存储失败: %w", err)
		}
	} else {
		store = memory.NewStore()
	}

	return &TrackLimiter{instance: limiter.New(store, r)}, nil
}

// Enforce 超限直接返回 429（浏览 / 访问埋点）
func (l *TrackLimiter) Enforce() gin.HandlerFunc {
	return mgin.NewMiddleware(l.instance,
		mgin.WithKeyGetter(func(c *gin.Context) string { return c.ClientIP() }),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
		}),
	)
}

// Mark 超限只打标记，请求继续执行（点击跳转不能被拦下）
func (l *TrackLimiter) Mark() gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := l.instance.Get(c.Request.Context(), "click:"+c.ClientIP())
		if err != nil {
			logger.S().Warnf("[Track] 限流计数失败: %v", err)
		} else if res.Reached {
			c.Set(trackLimitedKey, true)
		}
		c.Next()
	}
}

// TrackLimited 当前请求是否已超限
func TrackLimited(c *gin.Context) bool {
	return c.GetBool(trackLimitedKey)
}
