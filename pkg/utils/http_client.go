package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewHTTPClient 创建统一配置的 Resty 客户端（超时、UA、重试）
// 出站调用（邮件服务等）都从这里拿客户端
func NewHTTPClient(timeout time.Duration, debug bool) *resty.Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return resty.New().
		SetDebug(debug).
		SetTimeout(timeout).
		SetHeader("User-Agent", "Storefront-Go/1.0").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// 网络错误或 5xx 重试
			return err != nil || r.StatusCode() >= 500
		})
}
