package task

import (
	"context"

	"storefront_dev_v1/pkg/logger"
)

// TokenPurger 清理过期登录令牌
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// TokenCleanupTask 删除过期或已使用的登录链接令牌
type TokenCleanupTask struct {
	purger TokenPurger
}

func NewTokenCleanupTask(purger TokenPurger) *TokenCleanupTask {
	return &TokenCleanupTask{purger: purger}
}

func (t *TokenCleanupTask) Name() string { return "token_cleanup" }

func (t *TokenCleanupTask) Run(ctx context.Context) error {
	n, err := t.purger.PurgeExpiredTokens(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.S().Infof("[Task] 清理登录令牌 %d 条", n)
	}
	return nil
}
