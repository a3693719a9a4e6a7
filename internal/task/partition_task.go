package task

import (
	"context"
	"fmt"

	"storefront_dev_v1/pkg/logger"
)

// PartitionMaintainer 事件表分区维护
type PartitionMaintainer interface {
	EnsureFuturePartitions(ctx context.Context, monthsAhead int) error
	CleanupExpiredPartitions(ctx context.Context) (int, error)
}

// PartitionTask 预建未来月份分区并删除超出保留期的分区
type PartitionTask struct {
	manager     PartitionMaintainer
	monthsAhead int
}

func NewPartitionTask(manager PartitionMaintainer, monthsAhead int) *PartitionTask {
	if monthsAhead <= 0 {
		monthsAhead = 3
	}
	return &PartitionTask{manager: manager, monthsAhead: monthsAhead}
}

func (t *PartitionTask) Name() string { return "partition_maintenance" }

// Run 先建后删；建分区失败不影响清理
func (t *PartitionTask) Run(ctx context.Context) error {
	ensureErr := t.manager.EnsureFuturePartitions(ctx, t.monthsAhead)

	dropped, err := t.manager.CleanupExpiredPartitions(ctx)
	if err != nil {
		return fmt.Errorf("清理分区: %w", err)
	}
	if dropped > 0 {
		logger.S().Infof("[Task] 删除过期分区 %d 个", dropped)
	}
	if ensureErr != nil {
		return fmt.Errorf("创建分区: %w", ensureErr)
	}
	return nil
}
