package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"storefront_dev_v1/pkg/logger"
)

// ==================== TaskManager 定时任务管理器 ====================

// Job 定时任务
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// TaskManager 统一管理后台维护任务（分区维护、登录令牌清理）
type TaskManager struct {
	cron    *cron.Cron
	timeout time.Duration

	mu      sync.Mutex
	jobs    map[string]Job
	running map[string]bool
}

// NewTaskManager 创建任务管理器，cron 表达式支持秒级
func NewTaskManager() *TaskManager {
	return &TaskManager{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		timeout: 5 * time.Minute,
		jobs:    make(map[string]Job),
		running: make(map[string]bool),
	}
}

// Register 注册任务；cronExpr 为空表示不调度，只能手动触发
func (tm *TaskManager) Register(cronExpr string, job Job) error {
	tm.mu.Lock()
	if _, exists := tm.jobs[job.Name()]; exists {
		tm.mu.Unlock()
		return fmt.Errorf("任务 %s 已注册", job.Name())
	}
	tm.jobs[job.Name()] = job
	tm.mu.Unlock()

	if cronExpr == "" {
		return nil
	}
	if _, err := tm.cron.AddFunc(cronExpr, func() { _ = tm.run(job) }); err != nil {
		tm.mu.Lock()
		delete(tm.jobs, job.Name())
		tm.mu.Unlock()
		return fmt.Errorf("任务 %s 的 cron 表达式无效 %q: %w", job.Name(), cronExpr, err)
	}
	logger.S().Infof("[TaskManager] 已注册任务 %s (%s)", job.Name(), cronExpr)
	return nil
}

// run 执行一次；同一任务上一轮未结束时跳过
func (tm *TaskManager) run(job Job) error {
	name := job.Name()
	tm.mu.Lock()
	if tm.running[name] {
		tm.mu.Unlock()
		logger.S().Warnf("[TaskManager] 任务 %s 上一轮仍在执行，跳过", name)
		return ErrTaskRunning
	}
	tm.running[name] = true
	tm.mu.Unlock()

	defer func() {
		tm.mu.Lock()
		delete(tm.running, name)
		tm.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), tm.timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		logger.S().Errorf("[TaskManager] 任务 %s 失败: %v", name, err)
		return err
	}
	logger.S().Infof("[TaskManager] 任务 %s 完成，耗时 %v", name, time.Since(start))
	return nil
}

// ==================== 生命周期管理 ====================

// Start 启动调度
func (tm *TaskManager) Start() {
	tm.cron.Start()
	logger.S().Infof("[TaskManager] 定时任务已启动，共 %d 个", len(tm.cron.Entries()))
}

// Stop 停止调度并等待执行中的任务结束
func (tm *TaskManager) Stop(ctx context.Context) {
	done := tm.cron.Stop()
	select {
	case <-done.Done():
		logger.S().Info("[TaskManager] 定时任务已全部停止")
	case <-ctx.Done():
		logger.S().Warn("[TaskManager] 等待任务结束超时")
	}
}

// ==================== 手动触发接口 ====================

// Trigger 立即同步执行指定任务
func (tm *TaskManager) Trigger(name string) error {
	tm.mu.Lock()
	job, ok := tm.jobs[name]
	tm.mu.Unlock()
	if !ok {
		return ErrTaskNotFound
	}
	return tm.run(job)
}

// Status 已注册任务及是否在执行
func (tm *TaskManager) Status() map[string]bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	status := make(map[string]bool, len(tm.jobs))
	for name := range tm.jobs {
		status[name] = tm.running[name]
	}
	return status
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskNotFound TaskError = "task not found"
	ErrTaskRunning  TaskError = "task is already running"
)
