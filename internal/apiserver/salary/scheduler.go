package salary

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule 每月 30 号 23:59 跑一轮全量重算
// 2 月没有 30 号，该月自然跳过，下一轮补齐（重算是全量幂等的）
const DefaultSchedule = "59 23 30 * *"

// Scheduler 薪资定时任务
type Scheduler struct {
	cron       *cron.Cron
	aggregator *Aggregator
	spec       string
}

// NewScheduler 创建定时任务，spec 为空时使用 DefaultSchedule
func NewScheduler(aggregator *Aggregator, spec string) *Scheduler {
	if spec == "" {
		spec = DefaultSchedule
	}
	return &Scheduler{
		cron:       cron.New(),
		aggregator: aggregator,
		spec:       spec,
	}
}

// Start 注册并启动定时任务
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.aggregator.RecomputeAll(ctx); err != nil {
			log.Printf("[salary] scheduled recompute failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("[salary] scheduler started with spec %q", s.spec)
	return nil
}

// Stop 停止定时任务，等待运行中的任务结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
