// Package salary 薪资领域：周期性整体重算与用户读取接口
//
// 薪资是派生值，公式：
//
//	salary = reputation*100 + totalLikes*10 + totalComments*20
//
// totalLikes / totalComments 从该作者全部帖子现场聚合（评论只数顶层，
// 回复不计），声望用实时累加的当前值。重算是幂等的全量覆盖写，
// 不做增量，跑几遍结果一致。
package salary

import (
	"context"
	"log"
	"time"

	"skillshare/internal/shared/model"
)

// 薪资权重
const (
	weightReputation = 100
	weightLike       = 10
	weightComment    = 20
)

// Store 薪资聚合所需的存储接口
type Store interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	ListPostsByAuthor(ctx context.Context, authorID string) ([]*model.Post, error)
	UpdateUserStats(ctx context.Context, id string, salary float64, totalPosts, totalLikes, totalComments int) error
}

// Aggregator 薪资聚合器
type Aggregator struct {
	store Store
}

// NewAggregator 创建薪资聚合器
func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Result 单轮重算的汇总
type Result struct {
	Processed int       `json:"processed"`
	Failed    int       `json:"failed"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
}

// RecomputeAll 对全部用户整体重算薪资与统计缓存
//
// 单个用户失败只记日志并继续，不中断整轮；
// 全员列表都拿不到才算整轮失败。
func (a *Aggregator) RecomputeAll(ctx context.Context) (*Result, error) {
	start := time.Now()

	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{StartedAt: start}
	for _, u := range users {
		if err := a.recomputeUser(ctx, u); err != nil {
			log.Printf("[salary] recompute for user %s failed: %v", u.ID, err)
			result.Failed++
			continue
		}
		result.Processed++
	}
	result.Duration = time.Since(start).String()

	log.Printf("[salary] recompute finished: %d processed, %d failed in %s",
		result.Processed, result.Failed, result.Duration)
	return result, nil
}

func (a *Aggregator) recomputeUser(ctx context.Context, u *model.User) error {
	posts, err := a.store.ListPostsByAuthor(ctx, u.ID)
	if err != nil {
		return err
	}

	totalPosts := len(posts)
	totalLikes := 0
	totalComments := 0
	for _, p := range posts {
		totalLikes += len(p.Likes)
		totalComments += len(p.Comments) // 只数顶层评论，回复不计薪
	}

	salary := Compute(u.Reputation, totalLikes, totalComments)
	return a.store.UpdateUserStats(ctx, u.ID, salary, totalPosts, totalLikes, totalComments)
}

// Compute 薪资公式
func Compute(reputation, totalLikes, totalComments int) float64 {
	return float64(reputation*weightReputation + totalLikes*weightLike + totalComments*weightComment)
}
