package cache

import (
	"context"

	"skillshare/internal/shared/model"
)

// NoOpCache 空操作缓存：未配置 Redis 时使用，所有读取都回源
type NoOpCache struct{}

// NewNoOpCache 创建 NoOpCache 实例
func NewNoOpCache() *NoOpCache { return &NoOpCache{} }

func (c *NoOpCache) GetApprovedPosts(ctx context.Context) ([]*model.Post, error) { return nil, nil }

func (c *NoOpCache) SetApprovedPosts(ctx context.Context, posts []*model.Post) error { return nil }

func (c *NoOpCache) InvalidateApprovedPosts(ctx context.Context) error { return nil }

func (c *NoOpCache) Close() error { return nil }

var _ PostListCache = (*NoOpCache)(nil)
