// Package cache 定义缓存层抽象接口
//
// 当前唯一的缓存对象是公开帖子列表（已审核通过、按时间降序），
// 这是读放大最高的路径。任何帖子变更都整体失效，不做增量维护。
package cache

import (
	"context"
	"time"

	"skillshare/internal/shared/model"
)

// 缓存键与 TTL
const (
	KeyApprovedPosts = "posts:approved"
)

// TTLApprovedPosts 列表缓存过期时间
var TTLApprovedPosts = 30 * time.Second

// PostListCache 公开帖子列表缓存
//
// Get 未命中时返回 (nil, nil)，调用方回源存储层；
// 缓存故障只降级为回源，从不让请求失败。
type PostListCache interface {
	GetApprovedPosts(ctx context.Context) ([]*model.Post, error)
	SetApprovedPosts(ctx context.Context, posts []*model.Post) error
	// InvalidateApprovedPosts 在帖子编辑/删除/审核后调用（新帖是 pending，不影响列表）
	InvalidateApprovedPosts(ctx context.Context) error
	Close() error
}
