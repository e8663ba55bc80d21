// Package redis Redis 缓存实现
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"skillshare/internal/shared/cache"
	"skillshare/internal/shared/model"
)

// Store Redis 缓存存储
type Store struct {
	client *redis.Client
}

// NewStoreFromURL 从 URL 创建 Redis 缓存实例
func NewStoreFromURL(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis/Cache] Connected to %s", opts.Addr)
	return &Store{client: client}, nil
}

// NewStoreFromClient 从现有 Redis 客户端创建缓存实例
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close 关闭 Redis 连接
func (s *Store) Close() error {
	return s.client.Close()
}

// GetApprovedPosts 读取公开帖子列表缓存，未命中返回 (nil, nil)
func (s *Store) GetApprovedPosts(ctx context.Context) ([]*model.Post, error) {
	data, err := s.client.Get(ctx, cache.KeyApprovedPosts).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var posts []*model.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		// 缓存内容损坏时按未命中处理，回源会覆盖
		log.Printf("[Redis/Cache] corrupt approved-posts entry: %v", err)
		return nil, nil
	}
	return posts, nil
}

// SetApprovedPosts 写入公开帖子列表缓存
func (s *Store) SetApprovedPosts(ctx context.Context, posts []*model.Post) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cache.KeyApprovedPosts, data, cache.TTLApprovedPosts).Err()
}

// InvalidateApprovedPosts 删除公开帖子列表缓存
func (s *Store) InvalidateApprovedPosts(ctx context.Context) error {
	return s.client.Del(ctx, cache.KeyApprovedPosts).Err()
}

var _ cache.PostListCache = (*Store)(nil)
