// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/（生产）、memstore/（测试/本地开发）
//   - 初始化时通过依赖注入传入实现
package storage

import (
	"context"
	"time"

	"skillshare/internal/shared/model"
)

// UserStore 用户存储
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// ListUsers 按声望降序列出全部用户
	ListUsers(ctx context.Context) ([]*model.User, error)

	// IncrementReputation 原子累加用户声望（点赞 +1 / 评论 +2 的实时路径）
	IncrementReputation(ctx context.Context, id string, delta int) error

	// UpdateUserStats 聚合任务整体重算后写回薪资与缓存统计
	UpdateUserStats(ctx context.Context, id string, salary float64, totalPosts, totalLikes, totalComments int) error
}

// PostStore 帖子存储
//
// 所有嵌入集合（likes/comments/reports）的追加都是存储层单次原子更新，
// 不走读-改-写序列；点赞追加带 append-if-absent 条件以关闭并发去重竞态。
type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id string) (*model.Post, error)
	// ListPostsByStatus 按状态过滤，创建时间降序
	ListPostsByStatus(ctx context.Context, statuses ...model.PostStatus) ([]*model.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID string) ([]*model.Post, error)
	// ListReportedPosts 至少有一条举报的帖子
	ListReportedPosts(ctx context.Context) ([]*model.Post, error)

	// UpdatePostFields 编辑帖子内容字段（标题/描述/分类/阅读时长），不碰状态与互动数据
	UpdatePostFields(ctx context.Context, id, title, description, category string, readingTime int) (*model.Post, error)
	// SetPostStatus 状态机落库：写状态与审批/驳回时间戳
	SetPostStatus(ctx context.Context, id string, status model.PostStatus, actor string, at time.Time) (*model.Post, error)
	DeletePost(ctx context.Context, id string) error

	// AddLike 原子 append-if-absent：身份已点赞返回 ErrDuplicate，帖子不存在返回 ErrNotFound
	AddLike(ctx context.Context, postID, identityKey string) (*model.Post, error)
	AddComment(ctx context.Context, postID string, comment model.Comment) error
	// AddReply 评论不存在返回 ErrNotFound
	AddReply(ctx context.Context, postID, commentID string, reply model.Reply) error
	AddReport(ctx context.Context, postID string, report model.Report) error

	// IncrementViews 原子累加浏览计数（详情页按 0.5 计），返回更新后的帖子
	IncrementViews(ctx context.Context, id string, delta float64) (*model.Post, error)
}

// PersistentStore 聚合存储接口
type PersistentStore interface {
	UserStore
	PostStore
	Close() error
}
