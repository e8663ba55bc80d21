// Package model 定义核心数据模型
package model

import (
	"fmt"
	"time"
)

// PostStatus 帖子审核状态
type PostStatus string

const (
	PostStatusPending  PostStatus = "pending"
	PostStatusApproved PostStatus = "approved"
	PostStatusRejected PostStatus = "rejected"
)

// Valid 是否为合法状态值
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusPending, PostStatusApproved, PostStatusRejected:
		return true
	}
	return false
}

// Like 点赞记录
// IdentityKey 是登录用户的 ID，或匿名访客的来源 IP，每帖每身份最多一条
type Like struct {
	IdentityKey string `json:"identity_key" bson:"identity_key"`
}

// Reply 评论回复
type Reply struct {
	Author    string    `json:"author" bson:"author"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Comment 帖子评论（含嵌套回复）
type Comment struct {
	ID        string    `json:"id" bson:"id"`
	Author    string    `json:"author" bson:"author"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Replies   []Reply   `json:"replies" bson:"replies"`
}

// Report 举报记录，只进审核队列，不触发状态变更
type Report struct {
	Author    string    `json:"author" bson:"author"`
	Reason    string    `json:"reason" bson:"reason"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Post 帖子
//
// Status 只能经由审核状态机变更；Likes 的唯一性由存储层原子更新保证。
// Views 使用浮点数：单次详情拉取按 0.5 计，区分预览与完整阅读（沿用既有策略）。
type Post struct {
	ID          string     `json:"id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	AuthorID    string     `json:"author_id" bson:"author_id"`
	Status      PostStatus `json:"status" bson:"status"`
	Category    string     `json:"category" bson:"category"`
	ReadingTime int        `json:"reading_time" bson:"reading_time"`
	Views       float64    `json:"views" bson:"views"`
	Likes       []Like     `json:"likes" bson:"likes"`
	Comments    []Comment  `json:"comments" bson:"comments"`
	Reports     []Report   `json:"reports" bson:"reports"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
	ApprovedBy  string     `json:"approved_by,omitempty" bson:"approved_by,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty" bson:"rejected_at,omitempty"`
	RejectedBy  string     `json:"rejected_by,omitempty" bson:"rejected_by,omitempty"`
}

// Validate 验证帖子必填字段
func (p *Post) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("post title is required")
	}
	if p.Description == "" {
		return fmt.Errorf("post description is required")
	}
	if p.AuthorID == "" {
		return fmt.Errorf("post author is required")
	}
	if p.Category == "" {
		p.Category = "general"
	}
	if p.ReadingTime <= 0 {
		p.ReadingTime = 1
	}
	if p.Status == "" {
		p.Status = PostStatusPending
	}
	return nil
}

// LikedBy 指定身份是否已点赞
func (p *Post) LikedBy(identityKey string) bool {
	for _, l := range p.Likes {
		if l.IdentityKey == identityKey {
			return true
		}
	}
	return false
}

// FindComment 按 ID 查找评论，不存在返回 nil
func (p *Post) FindComment(commentID string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}
