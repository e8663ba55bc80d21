// Package memstore 实现基于内存的 PersistentStore
//
// 用于 Handler 单元测试和无 MongoDB 的本地开发。
// 语义与 mongostore 对齐：点赞去重在同一把锁内完成检查与追加，
// 等价于文档数据库的条件原子更新。
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"skillshare/internal/shared/model"
	"skillshare/internal/shared/storage"
)

// Store 内存存储
type Store struct {
	mu    sync.RWMutex
	users map[string]*model.User
	posts map[string]*model.Post
}

// NewStore 创建内存存储实例
func NewStore() *Store {
	return &Store{
		users: make(map[string]*model.User),
		posts: make(map[string]*model.Post),
	}
}

// Close 实现 PersistentStore 接口
func (s *Store) Close() error { return nil }

// 编译期接口检查
var _ storage.PersistentStore = (*Store)(nil)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return storage.ErrDuplicate
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return storage.ErrDuplicate
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Reputation > users[j].Reputation })
	return users, nil
}

func (s *Store) IncrementReputation(ctx context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.Reputation += delta
	u.UpdatedAt = time.Now()
	return nil
}

func (s *Store) UpdateUserStats(ctx context.Context, id string, salary float64, totalPosts, totalLikes, totalComments int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.Salary = salary
	u.TotalPosts = totalPosts
	u.TotalLikes = totalLikes
	u.TotalComments = totalComments
	u.UpdatedAt = time.Now()
	return nil
}

// ============================================================================
// PostStore
// ============================================================================

func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.ID]; ok {
		return storage.ErrDuplicate
	}
	s.posts[post.ID] = clonePost(post)
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clonePost(p), nil
}

func (s *Store) ListPostsByStatus(ctx context.Context, statuses ...model.PostStatus) ([]*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := make(map[model.PostStatus]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	posts := []*model.Post{}
	for _, p := range s.posts {
		if len(statuses) == 0 || want[p.Status] {
			posts = append(posts, clonePost(p))
		}
	}
	sortNewestFirst(posts)
	return posts, nil
}

func (s *Store) ListPostsByAuthor(ctx context.Context, authorID string) ([]*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts := []*model.Post{}
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			posts = append(posts, clonePost(p))
		}
	}
	sortNewestFirst(posts)
	return posts, nil
}

func (s *Store) ListReportedPosts(ctx context.Context) ([]*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts := []*model.Post{}
	for _, p := range s.posts {
		if len(p.Reports) > 0 {
			posts = append(posts, clonePost(p))
		}
	}
	sortNewestFirst(posts)
	return posts, nil
}

func (s *Store) UpdatePostFields(ctx context.Context, id, title, description, category string, readingTime int) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p.Title = title
	p.Description = description
	p.Category = category
	p.ReadingTime = readingTime
	return clonePost(p), nil
}

func (s *Store) SetPostStatus(ctx context.Context, id string, status model.PostStatus, actor string, at time.Time) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p.Status = status
	switch status {
	case model.PostStatusApproved:
		t := at
		p.ApprovedAt = &t
		p.ApprovedBy = actor
	case model.PostStatusRejected:
		t := at
		p.RejectedAt = &t
		p.RejectedBy = actor
	}
	return clonePost(p), nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

// AddLike 检查与追加在同一把锁内完成，对齐 mongostore 的条件原子更新语义
func (s *Store) AddLike(ctx context.Context, postID, identityKey string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if p.LikedBy(identityKey) {
		return nil, storage.ErrDuplicate
	}
	p.Likes = append(p.Likes, model.Like{IdentityKey: identityKey})
	return clonePost(p), nil
}

func (s *Store) AddComment(ctx context.Context, postID string, comment model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return storage.ErrNotFound
	}
	p.Comments = append(p.Comments, comment)
	return nil
}

func (s *Store) AddReply(ctx context.Context, postID, commentID string, reply model.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return storage.ErrNotFound
	}
	c := p.FindComment(commentID)
	if c == nil {
		return storage.ErrNotFound
	}
	c.Replies = append(c.Replies, reply)
	return nil
}

func (s *Store) AddReport(ctx context.Context, postID string, report model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return storage.ErrNotFound
	}
	p.Reports = append(p.Reports, report)
	return nil
}

func (s *Store) IncrementViews(ctx context.Context, id string, delta float64) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p.Views += delta
	return clonePost(p), nil
}

// ============================================================================
// 辅助函数
// ============================================================================

func clonePost(p *model.Post) *model.Post {
	cp := *p
	cp.Likes = append([]model.Like(nil), p.Likes...)
	cp.Comments = make([]model.Comment, len(p.Comments))
	for i, c := range p.Comments {
		cc := c
		cc.Replies = append([]model.Reply(nil), c.Replies...)
		cp.Comments[i] = cc
	}
	cp.Reports = append([]model.Report(nil), p.Reports...)
	return &cp
}

func sortNewestFirst(posts []*model.Post) {
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
}
