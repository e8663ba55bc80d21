// Package post 帖子领域：创建/编辑/删除与可见性过滤
//
// 可见性规则：
//   - 公开列表只含 approved，创建时间降序（带 Redis 列表缓存）
//   - 详情按 ID 可取任意状态，但每次拉取浏览计数 +0.5
//   - 本人/管理员视角不过滤状态，且后台详情额外暴露作者联系方式
package post

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"skillshare/internal/apiserver/auth"
	"skillshare/internal/apiserver/moderation"
	"skillshare/internal/shared/cache"
	"skillshare/internal/shared/model"
	"skillshare/internal/shared/storage"
)

// viewIncrement 单次详情拉取的浏览计数增量
// 半次阅读：区分预览拉取与完整阅读的既有计数策略，按产品口径保留
const viewIncrement = 0.5

// Store 帖子领域存储接口
type Store interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id string) (*model.Post, error)
	ListPostsByStatus(ctx context.Context, statuses ...model.PostStatus) ([]*model.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID string) ([]*model.Post, error)
	UpdatePostFields(ctx context.Context, id, title, description, category string, readingTime int) (*model.Post, error)
	DeletePost(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string, delta float64) (*model.Post, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Handler 帖子领域 HTTP 处理器
type Handler struct {
	store Store
	cache cache.PostListCache
}

// NewHandler 创建帖子处理器
func NewHandler(store Store, listCache cache.PostListCache) *Handler {
	if listCache == nil {
		listCache = cache.NewNoOpCache()
	}
	return &Handler{store: store, cache: listCache}
}

// RegisterRoutes 注册帖子相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/posts", auth.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/v1/posts", h.ListApproved)
	mux.HandleFunc("GET /api/v1/posts/{id}", h.Get)
	mux.HandleFunc("PUT /api/v1/posts/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/posts/{id}", h.Delete)
	mux.HandleFunc("GET /api/v1/user/posts", auth.RequireAuth(h.ListOwn))
	mux.HandleFunc("GET /api/v1/request/{id}", auth.RequireAuth(h.GetForReview))
}

// ============================================================================
// Handlers
// ============================================================================

// Create 创建帖子，初始状态恒为 pending，等待审核
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p := auth.GetPrincipal(r.Context())

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		ReadingTime int    `json:"reading_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post := &model.Post{
		ID:          auth.GenerateID("post"),
		Title:       req.Title,
		Description: req.Description,
		AuthorID:    p.IdentityKey,
		Status:      model.PostStatusPending,
		Category:    req.Category,
		ReadingTime: req.ReadingTime,
		Likes:       []model.Like{},
		Comments:    []model.Comment{},
		Reports:     []model.Report{},
		CreatedAt:   time.Now(),
	}
	if err := post.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.CreatePost(r.Context(), post); err != nil {
		log.Printf("[post] CreatePost error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	log.Printf("[post] Post created: %s by %s", post.ID, p.IdentityKey)
	writeJSON(w, http.StatusCreated, post)
}

// ListApproved 公开列表：只返回已审核通过的帖子，创建时间降序
func (h *Handler) ListApproved(w http.ResponseWriter, r *http.Request) {
	if cached, err := h.cache.GetApprovedPosts(r.Context()); err == nil && cached != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"posts": cached})
		return
	} else if err != nil {
		// 缓存故障只降级回源
		log.Printf("[post] cache read error: %v", err)
	}

	posts, err := h.store.ListPostsByStatus(r.Context(), model.PostStatusApproved)
	if err != nil {
		log.Printf("[post] ListPostsByStatus error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	if err := h.cache.SetApprovedPosts(r.Context(), posts); err != nil {
		log.Printf("[post] cache write error: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// Get 帖子详情：任意状态可取，每次拉取浏览计数 +0.5
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	post, err := h.store.IncrementViews(r.Context(), id, viewIncrement)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("[post] IncrementViews error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// Update 编辑帖子：作者本人或管理员；只碰内容字段，状态与互动数据不变
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p := auth.GetPrincipal(r.Context())

	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("[post] GetPost error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}

	if !moderation.CanModify(p, post) {
		writeError(w, http.StatusForbidden, "you are not authorized to edit this post")
		return
	}

	var req struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		Category    *string `json:"category,omitempty"`
		ReadingTime *int    `json:"reading_time,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	title, description, category, readingTime := post.Title, post.Description, post.Category, post.ReadingTime
	if req.Title != nil {
		title = *req.Title
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Category != nil {
		category = *req.Category
	}
	if req.ReadingTime != nil {
		readingTime = *req.ReadingTime
	}
	if title == "" || description == "" {
		writeError(w, http.StatusBadRequest, "title and description must not be empty")
		return
	}

	updated, err := h.store.UpdatePostFields(r.Context(), id, title, description, category, readingTime)
	if err != nil {
		log.Printf("[post] UpdatePostFields error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update post")
		return
	}

	if err := h.cache.InvalidateApprovedPosts(r.Context()); err != nil {
		log.Printf("[post] cache invalidate error: %v", err)
	}

	log.Printf("[post] Post updated: %s by %s", id, p.IdentityKey)
	writeJSON(w, http.StatusOK, updated)
}

// Delete 删除帖子及全部互动数据：作者本人或管理员
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p := auth.GetPrincipal(r.Context())

	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("[post] GetPost error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}

	if !moderation.CanModify(p, post) {
		writeError(w, http.StatusForbidden, "you are not authorized to delete this post")
		return
	}

	if err := h.store.DeletePost(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("[post] DeletePost error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}

	if err := h.cache.InvalidateApprovedPosts(r.Context()); err != nil {
		log.Printf("[post] cache invalidate error: %v", err)
	}

	log.Printf("[post] Post deleted: %s by %s", id, p.IdentityKey)
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "post deleted"})
}

// ListOwn 本人帖子列表：不过滤状态
func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	p := auth.GetPrincipal(r.Context())

	posts, err := h.store.ListPostsByAuthor(r.Context(), p.IdentityKey)
	if err != nil {
		log.Printf("[post] ListPostsByAuthor error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// reviewResponse 后台详情：帖子加作者联系方式
type reviewResponse struct {
	*model.Post
	Author *reviewAuthor `json:"author,omitempty"`
}

type reviewAuthor struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// GetForReview 后台/本人详情：不过滤状态、不计浏览量，
// 作者邮箱等联系字段只对作者本人或管理员暴露
func (h *Handler) GetForReview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p := auth.GetPrincipal(r.Context())

	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("[post] GetPost error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}

	if !moderation.CanModify(p, post) {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}

	resp := reviewResponse{Post: post}
	if author, err := h.store.GetUserByID(r.Context(), post.AuthorID); err == nil {
		resp.Author = &reviewAuthor{Username: author.Username, Email: author.Email}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// 工具函数
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
