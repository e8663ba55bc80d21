package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"skillshare/internal/apiserver/auth"
	"skillshare/internal/shared/cache"
	"skillshare/internal/shared/model"
	"skillshare/internal/shared/storage"
)

// Store 审核领域存储接口
type Store interface {
	GetPost(ctx context.Context, id string) (*model.Post, error)
	ListPostsByStatus(ctx context.Context, statuses ...model.PostStatus) ([]*model.Post, error)
	SetPostStatus(ctx context.Context, id string, status model.PostStatus, actor string, at time.Time) (*model.Post, error)
	ListReportedPosts(ctx context.Context) ([]*model.Post, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Handler 审核后台 HTTP 处理器
type Handler struct {
	store Store
	cache cache.PostListCache
}

// NewHandler 创建审核后台处理器
func NewHandler(store Store, listCache cache.PostListCache) *Handler {
	if listCache == nil {
		listCache = cache.NewNoOpCache()
	}
	return &Handler{store: store, cache: listCache}
}

// RegisterRoutes 注册后台路由
// 后台前缀的管理员门禁在 auth.Middleware 中统一执行
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/backoffice/posts", h.Queue)
	mux.HandleFunc("PUT /api/v1/backoffice/posts/{id}/approve", h.Approve)
	mux.HandleFunc("PUT /api/v1/backoffice/posts/{id}/reject", h.Reject)
	mux.HandleFunc("GET /api/v1/backoffice/reports", h.Reports)
	mux.HandleFunc("GET /api/v1/backoffice/authors", h.Authors)
}

// ============================================================================
// Handlers
// ============================================================================

// queueItem 审核队列条目，附带作者用户名
type queueItem struct {
	*model.Post
	AuthorUsername string `json:"author_username,omitempty"`
}

// Queue 审核队列：待审与已驳回的帖子，创建时间降序
func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPostsByStatus(r.Context(), model.PostStatusPending, model.PostStatusRejected)
	if err != nil {
		log.Printf("[moderation] ListPostsByStatus error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	items := make([]queueItem, 0, len(posts))
	names := h.authorNames(r.Context(), posts)
	for _, p := range posts {
		items = append(items, queueItem{Post: p, AuthorUsername: names[p.AuthorID]})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": items})
}

// Approve 批准帖子
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, ActionApprove)
}

// Reject 驳回帖子
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, ActionReject)
}

// transition 执行一次状态机转移并落库
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action Action) {
	id := r.PathValue("id")
	p := auth.GetPrincipal(r.Context())

	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("[moderation] GetPost error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}

	role := ""
	if p != nil {
		role = p.Role
	}
	next, err := Transition(post.Status, action, role)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			writeError(w, http.StatusForbidden, "admin access required")
		case errors.Is(err, ErrInvalidTransition):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, "invalid action")
		}
		return
	}

	updated, err := h.store.SetPostStatus(r.Context(), id, next, p.Label(), time.Now())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("[moderation] SetPostStatus error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update post status")
		return
	}

	// 审核结果改变公开列表内容
	if err := h.cache.InvalidateApprovedPosts(r.Context()); err != nil {
		log.Printf("[moderation] cache invalidate error: %v", err)
	}

	log.Printf("[moderation] Post %s: %s by %s", action, id, p.Label())
	writeJSON(w, http.StatusOK, updated)
}

// reportItem 展平后的举报记录：每条举报一行，带所属帖子
type reportItem struct {
	Post      *model.Post `json:"post"`
	Author    string      `json:"author"`
	Reason    string      `json:"reason"`
	CreatedAt time.Time   `json:"created_at"`
}

// Reports 举报列表：把每个帖子的举报数组展平成逐条记录
func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListReportedPosts(r.Context())
	if err != nil {
		log.Printf("[moderation] ListReportedPosts error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}

	items := []reportItem{}
	for _, p := range posts {
		for _, rep := range p.Reports {
			items = append(items, reportItem{
				Post:      p,
				Author:    rep.Author,
				Reason:    rep.Reason,
				CreatedAt: rep.CreatedAt,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": items})
}

// Authors 作者总览：全部用户按声望降序，带薪资与统计缓存
func (h *Handler) Authors(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("[moderation] ListUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list authors")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"authors": users})
}

// authorNames 批量解析作者用户名，单个缺失不影响列表
func (h *Handler) authorNames(ctx context.Context, posts []*model.Post) map[string]string {
	names := make(map[string]string)
	for _, p := range posts {
		if _, ok := names[p.AuthorID]; ok {
			continue
		}
		u, err := h.store.GetUserByID(ctx, p.AuthorID)
		if err != nil {
			names[p.AuthorID] = ""
			continue
		}
		names[p.AuthorID] = u.Username
	}
	return names
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
