// Package engagement 互动领域：点赞、评论、回复、举报
//
// 点赞是唯一带幂等保护的互动（每身份每帖一次，永久，无取消赞）；
// 评论/回复/举报都是无去重的 append-only。
// 声望实时增量（点赞 +1、评论 +2）在此处触发，薪资重算不走这里。
package engagement

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"skillshare/internal/apiserver/auth"
	"skillshare/internal/shared/model"
	"skillshare/internal/shared/storage"
)

// 声望权重
const (
	reputationPerLike    = 1
	reputationPerComment = 2
)

// Store 互动领域存储接口
type Store interface {
	GetPost(ctx context.Context, id string) (*model.Post, error)
	AddLike(ctx context.Context, postID, identityKey string) (*model.Post, error)
	AddComment(ctx context.Context, postID string, comment model.Comment) error
	AddReply(ctx context.Context, postID, commentID string, reply model.Reply) error
	AddReport(ctx context.Context, postID string, report model.Report) error
	IncrementReputation(ctx context.Context, id string, delta int) error
}

// Handler 互动领域 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建互动处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册互动相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("PUT /api/v1/posts/{id}/like", h.Like)
	mux.HandleFunc("POST /api/v1/posts/{id}/comments", h.Comment)
	mux.HandleFunc("POST /api/v1/posts/{id}/comments/{cid}/replies", h.Reply)
	mux.HandleFunc("POST /api/v1/posts/{id}/report", h.Report)
}

// ============================================================================
// Handlers
// ============================================================================

// Like 点赞
//
// 去重由存储层的原子 append-if-absent 保证，这里不做读-查-写。
// 重复点赞是调用方错误（400），不是服务端故障。
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	p := auth.GetPrincipal(r.Context())

	post, err := h.store.AddLike(r.Context(), postID, p.IdentityKey)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "post not found")
		case errors.Is(err, storage.ErrDuplicate):
			writeError(w, http.StatusBadRequest, "you have already liked this post")
		default:
			log.Printf("[engagement] AddLike error: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to like post")
		}
		return
	}

	h.bumpReputation(r.Context(), post.AuthorID, reputationPerLike)

	writeJSON(w, http.StatusOK, map[string]interface{}{"likes": post.Likes})
}

// Comment 评论
func (h *Handler) Comment(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	p := auth.GetPrincipal(r.Context())

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	post, err := h.store.GetPost(r.Context(), postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("[engagement] GetPost error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to add comment")
		return
	}

	comment := model.Comment{
		ID:        auth.GenerateID("cmt"),
		Author:    p.Label(),
		Content:   req.Content,
		CreatedAt: time.Now(),
		Replies:   []model.Reply{},
	}
	if err := h.store.AddComment(r.Context(), postID, comment); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("[engagement] AddComment error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to add comment")
		return
	}

	h.bumpReputation(r.Context(), post.AuthorID, reputationPerComment)

	writeJSON(w, http.StatusCreated, comment)
}

// Reply 回复评论，不触发声望变化
func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	commentID := r.PathValue("cid")
	p := auth.GetPrincipal(r.Context())

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	reply := model.Reply{
		Author:    p.Label(),
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := h.store.AddReply(r.Context(), postID, commentID, reply); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post or comment not found")
			return
		}
		log.Printf("[engagement] AddReply error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to add reply")
		return
	}

	writeJSON(w, http.StatusCreated, reply)
}

// Report 举报：只进审核队列，从不改变帖子状态
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	p := auth.GetPrincipal(r.Context())

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	report := model.Report{
		Author:    p.Label(),
		Reason:    req.Reason,
		CreatedAt: time.Now(),
	}
	if err := h.store.AddReport(r.Context(), postID, report); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		log.Printf("[engagement] AddReport error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to submit report")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "report submitted"})
}

// bumpReputation 实时声望增量
// 作者不存在只记日志，互动本身已经成功，不能再失败（部分失败容忍）
func (h *Handler) bumpReputation(ctx context.Context, authorID string, delta int) {
	if authorID == "" {
		return
	}
	if err := h.store.IncrementReputation(ctx, authorID, delta); err != nil {
		log.Printf("[engagement] reputation +%d for author %s failed: %v", delta, authorID, err)
	}
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
