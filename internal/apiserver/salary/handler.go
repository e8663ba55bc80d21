package salary

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"skillshare/internal/apiserver/auth"
	"skillshare/internal/shared/model"
	"skillshare/internal/shared/storage"
)

// HandlerStore 薪资/用户读取接口所需的存储
type HandlerStore interface {
	Store
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Handler 薪资领域 HTTP 处理器
type Handler struct {
	store      HandlerStore
	aggregator *Aggregator
}

// NewHandler 创建薪资处理器
func NewHandler(store HandlerStore, aggregator *Aggregator) *Handler {
	return &Handler{store: store, aggregator: aggregator}
}

// RegisterRoutes 注册薪资相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/salary/calculate", auth.AdminOnly(h.Recompute))
	mux.HandleFunc("GET /api/v1/users/{id}", h.GetUser)
	mux.HandleFunc("GET /api/v1/users/{id}/salary", h.GetSalary)
}

// Recompute 手动触发全量重算，与定时任务同一条路径
func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	result, err := h.aggregator.RecomputeAll(r.Context())
	if err != nil {
		log.Printf("[salary] manual recompute failed: %v", err)
		writeError(w, http.StatusInternalServerError, "salary recompute failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetUser 用户公开档案
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.fetchUser(w, r)
	if user == nil || err != nil {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetSalary 用户薪资与统计缓存
//
// 返回的是上一轮聚合的结果，不现场重算；
// reputation 是实时值，两者的口径差异由下一轮重算收敛。
func (h *Handler) GetSalary(w http.ResponseWriter, r *http.Request) {
	user, err := h.fetchUser(w, r)
	if user == nil || err != nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":        user.ID,
		"username":       user.Username,
		"reputation":     user.Reputation,
		"salary":         user.Salary,
		"total_posts":    user.TotalPosts,
		"total_likes":    user.TotalLikes,
		"total_comments": user.TotalComments,
	})
}

func (h *Handler) fetchUser(w http.ResponseWriter, r *http.Request) (*model.User, error) {
	id := r.PathValue("id")
	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return nil, err
		}
		log.Printf("[salary] GetUserByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return nil, err
	}
	return user, nil
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
