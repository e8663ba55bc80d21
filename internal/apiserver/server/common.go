// Package server 路由配置与核心基础设施
//
// 本包是所有 HTTP API 的入口，负责：
//   - 组装各领域包的路由（auth/post/engagement/moderation/salary）
//   - 中间件链（指标 → 认证 → CORS）
//   - Prometheus 指标
//
// 文件组织：
//   - common.go: Handler 定义与通用工具函数
//   - handler.go: 路由装配
//   - metrics.go: Prometheus 指标
package server

import (
	"encoding/json"
	"net/http"

	"skillshare/internal/apiserver/auth"
	"skillshare/internal/apiserver/salary"
	"skillshare/internal/shared/cache"
	"skillshare/internal/shared/storage"
)

// Handler API 处理器
//
// 依赖说明：
//   - store: 持久化存储（用户与帖子）
//   - listCache: 公开帖子列表缓存（可为 nil，自动降级为 NoOp）
//   - aggregator: 薪资聚合器（手动触发与定时任务共用同一实例）
type Handler struct {
	store      storage.PersistentStore
	listCache  cache.PostListCache
	authConfig auth.Config
	aggregator *salary.Aggregator
	metrics    *Metrics
}

// NewHandler 创建 Handler 实例
func NewHandler(store storage.PersistentStore, listCache cache.PostListCache, authConfig auth.Config) *Handler {
	if listCache == nil {
		listCache = cache.NewNoOpCache()
	}
	return &Handler{
		store:      store,
		listCache:  listCache,
		authConfig: authConfig,
		aggregator: salary.NewAggregator(store),
		metrics:    NewMetrics("skillshare"),
	}
}

// Aggregator 返回薪资聚合器，定时任务与手动触发共用
func (h *Handler) Aggregator() *salary.Aggregator {
	return h.aggregator
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *Metrics {
	return h.metrics
}

// Health 健康检查接口
//
// 路由: GET /health
//
// 用于负载均衡器和监控系统检查服务状态。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
