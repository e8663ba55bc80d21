package server

import (
	"net/http"

	"skillshare/internal/apiserver/auth"
	"skillshare/internal/apiserver/engagement"
	"skillshare/internal/apiserver/moderation"
	"skillshare/internal/apiserver/post"
	"skillshare/internal/apiserver/salary"
)

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查:
//   - GET /health - 服务健康检查
//
// 认证 (Auth):
//   - POST /api/v1/auth/register - 注册
//   - POST /api/v1/auth/login    - 登录
//   - GET  /api/v1/auth/me       - 当前用户
//
// 帖子 (Post):
//   - POST   /api/v1/posts       - 创建帖子（登录用户，初始 pending）
//   - GET    /api/v1/posts       - 公开列表（仅 approved）
//   - GET    /api/v1/posts/{id}  - 帖子详情（浏览计数 +0.5）
//   - PUT    /api/v1/posts/{id}  - 编辑（作者或管理员）
//   - DELETE /api/v1/posts/{id}  - 删除（作者或管理员）
//   - GET    /api/v1/user/posts  - 本人帖子（不过滤状态）
//   - GET    /api/v1/request/{id} - 审核视角详情（作者或管理员）
//
// 互动 (Engagement):
//   - PUT  /api/v1/posts/{id}/like                    - 点赞（每身份一次）
//   - POST /api/v1/posts/{id}/comments                - 评论
//   - POST /api/v1/posts/{id}/comments/{cid}/replies  - 回复
//   - POST /api/v1/posts/{id}/report                  - 举报
//
// 审核后台 (Moderation，管理员专属):
//   - GET /api/v1/backoffice/posts               - 审核队列
//   - PUT /api/v1/backoffice/posts/{id}/approve  - 批准
//   - PUT /api/v1/backoffice/posts/{id}/reject   - 驳回
//   - GET /api/v1/backoffice/reports             - 举报列表
//   - GET /api/v1/backoffice/authors             - 作者总览
//
// 薪资 (Salary):
//   - POST /api/v1/salary/calculate    - 手动触发全量重算（管理员）
//   - GET  /api/v1/users/{id}          - 用户档案
//   - GET  /api/v1/users/{id}/salary   - 用户薪资与统计
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	// Auth 接口
	authHandler := auth.NewHandler(h.store, h.authConfig)
	authHandler.RegisterRoutes(mux)

	// Post 接口
	postHandler := post.NewHandler(h.store, h.listCache)
	postHandler.RegisterRoutes(mux)

	// Engagement 接口
	engagementHandler := engagement.NewHandler(h.store)
	engagementHandler.RegisterRoutes(mux)

	// Moderation 后台接口（前缀门禁在 auth.Middleware 中统一执行）
	moderationHandler := moderation.NewHandler(h.store, h.listCache)
	moderationHandler.RegisterRoutes(mux)

	// Salary 接口
	salaryHandler := salary.NewHandler(h.store, h.aggregator)
	salaryHandler.RegisterRoutes(mux)

	// 应用指标中间件
	apiHandler := h.metrics.MetricsMiddleware(mux)

	// 应用认证中间件
	authedHandler := auth.Middleware(h.authConfig)(apiHandler)

	// 应用 CORS 中间件
	return corsMiddleware(authedHandler)
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
