package auth

import (
	"log"
	"net"
	"net/http"
	"strings"

	"skillshare/internal/shared/model"
)

// backofficePrefix 审核后台路由前缀，只有管理员可以进入
const backofficePrefix = "/api/v1/backoffice/"

// sentinelUnknownIP 无法确定来源时的哨兵身份键
const sentinelUnknownIP = "Unknown IP"

// ClientIP 归一化请求来源
//
// 取值顺序：X-Forwarded-For 首个条目 → RemoteAddr → "Unknown IP"。
// IPv6 环回 ::1 归一化为 127.0.0.1，保证本机匿名身份键稳定。
func ClientIP(r *http.Request) string {
	ip := ""
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip = strings.TrimSpace(strings.Split(fwd, ",")[0])
	} else if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip = host
	}
	if ip == "" {
		return sentinelUnknownIP
	}
	if ip == "::1" {
		ip = "127.0.0.1"
	}
	return ip
}

// Middleware 创建身份解析中间件
//
// 携带 Bearer Token 的请求必须验证通过，否则 401；
// 未携带的请求解析为匿名 Principal（来源 IP 作身份键，角色 guest），
// 匿名主体访问后台路由在此处直接 403，不进入业务处理。
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")

			if authHeader == "" {
				p := &Principal{
					IdentityKey:   ClientIP(r),
					Role:          RoleGuest,
					Authenticated: false,
				}
				if strings.HasPrefix(r.URL.Path, backofficePrefix) {
					http.Error(w, `{"error":"admin access required"}`, http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"invalid authorization header"}`, http.StatusUnauthorized)
				return
			}

			claims, err := ParseToken(cfg, parts[1])
			if err != nil {
				log.Printf("[auth] token parse error: %v", err)
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			p := &Principal{
				IdentityKey:   claims.Subject,
				Username:      claims.Username,
				Role:          claims.Role,
				Authenticated: true,
			}

			if strings.HasPrefix(r.URL.Path, backofficePrefix) && !p.IsAdmin() {
				http.Error(w, `{"error":"admin access required"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAuth 登录用户专属路由中间件
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := GetPrincipal(r.Context())
		if p == nil || !p.Authenticated {
			http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// AdminOnly 管理员专属路由中间件
func AdminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := GetPrincipal(r.Context())
		if p == nil || p.Role != string(model.UserRoleAdmin) {
			http.Error(w, `{"error":"admin access required"}`, http.StatusForbidden)
			return
		}
		next(w, r)
	}
}
