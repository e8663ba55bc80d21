package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		expected   string
	}{
		{"direct connection", "192.168.1.10:54321", "", "192.168.1.10"},
		{"x-forwarded-for wins", "10.0.0.1:80", "203.0.113.9", "203.0.113.9"},
		{"x-forwarded-for first entry", "10.0.0.1:80", "203.0.113.9, 10.0.0.2", "203.0.113.9"},
		{"ipv6 loopback normalized", "[::1]:54321", "", "127.0.0.1"},
		{"forwarded ipv6 loopback normalized", "10.0.0.1:80", "::1", "127.0.0.1"},
		{"unknown origin", "", "", "Unknown IP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/v1/posts", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(r); got != tt.expected {
				t.Errorf("ClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWTSecret = "test-secret"
	return cfg
}

// principalRecorder 记录中间件注入的 Principal
func principalRecorder(out **Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*out = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareAnonymousPrincipal(t *testing.T) {
	var got *Principal
	handler := Middleware(testConfig())(principalRecorder(&got))

	r := httptest.NewRequest("GET", "/api/v1/posts", nil)
	r.RemoteAddr = "[::1]:54321"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got == nil {
		t.Fatal("principal not injected")
	}
	if got.Authenticated {
		t.Error("anonymous principal marked authenticated")
	}
	if got.IdentityKey != "127.0.0.1" {
		t.Errorf("IdentityKey = %q, want 127.0.0.1", got.IdentityKey)
	}
	if got.Role != RoleGuest {
		t.Errorf("Role = %q, want guest", got.Role)
	}
}

func TestMiddlewareGuestBlockedFromBackoffice(t *testing.T) {
	var got *Principal
	handler := Middleware(testConfig())(principalRecorder(&got))

	r := httptest.NewRequest("GET", "/api/v1/backoffice/posts", nil)
	r.RemoteAddr = "192.168.1.10:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if got != nil {
		t.Error("handler reached despite backoffice guard")
	}
}

func TestMiddlewareUserBlockedFromBackoffice(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateToken(cfg, "usr-001", "alice", "user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	var got *Principal
	handler := Middleware(cfg)(principalRecorder(&got))

	r := httptest.NewRequest("GET", "/api/v1/backoffice/posts", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestMiddlewareAuthenticatedPrincipal(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateToken(cfg, "usr-001", "alice", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	var got *Principal
	handler := Middleware(cfg)(principalRecorder(&got))

	r := httptest.NewRequest("GET", "/api/v1/backoffice/posts", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got == nil || !got.Authenticated {
		t.Fatal("authenticated principal not injected")
	}
	if got.IdentityKey != "usr-001" || got.Username != "alice" || got.Role != "admin" {
		t.Errorf("principal = %+v", got)
	}
}

func TestMiddlewareInvalidToken(t *testing.T) {
	handler := Middleware(testConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with invalid token")
	}))

	r := httptest.NewRequest("GET", "/api/v1/posts", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestPrincipalLabel(t *testing.T) {
	tests := []struct {
		name     string
		p        *Principal
		expected string
	}{
		{"nil principal", nil, "Anonymous"},
		{"authenticated user", &Principal{IdentityKey: "usr-1", Username: "alice", Authenticated: true}, "alice"},
		{"anonymous origin", &Principal{IdentityKey: "127.0.0.1", Role: RoleGuest}, "127.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Label(); got != tt.expected {
				t.Errorf("Label() = %q, want %q", got, tt.expected)
			}
		})
	}
}
