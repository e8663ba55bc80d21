package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skillshare/internal/shared/model"
	"skillshare/internal/shared/storage/memstore"
)

var testCfg = Config{JWTSecret: "test-secret", AccessTokenTTL: time.Hour}

func newTestServer(store *memstore.Store) http.Handler {
	mux := http.NewServeMux()
	NewHandler(store, testCfg).RegisterRoutes(mux)
	return Middleware(testCfg)(mux)
}

func doJSON(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginMe(t *testing.T) {
	store := memstore.NewStore()
	srv := newTestServer(store)

	w := doJSON(srv, "POST", "/api/v1/auth/register", "",
		`{"username":"alice","email":"alice@example.com","password":"secret123"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}

	var reg struct {
		User  *model.User `json:"user"`
		Token string      `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if reg.Token == "" || reg.User.Role != model.UserRoleUser {
		t.Fatalf("register response = %+v", reg)
	}

	w = doJSON(srv, "POST", "/api/v1/auth/login", "",
		`{"email":"alice@example.com","password":"secret123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &login)

	w = doJSON(srv, "GET", "/api/v1/auth/me", login.Token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d", w.Code)
	}
	var me model.User
	json.Unmarshal(w.Body.Bytes(), &me)
	if me.Email != "alice@example.com" {
		t.Errorf("me email = %q", me.Email)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := memstore.NewStore()
	srv := newTestServer(store)

	body := `{"username":"alice","email":"alice@example.com","password":"secret123"}`
	if w := doJSON(srv, "POST", "/api/v1/auth/register", "", body); w.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", w.Code)
	}
	if w := doJSON(srv, "POST", "/api/v1/auth/register", "", body); w.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", w.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	store := memstore.NewStore()
	srv := newTestServer(store)

	tests := []struct {
		name string
		body string
	}{
		{"missing fields", `{"username":"a"}`},
		{"bad email", `{"username":"a","email":"not-an-email","password":"secret123"}`},
		{"short password", `{"username":"a","email":"a@example.com","password":"short"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(srv, "POST", "/api/v1/auth/register", "", tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := memstore.NewStore()
	srv := newTestServer(store)

	doJSON(srv, "POST", "/api/v1/auth/register", "",
		`{"username":"alice","email":"alice@example.com","password":"secret123"}`)

	w := doJSON(srv, "POST", "/api/v1/auth/login", "",
		`{"email":"alice@example.com","password":"wrong-password"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	store := memstore.NewStore()
	srv := newTestServer(store)

	hash, _ := HashPassword("secret123")
	store.CreateUser(context.Background(), &model.User{
		ID:           "usr-001",
		Username:     "bob",
		Email:        "bob@example.com",
		PasswordHash: hash,
		Role:         model.UserRoleUser,
		Status:       model.UserStatusDisabled,
	})

	w := doJSON(srv, "POST", "/api/v1/auth/login", "",
		`{"email":"bob@example.com","password":"secret123"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestEnsureAdminUser(t *testing.T) {
	store := memstore.NewStore()

	if err := EnsureAdminUser(store, "admin@example.com", "adminpass"); err != nil {
		t.Fatalf("EnsureAdminUser: %v", err)
	}
	u, err := store.GetUserByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u.Role != model.UserRoleAdmin {
		t.Errorf("role = %q, want admin", u.Role)
	}

	// 幂等
	if err := EnsureAdminUser(store, "admin@example.com", "adminpass"); err != nil {
		t.Fatalf("second EnsureAdminUser: %v", err)
	}
	users, _ := store.ListUsers(context.Background())
	if len(users) != 1 {
		t.Errorf("len(users) = %d, want 1", len(users))
	}
}
