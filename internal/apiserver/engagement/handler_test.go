package engagement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skillshare/internal/apiserver/auth"
	"skillshare/internal/shared/model"
	"skillshare/internal/shared/storage/memstore"
)

var testAuthCfg = auth.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Hour}

func newTestServer(store *memstore.Store) http.Handler {
	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	return auth.Middleware(testAuthCfg)(mux)
}

func seedUser(t *testing.T, store *memstore.Store, id string) string {
	t.Helper()
	err := store.CreateUser(context.Background(), &model.User{
		ID:       id,
		Username: "user-" + id,
		Email:    id + "@example.com",
		Role:     model.UserRoleUser,
		Status:   model.UserStatusActive,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, err := auth.GenerateToken(testAuthCfg, id, "user-"+id, "user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func seedPost(t *testing.T, store *memstore.Store, id, authorID string) {
	t.Helper()
	err := store.CreatePost(context.Background(), &model.Post{
		ID:          id,
		Title:       "Title",
		Description: "Description",
		AuthorID:    authorID,
		Status:      model.PostStatusApproved,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
}

func doRequest(h http.Handler, method, path, token, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestLikeOncePerIdentity(t *testing.T) {
	store := memstore.NewStore()
	srv := newTestServer(store)
	seedUser(t, store, "usr-author")
	token := seedUser(t, store, "usr-001")
	seedPost(t, store, "post-a", "usr-author")

	if w := doRequest(srv, "PUT", "/api/v1/posts/post-a/like", token, "", nil); w.Code != http.StatusOK {
		t.Fatalf("first like status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := doRequest(srv, "PUT", "/api/v1/posts/post-a/like", token, "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("second like status = %d, want 400", w.Code)
	}

	// 作者声望 +1，且只加一次
	author, _ := store.GetUserByID(context.Background(), "usr-author")
	if author.Reputation != 1 {
		t.Errorf("author reputation = %d, want 1", author.Reputation)
	}
}

func TestLikeAnonymousByIP(t *testing.T) {
	store := memstore.NewStore()
	srv := newTestServer(store)
	seedUser(t, store, "usr-author")
	seedPost(t, store, "post-a", "usr-author")

	hdr := map[string]string{"X-Forwarded-For": "203.0.113.7"}
	if w := doRequest(srv, "PUT", "/api/v1/posts/post-a/like", "", "", hdr); w.Code != http.StatusOK {
		t.Fatalf("anonymous like status = %d", w.Code)
	}
	// 同一来源 IP 视为同一身份
	if w := doRequest(srv, "PUT", "/api/v1/posts/post-a/like", "", "", hdr); w.Code != http.StatusBadRequest {
		t.Fatalf("repeat anonymous like status = %d, want 400", w.Code)
	}
	// 不同来源是另一个身份
	hdr2 := map[string]string{"X-Forwarded-For": "203.0.113.8"}
	if w := doRequest(srv, "PUT", "/api/v1/posts/post-a/like", "", "", hdr2); w.Code != http.StatusOK {
		t.Fatalf("other ip like status = %d", w.Code)
	}

	p, _ := store.GetPost(context.Background(), "post-a")
	if len(p.Likes) != 2 {
		t.Errorf("likes = %d, want 2", len(p.Likes))
	}
}

func TestLikeMissingPost(t *testing.T) {
	store := memstore.NewStore()
	srv := newTestServer(store)

	if w := doRequest(srv, "PUT", "/api/v1/posts/missing/like", "", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestCommentAddsReputation(t *testing.T) {
	store := memstore.NewStore()
	srv := newTestServer(store)
	seedUser(t, store, "usr-author")
	token := seedUser(t, store, "usr-001")
	seedPost(t, store, "post-a", "usr-author")

	w := doRequest(srv, "POST", "/api/v1/posts/post-a/comments", token, `{"content":"great post"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var comment model.Comment
	if err := json.Unmarshal(w.Body.Bytes(), &comment); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if comment.ID == "" || comment.Author != "user-usr-001" {
		t.Errorf("comment = %+v", comment)
	}

	author, _ := store.GetUserByID(context.Background(), "usr-author")
	if author.Reputation != 2 {
		t.Errorf("author reputation = %d, want 2", author.Reputation)
	}
}

func TestCommentMissingAuthorStillSucceeds(t *testing.T) {
	store := memstore.NewStore()
	srv := newTestServer(store)
	// 作者账号不存在（已注销等），评论仍要成功
	seedPost(t, store, "post-a", "usr-ghost")

	w := doRequest(srv, "POST", "/api/v1/posts/post-a/comments", "", `{"content":"hello"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}

	p, _ := store.GetPost(context.Background(), "post-a")
	if len(p.Comments) != 1 {
		t.Errorf("comments = %d, want 1", len(p.Comments))
	}
}

func TestCommentValidation(t *testing.T) {
	store := memstore.NewStore()
	srv := newTestServer(store)
	seedPost(t, store, "post-a", "usr-author")

	if w := doRequest(srv, "POST", "/api/v1/posts/post-a/comments", "", `{"content":""}`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestReply(t *testing.T) {
	store := memstore.NewStore()
	srv := newTestServer(store)
	seedUser(t, store, "usr-author")
	seedPost(t, store, "post-a", "usr-author")

	w := doRequest(srv, "POST", "/api/v1/posts/post-a/comments", "", `{"content":"first"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("comment status = %d", w.Code)
	}
	var comment model.Comment
	json.Unmarshal(w.Body.Bytes(), &comment)

	w = doRequest(srv, "POST", "/api/v1/posts/post-a/comments/"+comment.ID+"/replies", "", `{"content":"agreed"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("reply status = %d, body = %s", w.Code, w.Body.String())
	}

	// 回复不加声望
	author, _ := store.GetUserByID(context.Background(), "usr-author")
	if author.Reputation != 2 {
		t.Errorf("author reputation = %d, want 2 (comment only)", author.Reputation)
	}

	p, _ := store.GetPost(context.Background(), "post-a")
	if len(p.Comments) != 1 || len(p.Comments[0].Replies) != 1 {
		t.Errorf("comments/replies = %d/%d, want 1/1", len(p.Comments), len(p.Comments[0].Replies))
	}
}

func TestReplyMissingComment(t *testing.T) {
	store := memstore.NewStore()
	srv := newTestServer(store)
	seedPost(t, store, "post-a", "usr-author")

	w := doRequest(srv, "POST", "/api/v1/posts/post-a/comments/cmt-missing/replies", "", `{"content":"x"}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestReport(t *testing.T) {
	store := memstore.NewStore()
	srv := newTestServer(store)
	seedPost(t, store, "post-a", "usr-author")

	w := doRequest(srv, "POST", "/api/v1/posts/post-a/report", "", `{"reason":"spam"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	p, _ := store.GetPost(context.Background(), "post-a")
	if len(p.Reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(p.Reports))
	}
	if p.Reports[0].Reason != "spam" {
		t.Errorf("reason = %q", p.Reports[0].Reason)
	}
	// 举报不改变状态
	if p.Status != model.PostStatusApproved {
		t.Errorf("status = %q, want approved", p.Status)
	}
}
