package salary

import (
	"context"
	"testing"
	"time"

	"skillshare/internal/shared/model"
	"skillshare/internal/shared/storage/memstore"
)

func seedAuthor(t *testing.T, store *memstore.Store, id string, reputation int) {
	t.Helper()
	err := store.CreateUser(context.Background(), &model.User{
		ID:         id,
		Username:   "author-" + id,
		Email:      id + "@example.com",
		Role:       model.UserRoleUser,
		Status:     model.UserStatusActive,
		Reputation: reputation,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
}

func TestRecomputeAll(t *testing.T) {
	store := memstore.NewStore()
	ctx := context.Background()

	// 声望 3 = 一次点赞 +1、一次评论 +2 的实时累加结果
	seedAuthor(t, store, "usr-001", 3)
	post := &model.Post{
		ID:       "post-001",
		Title:    "Test",
		AuthorID: "usr-001",
		Status:   model.PostStatusApproved,
		Likes:    []model.Like{{IdentityKey: "usr-002"}},
		Comments: []model.Comment{
			{
				ID:      "cmt-001",
				Author:  "someone",
				Content: "nice",
				Replies: []model.Reply{{Author: "other", Content: "agreed"}},
			},
		},
		CreatedAt: time.Now(),
	}
	if err := store.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	agg := NewAggregator(store)
	result, err := agg.RecomputeAll(ctx)
	if err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	if result.Processed != 1 || result.Failed != 0 {
		t.Fatalf("result = %+v, want 1 processed / 0 failed", result)
	}

	// 3*100 + 1*10 + 1*20 = 340，回复不计薪
	u, err := store.GetUserByID(ctx, "usr-001")
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if u.Salary != 340 {
		t.Errorf("Salary = %v, want 340", u.Salary)
	}
	if u.TotalPosts != 1 || u.TotalLikes != 1 || u.TotalComments != 1 {
		t.Errorf("totals = %d/%d/%d, want 1/1/1", u.TotalPosts, u.TotalLikes, u.TotalComments)
	}
}

func TestRecomputeAllIdempotent(t *testing.T) {
	store := memstore.NewStore()
	ctx := context.Background()

	seedAuthor(t, store, "usr-001", 5)
	if err := store.CreatePost(ctx, &model.Post{
		ID:        "post-001",
		Title:     "Test",
		AuthorID:  "usr-001",
		Status:    model.PostStatusApproved,
		Likes:     []model.Like{{IdentityKey: "a"}, {IdentityKey: "b"}},
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	agg := NewAggregator(store)
	for i := 0; i < 3; i++ {
		if _, err := agg.RecomputeAll(ctx); err != nil {
			t.Fatalf("RecomputeAll run %d: %v", i, err)
		}
	}

	u, _ := store.GetUserByID(ctx, "usr-001")
	if want := float64(5*100 + 2*10); u.Salary != want {
		t.Errorf("Salary after repeated runs = %v, want %v", u.Salary, want)
	}
	if u.TotalLikes != 2 {
		t.Errorf("TotalLikes = %d, want 2", u.TotalLikes)
	}
}

func TestRecomputeAllNoPosts(t *testing.T) {
	store := memstore.NewStore()
	ctx := context.Background()

	seedAuthor(t, store, "usr-001", 0)

	agg := NewAggregator(store)
	if _, err := agg.RecomputeAll(ctx); err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}

	u, _ := store.GetUserByID(ctx, "usr-001")
	if u.Salary != 0 || u.TotalPosts != 0 {
		t.Errorf("salary/posts = %v/%d, want 0/0", u.Salary, u.TotalPosts)
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		reputation, likes, comments int
		want                        float64
	}{
		{0, 0, 0, 0},
		{1, 0, 0, 100},
		{0, 1, 0, 10},
		{0, 0, 1, 20},
		{3, 1, 1, 340},
	}
	for _, tt := range tests {
		if got := Compute(tt.reputation, tt.likes, tt.comments); got != tt.want {
			t.Errorf("Compute(%d,%d,%d) = %v, want %v", tt.reputation, tt.likes, tt.comments, got, tt.want)
		}
	}
}
