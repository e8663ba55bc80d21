// Package model 定义核心数据模型的测试
package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostValidateDefaults(t *testing.T) {
	post := Post{
		Title:       "Learn Go",
		Description: "A short guide",
		AuthorID:    "usr-001",
	}
	require.NoError(t, post.Validate())

	assert.Equal(t, "general", post.Category)
	assert.Equal(t, 1, post.ReadingTime)
	assert.Equal(t, PostStatusPending, post.Status)
}

func TestPostValidateRequired(t *testing.T) {
	tests := []struct {
		name string
		post Post
	}{
		{"missing title", Post{Description: "d", AuthorID: "usr-001"}},
		{"missing description", Post{Title: "t", AuthorID: "usr-001"}},
		{"missing author", Post{Title: "t", Description: "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.post.Validate())
		})
	}
}

func TestPostStatusValid(t *testing.T) {
	assert.True(t, PostStatusPending.Valid())
	assert.True(t, PostStatusApproved.Valid())
	assert.True(t, PostStatusRejected.Valid())
	assert.False(t, PostStatus("deleted").Valid())
	assert.False(t, PostStatus("").Valid())
}

func TestPostLikedBy(t *testing.T) {
	post := Post{Likes: []Like{{IdentityKey: "usr-001"}, {IdentityKey: "127.0.0.1"}}}

	assert.True(t, post.LikedBy("usr-001"))
	assert.True(t, post.LikedBy("127.0.0.1"))
	assert.False(t, post.LikedBy("usr-002"))
}

func TestPostFindComment(t *testing.T) {
	post := Post{Comments: []Comment{
		{ID: "cmt-001", Content: "first"},
		{ID: "cmt-002", Content: "second"},
	}}

	c := post.FindComment("cmt-002")
	require.NotNil(t, c)
	assert.Equal(t, "second", c.Content)

	// 返回的是指针，回复追加要落到原评论上
	c.Replies = append(c.Replies, Reply{Author: "a", Content: "r"})
	assert.Len(t, post.Comments[1].Replies, 1)

	assert.Nil(t, post.FindComment("cmt-404"))
}

func TestPostJSONRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	post := Post{
		ID:          "post-001",
		Title:       "Title",
		Description: "Description",
		AuthorID:    "usr-001",
		Status:      PostStatusApproved,
		Views:       1.5,
		ApprovedAt:  &now,
		ApprovedBy:  "Admin",
	}

	data, err := json.Marshal(post)
	require.NoError(t, err)

	var decoded Post
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, post.ID, decoded.ID)
	assert.Equal(t, 1.5, decoded.Views)
	require.NotNil(t, decoded.ApprovedAt)
	assert.True(t, decoded.ApprovedAt.Equal(now))
}

func TestUserPasswordHashNeverSerialized(t *testing.T) {
	user := User{
		ID:           "usr-001",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$secret",
		Role:         UserRoleUser,
	}

	data, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestUserIsAdmin(t *testing.T) {
	admin := &User{Role: UserRoleAdmin}
	user := &User{Role: UserRoleUser}
	var nilUser *User

	assert.True(t, admin.IsAdmin())
	assert.False(t, user.IsAdmin())
	assert.False(t, nilUser.IsAdmin())
}
