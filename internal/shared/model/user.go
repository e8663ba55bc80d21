package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// UserStatus 用户状态
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User 用户
//
// Reputation 是增量维护的计数器，由点赞/评论事件实时累加；
// Salary 和 Total* 缓存是派生值，只由薪资聚合任务整体重算。
type User struct {
	ID            string     `json:"id" bson:"_id"`
	Username      string     `json:"username" bson:"username"`
	Email         string     `json:"email" bson:"email"`
	PasswordHash  string     `json:"-" bson:"password_hash"` // never expose in JSON
	Role          UserRole   `json:"role" bson:"role"`
	Status        UserStatus `json:"status" bson:"status"`
	Reputation    int        `json:"reputation" bson:"reputation"`
	Salary        float64    `json:"salary" bson:"salary"`
	TotalPosts    int        `json:"total_posts" bson:"total_posts"`
	TotalLikes    int        `json:"total_likes" bson:"total_likes"`
	TotalComments int        `json:"total_comments" bson:"total_comments"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}
