// Package moderation 审核领域：帖子状态机与后台接口
package moderation

import (
	"errors"
	"fmt"

	"skillshare/internal/apiserver/auth"
	"skillshare/internal/shared/model"
)

// Action 审核动作
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

var (
	// ErrForbidden 操作者角色不足
	ErrForbidden = errors.New("moderation: admin role required")

	// ErrInvalidTransition 目标状态不可从当前状态到达
	ErrInvalidTransition = errors.New("moderation: invalid status transition")
)

// Transition 状态机唯一的转移函数
//
// 合法转移：
//
//	pending  --approve--> approved
//	pending  --reject-->  rejected
//	approved --approve--> approved   （重复审批只重新盖章，不报错）
//	rejected --reject-->  rejected   （同上）
//
// rejected 与 approved 之间不可互转；驳回后重新投稿需要新建帖子。
// 所有状态写入都必须经过这里，业务代码不得直接改 Status 字段。
func Transition(current model.PostStatus, action Action, role string) (model.PostStatus, error) {
	if role != string(model.UserRoleAdmin) {
		return "", ErrForbidden
	}

	switch action {
	case ActionApprove:
		switch current {
		case model.PostStatusPending, model.PostStatusApproved:
			return model.PostStatusApproved, nil
		}
	case ActionReject:
		switch current {
		case model.PostStatusPending, model.PostStatusRejected:
			return model.PostStatusRejected, nil
		}
	default:
		return "", fmt.Errorf("moderation: unknown action %q", action)
	}
	return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, current)
}

// CanModify 删除/编辑权限：帖子作者本人或管理员
func CanModify(p *auth.Principal, post *model.Post) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	return p.Authenticated && p.IdentityKey == post.AuthorID
}
