// Package entity 提供领域实体定义
package entity

import "time"

// CreditAccount 用户积分账户
type CreditAccount struct {
	UserID    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreditTransaction 积分流水
type CreditTransaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	ToolSlug  string    `json:"tool_slug,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// 流水原因
const (
	CreditReasonGeneration = "generation"
	CreditReasonTopUp      = "top_up"
)
