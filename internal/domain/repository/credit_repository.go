package repository

import (
	"context"

	"pixgen-ai-api/internal/domain/entity"
)

// CreditRepository 积分账户仓储接口
type CreditRepository interface {
	// GetBalance 查询余额，账户不存在时返回 0
	GetBalance(ctx context.Context, userID string) (int64, error)
	// Deduct 条件扣减：余额不足时返回积分不足错误
	Deduct(ctx context.Context, userID string, amount int64, toolSlug string) error
	// Record 写入一条积分流水
	Record(ctx context.Context, tx *entity.CreditTransaction) error
}
