// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"pixgen-ai-api/internal/domain/entity"
	apperrors "pixgen-ai-api/pkg/errors"
)

// CreditRepository 积分账户仓储实现
type CreditRepository struct {
	client *Client
}

// NewCreditRepository 创建积分账户仓储
func NewCreditRepository(client *Client) *CreditRepository {
	return &CreditRepository{client: client}
}

// GetBalance 查询余额，账户不存在时返回 0
func (r *CreditRepository) GetBalance(ctx context.Context, userID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.CreditRepository.GetBalance")
	defer span.End()

	q := getQuerier(ctx, r.client.db)
	var balance int64
	err := q.QueryRowContext(ctx,
		`SELECT balance FROM credit_accounts WHERE user_id = $1`, userID,
	).Scan(&balance)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		span.RecordError(err)
		return 0, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get credit balance")
	}
	return balance, nil
}

// Deduct 条件扣减：仅在余额充足时更新，否则返回积分不足错误
func (r *CreditRepository) Deduct(ctx context.Context, userID string, amount int64, toolSlug string) error {
	ctx, span := tracer.Start(ctx, "postgres.CreditRepository.Deduct")
	defer span.End()

	q := getQuerier(ctx, r.client.db)
	result, err := q.ExecContext(ctx, `
		UPDATE credit_accounts
		SET balance = balance - $2, updated_at = NOW()
		WHERE user_id = $1 AND balance >= $2`,
		userID, amount,
	)
	if err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to deduct credits")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to deduct credits")
	}
	if affected == 0 {
		return apperrors.New(apperrors.CodeInsufficientCredits, "insufficient credits").
			WithDetail(fmt.Sprintf("tool_slug=%s required=%d", toolSlug, amount))
	}
	return nil
}

// Record 写入一条积分流水
func (r *CreditRepository) Record(ctx context.Context, tx *entity.CreditTransaction) error {
	ctx, span := tracer.Start(ctx, "postgres.CreditRepository.Record")
	defer span.End()

	q := getQuerier(ctx, r.client.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO credit_transactions (id, user_id, amount, reason, tool_slug, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tx.ID, tx.UserID, tx.Amount, tx.Reason, tx.ToolSlug, tx.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to record credit transaction")
	}
	return nil
}
