// Package credits 提供用户积分的检查与扣减能力
package credits

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pixgen-ai-api/internal/domain/entity"
	"pixgen-ai-api/internal/domain/repository"
	"pixgen-ai-api/internal/infrastructure/persistence/redis"
	apperrors "pixgen-ai-api/pkg/errors"
	"pixgen-ai-api/pkg/logger"
)

const balanceKeyPrefix = "credits:balance:"

// Service 积分服务。enabled 为 false 时所有操作直接放行，
// 便于纯生成模式下关闭计费。
type Service struct {
	repo    repository.CreditRepository
	tx      repository.Transactor
	cache   *redis.Cache
	enabled bool
	ttl     time.Duration
	newID   func() string
	now     func() time.Time
}

// NewService 创建积分服务。tx 与 cache 都允许为 nil：
// 无事务管理器时流水记录退化为尽力而为，无缓存时余额直接读库。
func NewService(repo repository.CreditRepository, tx repository.Transactor, cache *redis.Cache, enabled bool, ttl time.Duration, newID func() string) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Service{
		repo:    repo,
		tx:      tx,
		cache:   cache,
		enabled: enabled,
		ttl:     ttl,
		newID:   newID,
		now:     time.Now,
	}
}

// Check 检查余额是否足以支付本次扣减
func (s *Service) Check(ctx context.Context, userID string, amount int64) error {
	if !s.enabled || userID == "" {
		return nil
	}

	balance, err := s.balance(ctx, userID)
	if err != nil {
		return err
	}

	if balance < amount {
		return apperrors.New(apperrors.CodeInsufficientCredits, "insufficient credits").
			WithDetail(fmt.Sprintf("balance=%d required=%d", balance, amount))
	}
	return nil
}

// Deduct 条件扣减余额并写入流水，成功后使余额缓存失效。
// 有事务管理器时扣减与流水原子提交，否则流水记录尽力而为。
func (s *Service) Deduct(ctx context.Context, userID string, amount int64, toolSlug string) error {
	if !s.enabled || userID == "" {
		return nil
	}

	if s.tx != nil {
		err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.repo.Deduct(ctx, userID, amount, toolSlug); err != nil {
				return err
			}
			return s.repo.Record(ctx, s.deductionRecord(userID, amount, toolSlug))
		})
		if err != nil {
			return err
		}
		s.invalidate(ctx, userID)
		return nil
	}

	if err := s.repo.Deduct(ctx, userID, amount, toolSlug); err != nil {
		return err
	}
	if err := s.repo.Record(ctx, s.deductionRecord(userID, amount, toolSlug)); err != nil {
		// 流水缺失可事后对账，不阻断扣费结果
		logger.Warn(ctx, "credit transaction record failed", "error", err.Error())
	}

	s.invalidate(ctx, userID)
	return nil
}

// deductionRecord 构建一条扣减流水
func (s *Service) deductionRecord(userID string, amount int64, toolSlug string) *entity.CreditTransaction {
	return &entity.CreditTransaction{
		ID:        s.newID(),
		UserID:    userID,
		Amount:    -amount,
		Reason:    entity.CreditReasonGeneration,
		ToolSlug:  toolSlug,
		CreatedAt: s.now(),
	}
}

// balance 读取余额，优先走缓存
func (s *Service) balance(ctx context.Context, userID string) (int64, error) {
	if s.cache == nil {
		return s.repo.GetBalance(ctx, userID)
	}

	data, err := s.cache.GetOrLoadSafe(ctx, balanceKeyPrefix+userID, s.ttl, func() (interface{}, error) {
		return s.repo.GetBalance(ctx, userID)
	})
	if err != nil {
		return 0, err
	}

	var balance int64
	if err := json.Unmarshal(data, &balance); err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeCacheError, "invalid cached balance")
	}
	return balance, nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, balanceKeyPrefix+userID); err != nil {
		logger.Warn(ctx, "balance cache invalidation failed", "error", err.Error())
	}
}
