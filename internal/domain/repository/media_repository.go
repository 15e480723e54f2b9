package repository

import (
	"context"

	"pixgen-ai-api/internal/domain/entity"
)

// MediaRepository 媒体库仓储接口
type MediaRepository interface {
	// Save 保存一条生成记录
	Save(ctx context.Context, item *entity.MediaItem) error
	// ListByUser 按用户分页查询媒体库
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.MediaItem, error)
}
