// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"pixgen-ai-api/internal/domain/entity"
)

// MediaRepository 媒体库仓储实现
type MediaRepository struct {
	client *Client
}

// NewMediaRepository 创建媒体库仓储
func NewMediaRepository(client *Client) *MediaRepository {
	return &MediaRepository{client: client}
}

// Save 保存一条生成记录
func (r *MediaRepository) Save(ctx context.Context, item *entity.MediaItem) error {
	ctx, span := tracer.Start(ctx, "postgres.MediaRepository.Save")
	defer span.End()

	q := getQuerier(ctx, r.client.db)
	query := `
		INSERT INTO media_items (id, user_id, url, prompt, tool_slug, model, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := q.ExecContext(ctx, query,
		item.ID, item.UserID, item.URL, item.Prompt,
		item.ToolSlug, item.Model, item.Source, item.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save media item: %w", err)
	}
	return nil
}

// ListByUser 按用户分页查询媒体库，按创建时间倒序
func (r *MediaRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.MediaItem, error) {
	ctx, span := tracer.Start(ctx, "postgres.MediaRepository.ListByUser")
	defer span.End()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := getQuerier(ctx, r.client.db)
	query := `
		SELECT id, user_id, url, prompt, tool_slug, model, source, created_at
		FROM media_items
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := q.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list media items: %w", err)
	}
	defer rows.Close()

	var items []*entity.MediaItem
	for rows.Next() {
		var item entity.MediaItem
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.URL, &item.Prompt,
			&item.ToolSlug, &item.Model, &item.Source, &item.CreatedAt,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan media item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate media items: %w", err)
	}
	return items, nil
}
