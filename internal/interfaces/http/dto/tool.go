// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"pixgen-ai-api/internal/application/catalog"
	"pixgen-ai-api/internal/domain/entity"
)

// ToolResponse 工具目录条目响应
type ToolResponse struct {
	Model         string   `json:"model"`
	Aliases       []string `json:"aliases,omitempty"`
	RequiresImage bool     `json:"requiresImage"`
	Cost          int      `json:"cost,omitempty"`
}

// NewToolResponse 从目录条目构建响应
func NewToolResponse(e catalog.Entry) ToolResponse {
	return ToolResponse{
		Model:         e.Identifier(),
		Aliases:       e.Aliases,
		RequiresImage: e.RequiresImage,
		Cost:          e.Cost,
	}
}

// MediaItemResponse 媒体库条目响应
type MediaItemResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Prompt    string    `json:"prompt,omitempty"`
	ToolSlug  string    `json:"toolSlug"`
	Model     string    `json:"model"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewMediaItemResponse 从媒体实体构建响应
func NewMediaItemResponse(item *entity.MediaItem) MediaItemResponse {
	return MediaItemResponse{
		ID:        item.ID,
		URL:       item.URL,
		Prompt:    item.Prompt,
		ToolSlug:  item.ToolSlug,
		Model:     item.Model,
		Source:    item.Source,
		CreatedAt: item.CreatedAt,
	}
}
