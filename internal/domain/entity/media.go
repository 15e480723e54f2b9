// Package entity 提供领域实体定义
package entity

import "time"

// MediaItem 媒体库条目：一次成功生成的落库记录
type MediaItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	URL       string    `json:"url"`
	Prompt    string    `json:"prompt"`
	ToolSlug  string    `json:"tool_slug"`
	Model     string    `json:"model"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// 媒体来源
const (
	MediaSourceGeneration = "generation"
	MediaSourceUpload     = "upload"
)
