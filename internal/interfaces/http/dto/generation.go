// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"pixgen-ai-api/internal/application/generation"
)

// 请求体中的保留字段，其余键一律作为模型旋钮透传给参数适配层
var reservedKeys = map[string]bool{
	"prompt":       true,
	"imageUrl":     true,
	"outputFormat": true,
}

// GenerateRequest 生成请求
type GenerateRequest struct {
	Prompt       string
	ImageURL     string
	OutputFormat string
	Knobs        map[string]any
}

// ParseGenerateRequest 从松散的 JSON 对象解析生成请求。
// 保留字段仅接受字符串，类型不符时按缺省处理。
func ParseGenerateRequest(body map[string]any) GenerateRequest {
	req := GenerateRequest{
		Prompt:       stringField(body, "prompt"),
		ImageURL:     stringField(body, "imageUrl"),
		OutputFormat: stringField(body, "outputFormat"),
	}

	knobs := make(map[string]any, len(body))
	for k, v := range body {
		if reservedKeys[k] {
			continue
		}
		knobs[k] = v
	}
	if len(knobs) > 0 {
		req.Knobs = knobs
	}
	return req
}

func stringField(body map[string]any, key string) string {
	if s, ok := body[key].(string); ok {
		return s
	}
	return ""
}

// ResolvedInfo 解析结果摘要
type ResolvedInfo struct {
	Confidence   float64 `json:"confidence"`
	Matched      string  `json:"matched,omitempty"`
	UsedFallback bool    `json:"usedFallback"`
}

// GenerateResponse 生成响应
type GenerateResponse struct {
	ResultURL       string       `json:"resultUrl"`
	Model           string       `json:"model"`
	ToolSlug        string       `json:"toolSlug"`
	CreditsDeducted int64        `json:"creditsDeducted"`
	Resolved        ResolvedInfo `json:"resolved"`
}

// NewGenerateResponse 从编排结果构建响应
func NewGenerateResponse(result *generation.Result) GenerateResponse {
	return GenerateResponse{
		ResultURL:       result.ResultURL,
		Model:           result.Model,
		ToolSlug:        result.ToolSlug,
		CreditsDeducted: result.CreditsDeducted,
		Resolved: ResolvedInfo{
			Confidence:   result.Resolved.Confidence,
			Matched:      result.Resolved.Matched,
			UsedFallback: result.Resolved.UsedFallback,
		},
	}
}
