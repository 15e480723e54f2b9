package replicate

import (
	"fmt"
	"strings"

	apperrors "pixgen-ai-api/pkg/errors"
)

// contentPolicyMarkers 生成端内容安全拦截的常见提示词
var contentPolicyMarkers = []string{
	"nsfw",
	"sensitive",
	"flagged",
	"safety",
	"content policy",
	"content moderation",
}

// credentialMarkers 凭证问题的常见提示词
var credentialMarkers = []string{
	"api token",
	"authentication",
	"unauthenticated",
	"unauthorized",
	"invalid token",
}

// classifyHTTP 将非 2xx 响应映射为业务错误
func classifyHTTP(status int, body string) *apperrors.AppError {
	detail := fmt.Sprintf("status=%d body=%s", status, truncate(body, 512))

	switch status {
	case 401, 403:
		return apperrors.New(apperrors.CodeCredentialMissing, "replicate rejected the api token").
			WithDetail(detail)
	case 422:
		return classifyMessage(body).WithDetail(detail)
	case 429:
		return apperrors.New(apperrors.CodeProviderError, "replicate rate limit exceeded").
			WithDetail(detail)
	}
	return apperrors.New(apperrors.CodeProviderError, "replicate returned an error").
		WithDetail(detail)
}

// classifyMessage 按错误文本区分内容安全拦截、凭证错误与一般失败。
// 每次返回新的错误实例，调用方可以安全附加 detail。
func classifyMessage(msg string) *apperrors.AppError {
	lower := strings.ToLower(msg)

	for _, marker := range contentPolicyMarkers {
		if strings.Contains(lower, marker) {
			return apperrors.New(apperrors.CodeContentPolicy, "generation blocked by content policy")
		}
	}
	for _, marker := range credentialMarkers {
		if strings.Contains(lower, marker) {
			return apperrors.New(apperrors.CodeCredentialMissing, "replicate credential error")
		}
	}
	return apperrors.New(apperrors.CodeProviderError, "image generation failed")
}
