// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"pixgen-ai-api/internal/application/generation"
	"pixgen-ai-api/internal/interfaces/http/dto"
	apperrors "pixgen-ai-api/pkg/errors"
)

// GenerateHandler 生成接口处理器
type GenerateHandler struct {
	svc *generation.Service
}

// NewGenerateHandler 创建生成接口处理器
func NewGenerateHandler(svc *generation.Service) *GenerateHandler {
	return &GenerateHandler{svc: svc}
}

// Generate 按工具 slug 执行一次生成
// @Summary 工具生成
// @Description 按工具 slug 解析模型并同步执行一次生成
// @Tags Tools
// @Accept json
// @Produce json
// @Success 200 {object} dto.Response[dto.GenerateResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/tools/{slug} [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	slug := strings.Trim(c.Param("slug"), "/")
	if slug == "" {
		dto.BadRequest(c, "tool slug is required")
		return
	}

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		dto.BadRequest(c, "invalid request body")
		return
	}

	parsed := dto.ParseGenerateRequest(body)
	result, err := h.svc.Generate(c.Request.Context(), generation.Request{
		ToolSlug:     slug,
		UserID:       c.GetString("user_id"),
		Prompt:       parsed.Prompt,
		ImageURL:     parsed.ImageURL,
		OutputFormat: parsed.OutputFormat,
		Knobs:        parsed.Knobs,
	})
	if err != nil {
		respondAppError(c, err)
		return
	}

	dto.Success(c, dto.NewGenerateResponse(result))
}

// respondAppError 将业务错误映射为 HTTP 错误响应
func respondAppError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, &dto.ErrorDetail{
		ErrorCode: string(appErr.Code),
		Details:   appErr.Detail,
	})
}
