package handler

import (
	"github.com/gin-gonic/gin"

	"pixgen-ai-api/internal/application/catalog"
	"pixgen-ai-api/internal/interfaces/http/dto"
)

// ToolsHandler 工具目录处理器
type ToolsHandler struct{}

// NewToolsHandler 创建工具目录处理器
func NewToolsHandler() *ToolsHandler {
	return &ToolsHandler{}
}

// List 列出全部可用模型及其工具别名
// @Summary 工具目录
// @Tags Tools
// @Produce json
// @Success 200 {object} dto.Response[[]dto.ToolResponse]
// @Router /v1/tools [get]
func (h *ToolsHandler) List(c *gin.Context) {
	entries := catalog.Entries()
	tools := make([]dto.ToolResponse, 0, len(entries))
	for _, e := range entries {
		tools = append(tools, dto.NewToolResponse(e))
	}
	dto.Success(c, tools)
}
