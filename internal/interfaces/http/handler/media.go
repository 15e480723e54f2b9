package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"pixgen-ai-api/internal/domain/repository"
	"pixgen-ai-api/internal/interfaces/http/dto"
)

// MediaHandler 媒体库处理器
type MediaHandler struct {
	repo repository.MediaRepository
}

// NewMediaHandler 创建媒体库处理器
func NewMediaHandler(repo repository.MediaRepository) *MediaHandler {
	return &MediaHandler{repo: repo}
}

// List 分页查询当前用户的媒体库
// @Summary 媒体库列表
// @Tags Media
// @Produce json
// @Success 200 {object} dto.Response[[]dto.MediaItemResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/media [get]
func (h *MediaHandler) List(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		dto.Unauthorized(c, "authentication required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, err := h.repo.ListByUser(c.Request.Context(), userID, pageSize, (page-1)*pageSize)
	if err != nil {
		respondAppError(c, err)
		return
	}

	resp := make([]dto.MediaItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, dto.NewMediaItemResponse(item))
	}
	dto.SuccessWithPage(c, resp, &dto.PageMeta{Page: page, PageSize: pageSize})
}
