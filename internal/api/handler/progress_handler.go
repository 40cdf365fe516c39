package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/soumitjana/soumitjana.github.io/internal/dto"
	"github.com/soumitjana/soumitjana.github.io/internal/service"
	apperrors "github.com/soumitjana/soumitjana.github.io/pkg/errors"
	"github.com/soumitjana/soumitjana.github.io/pkg/response"
)

// ProgressHandler 学习进度 JSON 接口
type ProgressHandler struct {
	progressSvc service.ProgressService
}

// NewProgressHandler 创建 ProgressHandler
func NewProgressHandler(progressSvc service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressSvc: progressSvc}
}

// ListTopics 获取全部条目的完成状态
// GET /api/v1/progress/topics
func (h *ProgressHandler) ListTopics(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	checklist, err := h.progressSvc.Checklist(c.Request.Context(), userID)
	if err != nil {
		handleProgressError(c, err)
		return
	}
	response.OK(c, checklist.List())
}

// SubmitTopics 批量提交条目完成状态
// POST /api/v1/progress/topics
func (h *ProgressHandler) SubmitTopics(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitTopicBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	checklist, err := h.progressSvc.SubmitTopicBatch(c.Request.Context(), userID, req.Items)
	if err != nil {
		handleProgressError(c, err)
		return
	}
	response.OK(c, checklist.List())
}

// ToggleTopic 切换单个条目完成状态
// POST /api/v1/progress/topics/:id/toggle
func (h *ProgressHandler) ToggleTopic(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.progressSvc.ToggleTopic(c.Request.Context(), userID, id)
	if err != nil {
		handleProgressError(c, err)
		return
	}
	response.OK(c, result)
}

// ToggleProject 切换项目完成状态，可同时提交 GitHub 链接
// POST /api/v1/progress/projects/:id/toggle
func (h *ProgressHandler) ToggleProject(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.ToggleLinkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
	}

	result, err := h.progressSvc.ToggleProject(c.Request.Context(), userID, id, req.GithubLink)
	if err != nil {
		handleProgressError(c, err)
		return
	}
	response.OK(c, result)
}

// Summary 按分类汇总完成进度
// GET /api/v1/progress/summary
func (h *ProgressHandler) Summary(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	summary, err := h.progressSvc.Summary(c.Request.Context(), userID)
	if err != nil {
		handleProgressError(c, err)
		return
	}
	response.OK(c, summary)
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "无效的 ID")
		return 0, false
	}
	return id, true
}

// handleProgressError 将 Service 层错误映射为 HTTP 响应
func handleProgressError(c *gin.Context, err error) {
	var batchErr *service.BatchValidationError
	switch {
	case errors.As(err, &batchErr):
		response.UnprocessableEntity(c, 13003, "提交内容校验失败", batchErr.Items)
	case errors.Is(err, service.ErrTopicNotFound):
		response.NotFound(c, 13001, "学习条目不存在")
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 13002, "项目不存在")
	case errors.Is(err, apperrors.ErrDuplicateKey):
		response.Conflict(c, 13004, "进度记录并发冲突，请重试")
	default:
		response.InternalError(c)
	}
}
