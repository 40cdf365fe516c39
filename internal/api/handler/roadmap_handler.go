package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/soumitjana/soumitjana.github.io/internal/api/middleware"
	"github.com/soumitjana/soumitjana.github.io/internal/dto"
	"github.com/soumitjana/soumitjana.github.io/internal/service"
	"github.com/soumitjana/soumitjana.github.io/internal/view"
	"github.com/soumitjana/soumitjana.github.io/pkg/response"
)

// RoadmapPath 路线图页面地址，批量提交成功后重定向回此处
const RoadmapPath = "/roadmap/"

// RoadmapHandler 路线图页面与页面内异步接口
type RoadmapHandler struct {
	progressSvc service.ProgressService
}

// NewRoadmapHandler 创建 RoadmapHandler
func NewRoadmapHandler(progressSvc service.ProgressService) *RoadmapHandler {
	return &RoadmapHandler{progressSvc: progressSvc}
}

// Page 渲染路线图页面；匿名访问只展示大纲
// GET /roadmap/
func (h *RoadmapHandler) Page(c *gin.Context) {
	userID, username := OptionalIdentity(c)
	v, err := h.progressSvc.RoadmapView(c.Request.Context(), userID, username)
	if err != nil {
		c.String(http.StatusInternalServerError, "服务器内部错误")
		return
	}
	c.HTML(http.StatusOK, view.RoadmapTemplate, v)
}

// Tree 以 JSON 返回路线图视图
// GET /api/v1/roadmap
func (h *RoadmapHandler) Tree(c *gin.Context) {
	userID, username := OptionalIdentity(c)
	v, err := h.progressSvc.RoadmapView(c.Request.Context(), userID, username)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, v)
}

// Submit 页面表单批量提交条目完成状态
// 表单中每个条目一个 topic_id 字段，勾选的条目额外提交 completed=<topic_id>
// POST /roadmap/
func (h *RoadmapHandler) Submit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	items := parseTopicForm(c)
	_, err := h.progressSvc.SubmitTopicBatch(c.Request.Context(), userID, items)
	if err == nil {
		c.Redirect(http.StatusFound, RoadmapPath)
		return
	}

	var batchErr *service.BatchValidationError
	if !errors.As(err, &batchErr) {
		c.String(http.StatusInternalServerError, "服务器内部错误")
		return
	}

	// 校验失败：保留用户提交的勾选状态并展示逐项错误
	v, viewErr := h.progressSvc.RoadmapView(c.Request.Context(), userID, c.GetString(middleware.CtxUsername))
	if viewErr != nil {
		c.String(http.StatusInternalServerError, "服务器内部错误")
		return
	}
	applySubmitted(v, items)
	v.Errors = batchErr.ByTopic()
	c.HTML(http.StatusUnprocessableEntity, view.RoadmapTemplate, v)
}

// ToggleProject 页面内异步切换项目完成状态
// ANY /roadmap/toggle-project/
func (h *RoadmapHandler) ToggleProject(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusBadRequest, dto.ToggleStatusResponse{Status: "error"})
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ToggleProjectRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ToggleStatusResponse{Status: "error"})
		return
	}
	projectID, err := strconv.ParseInt(req.ProjectID, 10, 64)
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusNotFound, dto.ToggleStatusResponse{Status: "error"})
		return
	}

	result, err := h.progressSvc.ToggleProject(c.Request.Context(), userID, projectID, req.GithubLink)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, dto.ToggleStatusResponse{Status: "error"})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ToggleStatusResponse{Status: "error"})
		return
	}

	completed := result.Completed
	c.JSON(http.StatusOK, dto.ToggleStatusResponse{Status: "success", Completed: &completed})
}

// parseTopicForm 解析表单中的条目列表，无法解析的 ID 以 0 提交，由校验逻辑报错
func parseTopicForm(c *gin.Context) []dto.TopicProgressItem {
	checked := make(map[string]struct{})
	for _, v := range c.PostFormArray("completed") {
		checked[v] = struct{}{}
	}

	raw := c.PostFormArray("topic_id")
	items := make([]dto.TopicProgressItem, 0, len(raw))
	for _, v := range raw {
		id, _ := strconv.ParseInt(v, 10, 64)
		_, done := checked[v]
		items = append(items, dto.TopicProgressItem{TopicID: id, Completed: done})
	}
	return items
}

func applySubmitted(v *dto.RoadmapView, items []dto.TopicProgressItem) {
	submitted := make(map[int64]bool, len(items))
	for _, it := range items {
		submitted[it.TopicID] = it.Completed
	}
	for ci := range v.Categories {
		for pi := range v.Categories[ci].Phases {
			topics := v.Categories[ci].Phases[pi].Topics
			for ti := range topics {
				if done, ok := submitted[topics[ti].ID]; ok {
					topics[ti].Completed = done
				}
			}
		}
	}
}
