package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/soumitjana/soumitjana.github.io/internal/service"
	"github.com/soumitjana/soumitjana.github.io/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	logger    *zap.Logger
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, logger: logger}
}

// ExportProgress 导出当前用户的学习进度
// GET /api/v1/export/progress
func (h *ExportHandler) ExportProgress(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportProgress(c.Request.Context(), userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// PreviewStatic 按请求体中的进度快照渲染静态页面
// 快照格式与 progress.json 相同，无法解析的条目会被忽略
// POST /api/v1/export/static
func (h *ExportHandler) PreviewStatic(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, 10001, "读取请求体失败")
		return
	}

	snap := service.ParseSnapshot(raw, h.logger)
	html, err := h.exportSvc.BuildStatic(c.Request.Context(), snap)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportRenderFail):
		response.Error(c, http.StatusInternalServerError, 14001, "页面渲染失败")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 14002, "生成 Excel 失败")
	default:
		response.InternalError(c)
	}
}
