package router

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/soumitjana/soumitjana.github.io/config"
	"github.com/soumitjana/soumitjana.github.io/internal/api/handler"
	"github.com/soumitjana/soumitjana.github.io/internal/api/middleware"
	"github.com/soumitjana/soumitjana.github.io/internal/view"
	"github.com/soumitjana/soumitjana.github.io/pkg/jwt"
	"github.com/soumitjana/soumitjana.github.io/pkg/redis"
)

// maxBodyBytes 表单、批量提交与快照预览的请求体上限
const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时 Token 黑名单与限流均降级为关闭
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.SetHTMLTemplate(view.Templates())

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── 样式表 ──
	if _, err := os.Stat(cfg.Export.Stylesheet); err == nil {
		r.StaticFile("/static/web.css", cfg.Export.Stylesheet)
	}

	toggleLimit := middleware.RateLimit(rdb, cfg.RateLimit.TogglePerMinute, time.Minute)

	// ── 页面 ──
	page := r.Group("/roadmap")
	{
		page.GET("/", middleware.OptionalAuth(jwtMgr, rdb), h.Roadmap.Page)
		page.POST("/", middleware.JWTAuth(jwtMgr, rdb), h.Roadmap.Submit)
		page.Any("/toggle-project/", middleware.JWTAuth(jwtMgr, rdb), toggleLimit, h.Roadmap.ToggleProject)
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 无需认证
		v1.POST("/auth/login", h.Auth.Login)
		v1.GET("/roadmap", middleware.OptionalAuth(jwtMgr, rdb), h.Roadmap.Tree)
		v1.POST("/export/static", h.Export.PreviewStatic)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 进度模块
			progress := authorized.Group("/progress")
			{
				progress.GET("/topics", h.Progress.ListTopics)
				progress.POST("/topics", h.Progress.SubmitTopics)
				progress.POST("/topics/:id/toggle", toggleLimit, h.Progress.ToggleTopic)
				progress.POST("/projects/:id/toggle", toggleLimit, h.Progress.ToggleProject)
				progress.GET("/summary", h.Progress.Summary)
			}

			// 导出模块
			authorized.GET("/export/progress", h.Export.ExportProgress)
		}
	}

	return r
}
