package handler

import (
	"go.uber.org/zap"

	"github.com/soumitjana/soumitjana.github.io/config"
	"github.com/soumitjana/soumitjana.github.io/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	Roadmap  *RoadmapHandler
	Progress *ProgressHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth, &cfg.Auth.Cookie),
		Roadmap:  NewRoadmapHandler(svc.Progress),
		Progress: NewProgressHandler(svc.Progress),
		Export:   NewExportHandler(svc.Export, logger),
	}
}
