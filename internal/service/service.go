package service

import (
	"go.uber.org/zap"

	"github.com/soumitjana/soumitjana.github.io/config"
	"github.com/soumitjana/soumitjana.github.io/internal/repository"
	"github.com/soumitjana/soumitjana.github.io/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Curriculum CurriculumService
	Progress   ProgressService
	Export     ExportService
}

// NewService 创建 Service 聚合
// blacklist 可为 nil（Redis 未启用时登出仅清除 Cookie）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, blacklist, logger),
		Curriculum: NewCurriculumService(repo, logger),
		Progress:   NewProgressService(repo, logger),
		Export:     NewExportService(&cfg.Export, repo, logger),
	}
}
