// export 根据进度快照生成静态路线图页面（GitHub Pages）
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/soumitjana/soumitjana.github.io/config"
	"github.com/soumitjana/soumitjana.github.io/internal/repository"
	"github.com/soumitjana/soumitjana.github.io/internal/seed"
	"github.com/soumitjana/soumitjana.github.io/internal/service"
	"github.com/soumitjana/soumitjana.github.io/pkg/database"
	applogger "github.com/soumitjana/soumitjana.github.io/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	snapshotPath := flag.String("snapshot", "", "进度快照路径（默认 export.snapshot_path）")
	outputDir := flag.String("out", "", "输出目录（默认 export.output_dir）")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if *snapshotPath != "" {
		cfg.Export.SnapshotPath = *snapshotPath
	}
	if *outputDir != "" {
		cfg.Export.OutputDir = *outputDir
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	snap, err := service.LoadSnapshot(cfg.Export.SnapshotPath, logger)
	if err != nil {
		logger.Fatal("读取进度快照失败", zap.String("path", cfg.Export.SnapshotPath), zap.Error(err))
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer database.Close(db)

	ctx := context.Background()
	repo := repository.NewRepository(db)
	if err := prepareStore(ctx, cfg, db, repo, logger); err != nil {
		logger.Fatal("初始化大纲数据失败", zap.Error(err))
	}

	svc := service.NewExportService(&cfg.Export, repo, logger)
	if _, err := svc.WriteStatic(ctx, snap); err != nil {
		logger.Fatal("静态导出失败", zap.Error(err))
	}
}

// prepareStore 完成建表，库中尚无大纲时导入种子数据
func prepareStore(ctx context.Context, cfg *config.Config, db *gorm.DB, repo *repository.Repository, logger *zap.Logger) error {
	if err := database.RunMigrations(db, cfg.Database.Driver, logger); err != nil {
		return err
	}
	fixture, err := seed.Load(cfg.Curriculum.FixturePath)
	if err != nil {
		return err
	}
	_, err = service.NewCurriculumService(repo, logger).Seed(ctx, fixture, false)
	return err
}
