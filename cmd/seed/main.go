// seed 将课程大纲导入数据库，供首次部署或大纲更新后使用
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/soumitjana/soumitjana.github.io/config"
	"github.com/soumitjana/soumitjana.github.io/internal/repository"
	"github.com/soumitjana/soumitjana.github.io/internal/seed"
	"github.com/soumitjana/soumitjana.github.io/internal/service"
	"github.com/soumitjana/soumitjana.github.io/pkg/database"
	applogger "github.com/soumitjana/soumitjana.github.io/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	fixturePath := flag.String("fixture", "", "大纲文件路径（默认使用内嵌大纲）")
	reset := flag.Bool("reset", false, "清空现有大纲后重新导入（级联删除进度记录）")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	path := cfg.Curriculum.FixturePath
	if *fixturePath != "" {
		path = *fixturePath
	}
	fixture, err := seed.Load(path)
	if err != nil {
		logger.Fatal("加载大纲失败", zap.String("path", path), zap.Error(err))
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, cfg.Database.Driver, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	svc := service.NewCurriculumService(repository.NewRepository(db), logger)
	seeded, err := svc.Seed(context.Background(), fixture, *reset || cfg.Curriculum.ResetOnSeed)
	if err != nil {
		logger.Fatal("导入大纲失败", zap.Error(err))
	}
	if !seeded {
		logger.Info("数据库中已有大纲，跳过导入（使用 -reset 强制重新导入）")
		return
	}

	categories, phases, topics, projects := fixture.Counts()
	logger.Info("课程大纲已导入",
		zap.Int("categories", categories),
		zap.Int("phases", phases),
		zap.Int("topics", topics),
		zap.Int("projects", projects),
	)
}
