package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/soumitjana/soumitjana.github.io/config"
	"github.com/soumitjana/soumitjana.github.io/internal/api/handler"
	"github.com/soumitjana/soumitjana.github.io/internal/api/router"
	"github.com/soumitjana/soumitjana.github.io/internal/repository"
	"github.com/soumitjana/soumitjana.github.io/internal/seed"
	"github.com/soumitjana/soumitjana.github.io/internal/service"
	"github.com/soumitjana/soumitjana.github.io/pkg/database"
	"github.com/soumitjana/soumitjana.github.io/pkg/jwt"
	applogger "github.com/soumitjana/soumitjana.github.io/pkg/logger"
	"github.com/soumitjana/soumitjana.github.io/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	if err := database.RunMigrations(db, cfg.Database.Driver, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流将不可用", zap.Error(err))
		rdb = nil
	}
	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}

	// 5. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, logger)
	h := handler.NewHandler(cfg, svc, logger)

	// 6. 导入课程大纲与初始用户
	if err := bootstrap(context.Background(), cfg, svc, logger); err != nil {
		logger.Fatal("初始化数据失败", zap.Error(err))
	}

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	database.Close(db)
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// bootstrap 按配置导入课程大纲并创建初始用户
func bootstrap(ctx context.Context, cfg *config.Config, svc *service.Service, logger *zap.Logger) error {
	if cfg.Curriculum.SeedOnStart {
		fixture, err := seed.Load(cfg.Curriculum.FixturePath)
		if err != nil {
			return err
		}
		seeded, err := svc.Curriculum.Seed(ctx, fixture, cfg.Curriculum.ResetOnSeed)
		if err != nil {
			return err
		}
		if seeded {
			categories, phases, topics, projects := fixture.Counts()
			logger.Info("课程大纲已导入",
				zap.Int("categories", categories),
				zap.Int("phases", phases),
				zap.Int("topics", topics),
				zap.Int("projects", projects),
			)
		}
	}

	if cfg.Auth.BootstrapUsername != "" {
		_, created, err := svc.Auth.EnsureUser(ctx, cfg.Auth.BootstrapUsername, cfg.Auth.BootstrapPassword)
		if err != nil {
			return err
		}
		if created {
			logger.Info("已创建初始用户", zap.String("username", cfg.Auth.BootstrapUsername))
		}
	}
	return nil
}
