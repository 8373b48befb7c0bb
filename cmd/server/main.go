package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SlpAus/habit-tracker-backend/api"
	"github.com/SlpAus/habit-tracker-backend/internal/platform/backup"
	"github.com/SlpAus/habit-tracker-backend/internal/platform/config"
	"github.com/SlpAus/habit-tracker-backend/internal/platform/database"
	"github.com/SlpAus/habit-tracker-backend/internal/platform/health"
	"github.com/SlpAus/habit-tracker-backend/internal/platform/shutdown"
	"github.com/SlpAus/habit-tracker-backend/internal/platform/startup"
	"github.com/SlpAus/habit-tracker-backend/pkg/lifecycle"
	"github.com/SlpAus/habit-tracker-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env 仅用于本地开发时覆盖配置，文件缺失不是错误
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置: %v", err))
	}

	token.GenerateSecretKey()
	database.InitDB(cfg.Database)
	database.InitRedis(cfg.Database.Redis)

	// 执行应用首次启动初始化流程（数据库迁移等）
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 创建生命周期管理器，并异步启动后台的Redis健康检查器
	mgr := lifecycle.NewManager()
	healthHandle, err := mgr.NewServiceHandle("redis-health-checker")
	if err != nil {
		panic(fmt.Sprintf("无法注册健康检查服务: %v", err))
	}
	go health.StartRedisHealthCheck(healthHandle)

	backupHandle, err := mgr.NewServiceHandle("database-backup-scheduler")
	if err != nil {
		panic(fmt.Sprintf("无法注册备份调度服务: %v", err))
	}
	go backup.StartBackupScheduler(backupHandle, cfg.Database)

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic("Failed to start server: " + err.Error())
		}
	}()

	// 阻塞等待停机信号，并执行优雅停机
	coordinator := shutdown.NewCoordinator(mgr)
	coordinator.ListenForSignalsAndShutdown(server)
}
