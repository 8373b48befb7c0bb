package database

import (
	"fmt"
	"log"
	"os"

	"github.com/SlpAus/habit-tracker-backend/internal/platform/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的GORM实例，供项目其他部分使用
var DB *gorm.DB

// InitDB 根据配置初始化数据库连接
// 支持SQLite（默认，单文件部署）和PostgreSQL两种驱动
func InitDB(cfg config.DatabaseConfig) {
	// GORM日志配置
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent, // 在生产环境中可以设为Silent
			Colorful:      true,
		},
	)

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Postgres.DSN)
	default:
		dialector = sqlite.Open(cfg.Sqlite.Path)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
		// 把驱动层的唯一约束冲突翻译成gorm.ErrDuplicatedKey，
		// 打卡切换的并发冲突处理依赖这个错误类型
		TranslateError: true,
	})
	if err != nil {
		fmt.Println("连接数据库失败", err)
		panic(err)
	}

	fmt.Println("数据库连接成功！")
}
