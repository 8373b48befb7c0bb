package startup

import (
	"fmt"

	"github.com/SlpAus/habit-tracker-backend/internal/habit"
	"github.com/SlpAus/habit-tracker-backend/internal/user"
)

// InitializeApplication 是应用首次启动时执行的总入口
// 按依赖顺序初始化各业务模块（目前主要是数据库迁移）
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := user.PrimeModule(); err != nil {
		return err
	}
	if err := habit.PrimeModule(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}
