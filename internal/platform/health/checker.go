package health

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/habit-tracker-backend/internal/platform/database"
	"github.com/SlpAus/habit-tracker-backend/pkg/lifecycle"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

// PerformCheck 执行一次Redis健康检查并更新全局状态。
// Redis对本服务只承载缓存和吊销名单，失联时业务直接回退到数据库，
// 因此这里不做任何重建动作，只负责刷新健康标记。
func PerformCheck() {
	ctx, cancel := context.WithTimeout(database.Ctx, pingTimeout)
	defer cancel()

	wasHealthy := database.IsRedisHealthy()
	err := database.RDB.Ping(ctx).Err()

	if err != nil {
		if wasHealthy {
			fmt.Printf("健康检查: Redis连接丢失，统计缓存已旁路: %v\n", err)
		}
		database.SetRedisHealthy(false)
		return
	}

	if !wasHealthy {
		fmt.Println("健康检查: Redis连接已恢复，统计缓存重新启用。")
	}
	database.SetRedisHealthy(true)
}

// StartRedisHealthCheck 启动一个后台Goroutine来定期执行健康检查。
// 它通过生命周期句柄监听停机信号，在收到信号后立即退出。
func StartRedisHealthCheck(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("Redis健康检查器已启动。")

	for {
		if err := handle.Sleep(checkInterval); err != nil {
			fmt.Println("Redis健康检查器已退出。")
			return
		}
		PerformCheck()
	}
}
