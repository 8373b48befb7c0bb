package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/SlpAus/habit-tracker-backend/internal/platform/config"
	"github.com/SlpAus/habit-tracker-backend/pkg/lifecycle"
)

const (
	backupInterval = 24 * time.Hour // 定时备份频率
	backupSuffix   = ".bak"
)

var backupMutex sync.Mutex // 避免意外竞态

// StartBackupScheduler 启动一个后台Goroutine来定期备份SQLite数据库文件。
// 它接收一个lifecycle.Handle来管理其生命周期。
// PostgreSQL部署有自己的备份体系，此调度器只在sqlite驱动下工作。
func StartBackupScheduler(handle *lifecycle.Handle, cfg config.DatabaseConfig) {
	defer handle.Close()

	if cfg.Driver != "sqlite" {
		fmt.Println("备份调度器: 当前驱动不是sqlite，调度器退出。")
		return
	}
	fmt.Println("数据库备份调度器已启动。")

	for {
		// 使用可中断的休眠，收到停机信号时立刻从休眠中唤醒并退出
		if err := handle.Sleep(backupInterval); err != nil {
			fmt.Println("备份调度器: 休眠被中断，正在关闭...")
			return
		}

		if err := SnapshotSqliteFile(cfg.Sqlite.Path); err != nil {
			fmt.Printf("备份调度器错误: %v\n", err)
		} else {
			fmt.Println("备份调度器: 数据库快照备份成功。")
		}
	}
}

// SnapshotSqliteFile 把SQLite数据库文件复制为同目录下的.bak文件。
// 先写临时文件再原子重命名，保证备份文件始终是完整的。
func SnapshotSqliteFile(dbPath string) error {
	backupMutex.Lock()
	defer backupMutex.Unlock()

	src, err := os.Open(dbPath)
	if err != nil {
		return fmt.Errorf("无法打开数据库文件: %w", err)
	}
	defer src.Close()

	tmpPath := dbPath + backupSuffix + ".tmp"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("无法创建临时备份文件: %w", err)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("无法复制数据库文件: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("无法关闭临时备份文件: %w", err)
	}

	backupPath := filepath.Clean(dbPath + backupSuffix)
	if err := os.Rename(tmpPath, backupPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("无法落盘备份文件: %w", err)
	}
	return nil
}
