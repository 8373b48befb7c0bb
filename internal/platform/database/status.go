package database

import (
	"sync"
)

// statusManager 负责线程安全地管理和提供Redis的健康状态。
// 统计缓存和令牌吊销名单在Redis不健康时会被旁路，
// 业务逻辑直接回退到SQLite/PostgreSQL实时计算。
type statusManager struct {
	mu             sync.RWMutex
	isRedisHealthy bool
}

// 全局的状态管理器实例
var globalStatus = &statusManager{
	isRedisHealthy: true, // 默认启动时是健康的
}

// IsRedisHealthy 返回当前Redis的健康状态。
func IsRedisHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isRedisHealthy
}

// SetRedisHealthy 用于线程安全地更新健康状态。
func SetRedisHealthy(healthy bool) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.isRedisHealthy = healthy
}
